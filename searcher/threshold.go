package searcher

import (
	"math"

	"playground/game"
)

// Later moves win ties, and the running best value is handed to each child
// as its threshold.
func (s *Searcher) bestByThreshold(state game.State) game.Move {
	maximizer := state.Player()
	var best game.Move
	bestValue := math.Inf(-1)
	for _, move := range state.LegalMoves() {
		value := s.threshold(state.Play(move), 1, bestValue, maximizer)
		if best == nil || value >= bestValue {
			best, bestValue = move, value
		}
	}
	return best
}

// threshold compares every child value against the parent's bound instead of
// maintaining a symmetric alpha-beta window.
func (s *Searcher) threshold(state game.State, depth int, bound float64, maximizer string) float64 {
	s.metrics.AddNode()
	if depth >= s.depth || state.Terminal() {
		return s.evaluate(state, maximizer)
	}

	maximizing := state.Player() == maximizer
	value := math.Inf(1)
	if maximizing {
		value = math.Inf(-1)
	}
	for _, move := range state.LegalMoves() {
		child := s.threshold(state.Play(move), depth+1, value, maximizer)
		if maximizing && child > bound {
			s.metrics.AddCutoff()
			return math.Inf(1)
		}
		if !maximizing && child < bound {
			s.metrics.AddCutoff()
			return math.Inf(-1)
		}
		if maximizing {
			value = math.Max(value, child)
		} else {
			value = math.Min(value, child)
		}
	}
	return value
}
