package searcher

import (
	"math"

	"playground/game"
)

// Each root move is searched with a fresh window. The first move with a
// strictly greater value wins ties.
func (s *Searcher) bestByAlphaBeta(state game.State) game.Move {
	maximizer := state.Player()
	var best game.Move
	bestValue := math.Inf(-1)
	for _, move := range state.LegalMoves() {
		value := s.alphaBeta(state.Play(move), s.depth-1, math.Inf(-1), math.Inf(1), maximizer)
		if best == nil || value > bestValue {
			best, bestValue = move, value
		}
	}
	return best
}

func (s *Searcher) alphaBeta(state game.State, depth int, alpha, beta float64, maximizer string) float64 {
	s.metrics.AddNode()
	if depth <= 0 || state.Terminal() {
		return s.evaluate(state, maximizer)
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return s.evaluate(state, maximizer)
	}

	if state.Player() == maximizer {
		value := math.Inf(-1)
		for _, move := range moves {
			value = math.Max(value, s.alphaBeta(state.Play(move), depth-1, alpha, beta, maximizer))
			alpha = math.Max(alpha, value)
			if alpha >= beta {
				s.metrics.AddCutoff()
				break
			}
		}
		return value
	}

	value := math.Inf(1)
	for _, move := range moves {
		value = math.Min(value, s.alphaBeta(state.Play(move), depth-1, alpha, beta, maximizer))
		beta = math.Min(beta, value)
		if alpha >= beta {
			s.metrics.AddCutoff()
			break
		}
	}
	return value
}
