package searcher

import (
	"math"

	"playground/experiments/metrics"
	"playground/game"

	"github.com/rs/zerolog/log"
)

type Algorithm string

const (
	// Minimax explores the whole tree unless a depth is set.
	Minimax Algorithm = "minimax"
	// AlphaBeta is depth-limited minimax with alpha-beta pruning.
	AlphaBeta Algorithm = "alphabeta"
	// Threshold is a shallow search where each node only receives the best
	// value found so far by its parent. A child that beats it on the wrong
	// side returns an infinite sentinel and the sibling loop stops.
	Threshold Algorithm = "threshold"
)

// Unlimited disables the depth limit of a minimax search.
const Unlimited = 0

type Option func(s *Searcher)

func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *Searcher) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = metrics.NewCollector()
	}
}

// Searcher picks a move for the player to move in a game.State. States are
// never mutated: every recursion works on the copy returned by Play.
type Searcher struct {
	algorithm Algorithm
	depth     int
	evaluate  game.Evaluate
	metrics   metrics.Collector
}

func newSearcher(algorithm Algorithm, depth int, options ...Option) *Searcher {
	s := &Searcher{ // Default values
		algorithm: algorithm,
		depth:     depth,
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	if s.evaluate == nil {
		panic("Must specify an evaluation function")
	}
	return s
}

func NewMinimax(options ...Option) *Searcher {
	return newSearcher(Minimax, Unlimited, options...)
}

func NewAlphaBeta(depth int, options ...Option) *Searcher {
	if depth <= 0 {
		panic("alpha-beta search needs a positive depth")
	}
	return newSearcher(AlphaBeta, depth, options...)
}

func NewThreshold(depth int, options ...Option) *Searcher {
	if depth <= 0 {
		panic("threshold search needs a positive depth")
	}
	return newSearcher(Threshold, depth, options...)
}

func (s *Searcher) Algorithm() Algorithm {
	return s.algorithm
}

func (s *Searcher) Depth() int {
	return s.depth
}

// FindNextMove returns the best move for state.Player(), or nil when the
// state is terminal or has no legal moves.
func (s *Searcher) FindNextMove(state game.State) (game.Move, metrics.SearchMetric) {
	s.metrics.Start(string(s.algorithm), s.depth)
	if state.Terminal() {
		return nil, s.metrics.Complete()
	}

	var best game.Move
	switch s.algorithm {
	case Minimax:
		best = s.bestByMinimax(state)
	case AlphaBeta:
		best = s.bestByAlphaBeta(state)
	case Threshold:
		best = s.bestByThreshold(state)
	default:
		panic("Unexpected search algorithm")
	}

	metric := s.metrics.Complete()
	log.Debug().Msgf("%s search picked %v after %d nodes in %v", s.algorithm, best, metric.Nodes, metric.Duration)
	return best, metric
}

// The first move with a strictly greater value wins ties.
func (s *Searcher) bestByMinimax(state game.State) game.Move {
	maximizer := state.Player()
	var best game.Move
	bestValue := math.Inf(-1)
	for _, move := range state.LegalMoves() {
		value := s.minimax(state.Play(move), 1, maximizer)
		if best == nil || value > bestValue {
			best, bestValue = move, value
		}
	}
	return best
}

func (s *Searcher) minimax(state game.State, depth int, maximizer string) float64 {
	s.metrics.AddNode()
	if state.Terminal() || (s.depth != Unlimited && depth >= s.depth) {
		return s.evaluate(state, maximizer)
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return s.evaluate(state, maximizer)
	}

	maximizing := state.Player() == maximizer
	value := math.Inf(1)
	if maximizing {
		value = math.Inf(-1)
	}
	for _, move := range moves {
		child := s.minimax(state.Play(move), depth+1, maximizer)
		if maximizing {
			value = math.Max(value, child)
		} else {
			value = math.Min(value, child)
		}
	}
	return value
}
