package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"playground/agent"
	"playground/experiments/metrics"
	"playground/game"
	"playground/meta"

	"github.com/rs/zerolog/log"
)

// searchReporter is implemented by games whose opponent runs a local search.
type searchReporter interface {
	LastSearch() metrics.SearchMetric
}

// Engine plays one game between an agent and the game's own opponent.
type Engine struct {
	game      game.Game
	agent     agent.Agent
	maxTrials int
	maxSteps  int
	retries   int
}

type Option func(*Engine)

func WithMaxTrials(n int) Option {
	return func(e *Engine) {
		e.maxTrials = n
	}
}

func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

func WithOpponentRetries(n int) Option {
	return func(e *Engine) {
		e.retries = n
	}
}

func New(g game.Game, a agent.Agent, opts ...Option) *Engine {
	e := &Engine{
		game:      g,
		agent:     a,
		maxTrials: meta.MAX_TRIALS,
		maxSteps:  meta.MAX_STEPS,
		retries:   meta.OPPONENT_RETRIES,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run plays until the game ends, the agent fails maxTrials times in a row or
// maxSteps attempts are spent. The returned metric carries the final status,
// which is MaxTrialReached or Error when the game did not finish by itself.
// The error is non-nil only for agent or opponent failures.
func (e *Engine) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	start := time.Now()
	result := metrics.GameMetric{Game: e.game.Name(), StartTime: start}
	moves := []metrics.MoveMetric{}

	finish := func(status game.Status, err error) (metrics.GameMetric, []metrics.MoveMetric, error) {
		result.Status = status.String()
		result.Score = e.game.Score()
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(start)
		log.Info().Msgf("%s finished with %s after %d moves (%d invalid), score %d",
			result.Game, result.Status, result.TotalMoves, result.InvalidMoves, result.Score)
		return result, moves, err
	}

	// Games configured with the engine side first open here; the others
	// return no move.
	if _, _, err := e.opponent(ctx); err != nil {
		return finish(game.Error, err)
	}

	// trials counts consecutive rejections; a valid move resets it.
	trials := 0
	feedback := ""
	for step := 1; step <= e.maxSteps && !e.game.Status().IsTerminal(); step++ {
		req := agent.Request{
			Game:     e.game.Name(),
			Info:     e.game.Info(),
			Board:    e.game.Board(),
			Step:     step,
			Feedback: feedback,
			Legal:    e.game.ValidMoves(),
		}
		text, err := e.agent.NextMove(ctx, req)
		if err != nil {
			return finish(game.Error, err)
		}

		status, err := e.game.ApplyMove(text)
		result.TotalMoves++
		record := metrics.MoveMetric{Step: step, Move: text, Status: status.String()}
		if err != nil {
			result.InvalidMoves++
			trials++
			feedback = err.Error()
			moves = append(moves, record)
			log.Debug().Msgf("step %d: %s rejected (%d of %d): %v", step, text, trials, e.maxTrials, err)
			if errors.Is(err, game.ErrTerminalState) {
				break
			}
			if trials >= e.maxTrials {
				return finish(game.MaxTrialReached, nil)
			}
			continue
		}
		trials = 0
		feedback = ""

		if !status.IsTerminal() {
			replies, search, err := e.opponent(ctx)
			if err != nil {
				moves = append(moves, record)
				return finish(game.Error, err)
			}
			record.Opponent = strings.Join(replies, " ")
			record.SearchMetric = search
			record.Status = e.game.Status().String()
		}
		moves = append(moves, record)
	}
	return finish(e.game.Status(), nil)
}

// opponent asks the game for its reply, retrying recoverable engine failures.
func (e *Engine) opponent(ctx context.Context) ([]string, metrics.SearchMetric, error) {
	var err error
	for attempt := 0; attempt <= e.retries; attempt++ {
		var replies []string
		replies, err = e.game.OpponentMove(ctx)
		if err == nil {
			var search metrics.SearchMetric
			if r, ok := e.game.(searchReporter); ok && len(replies) > 0 {
				search = r.LastSearch()
			}
			return replies, search, nil
		}
		if !errors.Is(err, game.ErrEngineFailure) {
			break
		}
		log.Warn().Err(err).Msgf("opponent failed, attempt %d of %d", attempt+1, e.retries+1)
	}
	return nil, metrics.SearchMetric{}, err
}
