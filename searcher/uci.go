package searcher

import (
	"context"
	"fmt"
	"time"

	"playground/game"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog/log"
)

// replyGrace is added to the move time before a silent engine is abandoned.
const replyGrace = 500 * time.Millisecond

// UCIEngine drives an external engine over the UCI text protocol. The process
// is started on first use and kept until Close.
type UCIEngine struct {
	path string
	eng  *uci.Engine
}

func NewUCIEngine(path string) *UCIEngine {
	return &UCIEngine{path: path}
}

func (e *UCIEngine) start() error {
	eng, err := uci.New(e.path)
	if err != nil {
		return fmt.Errorf("%w: cannot start %s: %v", game.ErrEngineFailure, e.path, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		_ = eng.Close()
		return fmt.Errorf("%w: handshake with %s failed: %v", game.ErrEngineFailure, e.path, err)
	}
	log.Info().Str("engine", e.path).Msg("chess engine started")
	e.eng = eng
	return nil
}

type uciResult struct {
	move *chess.Move
	err  error
}

// BestMove asks the engine for a reply within moveTime. A crash or a missing
// reply is reported as game.ErrEngineFailure and the process is discarded, so
// a later call starts a fresh one.
func (e *UCIEngine) BestMove(ctx context.Context, pos *chess.Position, moveTime time.Duration) (*chess.Move, error) {
	if e.eng == nil {
		if err := e.start(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, moveTime+replyGrace)
	defer cancel()

	eng := e.eng
	done := make(chan uciResult, 1)
	go func() {
		if err := eng.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{MoveTime: moveTime}); err != nil {
			done <- uciResult{err: err}
			return
		}
		done <- uciResult{move: eng.SearchResults().BestMove}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			e.discard()
			return nil, fmt.Errorf("%w: %v", game.ErrEngineFailure, r.err)
		}
		if r.move == nil {
			return nil, fmt.Errorf("%w: engine returned no move", game.ErrEngineFailure)
		}
		return r.move, nil
	case <-ctx.Done():
		e.discard()
		return nil, fmt.Errorf("%w: no reply within %v: %v", game.ErrEngineFailure, moveTime, ctx.Err())
	}
}

func (e *UCIEngine) discard() {
	if e.eng == nil {
		return
	}
	if err := e.eng.Close(); err != nil {
		log.Warn().Err(err).Str("engine", e.path).Msg("closing chess engine")
	}
	e.eng = nil
}

// Close stops the engine process if one is running.
func (e *UCIEngine) Close() error {
	if e.eng == nil {
		return nil
	}
	err := e.eng.Close()
	e.eng = nil
	if err != nil {
		return fmt.Errorf("cannot stop chess engine: %w", err)
	}
	log.Info().Str("engine", e.path).Msg("chess engine stopped")
	return nil
}
