package searcher

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"playground/game"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

func TestUCIEngine(t *testing.T) {
	t.Run("missing binary is an engine failure", func(t *testing.T) {
		e := NewUCIEngine("/nonexistent/stockfish")
		defer e.Close()

		_, err := e.BestMove(context.Background(), chess.NewGame().Position(), 100*time.Millisecond)
		require.ErrorIs(t, err, game.ErrEngineFailure)
	})

	t.Run("replies to e4 with a legal black move within the budget", func(t *testing.T) {
		path, err := exec.LookPath("stockfish")
		if err != nil {
			t.Skip("stockfish is not installed")
		}
		e := NewUCIEngine(path)
		defer e.Close()

		g := chess.NewGame()
		require.NoError(t, g.MoveStr("e4"))

		start := time.Now()
		move, err := e.BestMove(context.Background(), g.Position(), time.Second)
		require.NoError(t, err)
		require.Less(t, time.Since(start), time.Second+replyGrace)
		require.NoError(t, g.Move(move), "engine reply should be legal")
	})
}
