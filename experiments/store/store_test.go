package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"playground/experiments/metrics"

	"github.com/stretchr/testify/require"
)

func open(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "results.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func game(name, status string, score, invalid int) metrics.GameMetric {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return metrics.GameMetric{
		Game: name, Status: status, Score: score, TotalMoves: 5, InvalidMoves: invalid,
		StartTime: start, EndTime: start.Add(2 * time.Second), Duration: 2 * time.Second,
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("games and moves round trip", func(t *testing.T) {
		s, _ := open(t)
		moves := []metrics.MoveMetric{
			{Step: 2, Move: "A1", Status: "INVALID_MOVE"},
			{Step: 1, Move: "B2", Status: "IN_PROGRESS", Opponent: "A1",
				SearchMetric: metrics.SearchMetric{Algorithm: "minimax", Nodes: 7, Cutoffs: 1}},
		}
		id, err := s.SaveGame(ctx, "run-1", "random", game("tictactoe", "LOSE", 20, 1), moves)
		require.NoError(t, err)

		stored, err := s.Moves(ctx, id)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		require.Equal(t, "B2", stored[0].Move)
		require.Equal(t, 7, stored[0].Nodes)
		require.Equal(t, "minimax", stored[0].Algorithm)
		require.Equal(t, "INVALID_MOVE", stored[1].Status)
	})

	t.Run("summary groups by game within a run", func(t *testing.T) {
		s, _ := open(t)
		for _, g := range []metrics.GameMetric{
			game("reversi", "WIN", 1000, 0),
			game("reversi", "LOSE", 100, 2),
			game("gomoku", "TIE", 500, 1),
		} {
			_, err := s.SaveGame(ctx, "run-1", "remote", g, nil)
			require.NoError(t, err)
		}
		_, err := s.SaveGame(ctx, "run-2", "remote", game("reversi", "WIN", 9, 0), nil)
		require.NoError(t, err)

		summary, err := s.Summarize(ctx, "run-1")
		require.NoError(t, err)
		require.Equal(t, []Summary{
			{Game: "gomoku", Played: 1, Ties: 1, MeanScore: 500, InvalidMoves: 1},
			{Game: "reversi", Played: 2, Wins: 1, MeanScore: 550, InvalidMoves: 2},
		}, summary)
	})

	t.Run("reopening skips applied migrations", func(t *testing.T) {
		s, path := open(t)
		_, err := s.SaveGame(ctx, "run-1", "random", game("sudoku", "WIN", 1000, 0), nil)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		again, err := Open(path)
		require.NoError(t, err)
		defer again.Close()
		summary, err := again.Summarize(ctx, "run-1")
		require.NoError(t, err)
		require.Len(t, summary, 1)
	})
}
