package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"playground/agent"
	"playground/experiments/store"
	"playground/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func randomAgent(seed uint64) agent.Agent {
	return agent.NewRandom(rand.New(rand.NewSource(seed)))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("records every round", func(t *testing.T) {
		dir := t.TempDir()
		db, err := store.Open(filepath.Join(dir, "results.db"))
		require.NoError(t, err)
		defer db.Close()

		result, err := Run(ctx, Evaluation{
			Name:      "smoke",
			AgentName: "random",
			Games:     []string{game.TicTacToe, game.Minesweeper},
			Rounds:    3,
			Seed:      5,
			Parallel:  2,
			NewAgent:  randomAgent,
			OutputDir: dir,
			Store:     db,
		})
		require.NoError(t, err)
		require.Len(t, result.Games, 6)
		for i, g := range result.Games {
			require.Equal(t, i+1, g.ID)
			require.Equal(t, "random", g.Agent)
		}
		for _, g := range result.Games[:3] {
			require.Equal(t, game.TicTacToe, g.Game)
			require.NotEqual(t, "WIN", g.Status)
		}

		summary, err := db.Summarize(ctx, "smoke")
		require.NoError(t, err)
		require.Len(t, summary, 2)
		require.Equal(t, 3, summary[0].Played)

		runs, err := os.ReadDir(filepath.Join(dir, "smoke"))
		require.NoError(t, err)
		require.Len(t, runs, 1)
		_, err = os.Stat(filepath.Join(dir, "smoke", runs[0].Name(), "game_records.csv"))
		require.NoError(t, err)
	})

	t.Run("agent failures are recorded", func(t *testing.T) {
		result, err := Run(ctx, Evaluation{
			Games:    []string{game.Sudoku},
			Rounds:   2,
			Seed:     1,
			NewAgent: func(uint64) agent.Agent { return agent.NewScripted() },
		})
		require.NoError(t, err)
		require.Len(t, result.Games, 2)
		for _, g := range result.Games {
			require.Equal(t, game.Error.String(), g.Status)
		}
	})

	t.Run("invalid moves hit the trial limit", func(t *testing.T) {
		result, err := Run(ctx, Evaluation{
			Games:     []string{game.Gomoku},
			Rounds:    1,
			Seed:      1,
			MaxTrials: 2,
			NewAgent:  func(uint64) agent.Agent { return agent.NewScripted("Z99") },
		})
		require.NoError(t, err)
		require.Equal(t, game.MaxTrialReached.String(), result.Games[0].Status)
		require.Len(t, result.Moves, 2)
	})

	t.Run("unknown game aborts", func(t *testing.T) {
		_, err := Run(ctx, Evaluation{Games: []string{"go"}, Rounds: 1, NewAgent: randomAgent})
		require.ErrorIs(t, err, game.ErrUnknownGame)
	})
}
