package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrently", func(t *testing.T) {
		c := NewCollector()
		c.Start("alphabeta", 3)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					c.AddNode()
				}
				c.AddCutoff()
			}()
		}
		wg.Wait()
		m := c.Complete()
		require.Equal(t, "alphabeta", m.Algorithm)
		require.Equal(t, 3, m.Depth)
		require.Equal(t, 800, m.Nodes)
		require.Equal(t, 8, m.Cutoffs)
	})

	t.Run("start resets the counters", func(t *testing.T) {
		c := NewCollector()
		c.Start("minimax", 0)
		c.AddNode()
		c.Start("minimax", 0)
		require.Zero(t, c.Complete().Nodes)
	})

	t.Run("dummy collects nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("minimax", 0)
		c.AddNode()
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "evaluate")
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, w.WriteGameRecords([]GameRecord{{
		ID:    1,
		Agent: "random",
		GameMetric: GameMetric{
			Game: "tictactoe", Status: "LOSE", Score: 30, TotalMoves: 3,
			StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second,
		},
	}}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{{
		Game: 1,
		MoveMetric: MoveMetric{
			Step: 1, Move: "B2", Status: "IN_PROGRESS", Opponent: "A1",
			SearchMetric: SearchMetric{Algorithm: "minimax", Nodes: 59704},
		},
	}}))

	games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, games, 2)
	require.Equal(t, []string{"1", "random", "tictactoe", "LOSE", "30", "3", "0",
		"2024-05-01T10:00:00Z", "2024-05-01T10:00:01Z", "1s"}, games[1])

	moves := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, moves, 2)
	require.Equal(t, "59704", moves[1][7])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
