package gamemaster

import (
	"context"
	"errors"
	"testing"
	"time"

	"playground/game"

	"github.com/stretchr/testify/require"
)

/*
Test cases:
- every registered name builds a game, unknown names fail
- equal seeds give equal synthetic states
- sessions: create, move, opponent, lookup failure, destroy
- idle sessions are evicted and closed
*/

func TestNewGame(t *testing.T) {
	t.Run("every game is registered", func(t *testing.T) {
		require.ElementsMatch(t, game.Names, Games())
		for _, name := range game.Names {
			g, err := NewGame(game.Config{Name: name, Seed: 1})
			require.NoError(t, err, name)
			require.Equal(t, name, g.Name())
			require.Equal(t, game.InProgress, g.Status(), name)
			require.NoError(t, g.Close())
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := NewGame(game.Config{Name: "go"})
		require.ErrorIs(t, err, game.ErrUnknownGame)
	})

	t.Run("seed makes generators reproducible", func(t *testing.T) {
		for _, name := range []string{game.Minesweeper, game.Gomoku, game.Sudoku} {
			a, err := NewGame(game.Config{Name: name, Seed: 42})
			require.NoError(t, err)
			b, err := NewGame(game.Config{Name: name, Seed: 42})
			require.NoError(t, err)
			require.Equal(t, a.GenerateRandomState(), b.GenerateRandomState(), name)
		}
	})
}

// stubGame records Close calls and otherwise stays in progress.
type stubGame struct {
	closed bool
	moves  []string
}

func (g *stubGame) Name() string        { return "stub" }
func (g *stubGame) Info() game.Info     { return game.Info{Name: "stub", Rows: 1, Cols: 1} }
func (g *stubGame) Status() game.Status { return game.InProgress }
func (g *stubGame) Board() game.Snapshot {
	return game.Snapshot{Grid: [][]int{{len(g.moves)}}}
}
func (g *stubGame) ApplyMove(text string) (game.Status, error) {
	if text == "bad" {
		return game.InvalidMove, game.NewParseError(text, "bad")
	}
	g.moves = append(g.moves, text)
	return game.InProgress, nil
}
func (g *stubGame) OpponentMove(ctx context.Context) ([]string, error) {
	return []string{"reply"}, nil
}
func (g *stubGame) ValidMoves() []string { return []string{"a", "b"} }
func (g *stubGame) Score() int           { return 10 * len(g.moves) }
func (g *stubGame) GenerateRandomState() game.Snapshot {
	return g.Board()
}
func (g *stubGame) GenerateRuleState() (game.Snapshot, []string) {
	return g.Board(), g.ValidMoves()
}
func (g *stubGame) Close() error {
	g.closed = true
	return nil
}

func TestMaster(t *testing.T) {
	t.Run("real game session", func(t *testing.T) {
		m := NewMaster()
		view, err := m.Create(game.Config{Name: game.TicTacToe, Seed: 3, HumanMark: "X"})
		require.NoError(t, err)
		require.NotEmpty(t, view.ID)
		require.Equal(t, 3, view.Info.Rows)

		status, view, err := m.ApplyMove(view.ID, "B2")
		require.NoError(t, err)
		require.Equal(t, game.InProgress, status)
		require.Equal(t, 1, view.Board.Grid[1][1])

		moves, view, err := m.OpponentMove(context.Background(), view.ID)
		require.NoError(t, err)
		require.Len(t, moves, 1)

		status, _, err = m.ApplyMove(view.ID, "B2")
		require.Equal(t, game.InvalidMove, status)
		require.True(t, errors.Is(err, game.ErrRuleViolation))

		valid, err := m.ValidMoves(view.ID)
		require.NoError(t, err)
		require.Len(t, valid, 7)
		require.NoError(t, m.Destroy(view.ID))
	})

	t.Run("unknown session", func(t *testing.T) {
		m := NewMaster()
		_, err := m.Get("nope")
		require.ErrorIs(t, err, ErrSessionNotFound)
		_, _, err = m.ApplyMove("nope", "A1")
		require.ErrorIs(t, err, ErrSessionNotFound)
		require.ErrorIs(t, m.Destroy("nope"), ErrSessionNotFound)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := NewMaster().Create(game.Config{Name: "go"})
		require.ErrorIs(t, err, game.ErrUnknownGame)
	})

	t.Run("destroy closes the game", func(t *testing.T) {
		stub := &stubGame{}
		m := NewMaster(WithFactory(func(game.Config) (game.Game, error) { return stub, nil }))
		view, err := m.Create(game.Config{})
		require.NoError(t, err)
		_, view, err = m.ApplyMove(view.ID, "x")
		require.NoError(t, err)
		require.Equal(t, 10, view.Score)
		require.NoError(t, m.Destroy(view.ID))
		require.True(t, stub.closed)
		require.Zero(t, m.Len())
	})

	t.Run("idle sessions are evicted", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		var stubs []*stubGame
		m := NewMaster(
			WithTTL(time.Minute),
			WithClock(clock),
			WithFactory(func(game.Config) (game.Game, error) {
				s := &stubGame{}
				stubs = append(stubs, s)
				return s, nil
			}),
		)
		idle, err := m.Create(game.Config{})
		require.NoError(t, err)
		busy, err := m.Create(game.Config{})
		require.NoError(t, err)

		now = now.Add(45 * time.Second)
		_, err = m.Get(busy.ID)
		require.NoError(t, err)

		now = now.Add(30 * time.Second)
		require.Equal(t, 1, m.Evict())
		require.True(t, stubs[0].closed)
		require.False(t, stubs[1].closed)

		_, err = m.Get(idle.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)
		_, err = m.Get(busy.ID)
		require.NoError(t, err)

		m.Shutdown()
		require.True(t, stubs[1].closed)
		require.Zero(t, m.Len())
	})
}
