package tictactoe

import (
	"context"
	"testing"

	"playground/game"
	"playground/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newGame(t *testing.T, cfg game.Config) *Game {
	t.Helper()
	g, err := New(cfg, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	return g
}

// parseBoard reads rows such as "XO_" into a board.
func parseBoard(rows ...string) board {
	b := emptyBoard()
	for r, row := range rows {
		for c, ch := range row {
			switch ch {
			case 'X':
				b[r*3+c] = X
			case 'O':
				b[r*3+c] = O
			}
		}
	}
	return b
}

func TestApplyMove(t *testing.T) {
	t.Run("legal move is placed for the human", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O"})
		status, err := g.ApplyMove("b2")
		require.NoError(t, err)
		require.Equal(t, game.InProgress, status)
		require.Equal(t, O, g.Board().Grid[1][1])
	})

	t.Run("reversed coordinate order is accepted", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "X"})
		_, err := g.ApplyMove("3A")
		require.NoError(t, err)
		require.Equal(t, X, g.Board().Grid[0][2])
	})

	t.Run("occupied cell is rejected without touching the board", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O"})
		g.cells = parseBoard("X__", "___", "___")
		before := g.Board()

		status, err := g.ApplyMove("A1")
		require.Equal(t, game.InvalidMove, status)
		require.ErrorIs(t, err, game.ErrRuleViolation)
		require.Equal(t, before, g.Board())
		require.Equal(t, game.InProgress, g.Status())
	})

	t.Run("malformed text is a parse error", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O"})
		for _, text := range []string{"D1", "A4", "center", ""} {
			status, err := g.ApplyMove(text)
			require.Equal(t, game.InvalidMove, status, text)
			require.ErrorIs(t, err, game.ErrParse, text)
		}
	})

	t.Run("moves after the end are refused with the terminal status", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O"})
		g.cells = parseBoard("OO_", "XX_", "___")
		status, err := g.ApplyMove("A3")
		require.NoError(t, err)
		require.Equal(t, game.Win, status)

		status, err = g.ApplyMove("C3")
		require.Equal(t, game.Win, status)
		require.ErrorIs(t, err, game.ErrTerminalState)
	})

	t.Run("human cannot move twice in a row", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O"})
		_, err := g.ApplyMove("A1")
		require.NoError(t, err)
		status, err := g.ApplyMove("A2")
		require.Equal(t, game.InvalidMove, status)
		require.ErrorIs(t, err, game.ErrRuleViolation)
	})
}

func TestOpponentMove(t *testing.T) {
	ctx := context.Background()

	t.Run("engine completes its own line", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O", EngineFirst: true})
		g.cells = parseBoard("XX_", "OO_", "___")
		moves, err := g.OpponentMove(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"A3"}, moves)
		require.Equal(t, game.Lose, g.Status())
	})

	t.Run("engine blocks the human's line", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O", EngineFirst: true})
		g.cells = parseBoard("OO_", "X__", "___")
		moves, err := g.OpponentMove(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"A3"}, moves)
	})

	t.Run("engine takes the double threat from the reference position", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O", EngineFirst: true})
		g.cells = parseBoard("XO_", "_X_", "__O")
		moves, err := g.OpponentMove(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"B1"}, moves)
		require.Positive(t, g.LastSearch().Nodes)
	})

	t.Run("no move when it is the human's turn", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "O"})
		moves, err := g.OpponentMove(ctx)
		require.NoError(t, err)
		require.Empty(t, moves)
	})
}

func TestMinimaxIsUnbeatable(t *testing.T) {
	s := searcher.NewMinimax(searcher.WithEvaluationFn(evaluate))
	for _, engine := range []int{X, O} {
		human := other(engine)
		var explore func(cells board, toMove int)
		explore = func(cells board, toMove int) {
			require.NotEqual(t, human, cells.winner(), "human won on %v", cells)
			if (state{cells: cells}).Terminal() {
				return
			}
			if toMove == engine {
				m, _ := s.FindNextMove(state{cells: cells, toMove: engine})
				cells[int(m.(move))] = engine
				explore(cells, human)
				return
			}
			for _, i := range cells.empties() {
				next := cells
				next[i] = human
				explore(next, engine)
			}
		}
		explore(emptyBoard(), engine)
		explore(emptyBoard(), human)
	}
}

func TestGenerators(t *testing.T) {
	t.Run("random state holds three of each mark", func(t *testing.T) {
		g := newGame(t, game.Config{HumanMark: "X"})
		snapshot := g.GenerateRandomState()
		require.Equal(t, 3, snapshot.Count(X))
		require.Equal(t, 3, snapshot.Count(O))
		require.Equal(t, 3, snapshot.Count(Empty))
	})

	t.Run("rule state is unfinished with the human to move", func(t *testing.T) {
		for _, mark := range []string{"X", "O"} {
			g := newGame(t, game.Config{HumanMark: mark})
			for i := 0; i < 50; i++ {
				snapshot, moves := g.GenerateRuleState()
				require.Equal(t, game.InProgress, g.Status())
				require.Len(t, moves, snapshot.Count(Empty))
				diff := snapshot.Count(X) - snapshot.Count(O)
				if mark == "X" {
					require.Equal(t, 0, diff)
				} else {
					require.Equal(t, 1, diff)
				}
				for _, m := range moves {
					row, col, err := grid.Parse(m)
					require.NoError(t, err)
					require.Equal(t, Empty, snapshot.Grid[row][col])
				}
			}
		}
	})
}

func TestScore(t *testing.T) {
	g := newGame(t, game.Config{HumanMark: "O"})
	g.cells = parseBoard("OO_", "XX_", "___")
	g.history = []game.Record{{Human: true, Move: "A1"}, {Move: "B1"}, {Human: true, Move: "A2"}, {Move: "B2"}}
	_, err := g.ApplyMove("A3")
	require.NoError(t, err)
	require.Equal(t, 3*10+50, g.Score())
}
