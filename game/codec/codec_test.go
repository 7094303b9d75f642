package codec

import (
	"errors"
	"testing"

	"playground/game"

	"github.com/stretchr/testify/require"
)

func TestGridParse(t *testing.T) {
	grid := NewGrid(15, 15)

	t.Run("both orderings parse to the same coordinate", func(t *testing.T) {
		r1, c1, err := grid.Parse("H8")
		require.NoError(t, err)
		r2, c2, err := grid.Parse("8H")
		require.NoError(t, err)
		require.Equal(t, 7, r1)
		require.Equal(t, 7, c1)
		require.Equal(t, r1, r2)
		require.Equal(t, c1, c2)
	})

	t.Run("case and whitespace are ignored", func(t *testing.T) {
		row, col, err := grid.Parse("  o 15 ")
		require.NoError(t, err)
		require.Equal(t, 14, row)
		require.Equal(t, 14, col)
	})

	t.Run("out of range coordinates are parse errors", func(t *testing.T) {
		for _, text := range []string{"P1", "A0", "A16", "", "AA", "11", "A1B"} {
			_, _, err := grid.Parse(text)
			require.Error(t, err, text)
			require.True(t, errors.Is(err, game.ErrParse), text)
		}
	})

	t.Run("format then parse is the identity on every cell", func(t *testing.T) {
		for row := 0; row < grid.Rows(); row++ {
			for col := 0; col < grid.Cols(); col++ {
				gotRow, gotCol, err := grid.Parse(grid.Format(row, col))
				require.NoError(t, err)
				require.Equal(t, row, gotRow)
				require.Equal(t, col, gotCol)
			}
		}
	})
}

func TestExtractMovement(t *testing.T) {
	tests := []struct {
		name string
		game string
		raw  string
		want string
	}{
		{"movement line", game.TicTacToe, "I think B2 is strong.\nMovement: A3", "A3"},
		{"reversed ordering", game.Reversi, "Movement: 4d", "4d"},
		{"two digit gomoku column", game.Gomoku, "Movement: H15", "H15"},
		{"sudoku digit", game.Sudoku, "Movement: C4 7", "C4 7"},
		{"chess castling", game.Chess, "Movement: O-O-O", "O-O-O"},
		{"chess promotion", game.Chess, "Movement: exd8=Q+", "exd8=Q+"},
		{"no movement line falls back to the whole text", game.Minesweeper, "reveal b5 please", "b5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractMovement(tt.game, tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown game", func(t *testing.T) {
		_, err := ExtractMovement("go", "Movement: A1")
		require.ErrorIs(t, err, game.ErrUnknownGame)
	})

	t.Run("nothing recognisable", func(t *testing.T) {
		_, err := ExtractMovement(game.TicTacToe, "I pass")
		require.ErrorIs(t, err, game.ErrParse)
	})
}
