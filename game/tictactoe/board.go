package tictactoe

import "playground/game"

// Cell values as they appear in snapshots.
const (
	Empty = -1
	O     = 0
	X     = 1
)

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

type board [9]int

func emptyBoard() board {
	var b board
	for i := range b {
		b[i] = Empty
	}
	return b
}

// winner returns the mark completing a line, or Empty.
func (b board) winner() int {
	for _, line := range lines {
		if b[line[0]] != Empty && b[line[0]] == b[line[1]] && b[line[1]] == b[line[2]] {
			return b[line[0]]
		}
	}
	return Empty
}

func (b board) full() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

func (b board) empties() []int {
	cells := []int{}
	for i, cell := range b {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

func (b board) count(mark int) int {
	n := 0
	for _, cell := range b {
		if cell == mark {
			n++
		}
	}
	return n
}

func (b board) grid() [][]int {
	g := game.NewGrid(3, 3, Empty)
	for i, cell := range b {
		g[i/3][i%3] = cell
	}
	return g
}

func markName(mark int) string {
	if mark == X {
		return "X"
	}
	return "O"
}

func other(mark int) int {
	return 1 - mark
}

type move int

func (m move) String() string {
	return grid.Format(int(m)/3, int(m)%3)
}

// state is the searchable view of a position.
type state struct {
	cells  board
	toMove int
}

func (s state) Player() string {
	return markName(s.toMove)
}

func (s state) LegalMoves() []game.Move {
	if s.Terminal() {
		return nil
	}
	moves := []game.Move{}
	for _, i := range s.cells.empties() {
		moves = append(moves, move(i))
	}
	return moves
}

func (s state) Play(m game.Move) game.State {
	cells := s.cells
	cells[m.(move)] = s.toMove
	return state{cells: cells, toMove: other(s.toMove)}
}

func (s state) Terminal() bool {
	return s.cells.winner() != Empty || s.cells.full()
}

// evaluate scores finished boards only: +10 for a win, -10 for a loss.
func evaluate(s game.State, player string) float64 {
	w := s.(state).cells.winner()
	switch {
	case w == Empty:
		return 0
	case markName(w) == player:
		return 10
	default:
		return -10
	}
}
