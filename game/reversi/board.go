package reversi

import "playground/game"

const (
	Size  = 8
	Empty = 0
	Black = 1
	White = 2
)

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

type board [Size][Size]int

// newBoard returns the starting position with the four centre discs.
func newBoard() board {
	var b board
	mid := Size / 2
	b[mid-1][mid-1], b[mid][mid] = White, White
	b[mid-1][mid], b[mid][mid-1] = Black, Black
	return b
}

func opponent(color int) int {
	if color == Black {
		return White
	}
	return Black
}

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// flips returns the discs that would turn if color played at (row, col).
func (b *board) flips(row, col, color int) [][2]int {
	if b[row][col] != Empty {
		return nil
	}
	var total [][2]int
	for _, d := range directions {
		var line [][2]int
		r, c := row+d[0], col+d[1]
		for inBounds(r, c) && b[r][c] == opponent(color) {
			line = append(line, [2]int{r, c})
			r, c = r+d[0], c+d[1]
		}
		if inBounds(r, c) && b[r][c] == color && len(line) > 0 {
			total = append(total, line...)
		}
	}
	return total
}

// moves lists the legal placements of color in row-major order.
func (b *board) moves(color int) []move {
	var moves []move
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if len(b.flips(row, col, color)) > 0 {
				moves = append(moves, move{row: row, col: col})
			}
		}
	}
	return moves
}

func (b *board) canMove(color int) bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if len(b.flips(row, col, color)) > 0 {
				return true
			}
		}
	}
	return false
}

// place puts a disc and turns every flanked opponent disc.
func (b *board) place(row, col, color int) {
	for _, f := range b.flips(row, col, color) {
		b[f[0]][f[1]] = color
	}
	b[row][col] = color
}

func (b *board) count(color int) int {
	n := 0
	for row := range b {
		for col := range b[row] {
			if b[row][col] == color {
				n++
			}
		}
	}
	return n
}

func (b *board) over() bool {
	return !b.canMove(Black) && !b.canMove(White)
}

func (b *board) grid() [][]int {
	g := game.NewGrid(Size, Size, Empty)
	for row := range b {
		copy(g[row], b[row][:])
	}
	return g
}

type move struct {
	row, col int
	pass     bool
}

func (m move) String() string {
	if m.pass {
		return "pass"
	}
	return grid.Format(m.row, m.col)
}

var colorNames = map[int]string{Black: "black", White: "white"}

// state is the searchable view of a position. A side without a legal
// placement has a single pass move.
type state struct {
	cells  board
	toMove int
}

func (s state) Player() string {
	return colorNames[s.toMove]
}

func (s state) LegalMoves() []game.Move {
	if s.cells.over() {
		return nil
	}
	placements := s.cells.moves(s.toMove)
	if len(placements) == 0 {
		return []game.Move{move{pass: true}}
	}
	moves := make([]game.Move, len(placements))
	for i, m := range placements {
		moves[i] = m
	}
	return moves
}

func (s state) Play(m game.Move) game.State {
	mv := m.(move)
	next := state{cells: s.cells, toMove: opponent(s.toMove)}
	if !mv.pass {
		next.cells.place(mv.row, mv.col, s.toMove)
	}
	return next
}

func (s state) Terminal() bool {
	return s.cells.over()
}

// evaluate is the disc differential seen by player.
func evaluate(s game.State, player string) float64 {
	cells := s.(state).cells
	v := float64(cells.count(White) - cells.count(Black))
	if player == colorNames[Black] {
		return -v
	}
	return v
}
