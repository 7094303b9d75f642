package gomoku

import "playground/game"

const (
	Size  = 15
	Empty = 0
	Black = 1
	White = 2
)

// directions come in opposite pairs so that entries 2k and 2k+1 share an axis.
var directions = [8][2]int{{-1, 0}, {1, 0}, {-1, 1}, {1, -1}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}}

// forward lists one direction per axis for the gapped-four patterns.
var forward = [4][2]int{{1, 0}, {1, -1}, {0, 1}, {1, 1}}

type board [Size][Size]int

func inBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

func opponent(color int) int {
	return 3 - color
}

// five reports whether the stone at (row, col) is part of five or more in a line.
func (b *board) five(row, col int) bool {
	color := b[row][col]
	if color == Empty {
		return false
	}
	for axis := 0; axis < 4; axis++ {
		count := 1
		for _, d := range directions[2*axis : 2*axis+2] {
			r, c := row+d[0], col+d[1]
			for inBounds(r, c) && b[r][c] == color {
				count++
				r, c = r+d[0], c+d[1]
			}
		}
		if count >= 5 {
			return true
		}
	}
	return false
}

func (b *board) full() bool {
	for row := range b {
		for col := range b[row] {
			if b[row][col] == Empty {
				return false
			}
		}
	}
	return true
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

// isolated reports whether no stone lies within two steps of (row, col)
// along any of the eight directions.
func (b *board) isolated(row, col int) bool {
	for _, d := range directions {
		r, c := row, col
		for step := 0; step < 2; step++ {
			r, c = r+d[0], c+d[1]
			if !inBounds(r, c) {
				break
			}
			if b[r][c] != Empty {
				return false
			}
		}
	}
	return true
}

func (b *board) grid() [][]int {
	g := game.NewGrid(Size, Size, Empty)
	for row := range b {
		copy(g[row], b[row][:])
	}
	return g
}

// evaluate is the hand-tuned pattern heuristic for color. Every stone scores
// each axis by run length and open ends, and on every axis pass it also
// scores gapped fours and contact with enemy stones along the forward
// directions.
func (b *board) evaluate(color int) int {
	value := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] != color {
				continue
			}
			for axis := 0; axis < 4; axis++ {
				value += b.runValue(row, col, axis, color)
				value += b.patternValue(row, col, color)
			}
		}
	}
	return value
}

func (b *board) runValue(row, col, axis, color int) int {
	count := 1
	ends := make([]int, 0, 2)
	for _, d := range directions[2*axis : 2*axis+2] {
		r, c := row, col
		for step := 0; step < 4; step++ {
			if !inBounds(r+d[0], c+d[1]) {
				ends = append(ends, opponent(color))
				break
			}
			r, c = r+d[0], c+d[1]
			if b[r][c] != color {
				ends = append(ends, b[r][c])
				break
			}
			count++
		}
	}
	if count >= 5 {
		return 200000
	}
	open := ends[0] == Empty && ends[1] == Empty
	half := (ends[0] == Empty && ends[1] == opponent(color)) || (ends[0] == opponent(color) && ends[1] == Empty)
	switch {
	case count == 4 && open:
		return 70000
	case count == 4 && half:
		return 1000
	case (count == 3 || count == 2) && open:
		return 1000
	case (count == 3 || count == 2) && half:
		return 150
	}
	return 0
}

func (b *board) patternValue(row, col, color int) int {
	value := 0
	for _, d := range forward {
		r, c := row, col
		cells := []int{b[r][c]}
		for i := 0; i < 4; i++ {
			if i == 1 && len(cells) == 2 && cells[0] != cells[1] && cells[0] != Empty && cells[1] != Empty {
				value += 10
			}
			if !inBounds(r+d[0], c+d[1]) {
				break
			}
			r, c = r+d[0], c+d[1]
			cells = append(cells, b[r][c])
		}
		if len(cells) != 5 {
			continue
		}
		empties, own := 0, 0
		for _, v := range cells {
			switch v {
			case Empty:
				empties++
			case color:
				own++
			}
		}
		if empties != 1 || own != 4 {
			continue
		}
		if cells[1] == Empty || cells[3] == Empty {
			value += 3000
		}
		if cells[2] == Empty {
			value += 2600
		}
	}
	return value
}
