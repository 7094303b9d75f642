package game

// Snapshot is a read-only copy of a board handed to renderers and
// annotation consumers. Mutating it never affects the game it came from.
type Snapshot struct {
	Grid [][]int `json:"grid"`
	FEN  string  `json:"fen,omitempty"`
}

func NewGrid(rows, cols, fill int) [][]int {
	grid := make([][]int, rows)
	for i := range grid {
		grid[i] = make([]int, cols)
		if fill != 0 {
			for j := range grid[i] {
				grid[i][j] = fill
			}
		}
	}
	return grid
}

func CopyGrid(grid [][]int) [][]int {
	out := make([][]int, len(grid))
	for i, row := range grid {
		out[i] = append([]int(nil), row...)
	}
	return out
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{Grid: CopyGrid(s.Grid), FEN: s.FEN}
}

// Count returns how many cells hold value.
func (s Snapshot) Count(value int) int {
	n := 0
	for _, row := range s.Grid {
		for _, v := range row {
			if v == value {
				n++
			}
		}
	}
	return n
}
