package sudoku

import "golang.org/x/exp/rand"

const (
	Size  = 9
	Box   = 3
	Empty = 0
)

type grid9 [Size][Size]int

// allows reports whether digit can go at (row, col) without repeating in the
// row, column or box. The cell itself is ignored.
func (g *grid9) allows(row, col, digit int) bool {
	for i := 0; i < Size; i++ {
		if (i != col && g[row][i] == digit) || (i != row && g[i][col] == digit) {
			return false
		}
	}
	r0, c0 := row/Box*Box, col/Box*Box
	for r := r0; r < r0+Box; r++ {
		for c := c0; c < c0+Box; c++ {
			if (r != row || c != col) && g[r][c] == digit {
				return false
			}
		}
	}
	return true
}

func (g *grid9) firstEmpty() (int, int, bool) {
	for i := 0; i < Size*Size; i++ {
		if g[i/Size][i%Size] == Empty {
			return i / Size, i % Size, true
		}
	}
	return 0, 0, false
}

// fill completes g with a random valid solution by backtracking over
// shuffled digits.
func (g *grid9) fill(rng *rand.Rand) bool {
	row, col, ok := g.firstEmpty()
	if !ok {
		return true
	}
	digits := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng.Shuffle(len(digits), func(i, j int) { digits[i], digits[j] = digits[j], digits[i] })
	for _, d := range digits {
		if g.allows(row, col, d) {
			g[row][col] = d
			if g.fill(rng) {
				return true
			}
		}
	}
	g[row][col] = Empty
	return false
}

// countSolutions counts completions of g, stopping once limit is reached.
func (g grid9) countSolutions(limit int) int {
	row, col, ok := g.firstEmpty()
	if !ok {
		return 1
	}
	count := 0
	for d := 1; d <= Size; d++ {
		if !g.allows(row, col, d) {
			continue
		}
		g[row][col] = d
		count += g.countSolutions(limit - count)
		if count >= limit {
			break
		}
	}
	return count
}

// carve removes random clues from a solved grid while the puzzle keeps a
// unique solution. It gives up after attempts removals that would break
// uniqueness.
func carve(solution grid9, attempts int, rng *rand.Rand) grid9 {
	puzzle := solution
	for attempts > 0 {
		var filled [][2]int
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if puzzle[r][c] != Empty {
					filled = append(filled, [2]int{r, c})
				}
			}
		}
		if len(filled) == 0 {
			break
		}
		cell := filled[rng.Intn(len(filled))]
		backup := puzzle[cell[0]][cell[1]]
		puzzle[cell[0]][cell[1]] = Empty
		if puzzle.countSolutions(2) != 1 {
			puzzle[cell[0]][cell[1]] = backup
			attempts--
		}
	}
	return puzzle
}
