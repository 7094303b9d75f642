// Package codec converts between canonical move text and board coordinates.
// Coordinates are written as a row letter followed by a 1-based column number
// ("H8"); the reversed order ("8H"), lower case and stray whitespace are
// accepted on input.
package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"playground/game"
)

var coordinate = regexp.MustCompile(`^(?:([A-Z])([0-9]{1,2})|([0-9]{1,2})([A-Z]))$`)

type Grid struct {
	rows int
	cols int
}

func NewGrid(rows, cols int) Grid {
	if rows < 1 || rows > 26 || cols < 1 || cols > 99 {
		panic(fmt.Sprintf("unsupported grid %dx%d", rows, cols))
	}
	return Grid{rows: rows, cols: cols}
}

func (g Grid) Rows() int { return g.rows }
func (g Grid) Cols() int { return g.cols }

// Parse returns the zero-based row and column of text.
func (g Grid) Parse(text string) (row, col int, err error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(text), ""))
	match := coordinate.FindStringSubmatch(normalized)
	if match == nil {
		return 0, 0, game.NewParseError(text, "expected a row letter and a column number")
	}
	letter, number := match[1], match[2]
	if letter == "" {
		letter, number = match[4], match[3]
	}
	row = int(letter[0] - 'A')
	n, _ := strconv.Atoi(number)
	col = n - 1
	if row >= g.rows || col < 0 || col >= g.cols {
		return 0, 0, game.NewParseError(text, "coordinate outside %s-%s and 1-%d",
			"A", string(rune('A'+g.rows-1)), g.cols)
	}
	return row, col, nil
}

// Format returns the canonical text of a zero-based coordinate.
func (g Grid) Format(row, col int) string {
	return string(rune('A'+row)) + strconv.Itoa(col+1)
}

// Contains reports whether the zero-based coordinate lies on the grid.
func (g Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}
