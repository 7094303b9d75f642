// Package sudoku is the 9x9 number-placement puzzle. Moves are written as a
// cell and a digit, for example "A1 5".
package sudoku

import (
	"context"
	"regexp"
	"strconv"

	"playground/game"
	"playground/game/codec"

	"golang.org/x/exp/rand"
)

// DefaultRemovalAttempts bounds failed clue removals while carving a puzzle.
const DefaultRemovalAttempts = 5

var cells = codec.NewGrid(Size, Size)

var placement = regexp.MustCompile(`^\s*([A-Za-z]\s*[0-9]|[0-9]\s*[A-Za-z])\s+([0-9])\s*$`)

var weights = game.ScoreWeights{Step: 2, Differential: 10, Win: 1000}

type Game struct {
	rng      *rand.Rand
	attempts int
	solution grid9
	puzzle   grid9
	given    [Size][Size]bool
	status   game.Status
	history  []game.Record
}

func New(cfg game.Config, rng *rand.Rand) (*Game, error) {
	attempts := cfg.RemovalAttempts
	if attempts <= 0 {
		attempts = DefaultRemovalAttempts
	}
	g := &Game{rng: rng, attempts: attempts}
	g.generate()
	return g, nil
}

// generate builds a fresh solution and carves a puzzle with a unique answer.
func (g *Game) generate() {
	var solution grid9
	solution.fill(g.rng)
	g.solution = solution
	g.puzzle = carve(solution, g.attempts, g.rng)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			g.given[r][c] = g.puzzle[r][c] != Empty
		}
	}
	g.history = nil
	g.status = game.InProgress
}

func (g *Game) Name() string { return game.Sudoku }

func (g *Game) Info() game.Info {
	return game.Info{Name: game.Sudoku, Rows: Size, Cols: Size, ValidRange: [2]int{Empty, Size}}
}

func (g *Game) Status() game.Status { return g.status }

func (g *Game) Board() game.Snapshot {
	grid := game.NewGrid(Size, Size, Empty)
	for r := range grid {
		copy(grid[r], g.puzzle[r][:])
	}
	return game.Snapshot{Grid: grid}
}

func format(row, col, digit int) string {
	return cells.Format(row, col) + " " + strconv.Itoa(digit)
}

func parse(text string) (row, col, digit int, err error) {
	match := placement.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, 0, game.NewParseError(text, "expected a cell and a digit such as \"A1 5\"")
	}
	row, col, err = cells.Parse(match[1])
	if err != nil {
		return 0, 0, 0, err
	}
	digit, _ = strconv.Atoi(match[2])
	if digit < 1 {
		return 0, 0, 0, game.NewParseError(text, "digit must be between 1 and 9")
	}
	return row, col, digit, nil
}

func (g *Game) ApplyMove(text string) (game.Status, error) {
	if g.status.IsTerminal() {
		return g.status, game.ErrTerminalState
	}
	row, col, digit, err := parse(text)
	if err != nil {
		return game.InvalidMove, err
	}
	switch {
	case g.given[row][col]:
		return game.InvalidMove, game.NewRuleViolation(text, "cell holds a given clue")
	case g.puzzle[row][col] != Empty:
		return game.InvalidMove, game.NewRuleViolation(text, "cell is already filled")
	case !g.puzzle.allows(row, col, digit):
		return game.InvalidMove, game.NewRuleViolation(text, "digit repeats in its row, column or box")
	}
	g.puzzle[row][col] = digit
	g.history = append(g.history, game.Record{Human: true, Move: format(row, col, digit)})
	if g.puzzle == g.solution {
		g.status = game.Win
	}
	return g.status, nil
}

func (g *Game) OpponentMove(ctx context.Context) ([]string, error) {
	return nil, nil
}

// ValidMoves lists every conflict-free digit for every empty cell.
func (g *Game) ValidMoves() []string {
	moves := []string{}
	if g.status.IsTerminal() {
		return moves
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g.puzzle[r][c] != Empty {
				continue
			}
			for d := 1; d <= Size; d++ {
				if g.puzzle.allows(r, c, d) {
					moves = append(moves, format(r, c, d))
				}
			}
		}
	}
	return moves
}

func (g *Game) Score() int {
	filled, correct := 0, 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g.given[r][c] || g.puzzle[r][c] == Empty {
				continue
			}
			filled++
			if g.puzzle[r][c] == g.solution[r][c] {
				correct++
			}
		}
	}
	return weights.Score(filled, correct, g.status)
}

func (g *Game) GenerateRandomState() game.Snapshot {
	g.generate()
	return g.Board()
}

func (g *Game) GenerateRuleState() (game.Snapshot, []string) {
	g.generate()
	return g.Board(), g.ValidMoves()
}

// Solution returns a copy of the puzzle's unique answer.
func (g *Game) Solution() [][]int {
	grid := game.NewGrid(Size, Size, Empty)
	for r := range grid {
		copy(grid[r], g.solution[r][:])
	}
	return grid
}

func (g *Game) Close() error { return nil }
