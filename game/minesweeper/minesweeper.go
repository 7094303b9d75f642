// Package minesweeper is the single-player mine-clearing puzzle. Cells are
// reported as -1 while covered, 0-8 once revealed, and 9 for a revealed mine.
package minesweeper

import (
	"context"
	"fmt"

	"playground/game"
	"playground/game/codec"

	"golang.org/x/exp/rand"
)

const (
	Covered = -1
	Mine    = 9
)

type Level struct {
	Size  int
	Mines int
}

var Levels = map[string]Level{
	"easy":   {Size: 8, Mines: 10},
	"middle": {Size: 12, Mines: 30},
	"hard":   {Size: 16, Mines: 40},
}

var weights = game.ScoreWeights{Step: 10, Differential: 2, Win: 1000}

type Game struct {
	rng      *rand.Rand
	level    Level
	grid     codec.Grid
	mines    [][]bool
	revealed [][]bool
	status   game.Status
	history  []game.Record
}

func New(cfg game.Config, rng *rand.Rand) (*Game, error) {
	name := cfg.Level
	if name == "" {
		name = "easy"
	}
	level, ok := Levels[name]
	if !ok {
		return nil, fmt.Errorf("unknown minesweeper level %q", cfg.Level)
	}
	g := &Game{rng: rng, level: level, grid: codec.NewGrid(level.Size, level.Size)}
	g.reset()
	return g, nil
}

// reset lays fresh mines and covers every cell.
func (g *Game) reset() {
	n := g.level.Size
	g.mines = make([][]bool, n)
	g.revealed = make([][]bool, n)
	for i := range g.mines {
		g.mines[i] = make([]bool, n)
		g.revealed[i] = make([]bool, n)
	}
	for _, i := range g.rng.Perm(n * n)[:g.level.Mines] {
		g.mines[i/n][i%n] = true
	}
	g.history = nil
	g.status = game.InProgress
}

func (g *Game) Name() string { return game.Minesweeper }

func (g *Game) Info() game.Info {
	return game.Info{Name: game.Minesweeper, Rows: g.level.Size, Cols: g.level.Size, ValidRange: [2]int{Covered, Mine}}
}

func (g *Game) Status() game.Status { return g.status }

// adjacent counts the mines around (row, col).
func (g *Game) adjacent(row, col int) int {
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := row+dr, col+dc
			if (dr != 0 || dc != 0) && g.grid.Contains(r, c) && g.mines[r][c] {
				n++
			}
		}
	}
	return n
}

func (g *Game) cell(row, col int) int {
	switch {
	case !g.revealed[row][col]:
		return Covered
	case g.mines[row][col]:
		return Mine
	default:
		return g.adjacent(row, col)
	}
}

func (g *Game) Board() game.Snapshot {
	grid := game.NewGrid(g.level.Size, g.level.Size, Covered)
	for row := range grid {
		for col := range grid[row] {
			grid[row][col] = g.cell(row, col)
		}
	}
	return game.Snapshot{Grid: grid}
}

func (g *Game) ApplyMove(text string) (game.Status, error) {
	if g.status.IsTerminal() {
		return g.status, game.ErrTerminalState
	}
	row, col, err := g.grid.Parse(text)
	if err != nil {
		return game.InvalidMove, err
	}
	if g.revealed[row][col] {
		return game.InvalidMove, game.NewRuleViolation(text, "cell is already revealed")
	}
	g.history = append(g.history, game.Record{Human: true, Move: g.grid.Format(row, col)})
	if g.mines[row][col] {
		g.revealed[row][col] = true
		g.status = game.Lose
		return g.status, nil
	}
	g.flood(row, col)
	g.status = g.judge()
	return g.status, nil
}

// flood reveals (row, col) and keeps opening neighbours of zero cells.
func (g *Game) flood(row, col int) {
	stack := [][2]int{{row, col}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r, c := p[0], p[1]
		if g.revealed[r][c] || g.mines[r][c] {
			continue
		}
		g.revealed[r][c] = true
		if g.adjacent(r, c) != 0 {
			continue
		}
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if g.grid.Contains(r+dr, c+dc) && !g.revealed[r+dr][c+dc] {
					stack = append(stack, [2]int{r + dr, c + dc})
				}
			}
		}
	}
}

func (g *Game) covered() int {
	n := 0
	for row := range g.revealed {
		for _, open := range g.revealed[row] {
			if !open {
				n++
			}
		}
	}
	return n
}

func (g *Game) judge() game.Status {
	for row := range g.mines {
		for col, mine := range g.mines[row] {
			if mine && g.revealed[row][col] {
				return game.Lose
			}
		}
	}
	if g.covered() == g.level.Mines {
		return game.Win
	}
	return game.InProgress
}

func (g *Game) OpponentMove(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (g *Game) ValidMoves() []string {
	moves := []string{}
	if g.status.IsTerminal() {
		return moves
	}
	for row := range g.revealed {
		for col, open := range g.revealed[row] {
			if !open {
				moves = append(moves, g.grid.Format(row, col))
			}
		}
	}
	return moves
}

func (g *Game) Score() int {
	safe := 0
	for row := range g.revealed {
		for col, open := range g.revealed[row] {
			if open && !g.mines[row][col] {
				safe++
			}
		}
	}
	return weights.Score(game.CountHuman(g.history), safe, g.status)
}

// GenerateRandomState lays fresh mines and reveals just over half of the cells,
// mines included.
func (g *Game) GenerateRandomState() game.Snapshot {
	g.reset()
	n := g.level.Size
	for _, i := range g.rng.Perm(n * n)[:n*n/2+1] {
		g.revealed[i/n][i%n] = true
	}
	g.status = g.judge()
	return g.Board()
}

func (g *Game) GenerateRuleState() (game.Snapshot, []string) {
	snapshot := g.GenerateRandomState()
	moves := []string{}
	for row := range snapshot.Grid {
		for col, v := range snapshot.Grid[row] {
			if v == Covered {
				moves = append(moves, g.grid.Format(row, col))
			}
		}
	}
	return snapshot, moves
}

func (g *Game) Close() error { return nil }
