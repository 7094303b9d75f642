// Package tictactoe is three-in-a-row on a 3x3 board against an exhaustive
// minimax opponent.
package tictactoe

import (
	"context"
	"fmt"
	"strings"

	"playground/experiments/metrics"
	"playground/game"
	"playground/game/codec"
	"playground/searcher"

	"golang.org/x/exp/rand"
)

var grid = codec.NewGrid(3, 3)

var weights = game.ScoreWeights{Step: 10, Win: 50, Tie: 20}

type Game struct {
	rng        *rand.Rand
	cells      board
	human      int
	engine     int
	toMove     int
	status     game.Status
	history    []game.Record
	searcher   *searcher.Searcher
	lastSearch metrics.SearchMetric
}

func New(cfg game.Config, rng *rand.Rand) (*Game, error) {
	human, err := pickMark(cfg.HumanMark, rng)
	if err != nil {
		return nil, err
	}
	g := &Game{
		rng:      rng,
		cells:    emptyBoard(),
		human:    human,
		engine:   other(human),
		status:   game.InProgress,
		searcher: searcher.NewMinimax(searcher.WithEvaluationFn(evaluate), searcher.WithMetrics()),
	}
	g.toMove = g.human
	if cfg.EngineFirst {
		g.toMove = g.engine
	}
	return g, nil
}

func pickMark(name string, rng *rand.Rand) (int, error) {
	switch strings.ToUpper(name) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	case "":
		return rng.Intn(2), nil
	default:
		return 0, fmt.Errorf("invalid tic-tac-toe mark %q", name)
	}
}

func (g *Game) Name() string { return game.TicTacToe }

func (g *Game) Info() game.Info {
	return game.Info{Name: game.TicTacToe, Rows: 3, Cols: 3, ValidRange: [2]int{Empty, X}}
}

func (g *Game) Status() game.Status { return g.status }

func (g *Game) HumanMark() string { return markName(g.human) }

func (g *Game) Board() game.Snapshot {
	return game.Snapshot{Grid: g.cells.grid()}
}

func (g *Game) ApplyMove(text string) (game.Status, error) {
	if g.status.IsTerminal() {
		return g.status, game.ErrTerminalState
	}
	row, col, err := grid.Parse(text)
	if err != nil {
		return game.InvalidMove, err
	}
	if g.toMove != g.human {
		return game.InvalidMove, game.NewRuleViolation(text, "it is not the human's turn")
	}
	i := row*3 + col
	if g.cells[i] != Empty {
		return game.InvalidMove, game.NewRuleViolation(text, "cell is occupied")
	}
	g.place(i, g.human)
	return g.status, nil
}

func (g *Game) OpponentMove(ctx context.Context) ([]string, error) {
	if g.status.IsTerminal() || g.toMove != g.engine {
		return nil, nil
	}
	m, metric := g.searcher.FindNextMove(state{cells: g.cells, toMove: g.engine})
	g.lastSearch = metric
	if m == nil {
		return nil, nil
	}
	g.place(int(m.(move)), g.engine)
	return []string{m.String()}, nil
}

// LastSearch reports the metrics of the latest opponent search.
func (g *Game) LastSearch() metrics.SearchMetric { return g.lastSearch }

func (g *Game) place(i, mark int) {
	g.cells[i] = mark
	g.history = append(g.history, game.Record{Human: mark == g.human, Move: move(i).String()})
	g.toMove = other(mark)
	g.status = g.judge()
}

func (g *Game) judge() game.Status {
	switch g.cells.winner() {
	case g.human:
		return game.Win
	case g.engine:
		return game.Lose
	}
	if g.cells.full() {
		return game.Tie
	}
	return game.InProgress
}

func (g *Game) ValidMoves() []string {
	moves := []string{}
	if g.status.IsTerminal() {
		return moves
	}
	for _, i := range g.cells.empties() {
		moves = append(moves, move(i).String())
	}
	return moves
}

func (g *Game) Score() int {
	return weights.Score(game.CountHuman(g.history), 0, g.status)
}

// GenerateRandomState lays out three X, three O and three empty cells at random.
func (g *Game) GenerateRandomState() game.Snapshot {
	cells := board{X, X, X, O, O, O, Empty, Empty, Empty}
	g.rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	g.install(cells)
	return g.Board()
}

// GenerateRuleState builds an unfinished position with the human to move.
func (g *Game) GenerateRuleState() (game.Snapshot, []string) {
	for {
		xs := g.rng.Intn(5) + 1
		noughts := xs - 1
		if g.human == X {
			noughts = xs
		}
		if xs+noughts >= 9 {
			continue
		}
		cells := emptyBoard()
		perm := g.rng.Perm(9)
		for _, i := range perm[:xs] {
			cells[i] = X
		}
		for _, i := range perm[xs : xs+noughts] {
			cells[i] = O
		}
		if cells.winner() != Empty || cells.full() {
			continue
		}
		g.install(cells)
		return g.Board(), g.ValidMoves()
	}
}

func (g *Game) install(cells board) {
	g.cells = cells
	g.history = nil
	g.toMove = g.human
	g.status = g.judge()
}

func (g *Game) Close() error { return nil }
