// Package reversi is the disc-flipping game on an 8x8 board. The human plays
// black and the engine answers with a depth-3 alpha-beta search.
package reversi

import (
	"context"

	"playground/experiments/metrics"
	"playground/game"
	"playground/game/codec"
	"playground/searcher"

	"golang.org/x/exp/rand"
)

const SearchDepth = 3

var grid = codec.NewGrid(Size, Size)

var weights = game.ScoreWeights{Step: 10, Differential: 20, Win: 1000, Tie: 500}

// densities are the stone-count ranges used for synthetic states.
var densities = [][2]int{{10, 25}, {26, 40}, {41, 56}}

type Game struct {
	rng        *rand.Rand
	cells      board
	toMove     int
	status     game.Status
	history    []game.Record
	searcher   *searcher.Searcher
	lastSearch metrics.SearchMetric
}

func New(cfg game.Config, rng *rand.Rand) (*Game, error) {
	g := &Game{
		rng:      rng,
		cells:    newBoard(),
		toMove:   Black,
		status:   game.InProgress,
		searcher: searcher.NewAlphaBeta(SearchDepth, searcher.WithEvaluationFn(evaluate), searcher.WithMetrics()),
	}
	if cfg.EngineFirst {
		g.toMove = White
	}
	return g, nil
}

func (g *Game) Name() string { return game.Reversi }

func (g *Game) Info() game.Info {
	return game.Info{Name: game.Reversi, Rows: Size, Cols: Size, ValidRange: [2]int{Empty, White}}
}

func (g *Game) Status() game.Status { return g.status }

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
	if g.toMove != Black {
		return game.InvalidMove, game.NewRuleViolation(text, "it is not black's turn")
	}
	if g.cells[row][col] != Empty {
		return game.InvalidMove, game.NewRuleViolation(text, "square is occupied")
	}
	if len(g.cells.flips(row, col, Black)) == 0 {
		return game.InvalidMove, game.NewRuleViolation(text, "move does not flank any white disc")
	}
	g.play(row, col, Black)
	return g.status, nil
}

// OpponentMove keeps playing white while black has to pass.
func (g *Game) OpponentMove(ctx context.Context) ([]string, error) {
	var played []string
	for g.status == game.InProgress && g.toMove == White {
		m, metric := g.searcher.FindNextMove(state{cells: g.cells, toMove: White})
		g.lastSearch = metric
		mv, ok := m.(move)
		if !ok || mv.pass {
			break
		}
		g.play(mv.row, mv.col, White)
		played = append(played, mv.String())
	}
	return played, nil
}

func (g *Game) LastSearch() metrics.SearchMetric { return g.lastSearch }

func (g *Game) play(row, col, color int) {
	g.cells.place(row, col, color)
	g.history = append(g.history, game.Record{Human: color == Black, Move: grid.Format(row, col)})
	g.advance(color)
}

// advance hands the turn to the opponent, lets the mover continue when the
// opponent must pass, and ends the game when neither side can move.
func (g *Game) advance(mover int) {
	switch {
	case g.cells.canMove(opponent(mover)):
		g.toMove = opponent(mover)
	case g.cells.canMove(mover):
		g.toMove = mover
	default:
		g.status = g.final()
	}
}

func (g *Game) final() game.Status {
	black, white := g.cells.count(Black), g.cells.count(White)
	switch {
	case black > white:
		return game.Win
	case white > black:
		return game.Lose
	default:
		return game.Tie
	}
}

func (g *Game) ValidMoves() []string {
	moves := []string{}
	if g.status.IsTerminal() || g.toMove != Black {
		return moves
	}
	for _, m := range g.cells.moves(Black) {
		moves = append(moves, m.String())
	}
	return moves
}

func (g *Game) Score() int {
	return weights.Score(game.CountHuman(g.history), g.cells.count(Black), g.status)
}

// GenerateRandomState scatters a random number of discs and keeps the first
// layout where somebody can still move.
func (g *Game) GenerateRandomState() game.Snapshot {
	for {
		cells := g.randomDiscs()
		if cells.over() {
			continue
		}
		g.install(cells)
		return g.Board()
	}
}

// GenerateRuleState is a random layout where black has at least one move.
func (g *Game) GenerateRuleState() (game.Snapshot, []string) {
	for {
		cells := g.randomDiscs()
		if !cells.canMove(Black) {
			continue
		}
		g.install(cells)
		return g.Board(), g.ValidMoves()
	}
}

func (g *Game) randomDiscs() board {
	density := densities[g.rng.Intn(len(densities))]
	total := density[0] + g.rng.Intn(density[1]-density[0]+1)
	lo, hi := total*30/100, total*70/100
	blacks := lo + g.rng.Intn(hi-lo+1)
	pieces := make([]int, Size*Size)
	for i := 0; i < total; i++ {
		pieces[i] = White
		if i < blacks {
			pieces[i] = Black
		}
	}
	g.rng.Shuffle(len(pieces), func(i, j int) { pieces[i], pieces[j] = pieces[j], pieces[i] })
	var b board
	for i, p := range pieces {
		b[i/Size][i%Size] = p
	}
	return b
}

func (g *Game) install(cells board) {
	g.cells = cells
	g.history = nil
	g.status = game.InProgress
	g.toMove = Black
	if !cells.canMove(Black) {
		g.toMove = White
	}
}

func (g *Game) Close() error { return nil }
