// Package gomoku is five-in-a-row on a 15x15 board. The human plays black and
// the engine answers with a two-ply threshold search over a pattern heuristic.
package gomoku

import (
	"context"

	"playground/experiments/metrics"
	"playground/game"
	"playground/game/codec"
	"playground/searcher"

	"golang.org/x/exp/rand"
)

// SearchDepth is the number of plies the engine looks ahead.
const SearchDepth = 2

var grid = codec.NewGrid(Size, Size)

var weights = game.ScoreWeights{Step: 10, Win: 1000, Tie: 500}

var colorNames = map[int]string{Black: "black", White: "white"}

type move struct {
	row, col int
}

func (m move) String() string {
	return grid.Format(m.row, m.col)
}

type state struct {
	cells  board
	toMove int
	over   bool
}

func (s state) Player() string {
	return colorNames[s.toMove]
}

// LegalMoves only offers empty cells near existing stones.
func (s state) LegalMoves() []game.Move {
	if s.over {
		return nil
	}
	moves := []game.Move{}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if s.cells[row][col] == Empty && !s.cells.isolated(row, col) {
				moves = append(moves, move{row: row, col: col})
			}
		}
	}
	return moves
}

func (s state) Play(m game.Move) game.State {
	mv := m.(move)
	next := state{cells: s.cells, toMove: opponent(s.toMove)}
	next.cells[mv.row][mv.col] = s.toMove
	next.over = next.cells.five(mv.row, mv.col) || next.cells.full()
	return next
}

func (s state) Terminal() bool {
	return s.over
}

func evaluate(s game.State, player string) float64 {
	cells := s.(state).cells
	v := float64(cells.evaluate(White) - cells.evaluate(Black))
	if player == colorNames[Black] {
		return -v
	}
	return v
}

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
		toMove:   Black,
		status:   game.InProgress,
		searcher: searcher.NewThreshold(SearchDepth, searcher.WithEvaluationFn(evaluate), searcher.WithMetrics()),
	}
	if cfg.EngineFirst {
		g.toMove = White
	}
	return g, nil
}

func (g *Game) Name() string { return game.Gomoku }

func (g *Game) Info() game.Info {
	return game.Info{Name: game.Gomoku, Rows: Size, Cols: Size, ValidRange: [2]int{Empty, White}}
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
		return game.InvalidMove, game.NewRuleViolation(text, "intersection is occupied")
	}
	g.place(row, col, Black)
	return g.status, nil
}

func (g *Game) OpponentMove(ctx context.Context) ([]string, error) {
	if g.status.IsTerminal() || g.toMove != White {
		return nil, nil
	}
	m, metric := g.searcher.FindNextMove(state{cells: g.cells, toMove: White})
	g.lastSearch = metric
	var mv move
	if m != nil {
		mv = m.(move)
	} else if fallback, ok := g.fallback(); ok {
		mv = fallback
	} else {
		return nil, nil
	}
	g.place(mv.row, mv.col, White)
	return []string{mv.String()}, nil
}

// fallback picks the centre, or the first empty cell, when no stone is near
// any empty intersection.
func (g *Game) fallback() (move, bool) {
	if g.cells[Size/2][Size/2] == Empty {
		return move{row: Size / 2, col: Size / 2}, true
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if g.cells[row][col] == Empty {
				return move{row: row, col: col}, true
			}
		}
	}
	return move{}, false
}

func (g *Game) LastSearch() metrics.SearchMetric { return g.lastSearch }

func (g *Game) place(row, col, color int) {
	g.cells[row][col] = color
	g.history = append(g.history, game.Record{Human: color == Black, Move: move{row: row, col: col}.String()})
	g.toMove = opponent(color)
	switch {
	case g.cells.five(row, col) && color == Black:
		g.status = game.Win
	case g.cells.five(row, col):
		g.status = game.Lose
	case g.cells.full():
		g.status = game.Tie
	default:
		g.status = game.InProgress
	}
}

func (g *Game) ValidMoves() []string {
	moves := []string{}
	if g.status.IsTerminal() {
		return moves
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if g.cells[row][col] == Empty {
				moves = append(moves, grid.Format(row, col))
			}
		}
	}
	return moves
}

func (g *Game) Score() int {
	return weights.Score(game.CountHuman(g.history), 0, g.status)
}

// GenerateRandomState fills 30-70% of the board, with black holding 30-70%
// of the stones.
func (g *Game) GenerateRandomState() game.Snapshot {
	g.install(g.randomStones())
	return g.Board()
}

// GenerateRuleState is a random state with every five-in-a-row broken up.
func (g *Game) GenerateRuleState() (game.Snapshot, []string) {
	cells := g.randomStones()
	g.breakFives(&cells)
	g.install(cells)
	return g.Board(), g.ValidMoves()
}

func (g *Game) randomStones() board {
	cells := Size * Size
	total := between(g.rng, cells*30/100, cells*70/100)
	blacks := between(g.rng, total*30/100, total*70/100)
	pieces := make([]int, cells)
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

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// breakFives removes one random stone from every run of five until none is left.
func (g *Game) breakFives(b *board) {
	for changed := true; changed; {
		changed = false
		for row := 0; row < Size; row++ {
			for col := 0; col < Size; col++ {
				for _, d := range directions {
					color := b[row][col]
					if color == Empty {
						break
					}
					count := 1
					for count < 5 && inBounds(row+count*d[0], col+count*d[1]) && b[row+count*d[0]][col+count*d[1]] == color {
						count++
					}
					if count >= 5 {
						i := g.rng.Intn(count)
						b[row+i*d[0]][col+i*d[1]] = Empty
						changed = true
					}
				}
			}
		}
	}
}

func (g *Game) install(cells board) {
	g.cells = cells
	g.history = nil
	g.toMove = Black
	g.status = game.InProgress
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !g.cells.five(row, col) {
				continue
			}
			if g.cells[row][col] == Black {
				g.status = game.Win
				return
			}
			g.status = game.Lose
		}
	}
	if g.status == game.InProgress && g.cells.full() {
		g.status = game.Tie
	}
}

func (g *Game) Close() error { return nil }
