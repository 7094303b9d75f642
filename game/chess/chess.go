// Package chess plays full chess rules against an external UCI engine. Moves
// are written in standard algebraic notation.
package chess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playground/game"
	"playground/searcher"

	chesslib "github.com/notnil/chess"
	"golang.org/x/exp/rand"
)

const (
	DefaultEnginePath = "stockfish"
	DefaultMoveTime   = time.Second

	// Random openings replay between minRandomMoves and maxRandomMoves plies.
	minRandomMoves = 5
	maxRandomMoves = 55
)

// EngineClient is the port to whatever picks the engine side's moves.
type EngineClient interface {
	BestMove(ctx context.Context, pos *chesslib.Position, moveTime time.Duration) (*chesslib.Move, error)
	Close() error
}

var weights = game.ScoreWeights{Step: 10, Differential: 5, Win: 1000, Tie: 500}

var pieceCodes = map[chesslib.PieceType]int{
	chesslib.Pawn:   1,
	chesslib.Knight: 2,
	chesslib.Bishop: 3,
	chesslib.Rook:   4,
	chesslib.Queen:  5,
	chesslib.King:   6,
}

var material = map[chesslib.PieceType]int{
	chesslib.Pawn:   1,
	chesslib.Knight: 3,
	chesslib.Bishop: 3,
	chesslib.Rook:   5,
	chesslib.Queen:  9,
}

// fullMaterial is the material value of one side's starting pieces.
const fullMaterial = 8*1 + 2*3 + 2*3 + 2*5 + 9

type Game struct {
	rng      *rand.Rand
	match    *chesslib.Game
	human    chesslib.Color
	engine   EngineClient
	moveTime time.Duration
	status   game.Status
	history  []game.Record
}

// New creates a game whose engine side is a UCI process started on first use.
func New(cfg game.Config, rng *rand.Rand) (*Game, error) {
	path := cfg.EnginePath
	if path == "" {
		path = DefaultEnginePath
	}
	return NewWithEngine(cfg, rng, searcher.NewUCIEngine(path)), nil
}

func NewWithEngine(cfg game.Config, rng *rand.Rand, engine EngineClient) *Game {
	moveTime := cfg.MoveTime
	if moveTime <= 0 {
		moveTime = DefaultMoveTime
	}
	human := chesslib.White
	if cfg.EngineFirst {
		human = chesslib.Black
	}
	g := &Game{rng: rng, human: human, engine: engine, moveTime: moveTime}
	g.reset()
	return g
}

func (g *Game) reset() {
	g.match = chesslib.NewGame()
	g.status = game.InProgress
	g.history = nil
}

func (g *Game) Name() string { return game.Chess }

func (g *Game) Info() game.Info {
	return game.Info{Name: game.Chess, Rows: 8, Cols: 8, ValidRange: [2]int{-6, 6}}
}

func (g *Game) Status() game.Status { return g.status }

// Board encodes pieces as 1..6 (pawn, knight, bishop, rook, queen, king),
// negative for Black. Row 0 is rank 8.
func (g *Game) Board() game.Snapshot {
	grid := game.NewGrid(8, 8, 0)
	board := g.match.Position().Board()
	for sq := 0; sq < 64; sq++ {
		piece := board.Piece(chesslib.Square(sq))
		if piece == chesslib.NoPiece {
			continue
		}
		value := pieceCodes[piece.Type()]
		if piece.Color() == chesslib.Black {
			value = -value
		}
		grid[7-sq/8][sq%8] = value
	}
	return game.Snapshot{Grid: grid, FEN: g.match.FEN()}
}

func (g *Game) ApplyMove(text string) (game.Status, error) {
	if g.status.IsTerminal() {
		return g.status, game.ErrTerminalState
	}
	s, err := parse(text)
	if err != nil {
		return game.InvalidMove, err
	}
	pos := g.match.Position()
	if pos.Turn() != g.human {
		return game.InvalidMove, game.NewRuleViolation(text, "it is the engine's turn")
	}
	m, err := decode(pos, s, text)
	if err != nil {
		return game.InvalidMove, err
	}
	g.play(pos, m, true)
	return g.status, nil
}

func (g *Game) play(pos *chesslib.Position, m *chesslib.Move, human bool) string {
	text := encode(pos, m)
	if err := g.match.Move(m); err != nil {
		// m always comes from pos.ValidMoves
		panic(fmt.Sprintf("legal move %s rejected: %v", text, err))
	}
	g.history = append(g.history, game.Record{Human: human, Move: text})
	g.judge()
	return text
}

func (g *Game) judge() {
	switch g.match.Method() {
	case chesslib.Checkmate:
		if g.match.Position().Turn() == g.human {
			g.status = game.Lose
		} else {
			g.status = game.Win
		}
		return
	case chesslib.Stalemate, chesslib.InsufficientMaterial, chesslib.FivefoldRepetition,
		chesslib.SeventyFiveMoveRule, chesslib.ThreefoldRepetition, chesslib.FiftyMoveRule:
		g.status = game.Tie
		return
	}
	for _, method := range g.match.EligibleDraws() {
		if method == chesslib.ThreefoldRepetition || method == chesslib.FiftyMoveRule {
			if err := g.match.Draw(method); err == nil {
				g.status = game.Tie
				return
			}
		}
	}
	g.status = game.InProgress
}

// OpponentMove asks the engine for a reply when it is the engine's turn.
func (g *Game) OpponentMove(ctx context.Context) ([]string, error) {
	if g.status.IsTerminal() {
		return nil, nil
	}
	pos := g.match.Position()
	if pos.Turn() == g.human {
		return nil, nil
	}
	reply, err := g.engine.BestMove(ctx, pos, g.moveTime)
	if err != nil {
		if !errors.Is(err, game.ErrEngineFailure) {
			err = fmt.Errorf("%w: %v", game.ErrEngineFailure, err)
		}
		return nil, err
	}
	m := legal(pos, reply)
	if m == nil {
		return nil, fmt.Errorf("%w: engine proposed illegal move %v", game.ErrEngineFailure, reply)
	}
	return []string{g.play(pos, m, false)}, nil
}

func (g *Game) ValidMoves() []string {
	moves := []string{}
	pos := g.match.Position()
	if g.status.IsTerminal() || pos.Turn() != g.human {
		return moves
	}
	for _, m := range pos.ValidMoves() {
		moves = append(moves, encode(pos, m))
	}
	return moves
}

// captured is the material value the human has taken from the engine side.
func (g *Game) captured() int {
	left := 0
	for _, piece := range g.match.Position().Board().SquareMap() {
		if piece.Color() != g.human {
			left += material[piece.Type()]
		}
	}
	return fullMaterial - left
}

func (g *Game) Score() int {
	return weights.Score(game.CountHuman(g.history), g.captured(), g.status)
}

// randomize replays a random number of uniformly chosen legal plies from the
// opening position.
func (g *Game) randomize() {
	g.reset()
	n := minRandomMoves + g.rng.Intn(maxRandomMoves-minRandomMoves+1)
	for i := 0; i < n; i++ {
		if !g.randomPly() {
			return
		}
	}
}

func (g *Game) randomPly() bool {
	if g.match.Outcome() != chesslib.NoOutcome {
		return false
	}
	moves := g.match.ValidMoves()
	if len(moves) == 0 {
		return false
	}
	if err := g.match.Move(moves[g.rng.Intn(len(moves))]); err != nil {
		return false
	}
	return true
}

func (g *Game) GenerateRandomState() game.Snapshot {
	g.randomize()
	g.judge()
	g.history = nil
	return g.Board()
}

// GenerateRuleState plays random plies until it is the human's turn and
// returns the position with its legal moves.
func (g *Game) GenerateRuleState() (game.Snapshot, []string) {
	g.randomize()
	for g.match.Position().Turn() != g.human {
		if !g.randomPly() {
			break
		}
	}
	g.judge()
	g.history = nil
	return g.Board(), g.ValidMoves()
}

func (g *Game) Close() error {
	return g.engine.Close()
}
