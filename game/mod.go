package game

// Names of the supported games. They double as registry keys and as the
// `name` field of a Config.
const (
	TicTacToe   = "tictactoe"
	Gomoku      = "gomoku"
	Minesweeper = "minesweeper"
	Reversi     = "reversi"
	Sudoku      = "sudoku"
	Chess       = "chess"
)

// Names lists every supported game in a stable order.
var Names = []string{TicTacToe, Gomoku, Minesweeper, Reversi, Sudoku, Chess}

type Move interface {
	String() string
}

// State should be immutable - operations on State always return a new copy
type State interface {
	Player() string
	LegalMoves() []Move
	Play(Move) State
	Terminal() bool
}

// Evaluates the state from the point of view of player. Larger values are
// more favorable to player.
type Evaluate func(state State, player string) float64
