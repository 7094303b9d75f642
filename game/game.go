package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Game is the facade every rule engine implements. A Game exclusively owns its
// board and is meant to be driven from a single logical flow.
type Game interface {
	Name() string
	Info() Info
	Status() Status
	// Board returns a copy of the current board.
	Board() Snapshot
	// ApplyMove validates and plays the human move. A rejected move leaves the
	// board untouched and returns InvalidMove with a *MoveError. Once the game
	// is over, the terminal status is returned together with ErrTerminalState.
	ApplyMove(text string) (Status, error)
	// OpponentMove plays the engine side and returns the moves it made in
	// canonical text. Puzzles and finished games return no moves.
	OpponentMove(ctx context.Context) ([]string, error)
	ValidMoves() []string
	Score() int
	GenerateRandomState() Snapshot
	GenerateRuleState() (Snapshot, []string)
	// Close releases external resources such as engine subprocesses.
	Close() error
}

// Info describes the board layout for annotation consumers.
type Info struct {
	Name       string `json:"name" yaml:"name"`
	Rows       int    `json:"rows" yaml:"rows"`
	Cols       int    `json:"cols" yaml:"cols"`
	ValidRange [2]int `json:"valid_range" yaml:"valid_range"`
}

// Count is the number of cells on the board.
func (i Info) Count() int {
	return i.Rows * i.Cols
}

type Config struct {
	Name string `mapstructure:"name" json:"name"`
	// Seed feeds the game's random source. Zero picks a time-based seed.
	Seed uint64 `mapstructure:"seed" json:"seed,omitempty"`
	// EngineFirst lets the engine side open the game.
	EngineFirst bool `mapstructure:"engine_first" json:"engine_first,omitempty"`
	// HumanMark is "X" or "O" for tic-tac-toe. Empty draws it at random.
	HumanMark string `mapstructure:"human_mark" json:"human_mark,omitempty"`
	// Level is the minesweeper difficulty: easy, middle or hard.
	Level string `mapstructure:"level" json:"level,omitempty"`
	// RemovalAttempts bounds failed clue removals while carving a sudoku.
	RemovalAttempts int           `mapstructure:"removal_attempts" json:"removal_attempts,omitempty"`
	EnginePath      string        `mapstructure:"engine_path" json:"engine_path,omitempty"`
	// MoveTime is written as a duration string ("1s", "500ms") in JSON.
	// Integer nanoseconds are accepted too.
	MoveTime time.Duration `mapstructure:"move_time" json:"move_time,omitempty"`
}

type plainConfig Config

func (c Config) MarshalJSON() ([]byte, error) {
	aux := struct {
		plainConfig
		MoveTime string `json:"move_time,omitempty"`
	}{plainConfig: plainConfig(c)}
	if c.MoveTime != 0 {
		aux.MoveTime = c.MoveTime.String()
	}
	return json.Marshal(aux)
}

func (c *Config) UnmarshalJSON(data []byte) error {
	aux := struct {
		*plainConfig
		MoveTime json.RawMessage `json:"move_time,omitempty"`
	}{plainConfig: (*plainConfig)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.MoveTime) == 0 || string(aux.MoveTime) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(aux.MoveTime, &text); err == nil {
		d, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("move_time: %w", err)
		}
		c.MoveTime = d
		return nil
	}
	var nanos int64
	if err := json.Unmarshal(aux.MoveTime, &nanos); err != nil {
		return fmt.Errorf("move_time must be a duration string or integer nanoseconds: %w", err)
	}
	c.MoveTime = time.Duration(nanos)
	return nil
}

// Record is one entry of a game's move history.
type Record struct {
	Human bool   `json:"human"`
	Move  string `json:"move"`
}

// CountHuman returns the number of moves the human side made.
func CountHuman(history []Record) int {
	n := 0
	for _, r := range history {
		if r.Human {
			n++
		}
	}
	return n
}
