package game

import (
	"errors"
	"fmt"
)

var (
	// ErrParse means the move text does not match the game's grammar.
	ErrParse = errors.New("move does not match grammar")
	// ErrRuleViolation means a well-formed move is illegal in the current state.
	ErrRuleViolation = errors.New("move violates game rules")
	// ErrTerminalState means a move was submitted after the game ended.
	ErrTerminalState = errors.New("game is over - no moves allowed")
	// ErrEngineFailure means the external engine could not produce a move.
	ErrEngineFailure = errors.New("engine failure")
	ErrUnknownGame   = errors.New("unknown game")
)

// MoveError describes a rejected move. Kind is one of the sentinel errors
// above, so callers can match with errors.Is.
type MoveError struct {
	Kind   error
	Move   string
	Reason string
}

func (e *MoveError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot play %q: %v", e.Move, e.Kind)
	}
	return fmt.Sprintf("cannot play %q: %v: %s", e.Move, e.Kind, e.Reason)
}

func (e *MoveError) Unwrap() error {
	return e.Kind
}

func NewParseError(move, format string, args ...any) *MoveError {
	return &MoveError{Kind: ErrParse, Move: move, Reason: fmt.Sprintf(format, args...)}
}

func NewRuleViolation(move, format string, args ...any) *MoveError {
	return &MoveError{Kind: ErrRuleViolation, Move: move, Reason: fmt.Sprintf(format, args...)}
}
