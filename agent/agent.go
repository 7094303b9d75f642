// Package agent holds the move proposers an evaluation run can pit against a
// game: local baselines and a remote model behind HTTP.
package agent

import (
	"context"

	"playground/game"
)

// Request is what an agent sees before proposing a move.
type Request struct {
	Game  string        `json:"game"`
	Info  game.Info     `json:"info"`
	Board game.Snapshot `json:"board"`
	Step  int           `json:"step"`
	// Feedback explains why the previous attempt was rejected, if it was.
	Feedback string `json:"feedback,omitempty"`
	// Legal is ground truth for local baselines and never leaves the process.
	Legal []string `json:"-"`
}

type Agent interface {
	// NextMove returns move text for req. The text is validated by the game,
	// so an agent may propose illegal or malformed moves.
	NextMove(ctx context.Context, req Request) (string, error)
}
