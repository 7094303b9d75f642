package agent

import (
	"context"
	"errors"

	"golang.org/x/exp/rand"
)

var ErrNoMoves = errors.New("no legal moves to choose from")

// Random plays a uniformly chosen legal move.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (a *Random) NextMove(ctx context.Context, req Request) (string, error) {
	if len(req.Legal) == 0 {
		return "", ErrNoMoves
	}
	return req.Legal[a.rng.Intn(len(req.Legal))], nil
}

// Scripted replays a fixed list of moves, then repeats the last one.
type Scripted struct {
	moves []string
	next  int
}

func NewScripted(moves ...string) *Scripted {
	return &Scripted{moves: moves}
}

func (a *Scripted) NextMove(ctx context.Context, req Request) (string, error) {
	if len(a.moves) == 0 {
		return "", ErrNoMoves
	}
	move := a.moves[min(a.next, len(a.moves)-1)]
	a.next++
	return move, nil
}
