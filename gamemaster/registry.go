package gamemaster

import (
	"fmt"
	"sort"
	"time"

	"playground/game"
	"playground/game/chess"
	"playground/game/gomoku"
	"playground/game/minesweeper"
	"playground/game/reversi"
	"playground/game/sudoku"
	"playground/game/tictactoe"

	"golang.org/x/exp/rand"
)

type Factory func(cfg game.Config, rng *rand.Rand) (game.Game, error)

var registry = map[string]Factory{
	game.TicTacToe:   func(cfg game.Config, rng *rand.Rand) (game.Game, error) { return tictactoe.New(cfg, rng) },
	game.Gomoku:      func(cfg game.Config, rng *rand.Rand) (game.Game, error) { return gomoku.New(cfg, rng) },
	game.Minesweeper: func(cfg game.Config, rng *rand.Rand) (game.Game, error) { return minesweeper.New(cfg, rng) },
	game.Reversi:     func(cfg game.Config, rng *rand.Rand) (game.Game, error) { return reversi.New(cfg, rng) },
	game.Sudoku:      func(cfg game.Config, rng *rand.Rand) (game.Game, error) { return sudoku.New(cfg, rng) },
	game.Chess:       func(cfg game.Config, rng *rand.Rand) (game.Game, error) { return chess.New(cfg, rng) },
}

// NewGame builds the rule engine named by cfg.Name with its own random
// source. A zero seed is replaced by the current time.
func NewGame(cfg game.Config) (game.Game, error) {
	factory, ok := registry[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", game.ErrUnknownGame, cfg.Name)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return factory(cfg, rand.New(rand.NewSource(seed)))
}

// Games lists the registered game names in sorted order.
func Games() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
