// meta/meta.go
package meta

import "time"

// MAX_TRIALS is how many consecutive invalid moves end an evaluated game.
const MAX_TRIALS = 3

// MAX_STEPS caps the agent moves in one evaluated game.
const MAX_STEPS = 300

// OPPONENT_RETRIES is how often a failed opponent move is retried.
const OPPONENT_RETRIES = 2

// ROUNDS is the number of evaluated games per game name.
const ROUNDS = 5

// SAMPLE_SIZE is the number of synthetic states per game and benchmark task.
const SAMPLE_SIZE = 100

// GO_ROUTINES bounds the games sampled or evaluated in parallel.
const GO_ROUTINES = 8

// SESSION_TTL is how long an untouched server session lives.
const SESSION_TTL = 30 * time.Minute

// MOVE_TIME is the chess engine's budget per move.
const MOVE_TIME = time.Second
