package experiments

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"playground/agent"
	"playground/engine"
	"playground/experiments/metrics"
	"playground/experiments/store"
	"playground/game"
	"playground/gamemaster"
	"playground/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Evaluation plays Rounds end-to-end games of every listed game against one
// kind of agent.
type Evaluation struct {
	Name      string
	AgentName string
	Games     []string
	Rounds    int
	MaxTrials int
	Seed      uint64
	Parallel  int
	// NewAgent builds a fresh agent for one game. Agents are never shared
	// between games.
	NewAgent func(seed uint64) agent.Agent
	// GameConfig supplies per-game settings.
	GameConfig func(name string, seed uint64) game.Config
	// OutputDir receives the CSV records when set.
	OutputDir string
	// Store persists the records when set.
	Store *store.Store
}

type Result struct {
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
}

func (ev Evaluation) withDefaults() Evaluation {
	if ev.Rounds <= 0 {
		ev.Rounds = meta.ROUNDS
	}
	if ev.MaxTrials <= 0 {
		ev.MaxTrials = meta.MAX_TRIALS
	}
	if ev.Parallel <= 0 {
		ev.Parallel = meta.GO_ROUTINES
	}
	if ev.Seed == 0 {
		ev.Seed = uint64(time.Now().UnixNano())
	}
	if ev.GameConfig == nil {
		ev.GameConfig = func(name string, seed uint64) game.Config {
			return game.Config{Name: name, Seed: seed}
		}
	}
	if ev.Name == "" {
		ev.Name = "evaluate"
	}
	return ev
}

// Run plays every round, then writes and stores the records. A game whose
// agent or opponent fails is recorded with the Error status and does not
// stop the others.
func Run(ctx context.Context, ev Evaluation) (Result, error) {
	ev = ev.withDefaults()
	if ev.NewAgent == nil {
		return Result{}, fmt.Errorf("evaluation %s has no agent", ev.Name)
	}

	type job struct {
		id   int
		name string
		seed uint64
	}
	rng := rand.New(rand.NewSource(ev.Seed))
	jobs := []job{}
	for _, name := range ev.Games {
		for i := 0; i < ev.Rounds; i++ {
			jobs = append(jobs, job{id: len(jobs) + 1, name: name, seed: rng.Uint64() | 1})
		}
	}

	log.Info().Msgf("starting %s experiment with %d games...", ev.Name, len(jobs))

	var mu sync.Mutex
	result := Result{}
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(ev.Parallel)
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			gameMetric, moveMetrics, err := runGame(gctx, ev, j.name, j.seed)
			if err != nil && gameMetric.Game == "" {
				return err
			}
			if err != nil {
				log.Warn().Err(err).Msgf("game %d (%s) ended with an error", j.id, j.name)
			}
			mu.Lock()
			defer mu.Unlock()
			result.Games = append(result.Games, metrics.GameRecord{ID: j.id, Agent: ev.AgentName, GameMetric: gameMetric})
			for _, mm := range moveMetrics {
				result.Moves = append(result.Moves, metrics.MoveRecord{Game: j.id, MoveMetric: mm})
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return result, err
	}

	sort.Slice(result.Games, func(a, b int) bool { return result.Games[a].ID < result.Games[b].ID })
	sort.SliceStable(result.Moves, func(a, b int) bool { return result.Moves[a].Game < result.Moves[b].Game })
	log.Info().Msgf("completed %s experiment", ev.Name)

	if err := save(ctx, ev, result); err != nil {
		return result, err
	}
	return result, nil
}

// runGame returns an empty metric together with the error when the game
// could not even be built.
func runGame(ctx context.Context, ev Evaluation, name string, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	g, err := gamemaster.NewGame(ev.GameConfig(name, seed))
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	defer func() {
		if err := g.Close(); err != nil {
			log.Warn().Err(err).Str("game", name).Msg("closing game")
		}
	}()
	e := engine.New(g, ev.NewAgent(seed), engine.WithMaxTrials(ev.MaxTrials))
	return e.Run(ctx)
}

func save(ctx context.Context, ev Evaluation, result Result) error {
	if ev.OutputDir != "" {
		writer, err := metrics.NewWriter(ev.OutputDir, ev.Name)
		if err != nil {
			return fmt.Errorf("failed to create experiment writer: %w", err)
		}
		if err := writer.WriteGameRecords(result.Games); err != nil {
			return fmt.Errorf("failed to write game records: %w", err)
		}
		if err := writer.WriteMoveRecords(result.Moves); err != nil {
			return fmt.Errorf("failed to write move records: %w", err)
		}
		log.Info().Msgf("stored records in %s", writer.Dir())
	}

	if ev.Store != nil {
		moves := map[int][]metrics.MoveMetric{}
		for _, m := range result.Moves {
			moves[m.Game] = append(moves[m.Game], m.MoveMetric)
		}
		for _, g := range result.Games {
			if _, err := ev.Store.SaveGame(ctx, ev.Name, ev.AgentName, g.GameMetric, moves[g.ID]); err != nil {
				return fmt.Errorf("failed to store game %d: %w", g.ID, err)
			}
		}
		log.Info().Msgf("stored %d games in the database", len(result.Games))
	}
	return nil
}
