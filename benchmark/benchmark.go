// Package benchmark samples synthetic game states and writes them as
// annotation files for the offline perceive and rule tasks.
package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"playground/game"
	"playground/gamemaster"
	"playground/meta"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	Perceive = "perceive"
	Rule     = "rule"
)

var Tasks = []string{Perceive, Rule}

const (
	annotationFile = "annotation.json"
	manifestFile   = "manifest.yaml"
)

type Annotation struct {
	// File names the screenshot an external renderer produces for this sample.
	File string `json:"file"`
	GT   any    `json:"gt"`
}

type RuleTruth struct {
	// RuleState is the board grid, or a FEN string for chess.
	RuleState      any      `json:"rule_state"`
	ValidMovements []string `json:"valid_movements"`
}

type AnnotationSet struct {
	Task        string       `json:"task"`
	Game        string       `json:"game"`
	Info        game.Info    `json:"info"`
	Annotations []Annotation `json:"annotations"`
}

type Entry struct {
	Task    string    `yaml:"task"`
	Game    string    `yaml:"game"`
	Path    string    `yaml:"path"`
	Samples int       `yaml:"samples"`
	Skipped bool      `yaml:"skipped,omitempty"`
	Info    game.Info `yaml:"info"`
}

type Manifest struct {
	Seed       uint64    `yaml:"seed"`
	SampleSize int       `yaml:"sample_size"`
	Generated  time.Time `yaml:"generated"`
	Entries    []Entry   `yaml:"entries"`
}

type Generator struct {
	outputDir  string
	sampleSize int
	seed       uint64
	parallel   int
	configFor  func(name string, seed uint64) game.Config
	newGame    func(game.Config) (game.Game, error)
}

type Option func(*Generator)

func WithSampleSize(n int) Option {
	return func(g *Generator) {
		g.sampleSize = n
	}
}

// WithSeed fixes the base seed. Zero picks a time-based seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

func WithParallelism(n int) Option {
	return func(g *Generator) {
		g.parallel = n
	}
}

// WithGameConfig supplies per-game settings such as the minesweeper level.
func WithGameConfig(configFor func(name string, seed uint64) game.Config) Option {
	return func(g *Generator) {
		g.configFor = configFor
	}
}

func NewGenerator(outputDir string, opts ...Option) *Generator {
	g := &Generator{
		outputDir:  outputDir,
		sampleSize: meta.SAMPLE_SIZE,
		parallel:   meta.GO_ROUTINES,
		configFor: func(name string, seed uint64) game.Config {
			return game.Config{Name: name, Seed: seed}
		},
		newGame: gamemaster.NewGame,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seed == 0 {
		g.seed = uint64(time.Now().UnixNano())
	}
	return g
}

// Generate writes task/game/annotation.json for every pair and a manifest
// at the root. Pairs that already have an annotation file are kept as is.
func (g *Generator) Generate(ctx context.Context, tasks, games []string) (Manifest, error) {
	for _, task := range tasks {
		if task != Perceive && task != Rule {
			return Manifest{}, fmt.Errorf("invalid task: %s", task)
		}
	}

	var mu sync.Mutex
	manifest := Manifest{Seed: g.seed, SampleSize: g.sampleSize, Generated: time.Now().UTC()}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallel)
	for _, task := range tasks {
		for _, name := range games {
			task, name := task, name
			eg.Go(func() error {
				entry, err := g.generatePair(ctx, task, name)
				if err != nil {
					return fmt.Errorf("%s/%s: %w", task, name, err)
				}
				mu.Lock()
				manifest.Entries = append(manifest.Entries, entry)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return Manifest{}, err
	}

	sort.Slice(manifest.Entries, func(i, j int) bool {
		a, b := manifest.Entries[i], manifest.Entries[j]
		if a.Task != b.Task {
			return a.Task < b.Task
		}
		return a.Game < b.Game
	})
	return manifest, g.writeManifest(manifest)
}

// pairSeed derives a stable seed for one task and game from the base seed.
func (g *Generator) pairSeed(task, name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(task + "/" + name))
	return g.seed ^ h.Sum64()
}

func (g *Generator) generatePair(ctx context.Context, task, name string) (Entry, error) {
	dir := filepath.Join(g.outputDir, task, name)
	path := filepath.Join(dir, annotationFile)
	entry := Entry{Task: task, Game: name, Path: filepath.Join(task, name, annotationFile)}

	if existing, err := readAnnotations(path); err == nil {
		log.Info().Msgf("benchmark data for %s in %s has been found", task, name)
		entry.Samples = len(existing.Annotations)
		entry.Info = existing.Info
		entry.Skipped = true
		return entry, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return entry, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return entry, fmt.Errorf("failed to create directory: %w", err)
	}

	rng := rand.New(rand.NewSource(g.pairSeed(task, name)))
	set := AnnotationSet{Task: task, Game: name, Annotations: make([]Annotation, 0, g.sampleSize)}
	for i := 0; i < g.sampleSize; i++ {
		if err := ctx.Err(); err != nil {
			return entry, err
		}
		gt, info, err := g.sample(task, name, rng.Uint64())
		if err != nil {
			return entry, err
		}
		set.Info = info
		set.Annotations = append(set.Annotations, Annotation{File: fmt.Sprintf("%07d.jpg", i), GT: gt})
	}

	data, err := json.Marshal(set)
	if err != nil {
		return entry, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return entry, fmt.Errorf("failed to write annotations: %w", err)
	}
	log.Info().Msgf("wrote %d %s samples for %s", len(set.Annotations), task, name)

	entry.Samples = len(set.Annotations)
	entry.Info = set.Info
	return entry, nil
}

// sample builds a fresh game and draws one synthetic state from it.
func (g *Generator) sample(task, name string, seed uint64) (any, game.Info, error) {
	if seed == 0 {
		seed = 1
	}
	gm, err := g.newGame(g.configFor(name, seed))
	if err != nil {
		return nil, game.Info{}, err
	}
	defer func() {
		if err := gm.Close(); err != nil {
			log.Warn().Err(err).Str("game", name).Msg("closing game")
		}
	}()

	if task == Perceive {
		return gm.GenerateRandomState().Grid, gm.Info(), nil
	}
	snapshot, moves := gm.GenerateRuleState()
	var state any = snapshot.Grid
	if snapshot.FEN != "" {
		state = snapshot.FEN
	}
	return RuleTruth{RuleState: state, ValidMovements: moves}, gm.Info(), nil
}

func readAnnotations(path string) (AnnotationSet, error) {
	var set AnnotationSet
	data, err := os.ReadFile(path)
	if err != nil {
		return set, err
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return set, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return set, nil
}

func (g *Generator) writeManifest(m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(filepath.Join(g.outputDir, manifestFile), data, 0644)
}

// ReadManifest loads the manifest written by Generate.
func ReadManifest(outputDir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(outputDir, manifestFile))
	if err != nil {
		return m, err
	}
	return m, yaml.Unmarshal(data, &m)
}
