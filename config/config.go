package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"playground/game"
	"playground/meta"
	"playground/utils"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "PLAYGROUND"

type Config struct {
	LogLevel  string                 `mapstructure:"log_level"`
	LogPretty bool                   `mapstructure:"log_pretty"`
	Server    ServerConfig           `mapstructure:"server"`
	Benchmark BenchmarkConfig        `mapstructure:"benchmark"`
	Evaluate  EvaluateConfig         `mapstructure:"evaluate"`
	Chess     ChessConfig            `mapstructure:"chess"`
	Games     map[string]game.Config `mapstructure:"games"`
}

type ServerConfig struct {
	Addr       string        `mapstructure:"addr"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type BenchmarkConfig struct {
	OutputDir  string   `mapstructure:"output_dir"`
	SampleSize int      `mapstructure:"sample_size"`
	Seed       uint64   `mapstructure:"seed"`
	Tasks      []string `mapstructure:"tasks"`
	Games      []string `mapstructure:"games"`
}

type EvaluateConfig struct {
	Rounds        int      `mapstructure:"rounds"`
	MaximumTrials int      `mapstructure:"maximum_trials"`
	OutputDir     string   `mapstructure:"output_dir"`
	DBPath        string   `mapstructure:"db_path"`
	Agent         string   `mapstructure:"agent"`
	AgentURL      string   `mapstructure:"agent_url"`
	Seed          uint64   `mapstructure:"seed"`
	Games         []string `mapstructure:"games"`
}

type ChessConfig struct {
	EnginePath string        `mapstructure:"engine_path"`
	MoveTime   time.Duration `mapstructure:"move_time"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.session_ttl", meta.SESSION_TTL)
	v.SetDefault("benchmark.output_dir", "benchmark")
	v.SetDefault("benchmark.sample_size", meta.SAMPLE_SIZE)
	v.SetDefault("benchmark.seed", 0)
	v.SetDefault("benchmark.tasks", []string{"perceive", "rule"})
	v.SetDefault("benchmark.games", game.Names)
	v.SetDefault("evaluate.rounds", meta.ROUNDS)
	v.SetDefault("evaluate.maximum_trials", meta.MAX_TRIALS)
	v.SetDefault("evaluate.output_dir", "experiments")
	v.SetDefault("evaluate.db_path", "data/results.db")
	v.SetDefault("evaluate.agent", "random")
	v.SetDefault("evaluate.agent_url", "")
	v.SetDefault("evaluate.seed", 0)
	v.SetDefault("evaluate.games", game.Names)
	v.SetDefault("chess.engine_path", "stockfish")
	v.SetDefault("chess.move_time", meta.MOVE_TIME)
}

// Load reads .env, then the optional YAML file at path, then PLAYGROUND_*
// environment variables, each overriding the previous. An empty path skips
// the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	c.Benchmark.Games = utils.Dedupe(c.Benchmark.Games)
	c.Evaluate.Games = utils.Dedupe(c.Evaluate.Games)
	for _, names := range [][]string{c.Benchmark.Games, c.Evaluate.Games} {
		for _, name := range names {
			if !known(name) {
				return fmt.Errorf("%w: %q", game.ErrUnknownGame, name)
			}
		}
	}
	for name := range c.Games {
		if !known(name) {
			return fmt.Errorf("%w: %q", game.ErrUnknownGame, name)
		}
	}
	if c.Evaluate.MaximumTrials < 1 {
		return fmt.Errorf("evaluate.maximum_trials must be at least 1, got %d", c.Evaluate.MaximumTrials)
	}
	return nil
}

func known(name string) bool {
	return utils.FindIndex(game.Names, name) >= 0
}

// GameConfig returns the settings for one game: per-game overrides from the
// games section, with chess engine settings filled in and seed applied when
// the override has none.
func (c *Config) GameConfig(name string, seed uint64) game.Config {
	cfg := c.Games[name]
	cfg.Name = name
	if cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if name == game.Chess {
		if cfg.EnginePath == "" {
			cfg.EnginePath = c.Chess.EnginePath
		}
		if cfg.MoveTime == 0 {
			cfg.MoveTime = c.Chess.MoveTime
		}
	}
	return cfg
}

// SetupLogging configures the global zerolog logger.
func SetupLogging(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
