package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playground/agent"
	"playground/benchmark"
	"playground/config"
	"playground/experiments"
	"playground/experiments/store"
	"playground/gamemaster"
	"playground/server"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const usage = `usage: playground <command> [flags]

commands:
  serve      run the game session server
  generate   write perception and rule benchmark samples
  evaluate   play agents against every game and record results
  agent      serve a random-move agent over HTTP
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "serve":
		err = runServe(ctx, args)
	case "generate":
		err = runGenerate(ctx, args)
	case "evaluate":
		err = runEvaluate(ctx, args)
	case "agent":
		err = runAgent(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

// load parses the shared flags and the config file they name.
func load(fs *flag.FlagSet, args []string) (*config.Config, error) {
	path := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*path)
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address, overrides server.addr")
	results := fs.Bool("results", true, "serve stored evaluation results")
	cfg, err := load(fs, args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	master := gamemaster.NewMaster(gamemaster.WithTTL(cfg.Server.SessionTTL))
	defer master.Shutdown()
	go master.Run(ctx, time.Minute)

	var opts []server.Option
	if *results {
		st, err := store.Open(cfg.Evaluate.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, server.WithStore(st))
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: server.New(master, opts...).Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	out := fs.String("out", "", "output directory, overrides benchmark.output_dir")
	cfg, err := load(fs, args)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.Benchmark.OutputDir = *out
	}

	gen := benchmark.NewGenerator(cfg.Benchmark.OutputDir,
		benchmark.WithSampleSize(cfg.Benchmark.SampleSize),
		benchmark.WithSeed(cfg.Benchmark.Seed),
		benchmark.WithGameConfig(cfg.GameConfig),
	)
	manifest, err := gen.Generate(ctx, cfg.Benchmark.Tasks, cfg.Benchmark.Games)
	if err != nil {
		return err
	}
	log.Info().Msgf("wrote %d benchmark sets to %s", len(manifest.Entries), cfg.Benchmark.OutputDir)
	return nil
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	name := fs.String("name", "", "run name, defaults to the agent name and a timestamp")
	cfg, err := load(fs, args)
	if err != nil {
		return err
	}

	ev := experiments.Evaluation{
		Name:       *name,
		AgentName:  cfg.Evaluate.Agent,
		Games:      cfg.Evaluate.Games,
		Rounds:     cfg.Evaluate.Rounds,
		MaxTrials:  cfg.Evaluate.MaximumTrials,
		Seed:       cfg.Evaluate.Seed,
		GameConfig: cfg.GameConfig,
		OutputDir:  cfg.Evaluate.OutputDir,
	}
	if ev.Name == "" {
		ev.Name = fmt.Sprintf("%s-%s", ev.AgentName, time.Now().Format("20060102-150405"))
	}

	switch cfg.Evaluate.Agent {
	case "random":
		ev.NewAgent = func(seed uint64) agent.Agent { return agent.NewRandom(rand.New(rand.NewSource(seed))) }
	case "remote":
		if cfg.Evaluate.AgentURL == "" {
			return fmt.Errorf("evaluate.agent_url is required for the remote agent")
		}
		ev.NewAgent = func(uint64) agent.Agent { return agent.NewRemote(cfg.Evaluate.AgentURL) }
	default:
		return fmt.Errorf("unknown agent %q, expected random or remote", cfg.Evaluate.Agent)
	}

	if cfg.Evaluate.DBPath != "" {
		st, err := store.Open(cfg.Evaluate.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		ev.Store = st
	}

	result, err := experiments.Run(ctx, ev)
	if err != nil {
		return err
	}
	log.Info().Msgf("finished %s: %d games, %d moves", ev.Name, len(result.Games), len(result.Moves))
	return nil
}

func runAgent(args []string) error {
	fs := flag.NewFlagSet("agent", flag.ExitOnError)
	addr := fs.String("addr", ":8090", "listen address")
	seed := fs.Uint64("seed", 0, "random seed, zero for time based")
	if _, err := load(fs, args); err != nil {
		return err
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	log.Info().Str("addr", *addr).Msg("starting random agent")
	return http.ListenAndServe(*addr, agent.Handler(agent.NewRandom(rand.New(rand.NewSource(*seed)))))
}
