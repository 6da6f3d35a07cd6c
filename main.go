package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"expit/config"
	"expit/experiments"
	"expit/experiments/metrics"
	"expit/game"
	"expit/game/tictactoe"
	"expit/model"
	"expit/trainer"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	logLevel := flag.String("log-level", "", "Log level, overrides the config")
	experiment := flag.String("experiment", "", "Run an experiment instead of training: batching")
	quiet := flag.Bool("quiet", false, "Do not print diagnostic games")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	newGame := func() game.State { return tictactoe.New() }
	m := model.NewTabular(model.WithLearningRate(cfg.LearningRate), model.WithMaxData(cfg.MaxData))

	switch *experiment {
	case "":
	case "batching":
		setup := experiments.DefaultBatchingSetup
		setup.SearchSize = cfg.SearchSize
		dir, err := experiments.RunBatchingExperiment(ctx, cfg.OutputDir, setup, newGame, m)
		if err != nil {
			log.Error().Err(err).Msg("batching experiment failed")
			os.Exit(1)
		}
		log.Info().Msgf("results stored in %s", dir)
		return
	default:
		log.Fatal().Msgf("unknown experiment %q", *experiment)
	}

	if err := train(ctx, cfg, newGame, m, *quiet); err != nil {
		log.Error().Err(err).Msg("training failed")
		os.Exit(1)
	}
}

func train(ctx context.Context, cfg config.Config, newGame func() game.State, m model.Model, quiet bool) error {
	writer, err := metrics.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := writer.WriteSetup(cfg); err != nil {
		return err
	}
	checkpoint, err := cfg.Checkpoint()
	if err != nil {
		return err
	}

	output := termenv.NewOutput(os.Stdout)
	t := trainer.New(m, newGame,
		trainer.WithIterations(cfg.Iterations),
		trainer.WithIterationSize(cfg.IterationSize),
		trainer.WithSearchSize(cfg.SearchSize),
		trainer.WithExampleSearchSize(cfg.ExampleSearchSize),
		trainer.WithTemperature(cfg.Temperature),
		trainer.WithSelfPlayCheckpoint(checkpoint),
		trainer.WithArena(trainer.Arena{
			GamesPerOrientation: cfg.ArenaGames,
			Margin:              cfg.AcceptMargin,
			SearchSize:          cfg.SearchSize,
		}),
		trainer.WithStallTimeout(cfg.StallTimeout),
		trainer.WithWriter(writer),
		trainer.WithExampleHook(func(iteration int, positions []game.Position) {
			if !quiet {
				output.WriteString(renderExample(output, iteration, positions))
			}
		}),
	)

	log.Info().Msgf("training for %d iterations of %d games, results in %s", cfg.Iterations, cfg.IterationSize, writer.Dir())
	examples, err := t.Train(ctx)
	if err != nil {
		return err
	}
	log.Info().Msgf("training complete, %d diagnostic games played", len(examples))
	return nil
}
