// Package trainer runs the expert iteration loop: batched self-play, model
// training and an arena deciding whether the trained model is kept.
package trainer

import (
	"context"
	"fmt"
	"time"

	"expit/experiments/metrics"
	"expit/game"
	"expit/meta"
	"expit/model"
	"expit/scheduler"
	"expit/searcher/agent"

	"github.com/rs/zerolog/log"
)

type Option func(t *Trainer)

type Trainer struct {
	model             model.Model
	newGame           func() game.State
	iterations        int
	iterationSize     int
	searchSize        int
	exampleSearchSize int
	temperature       float64
	selfPlay          model.Checkpoint
	arena             *Arena
	stallTimeout      time.Duration
	writer            *metrics.Writer
	onExample         func(iteration int, positions []game.Position)
}

func WithIterations(iterations int) Option {
	return func(t *Trainer) {
		if iterations > 0 {
			t.iterations = iterations
		}
	}
}

// WithIterationSize sets the number of self-play games, and workers, per iteration.
func WithIterationSize(games int) Option {
	return func(t *Trainer) {
		if games > 0 {
			t.iterationSize = games
		}
	}
}

func WithSearchSize(budget int) Option {
	return func(t *Trainer) {
		if budget > 0 {
			t.searchSize = budget
		}
	}
}

func WithExampleSearchSize(budget int) Option {
	return func(t *Trainer) {
		if budget > 0 {
			t.exampleSearchSize = budget
		}
	}
}

func WithTemperature(temperature float64) Option {
	return func(t *Trainer) {
		if temperature >= 0 {
			t.temperature = temperature
		}
	}
}

// WithSelfPlayCheckpoint selects the checkpoint answering batched self-play
// evaluations.
func WithSelfPlayCheckpoint(checkpoint model.Checkpoint) Option {
	return func(t *Trainer) {
		t.selfPlay = checkpoint
	}
}

func WithArena(arena Arena) Option {
	return func(t *Trainer) {
		t.arena = &arena
	}
}

func WithStallTimeout(timeout time.Duration) Option {
	return func(t *Trainer) {
		t.stallTimeout = timeout
	}
}

// WithWriter stores one record per iteration.
func WithWriter(writer *metrics.Writer) Option {
	return func(t *Trainer) {
		t.writer = writer
	}
}

// WithExampleHook is called with every diagnostic game as soon as it is played.
func WithExampleHook(hook func(iteration int, positions []game.Position)) Option {
	return func(t *Trainer) {
		if hook != nil {
			t.onExample = hook
		}
	}
}

func New(m model.Model, newGame func() game.State, options ...Option) *Trainer {
	t := &Trainer{ // Default values
		model:             m,
		newGame:           newGame,
		iterations:        1,
		iterationSize:     100,
		searchSize:        100,
		exampleSearchSize: meta.EXAMPLE_SEARCH_SIZE,
		temperature:       meta.SELF_PLAY_TEMPERATURE,
		selfPlay:          model.Train,
		onExample:         func(int, []game.Position) {},
	}
	for _, option := range options {
		option(t)
	}
	if t.arena == nil {
		arena := DefaultArena(t.searchSize)
		t.arena = &arena
	}
	return t
}

// Train runs every iteration and returns the diagnostic games: one played at
// the start of each iteration and one after the last.
func (t *Trainer) Train(ctx context.Context) ([][]game.Position, error) {
	examples := make([][]game.Position, 0, t.iterations+1)
	records := make([]metrics.IterationRecord, 0, t.iterations)

	for i := 1; i <= t.iterations; i++ {
		example, err := t.playExample(ctx, i)
		if err != nil {
			return examples, fmt.Errorf("iteration %d: diagnostic game: %w", i, err)
		}
		examples = append(examples, example)

		record, err := t.step(ctx, i)
		if err != nil {
			return examples, fmt.Errorf("iteration %d: %w", i, err)
		}
		records = append(records, record)
		if t.writer != nil {
			if err := t.writer.WriteIterationRecords(records); err != nil {
				return examples, err
			}
		}

		log.Info().Msgf("finished step %d", i)
	}

	example, err := t.playExample(ctx, t.iterations+1)
	if err != nil {
		return examples, fmt.Errorf("final diagnostic game: %w", err)
	}
	return append(examples, example), nil
}

// playExample plays a single-threaded, low budget game with the TRAIN checkpoint.
func (t *Trainer) playExample(ctx context.Context, iteration int) ([]game.Position, error) {
	evaluator := model.NewEvaluator(t.model, model.Train)
	example, err := agent.PlaySelf(ctx, t.newGame(), evaluator, t.exampleSearchSize, t.temperature)
	if err != nil {
		return nil, err
	}
	t.onExample(iteration, example)
	return example, nil
}

func (t *Trainer) step(ctx context.Context, iteration int) (metrics.IterationRecord, error) {
	record := metrics.IterationRecord{Iteration: iteration}

	collector := metrics.NewCollector()
	s := scheduler.New(t.iterationSize, scheduler.UsingModel(t.model, t.selfPlay),
		scheduler.WithMetrics(collector),
		scheduler.WithStallTimeout(t.stallTimeout),
	)
	positions, err := s.Run(ctx, scheduler.SelfPlay(t.newGame, t.searchSize, t.temperature))
	if err != nil {
		return record, fmt.Errorf("self-play: %w", err)
	}
	record.Positions = len(positions)
	record.SchedulerMetric = s.Metric()
	log.Debug().Msgf("self-play produced %d positions in %d rounds", len(positions), record.Rounds)

	t.model.AddData(positions)
	start := time.Now()
	if err := t.model.Train(ctx); err != nil {
		if ctx.Err() == nil {
			err = model.Failure(err)
		}
		return record, fmt.Errorf("training: %w", err)
	}
	record.TrainDuration = time.Since(start)

	result, err := t.arena.Evaluate(ctx, t.newGame,
		model.NewEvaluator(t.model, model.Best),
		model.NewEvaluator(t.model, model.Train),
	)
	if err != nil {
		return record, fmt.Errorf("arena: %w", err)
	}
	record.ArenaReward = result.Reward
	record.ArenaGames = result.Games
	record.Accepted = result.Accepted

	if result.Accepted {
		t.model.NewCheckpoint()
	} else {
		t.model.RestoreCheckpoint()
	}
	return record, nil
}
