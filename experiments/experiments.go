// Package experiments measures the batching scheduler.
package experiments

import (
	"context"
	"fmt"
	"path/filepath"

	"expit/experiments/metrics"
	"expit/game"
	"expit/meta"
	"expit/model"
	"expit/scheduler"

	"github.com/rs/zerolog/log"
)

// BatchingSetup describes a batching experiment; it is stored with its results.
type BatchingSetup struct {
	WorkerCounts []int `yaml:"worker_counts"`
	Runs         int   `yaml:"runs"` // Per worker count
	SearchSize   int   `yaml:"search_size"`
}

var DefaultBatchingSetup = BatchingSetup{
	WorkerCounts: []int{1, 2, 4, 8, 16, 32, 64},
	Runs:         3,
	SearchSize:   50,
}

// RunBatchingExperiment runs batched self-play with a growing number of
// workers sharing one model, and stores the scheduler metrics of every run
// under root. It returns the directory holding the results.
func RunBatchingExperiment(ctx context.Context, root string, setup BatchingSetup, newGame func() game.State, m model.Model) (string, error) {
	count := 0
	records := []metrics.BatchingRecord{}

	log.Info().Msg("starting batching experiment...")

	for wi, workers := range setup.WorkerCounts {
		log.Info().Msgf("starting worker count %d of %d with %d workers...", wi+1, len(setup.WorkerCounts), workers)

		for i := 0; i < setup.Runs; i++ {
			s := scheduler.New(workers, scheduler.UsingModel(m, model.Best), scheduler.WithMetrics(metrics.NewCollector()))
			positions, err := s.Run(ctx, scheduler.SelfPlay(newGame, setup.SearchSize, meta.SELF_PLAY_TEMPERATURE))
			if err != nil {
				return "", fmt.Errorf("run %d with %d workers: %w", i+1, workers, err)
			}

			count++
			metric := s.Metric()
			records = append(records, metrics.BatchingRecord{
				Run:             count,
				Positions:       len(positions),
				SchedulerMetric: metric,
			})

			log.Info().Msgf("completed run %d of %d with %d model calls, mean batch %.2f", i+1, setup.Runs, metric.Rounds, metric.MeanBatch())
		}
	}

	log.Info().Msg("completed batching experiment")

	// Store experiment setup and results
	writer, err := metrics.NewWriter(filepath.Join(root, "batching"))
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteSetup(setup)
	if err != nil {
		return "", fmt.Errorf("failed to store experiment setup: %w", err)
	}
	log.Info().Msg("stored experiment setup")

	err = writer.WriteBatchingRecords(records)
	if err != nil {
		return "", fmt.Errorf("failed to write batching records: %w", err)
	}
	log.Info().Msg("stored batching records")

	return writer.Dir(), nil
}
