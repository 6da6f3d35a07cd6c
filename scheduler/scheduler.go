// Package scheduler runs many self-play workers concurrently and answers
// their evaluation requests in batches: a round is evaluated with a single
// model call once every live worker is waiting on it.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"expit/experiments/metrics"
	"expit/game"
	"expit/model"
	"expit/searcher"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// BatchEvalFunc evaluates all states of a round, returning one evaluation per
// state, in order.
type BatchEvalFunc func(ctx context.Context, states []game.State) ([]searcher.Evaluation, error)

type Option func(s *Scheduler)

type Scheduler struct {
	workers      int
	batchEval    BatchEvalFunc
	stallTimeout time.Duration
	metrics      metrics.Collector
	metric       metrics.SchedulerMetric
}

// WithStallTimeout aborts a run with ErrDeadlockRisk when no worker sends a
// message for the given duration. Model calls do not count towards it.
func WithStallTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.stallTimeout = timeout
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(s *Scheduler) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

func New(workers int, batchEval BatchEvalFunc, options ...Option) *Scheduler {
	if workers <= 0 {
		panic("Must specify a positive number of workers")
	}
	if batchEval == nil {
		panic("Must specify a batch evaluation function")
	}
	s := &Scheduler{ // Default values
		workers:   workers,
		batchEval: batchEval,
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// UsingModel evaluates batches with one checkpoint of the model.
func UsingModel(m model.Model, using model.Checkpoint) BatchEvalFunc {
	return func(ctx context.Context, states []game.State) ([]searcher.Evaluation, error) {
		policies, values, err := m.EvalStates(ctx, states, using)
		if err != nil {
			return nil, model.Failure(err)
		}
		if len(policies) != len(states) || len(values) != len(states) {
			return nil, fmt.Errorf("%w: %d policies and %d values for %d states",
				model.ErrModelFailure, len(policies), len(values), len(states))
		}
		return lo.Map(policies, func(policy []float64, i int) searcher.Evaluation {
			return searcher.Evaluation{Policy: policy, Value: values[i]}
		}), nil
	}
}

// Run plays one game per worker and returns the positions of every game, in
// no particular order. On failure it returns the positions collected so far
// with the first error: a model failure, a worker failure, the context's
// error or ErrDeadlockRisk.
func (s *Scheduler) Run(ctx context.Context, play PlayFunc) ([]game.Position, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, workerCtx := errgroup.WithContext(runCtx)

	requests := make(chan request)
	completions := make(chan completion)
	done := make(chan struct{})

	c := newCoordinator(s.workers, s.batchEval, s.metrics)
	c.onAbort = cancel

	s.metrics.Start(s.workers)
	for id := 0; id < s.workers; id++ {
		g.Go(func() error {
			return work(workerCtx, id, play, requests, completions, done)
		})
	}

	stalled := c.loop(runCtx, requests, completions, s.stallTimeout)
	close(done) // Releases workers still blocked in the protocol
	if stalled {
		log.Warn().Msgf("not waiting for %d stalled workers", c.alive)
	} else if err := g.Wait(); err != nil && c.failure == nil {
		c.failure = err
	}

	s.metric = s.metrics.Complete()
	log.Debug().Msgf("scheduler run over: %+v", s.metric)
	return c.positions, c.failure
}

// Metric of the last run, when collected with WithMetrics.
func (s *Scheduler) Metric() metrics.SchedulerMetric {
	return s.metric
}
