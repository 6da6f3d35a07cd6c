package scheduler

import (
	"context"
	"fmt"
	"time"

	"expit/experiments/metrics"
	"expit/game"
	"expit/model"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// coordinator owns the round accounting of one run. Only the goroutine
// calling Run touches it, one message at a time, so every
// read-modify-decide step below is atomic.
type coordinator struct {
	alive     int
	pending   []request
	waiting   map[int]bool // Workers with an outstanding request
	positions []game.Position
	failure   error
	batchEval BatchEvalFunc
	metrics   metrics.Collector
	onAbort   func()
}

func newCoordinator(workers int, batchEval BatchEvalFunc, collector metrics.Collector) *coordinator {
	return &coordinator{
		alive:     workers,
		waiting:   make(map[int]bool, workers),
		batchEval: batchEval,
		metrics:   collector,
		onAbort:   func() {},
	}
}

func (c *coordinator) loop(ctx context.Context, requests <-chan request, completions <-chan completion, stallTimeout time.Duration) (stalled bool) {
	cancelled := ctx.Done()

	var stall <-chan time.Time
	var timer *time.Timer
	if stallTimeout > 0 {
		timer = time.NewTimer(stallTimeout)
		defer timer.Stop()
		stall = timer.C
	}

	for {
		// Restarted after the previous message is handled, model calls included
		if timer != nil {
			timer.Reset(stallTimeout)
		}

		var sig signal
		select {
		case r := <-requests:
			sig = c.onRequest(r)
		case m := <-completions:
			sig = c.onCompletion(m)
		case <-cancelled:
			cancelled = nil
			c.abort(ctx.Err())
			sig = c.next()
		case <-stall:
			c.abort(fmt.Errorf("%w: no worker message for %s with %d workers alive", ErrDeadlockRisk, stallTimeout, c.alive))
			return true
		}

		switch sig {
		case roundReady:
			c.drain(ctx)
		case terminate:
			return false
		}
	}
}

func (c *coordinator) onRequest(r request) signal {
	if c.failure != nil {
		deliver(r, reply{err: c.refusal()})
		return proceed
	}
	if c.waiting[r.worker] {
		c.abort(fmt.Errorf("%w: worker %d sent a second outstanding request", ErrDeadlockRisk, r.worker))
		deliver(r, reply{err: c.refusal()})
		return c.next()
	}

	c.metrics.AddRequest()
	c.waiting[r.worker] = true
	c.pending = append(c.pending, r)
	return c.next()
}

func (c *coordinator) onCompletion(m completion) signal {
	if c.waiting[m.worker] {
		c.abort(fmt.Errorf("%w: worker %d finished with an outstanding request", ErrDeadlockRisk, m.worker))
	}

	c.alive--
	c.positions = append(c.positions, m.positions...)
	if m.err != nil {
		c.abort(m.err)
	}
	log.Debug().Msgf("worker %d finished with %d positions, %d workers alive", m.worker, len(m.positions), c.alive)
	return c.next()
}

// next decides what follows a change of the counts: a round is ready once
// every live worker awaits an evaluation.
func (c *coordinator) next() signal {
	switch {
	case len(c.pending) > c.alive:
		c.abort(fmt.Errorf("%w: %d pending requests for %d live workers", ErrDeadlockRisk, len(c.pending), c.alive))
		return c.next()
	case c.alive == 0:
		return terminate
	case len(c.pending) == c.alive:
		return roundReady
	}
	return proceed
}

// drain evaluates the current batch with a single model call and fans the
// results out to the requesting workers.
func (c *coordinator) drain(ctx context.Context) {
	batch := c.take()
	if len(batch) == 0 {
		return
	}

	states := lo.Map(batch, func(r request, _ int) game.State { return r.state })
	evaluations, err := c.batchEval(ctx, states)
	if err == nil && len(evaluations) != len(batch) {
		err = fmt.Errorf("%d evaluations for %d states", len(evaluations), len(batch))
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		} else {
			err = model.Failure(err)
		}
		c.pending = batch
		c.abort(err)
		return
	}

	c.metrics.AddRound(len(batch))
	for i, r := range batch {
		deliver(r, reply{evaluation: evaluations[i]})
	}
}

// take empties the batch.
func (c *coordinator) take() []request {
	batch := c.pending
	c.pending = nil
	for _, r := range batch {
		delete(c.waiting, r.worker)
	}
	return batch
}

// abort records the first failure and refuses every pending request. The
// coordinator keeps accounting until every worker is done.
func (c *coordinator) abort(err error) {
	if c.failure == nil {
		c.failure = err
		log.Warn().Err(err).Msgf("aborting run with %d workers alive", c.alive)
		c.onAbort()
	}
	for _, r := range c.take() {
		deliver(r, reply{err: c.refusal()})
	}
}

func (c *coordinator) refusal() error {
	return fmt.Errorf("%w: %w", ErrAborted, c.failure)
}

// deliver never blocks: a full reply slot means the worker broke the
// protocol, and the reply is dropped.
func deliver(r request, rep reply) {
	select {
	case r.reply <- rep:
	default:
		log.Error().Msgf("dropped reply to worker %d: reply slot is full", r.worker)
	}
}
