package scheduler

import (
	"context"
	"fmt"

	"expit/game"
	"expit/searcher"
	"expit/searcher/agent"
)

// PlayFunc plays one worker's game. eval blocks until the worker's state has
// been evaluated in a batch; it must not be called concurrently.
type PlayFunc func(ctx context.Context, worker int, eval searcher.EvalFunc) ([]game.Position, error)

// SelfPlay plays one self-play game per worker from a new game.
func SelfPlay(newGame func() game.State, budget int, temperature float64) PlayFunc {
	return func(ctx context.Context, _ int, eval searcher.EvalFunc) ([]game.Position, error) {
		return agent.PlaySelf(ctx, newGame(), searcher.NewEvaluator(eval), budget, temperature)
	}
}

func work(ctx context.Context, id int, play PlayFunc, requests chan<- request, completions chan<- completion, done <-chan struct{}) (err error) {
	var positions []game.Position
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d panicked: %v", ErrWorkerFailure, id, r)
		}
		select {
		case completions <- completion{worker: id, positions: positions, err: err}:
		case <-done:
		}
	}()

	positions, err = play(ctx, id, evalFunc(id, requests, done))
	if err != nil {
		err = fmt.Errorf("%w: worker %d: %w", ErrWorkerFailure, id, err)
	}
	return err
}

// evalFunc is a worker's private evaluation callback.
func evalFunc(id int, requests chan<- request, done <-chan struct{}) searcher.EvalFunc {
	slot := make(chan reply, 1)
	return func(_ context.Context, state game.State) (searcher.Evaluation, error) {
		select {
		case requests <- request{worker: id, state: state, reply: slot}:
		case <-done:
			return searcher.Evaluation{}, ErrAborted
		}

		// The coordinator replies to every request it accepted, also on abort
		select {
		case r := <-slot:
			return r.evaluation, r.err
		case <-done:
			return searcher.Evaluation{}, ErrAborted
		}
	}
}
