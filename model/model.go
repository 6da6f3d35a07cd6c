// Package model defines the contract of the decision model being trained and
// how searches consume it.
package model

import (
	"context"
	"errors"
	"fmt"

	"expit/game"
	"expit/searcher"
)

var ErrModelFailure = errors.New("model failure")

// Checkpoint selects which parameter set answers an evaluation.
type Checkpoint int

const (
	// Best is the last accepted parameter set
	Best Checkpoint = iota
	// Train is the candidate being fitted
	Train
)

func (c Checkpoint) String() string {
	switch c {
	case Best:
		return "best"
	case Train:
		return "train"
	default:
		return fmt.Sprintf("checkpoint(%d)", int(c))
	}
}

func ParseCheckpoint(name string) (Checkpoint, error) {
	switch name {
	case "best":
		return Best, nil
	case "train":
		return Train, nil
	}
	return 0, fmt.Errorf("unknown checkpoint %q", name)
}

// Model holds a BEST and a TRAIN checkpoint. Exactly one of each exists.
type Model interface {
	// EvalStates returns one policy (over each state's legal moves) and one
	// value per state, in order
	EvalStates(ctx context.Context, states []game.State, using Checkpoint) (policies [][]float64, values []float64, err error)
	AddData(positions []game.Position)
	// Train fits the TRAIN checkpoint on the data added so far
	Train(ctx context.Context) error
	// NewCheckpoint promotes TRAIN to BEST
	NewCheckpoint()
	// RestoreCheckpoint resets TRAIN to BEST
	RestoreCheckpoint()
}

// NewEvaluator evaluates states one at a time with the given checkpoint.
func NewEvaluator(m Model, using Checkpoint) searcher.Evaluator {
	return searcher.NewEvaluator(func(ctx context.Context, state game.State) (searcher.Evaluation, error) {
		policies, values, err := m.EvalStates(ctx, []game.State{state}, using)
		if err != nil {
			return searcher.Evaluation{}, Failure(err)
		}
		if len(policies) != 1 || len(values) != 1 {
			return searcher.Evaluation{}, fmt.Errorf("%w: %d results for 1 state", ErrModelFailure, len(values))
		}
		return searcher.Evaluation{Policy: policies[0], Value: values[0]}, nil
	})
}

// Failure marks err as a model failure, unless it already is one.
func Failure(err error) error {
	if err == nil || errors.Is(err, ErrModelFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrModelFailure, err)
}
