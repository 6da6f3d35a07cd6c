package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"expit/game"

	"gonum.org/v1/gonum/floats"
)

var ErrPolicyShape = errors.New("policy does not match legal moves")

// Evaluation is a model's estimate for one state: a prior over the state's
// legal moves (in LegalMoves() order) and a value in [-1, 1] for the seat to move.
type Evaluation struct {
	Policy []float64
	Value  float64
}

// EvalFunc evaluates a single state. It may block, e.g. on a batching scheduler.
type EvalFunc func(ctx context.Context, state game.State) (Evaluation, error)

type Evaluator interface {
	Evaluate(ctx context.Context, state game.State) (Evaluation, error)
}

type evaluator struct {
	eval EvalFunc
}

// NewEvaluator wraps an EvalFunc so that every evaluation is checked and its
// policy normalized before the search consumes it.
func NewEvaluator(eval EvalFunc) Evaluator {
	if eval == nil {
		panic("eval cannot be nil")
	}
	return evaluator{eval: eval}
}

func (e evaluator) Evaluate(ctx context.Context, state game.State) (Evaluation, error) {
	evaluation, err := e.eval(ctx, state)
	if err != nil {
		return Evaluation{}, err
	}

	moves := len(state.LegalMoves())
	if len(evaluation.Policy) != moves {
		return Evaluation{}, fmt.Errorf("%w: %d priors for %d moves", ErrPolicyShape, len(evaluation.Policy), moves)
	}
	if math.IsNaN(evaluation.Value) || evaluation.Value < LOSS || evaluation.Value > WIN {
		return Evaluation{}, fmt.Errorf("%w: value %v out of range", ErrPolicyShape, evaluation.Value)
	}

	priors := make([]float64, moves)
	copy(priors, evaluation.Policy)
	for _, prior := range priors {
		if prior < 0 || math.IsNaN(prior) {
			return Evaluation{}, fmt.Errorf("%w: invalid prior %v", ErrPolicyShape, prior)
		}
	}
	if sum := floats.Sum(priors); sum > 0 {
		floats.Scale(1/sum, priors)
	} else if moves > 0 {
		// A model without an opinion gets a uniform prior
		for i := range priors {
			priors[i] = 1 / float64(moves)
		}
	}
	return Evaluation{Policy: priors, Value: evaluation.Value}, nil
}
