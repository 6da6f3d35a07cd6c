package model

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"expit/game"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

type entry struct {
	policy []float64
	value  float64
}

type table map[game.StateHash]entry

func (t table) clone() table {
	c := make(table, len(t))
	for hash, e := range t {
		c[hash] = entry{policy: slices.Clone(e.policy), value: e.value}
	}
	return c
}

type TabularOption func(t *Tabular)

// Tabular is a lookup table model: every state seen in training data is
// pulled towards its targets by the learning rate; unseen states get a
// uniform policy and value 0.
type Tabular struct {
	mu           sync.RWMutex
	best         table
	train        table
	data         []game.Position
	learningRate float64
	maxData      int
}

func WithLearningRate(rate float64) TabularOption {
	return func(t *Tabular) {
		if rate > 0 && rate <= 1 {
			t.learningRate = rate
		}
	}
}

// WithMaxData bounds the training data to the most recent positions.
func WithMaxData(positions int) TabularOption {
	return func(t *Tabular) {
		if positions > 0 {
			t.maxData = positions
		}
	}
}

func NewTabular(options ...TabularOption) *Tabular {
	t := &Tabular{ // Default values
		best:         table{},
		train:        table{},
		learningRate: 0.5,
		maxData:      100_000,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

func (t *Tabular) EvalStates(ctx context.Context, states []game.State, using Checkpoint) ([][]float64, []float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var params table
	switch using {
	case Best:
		params = t.best
	case Train:
		params = t.train
	default:
		return nil, nil, fmt.Errorf("%w: unknown %s", ErrModelFailure, using)
	}

	policies := make([][]float64, len(states))
	values := make([]float64, len(states))
	for i, state := range states {
		moves := len(state.LegalMoves())
		e, ok := params[state.Hash()]
		if !ok || len(e.policy) != moves {
			policies[i] = uniform(moves)
			continue
		}
		policies[i] = slices.Clone(e.policy)
		values[i] = e.value
	}
	return policies, values, nil
}

func (t *Tabular) AddData(positions []game.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data = append(t.data, positions...)
	if excess := len(t.data) - t.maxData; excess > 0 {
		t.data = slices.Clone(t.data[excess:])
	}
}

func (t *Tabular) Train(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	skipped := 0
	for i, position := range t.data {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		hash := position.State.Hash()
		current, ok := t.train[hash]
		if !ok {
			current = entry{policy: uniform(len(position.Policy))}
		}
		if len(current.policy) != len(position.Policy) {
			skipped++
			continue
		}

		// new = (1-lr)*current + lr*target
		policy := make([]float64, len(current.policy))
		floats.ScaleTo(policy, 1-t.learningRate, current.policy)
		floats.AddScaled(policy, t.learningRate, position.Policy)
		value := (1-t.learningRate)*current.value + t.learningRate*position.Value
		t.train[hash] = entry{policy: policy, value: value}
	}
	if skipped > 0 {
		log.Warn().Msgf("skipped %d positions with mismatched policies", skipped)
	}
	log.Debug().Msgf("trained on %d positions, %d states known", len(t.data), len(t.train))
	return nil
}

func (t *Tabular) NewCheckpoint() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.best = t.train.clone()
}

func (t *Tabular) RestoreCheckpoint() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.train = t.best.clone()
}

// Known returns the hashes of the states the checkpoint has parameters for.
func (t *Tabular) Known(using Checkpoint) []game.StateHash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	params := t.train
	if using == Best {
		params = t.best
	}
	return slices.Sorted(maps.Keys(params))
}

func (t *Tabular) DataSize() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.data)
}

func uniform(n int) []float64 {
	policy := make([]float64, n)
	if n > 0 {
		floats.AddConst(1/float64(n), policy)
	}
	return policy
}
