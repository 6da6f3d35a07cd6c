package searcher

import (
	"context"
	"fmt"

	"expit/game"
	"expit/meta"
)

type Option func(a *Algorithm)

// Algorithm is a PUCT tree search guided by an Evaluator. It runs a single
// simulation at a time; a blocking Evaluator is what lets many searches share
// one batched model.
type Algorithm struct {
	evaluator Evaluator
	budget    int
	cPuct     float64
}

// WithBudget sets the number of simulations per search.
func WithBudget(budget int) Option {
	return func(a *Algorithm) {
		if budget > 0 {
			a.budget = budget
		}
	}
}

func WithCPuct(cPuct float64) Option {
	return func(a *Algorithm) {
		if cPuct > 0 {
			a.cPuct = cPuct
		}
	}
}

func NewAlgorithm(evaluator Evaluator, options ...Option) *Algorithm {
	a := &Algorithm{ // Default values
		evaluator: evaluator,
		cPuct:     meta.C_PUCT,
	}
	for _, option := range options {
		option(a)
	}
	if a.evaluator == nil {
		panic("Must specify an evaluator")
	}
	if a.budget <= 0 {
		panic("Must specify search budget")
	}
	return a
}

func (a *Algorithm) Budget() int {
	return a.budget
}

// Simulate searches from state and returns the root visit count of every
// legal move, in LegalMoves() order.
func (a *Algorithm) Simulate(ctx context.Context, state game.State) ([]float64, error) {
	if _, over := state.Outcome(); over {
		return nil, ErrTerminalState
	}

	root := newDecision(nil, game.NoSeat)
	for i := 0; i < a.budget; i++ {
		if err := a.simulate(ctx, root, state); err != nil {
			return nil, err
		}
	}
	return root.visitCounts(), nil
}

func (a *Algorithm) simulate(ctx context.Context, root *decision, state game.State) error {
	node, state := selectLeaf(root, state, a.cPuct)

	var reward rewarder
	if outcome, over := state.Outcome(); over {
		reward = terminalRewarder(outcome)
	} else {
		if len(state.LegalMoves()) == 0 {
			return fmt.Errorf("%w: %s to move", ErrNoLegalMoves, state.Seat())
		}
		evaluation, err := a.evaluator.Evaluate(ctx, state)
		if err != nil {
			return err
		}
		node.expand(state, evaluation.Policy)
		reward = leafRewarder(state.Seat(), evaluation.Value)
	}

	backup(node, reward)
	return nil
}

func selectLeaf(root *decision, state game.State, cPuct float64) (*decision, game.State) {
	node := root
	for node.isExpanded() {
		ith := node.pickChild(cPuct)
		state = state.Play(node.moves[ith])
		node = node.children[ith]
	}
	return node, state
}

func backup(leaf *decision, reward rewarder) {
	node := leaf
	for node != nil {
		node = node.Backup(reward)
	}
}
