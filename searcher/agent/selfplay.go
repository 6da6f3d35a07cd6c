package agent

import (
	"context"

	"expit/engine"
	"expit/game"
	"expit/searcher"

	"github.com/samber/lo"
)

type step struct {
	state  game.State
	policy []float64
	seat   game.Seat
}

// recorder remembers every decision of the agent it wraps.
type recorder struct {
	agent Agent
	steps []step
}

func (r *recorder) FindMove(ctx context.Context, state game.State) (game.Move, []float64, error) {
	move, policy, err := r.agent.FindMove(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	r.steps = append(r.steps, step{state: state, policy: policy, seat: state.Seat()})
	return move, policy, nil
}

// PlaySelf plays one game against itself from initial and returns one
// Position per move played, valued by the final reward of the seat that moved.
func PlaySelf(ctx context.Context, initial game.State, evaluator searcher.Evaluator, budget int, temperature float64) ([]game.Position, error) {
	alg := searcher.NewAlgorithm(evaluator, searcher.WithBudget(budget))
	player := &recorder{agent: NewTrainingAgent(alg, temperature)}

	players := make([]engine.Player, game.NumSeats)
	for seat := range players {
		players[seat] = player
	}
	result, err := engine.Run(ctx, initial, players)
	if err != nil {
		return nil, err
	}

	rewards := searcher.RewardsFromResult(result.Outcome)
	return lo.Map(player.steps, func(s step, _ int) game.Position {
		return game.Position{State: s.state, Policy: s.policy, Value: rewards[s.seat]}
	}), nil
}
