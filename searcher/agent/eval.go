package agent

import (
	"context"

	"expit/game"
	"expit/searcher"
	"expit/utils"
)

type evaluationAgent struct {
	alg *searcher.Algorithm
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
func NewEvaluationAgent(alg *searcher.Algorithm) Agent {
	return evaluationAgent{alg: alg}
}

func (a evaluationAgent) FindMove(ctx context.Context, state game.State) (game.Move, []float64, error) {
	visits, err := a.alg.Simulate(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	return state.LegalMoves()[utils.Argmax(visits)], normalize(visits), nil
}
