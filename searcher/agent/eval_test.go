package agent

import (
	"context"
	"errors"
	"testing"

	"expit/game"
	"expit/game/tictactoe"
	"expit/searcher"

	"github.com/stretchr/testify/require"
)

func TestEvaluationAgentFindMove(t *testing.T) {
	t.Run("plays the most visited move", func(t *testing.T) {
		state := play(0, 1, 4, 2)
		a := NewEvaluationAgent(searcher.NewAlgorithm(uniformEvaluator(), searcher.WithBudget(100)))

		move, policy, err := a.FindMove(context.Background(), state)

		require.NoError(t, err)
		require.Equal(t, game.Move(tictactoe.Cell(8)), move)
		require.Len(t, policy, len(state.LegalMoves()))
	})

	t.Run("propagates search errors", func(t *testing.T) {
		boom := errors.New("boom")
		evaluator := searcher.NewEvaluator(func(context.Context, game.State) (searcher.Evaluation, error) {
			return searcher.Evaluation{}, boom
		})
		a := NewEvaluationAgent(searcher.NewAlgorithm(evaluator, searcher.WithBudget(10)))

		_, _, err := a.FindMove(context.Background(), tictactoe.New())
		require.ErrorIs(t, err, boom)
	})
}
