package model

import (
	"context"
	"testing"

	"expit/game"
	"expit/game/tictactoe"

	"github.com/matryer/is"
)

func position(state game.State, move int, value float64) game.Position {
	policy := make([]float64, len(state.LegalMoves()))
	policy[move] = 1
	return game.Position{State: state, Policy: policy, Value: value}
}

func TestTabularEvalStates(t *testing.T) {
	t.Run("unknown states get a uniform policy and value 0", func(t *testing.T) {
		is := is.New(t)
		m := NewTabular()
		states := []game.State{tictactoe.New(), tictactoe.New().Play(tictactoe.Cell(0))}

		policies, values, err := m.EvalStates(context.Background(), states, Best)

		is.NoErr(err)
		is.Equal(len(policies), 2)
		is.Equal(len(policies[0]), 9)
		is.Equal(len(policies[1]), 8)
		is.Equal(policies[1][0], 1.0/8)
		is.Equal(values, []float64{0, 0})
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		is := is.New(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := NewTabular().EvalStates(ctx, []game.State{tictactoe.New()}, Train)

		is.True(err != nil)
	})
}

func TestTabularTrain(t *testing.T) {
	t.Run("blends targets with the learning rate", func(t *testing.T) {
		is := is.New(t)
		m := NewTabular(WithLearningRate(0.5))
		state := tictactoe.New()
		m.AddData([]game.Position{position(state, 4, 1)})

		is.NoErr(m.Train(context.Background()))

		policies, values, err := m.EvalStates(context.Background(), []game.State{state}, Train)
		is.NoErr(err)
		is.Equal(values[0], 0.5)
		is.Equal(policies[0][4], 0.5+0.5/9)
		is.Equal(policies[0][0], 0.5/9)
	})

	t.Run("checkpoints promote and restore the train table", func(t *testing.T) {
		is := is.New(t)
		m := NewTabular()
		m.AddData([]game.Position{position(tictactoe.New(), 0, 1)})
		is.NoErr(m.Train(context.Background()))
		is.Equal(len(m.Known(Train)), 1)
		is.Equal(len(m.Known(Best)), 0)

		m.NewCheckpoint()
		is.Equal(m.Known(Best), m.Known(Train))

		m.AddData([]game.Position{position(tictactoe.New().Play(tictactoe.Cell(4)), 0, -1)})
		is.NoErr(m.Train(context.Background()))
		is.Equal(len(m.Known(Train)), 2)

		m.RestoreCheckpoint()
		is.Equal(len(m.Known(Train)), 1)
	})

	t.Run("restored checkpoints do not share parameters", func(t *testing.T) {
		is := is.New(t)
		m := NewTabular(WithLearningRate(1))
		state := tictactoe.New()
		m.AddData([]game.Position{position(state, 0, 1)})
		is.NoErr(m.Train(context.Background()))
		m.NewCheckpoint()

		policies, _, _ := m.EvalStates(context.Background(), []game.State{state}, Best)
		policies[0][0] = 42

		again, _, _ := m.EvalStates(context.Background(), []game.State{state}, Best)
		is.Equal(again[0][0], 1.0)
	})

	t.Run("keeps only the most recent data", func(t *testing.T) {
		is := is.New(t)
		m := NewTabular(WithMaxData(2))
		state := tictactoe.New()
		m.AddData([]game.Position{position(state, 0, 1), position(state, 1, 1)})
		m.AddData([]game.Position{position(state, 2, 1)})

		is.Equal(m.DataSize(), 2)
	})

	t.Run("cancelled context stops training", func(t *testing.T) {
		is := is.New(t)
		m := NewTabular()
		m.AddData([]game.Position{position(tictactoe.New(), 0, 1)})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		is.True(m.Train(ctx) != nil)
		is.Equal(len(m.Known(Train)), 0)
	})
}
