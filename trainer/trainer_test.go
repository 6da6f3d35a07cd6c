package trainer

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"expit/experiments/metrics"
	"expit/game"
	"expit/game/tictactoe"
	"expit/model"

	"github.com/stretchr/testify/require"
)

type recordingModel struct {
	*model.Tabular
	mu       sync.Mutex
	calls    []string
	trainErr error
	evalErr  map[model.Checkpoint]error // Per checkpoint
}

func (m *recordingModel) EvalStates(ctx context.Context, states []game.State, using model.Checkpoint) ([][]float64, []float64, error) {
	if err := m.evalErr[using]; err != nil {
		return nil, nil, err
	}
	return m.Tabular.EvalStates(ctx, states, using)
}

func (m *recordingModel) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *recordingModel) AddData(positions []game.Position) {
	m.record("add")
	m.Tabular.AddData(positions)
}

func (m *recordingModel) Train(ctx context.Context) error {
	m.record("train")
	if m.trainErr != nil {
		return m.trainErr
	}
	return m.Tabular.Train(ctx)
}

func (m *recordingModel) NewCheckpoint() {
	m.record("accept")
	m.Tabular.NewCheckpoint()
}

func (m *recordingModel) RestoreCheckpoint() {
	m.record("reject")
	m.Tabular.RestoreCheckpoint()
}

func newTicTacToe() game.State { return tictactoe.New() }

func smallTrainer(m model.Model, options ...Option) *Trainer {
	return New(m, newTicTacToe, append([]Option{
		WithIterations(2),
		WithIterationSize(3),
		WithSearchSize(4),
		WithExampleSearchSize(2),
		WithArena(Arena{GamesPerOrientation: 1, Margin: 0.1, SearchSize: 2}),
	}, options...)...)
}

func TestNew(t *testing.T) {
	tr := New(model.NewTabular(), newTicTacToe)

	require.Equal(t, 1, tr.iterations)
	require.Equal(t, 100, tr.iterationSize)
	require.Equal(t, 100, tr.searchSize)
	require.Equal(t, 20, tr.exampleSearchSize)
	require.Equal(t, model.Train, tr.selfPlay)
	require.Equal(t, DefaultArena(100), *tr.arena)
}

func TestTrainerTrain(t *testing.T) {
	t.Run("every iteration self-plays, trains and commits or rolls back", func(t *testing.T) {
		m := &recordingModel{Tabular: model.NewTabular()}
		var hooked []int
		dir := t.TempDir()
		writer, err := metrics.NewWriter(dir)
		require.NoError(t, err)

		examples, err := smallTrainer(m,
			WithWriter(writer),
			WithExampleHook(func(iteration int, _ []game.Position) { hooked = append(hooked, iteration) }),
		).Train(context.Background())

		require.NoError(t, err)
		require.Len(t, examples, 3, "One diagnostic game per iteration and one after the last")
		for _, example := range examples {
			require.NotEmpty(t, example)
		}
		require.Equal(t, []int{1, 2, 3}, hooked)

		require.Len(t, m.calls, 6)
		for i := 0; i < 2; i++ {
			require.Equal(t, "add", m.calls[3*i])
			require.Equal(t, "train", m.calls[3*i+1])
			require.Contains(t, []string{"accept", "reject"}, m.calls[3*i+2])
		}
		require.Greater(t, m.DataSize(), 0)

		f, err := os.Open(filepath.Join(writer.Dir(), "iteration_records.csv"))
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, "2", rows[2][0])
		require.Equal(t, "2", rows[2][4], "Arena games of a 1x1 arena")
	})

	t.Run("training failures stop the loop", func(t *testing.T) {
		m := &recordingModel{Tabular: model.NewTabular(), trainErr: errors.New("diverged")}

		examples, err := smallTrainer(m).Train(context.Background())

		require.ErrorIs(t, err, model.ErrModelFailure)
		require.ErrorContains(t, err, "iteration 1")
		require.Len(t, examples, 1)
		require.Equal(t, []string{"add", "train"}, m.calls)
	})

	t.Run("an accepted candidate becomes the best model", func(t *testing.T) {
		m := &recordingModel{Tabular: model.NewTabular()}

		_, err := smallTrainer(m,
			WithIterations(1),
			WithArena(Arena{GamesPerOrientation: 1, Margin: -2, SearchSize: 2}), // Any reward is above the margin
		).Train(context.Background())

		require.NoError(t, err)
		require.Equal(t, []string{"add", "train", "accept"}, m.calls)
		require.NotEmpty(t, m.Known(model.Best))
		require.Equal(t, m.Known(model.Train), m.Known(model.Best))

		initial := []game.State{tictactoe.New()}
		bestPolicies, bestValues, err := m.EvalStates(context.Background(), initial, model.Best)
		require.NoError(t, err)
		trainPolicies, trainValues, err := m.EvalStates(context.Background(), initial, model.Train)
		require.NoError(t, err)
		require.Equal(t, trainPolicies, bestPolicies)
		require.Equal(t, trainValues, bestValues)
	})

	t.Run("a rejected candidate is reset to the best model", func(t *testing.T) {
		m := &recordingModel{Tabular: model.NewTabular()}

		_, err := smallTrainer(m,
			WithIterations(1),
			WithArena(Arena{GamesPerOrientation: 1, Margin: 2, SearchSize: 2}), // No reward is above the margin
		).Train(context.Background())

		require.NoError(t, err)
		require.Equal(t, []string{"add", "train", "reject"}, m.calls)
		require.Greater(t, m.DataSize(), 0, "Training data is kept")
		require.Empty(t, m.Known(model.Best))
		require.Empty(t, m.Known(model.Train), "Trained parameters are discarded")
	})

	t.Run("self-play failures stop the loop", func(t *testing.T) {
		m := &recordingModel{
			Tabular: model.NewTabular(),
			evalErr: map[model.Checkpoint]error{model.Best: errors.New("out of memory")},
		}

		examples, err := smallTrainer(m, WithSelfPlayCheckpoint(model.Best)).Train(context.Background())

		require.ErrorIs(t, err, model.ErrModelFailure)
		require.ErrorContains(t, err, "iteration 1")
		require.ErrorContains(t, err, "self-play")
		require.Len(t, examples, 1, "The diagnostic game uses the TRAIN checkpoint")
		require.Empty(t, m.calls)
	})

	t.Run("arena failures stop the loop", func(t *testing.T) {
		m := &recordingModel{
			Tabular: model.NewTabular(),
			evalErr: map[model.Checkpoint]error{model.Best: errors.New("out of memory")},
		}

		examples, err := smallTrainer(m).Train(context.Background())

		require.ErrorIs(t, err, model.ErrModelFailure)
		require.ErrorContains(t, err, "iteration 1")
		require.ErrorContains(t, err, "arena")
		require.Len(t, examples, 1)
		require.Equal(t, []string{"add", "train"}, m.calls, "Neither committed nor rolled back")
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := smallTrainer(model.NewTabular()).Train(ctx)

		require.ErrorIs(t, err, context.Canceled)
	})
}
