package tictactoe

import (
	"testing"

	"expit/game"

	"github.com/stretchr/testify/require"
)

func play(cells ...Cell) game.State {
	var s game.State = New()
	for _, c := range cells {
		s = s.Play(c)
	}
	return s
}

func TestStatePlay(t *testing.T) {
	t.Run("new board has nine legal moves and seat 0 to move", func(t *testing.T) {
		s := New()
		require.Len(t, s.LegalMoves(), 9)
		require.Equal(t, game.Seat(0), s.Seat())
		_, over := s.Outcome()
		require.False(t, over)
	})

	t.Run("play returns a copy and alternates seats", func(t *testing.T) {
		s := New()
		next := s.Play(Cell(4))
		require.Len(t, s.LegalMoves(), 9, "Original state should not change")
		require.Len(t, next.LegalMoves(), 8)
		require.Equal(t, game.Seat(1), next.Seat())
		require.NotContains(t, next.LegalMoves(), game.Move(Cell(4)))
	})

	t.Run("playing a taken cell panics", func(t *testing.T) {
		s := play(0)
		require.Panics(t, func() { s.Play(Cell(0)) })
	})
}

func TestStateOutcome(t *testing.T) {
	t.Run("row win for seat 0", func(t *testing.T) {
		s := play(0, 3, 1, 4, 2)
		outcome, over := s.Outcome()
		require.True(t, over)
		require.Equal(t, game.Seat(0), outcome.Winner)
		require.Empty(t, s.LegalMoves(), "Terminal state should have no legal moves")
	})

	t.Run("diagonal win for seat 1", func(t *testing.T) {
		s := play(1, 0, 2, 4, 3, 8)
		outcome, over := s.Outcome()
		require.True(t, over)
		require.Equal(t, game.Seat(1), outcome.Winner)
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		s := play(0, 1, 2, 4, 3, 5, 7, 6, 8)
		outcome, over := s.Outcome()
		require.True(t, over)
		require.True(t, outcome.IsDraw())
	})
}

func TestStateHash(t *testing.T) {
	t.Run("transpositions hash equally", func(t *testing.T) {
		require.Equal(t, play(0, 4, 8).Hash(), play(8, 4, 0).Hash())
	})

	t.Run("seat to move is part of the hash", func(t *testing.T) {
		require.NotEqual(t, play(0).Hash(), play(0, 4).Hash())
		require.NotEqual(t, New().Hash(), play(4).Hash())
	})
}

func TestStateString(t *testing.T) {
	require.Equal(t, "X..\n.O.\n...", play(0, 4).(*State).String())
	require.Equal(t, "b2", Cell(4).String())
}
