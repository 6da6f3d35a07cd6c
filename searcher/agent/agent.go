package agent

import (
	"context"

	"expit/game"
)

type Agent interface {
	// FindMove returns the chosen move and the normalized search policy over
	// the state's legal moves it was chosen from
	FindMove(ctx context.Context, state game.State) (game.Move, []float64, error)
}
