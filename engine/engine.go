package engine

import (
	"context"
	"errors"

	"expit/game"
)

var ErrIllegalMove = errors.New("illegal move")

// Player finds moves for the seats it is assigned to. The returned policy is
// the search distribution the move was picked from; engines ignore it.
type Player interface {
	FindMove(ctx context.Context, state game.State) (game.Move, []float64, error)
}

// SeatAssignment maps a set of seats to the player occupying them.
type SeatAssignment struct {
	Seats  []game.Seat
	Player Player
}

// Result of one complete game
type Result struct {
	Final   game.State
	Outcome game.Outcome
	Turns   int
}
