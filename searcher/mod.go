package searcher

import (
	"errors"

	"expit/game"
)

const WIN = 1.0   // Reward for winning outcome
const LOSS = -WIN // Reward for loss outcome (negate from opponent perspective)
const DRAW = 0.0

var ErrTerminalState = errors.New("cannot search a terminal state")

// ErrNoLegalMoves is returned for a state that is not over but has no move to play.
var ErrNoLegalMoves = errors.New("ongoing state without legal moves")

// RewardsFromResult returns the terminal reward of every seat, indexed by seat.
func RewardsFromResult(outcome game.Outcome) []float64 {
	rewards := make([]float64, game.NumSeats)
	if outcome.IsDraw() {
		return rewards
	}
	for seat := range rewards {
		if game.Seat(seat) == outcome.Winner {
			rewards[seat] = WIN
		} else {
			rewards[seat] = LOSS
		}
	}
	return rewards
}

// rewarder maps the seat a node is scored for to its reward. Root nodes have
// no mover and score nothing.
type rewarder func(seat game.Seat) float64

func terminalRewarder(outcome game.Outcome) rewarder {
	rewards := RewardsFromResult(outcome)
	return func(seat game.Seat) float64 {
		if seat == game.NoSeat {
			return 0
		}
		return rewards[seat]
	}
}

// leafRewarder converts a value estimated for the seat to move at the leaf.
func leafRewarder(toMove game.Seat, value float64) rewarder {
	return func(seat game.Seat) float64 {
		switch seat {
		case game.NoSeat:
			return 0
		case toMove:
			return value
		default:
			return -value
		}
	}
}
