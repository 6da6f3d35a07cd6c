package game

import "fmt"

// Seat identifies a player position at the table, starting from 0.
type Seat int

// NoSeat is the winner of a drawn game.
const NoSeat Seat = -1

// NumSeats is the number of seats of every game in this module.
const NumSeats = 2

func (s Seat) String() string {
	if s == NoSeat {
		return "none"
	}
	return fmt.Sprintf("seat%d", int(s))
}

// Move must be comparable: engines and searchers look moves up in LegalMoves().
type Move interface {
	fmt.Stringer
}

type StateHash uint64

// Outcome is the terminal result of a complete game.
type Outcome struct {
	Winner Seat
}

func (o Outcome) IsDraw() bool {
	return o.Winner == NoSeat
}

// State should be immutable - Play always returns a new copy
type State interface {
	// Seat to move
	Seat() Seat
	// LegalMoves is empty iff the state is terminal. Its order is stable and
	// indexes every policy vector for this state.
	LegalMoves() []Move
	Play(Move) State
	Hash() StateHash
	// Outcome reports the result once the game is over
	Outcome() (Outcome, bool)
}

// Position is one training example: a visited state, the search policy over
// its legal moves and the final game value for the seat to move.
type Position struct {
	State  State
	Policy []float64
	Value  float64
}
