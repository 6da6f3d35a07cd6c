package engine

import (
	"context"
	"fmt"

	"expit/game"
	"expit/meta"
	"expit/utils"

	"github.com/rs/zerolog/log"
)

// PlayGames plays count games from the initial state, one after the other,
// with every seat occupied by the player assigned to it.
func PlayGames(ctx context.Context, count int, initial game.State, seats []SeatAssignment) ([]Result, error) {
	players, err := seatPlayers(seats)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, count)
	for i := 0; i < count; i++ {
		result, err := Run(ctx, initial, players)
		if err != nil {
			return results, fmt.Errorf("game %d of %d: %w", i+1, count, err)
		}
		log.Debug().Msgf("game %d of %d over after %d turns, winner: %s", i+1, count, result.Turns, result.Outcome.Winner)
		results = append(results, result)
	}
	return results, nil
}

func seatPlayers(seats []SeatAssignment) ([]Player, error) {
	players := make([]Player, game.NumSeats)
	for _, assignment := range seats {
		for _, seat := range assignment.Seats {
			if seat < 0 || int(seat) >= game.NumSeats {
				return nil, fmt.Errorf("seat %d out of range", seat)
			}
			if players[seat] != nil {
				return nil, fmt.Errorf("%s assigned twice", seat)
			}
			players[seat] = assignment.Player
		}
	}
	for seat, player := range players {
		if player == nil {
			return nil, fmt.Errorf("%s has no player", game.Seat(seat))
		}
	}
	return players, nil
}

// Run executes the game loop until the game is over or MAX_TURNS is reached,
// in which case the game is scored as a draw.
func Run(ctx context.Context, state game.State, players []Player) (Result, error) {
	turns := 0
	for {
		if outcome, over := state.Outcome(); over {
			return Result{Final: state, Outcome: outcome, Turns: turns}, nil
		}
		if turns >= meta.MAX_TURNS {
			log.Warn().Msgf("stopped after %d turns (no winner yet)", meta.MAX_TURNS)
			return Result{Final: state, Outcome: game.Outcome{Winner: game.NoSeat}, Turns: turns}, nil
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		seat := state.Seat()
		move, _, err := players[seat].FindMove(ctx, state)
		if err != nil {
			return Result{}, fmt.Errorf("%s at turn %d: %w", seat, turns+1, err)
		}
		if utils.FindIndex(state.LegalMoves(), move) < 0 {
			return Result{}, fmt.Errorf("%w: %v by %s at turn %d", ErrIllegalMove, move, seat, turns+1)
		}

		state = state.Play(move)
		turns++
	}
}
