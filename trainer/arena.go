package trainer

import (
	"context"
	"fmt"

	"expit/engine"
	"expit/game"
	"expit/meta"
	"expit/searcher"
	"expit/searcher/agent"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Arena plays the candidate (TRAIN) against the best model from both seats.
type Arena struct {
	// GamesPerOrientation is both the number of match sets per orientation and
	// the number of games in each set
	GamesPerOrientation int
	// Margin the average candidate reward must strictly exceed
	Margin     float64
	SearchSize int
}

type ArenaResult struct {
	// Reward is the candidate's total reward over 2 * GamesPerOrientation
	Reward   float64
	Games    int
	Accepted bool
}

func DefaultArena(searchSize int) Arena {
	return Arena{
		GamesPerOrientation: meta.ARENA_GAMES,
		Margin:              meta.ACCEPT_MARGIN,
		SearchSize:          searchSize,
	}
}

// IsBetter reports whether the candidate should replace the best model.
func (a Arena) IsBetter(ctx context.Context, newGame func() game.State, best, train searcher.Evaluator) (bool, error) {
	result, err := a.Evaluate(ctx, newGame, best, train)
	if err != nil {
		return false, err
	}
	return result.Accepted, nil
}

func (a Arena) Evaluate(ctx context.Context, newGame func() game.State, best, train searcher.Evaluator) (ArenaResult, error) {
	if a.GamesPerOrientation <= 0 || a.SearchSize <= 0 {
		return ArenaResult{}, fmt.Errorf("invalid arena: %+v", a)
	}
	bestPlayer := agent.NewEvaluationAgent(searcher.NewAlgorithm(best, searcher.WithBudget(a.SearchSize)))
	trainPlayer := agent.NewEvaluationAgent(searcher.NewAlgorithm(train, searcher.WithBudget(a.SearchSize)))

	orientations := []struct {
		seats         []engine.SeatAssignment
		candidateSeat game.Seat
	}{
		{
			seats: []engine.SeatAssignment{
				{Seats: []game.Seat{0}, Player: bestPlayer},
				{Seats: []game.Seat{1}, Player: trainPlayer},
			},
			candidateSeat: 1,
		},
		{
			seats: []engine.SeatAssignment{
				{Seats: []game.Seat{0}, Player: trainPlayer},
				{Seats: []game.Seat{1}, Player: bestPlayer},
			},
			candidateSeat: 0,
		},
	}

	var result ArenaResult
	for _, orientation := range orientations {
		for i := 0; i < a.GamesPerOrientation; i++ {
			results, err := engine.PlayGames(ctx, a.GamesPerOrientation, newGame(), orientation.seats)
			if err != nil {
				return ArenaResult{}, fmt.Errorf("arena match set %d with candidate at %s: %w", i+1, orientation.candidateSeat, err)
			}
			result.Reward += lo.SumBy(results, func(r engine.Result) float64 {
				return searcher.RewardsFromResult(r.Outcome)[orientation.candidateSeat]
			})
			result.Games += len(results)
		}
	}

	result.Reward /= float64(2 * a.GamesPerOrientation)
	result.Accepted = a.accept(result.Reward)
	log.Info().Msgf("arena reward %.4f over %d games, accepted: %t", result.Reward, result.Games, result.Accepted)
	return result, nil
}

func (a Arena) accept(reward float64) bool {
	return reward > a.Margin
}
