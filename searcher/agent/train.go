package agent

import (
	"context"
	"math"

	"expit/game"
	"expit/searcher"
	"expit/utils"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

type trainingAgent struct {
	alg         *searcher.Algorithm
	temperature float64
}

// NewTrainingAgent returns a new agent for self-play during training. Moves
// are sampled from the visit counts raised to 1/temperature; a temperature of
// 0 always plays the most visited move.
func NewTrainingAgent(alg *searcher.Algorithm, temperature float64) Agent {
	if temperature < 0 {
		panic("temperature cannot be negative")
	}
	return trainingAgent{alg: alg, temperature: temperature}
}

func (a trainingAgent) FindMove(ctx context.Context, state game.State) (game.Move, []float64, error) {
	visits, err := a.alg.Simulate(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	adjusted := adjustTemperature(visits, a.temperature)
	move := state.LegalMoves()[sample(adjusted, rand.Float64())]
	return move, normalize(visits), nil
}

func adjustTemperature(visits []float64, temperature float64) []float64 {
	adjusted := make([]float64, len(visits))
	if temperature == 0 {
		adjusted[utils.Argmax(visits)] = 1
		return adjusted
	}
	// Compute temperature-adjusted move probabilities, scaled by the
	// largest count so low temperatures do not overflow
	exponent := 1.0 / temperature
	most := floats.Max(visits)
	if most == 0 {
		return normalize(adjusted)
	}
	for i, visit := range visits {
		adjusted[i] = math.Pow(visit/most, exponent)
	}
	return normalize(adjusted)
}

// normalize returns a copy of weights scaled to sum to 1, or a uniform
// distribution when every weight is 0.
func normalize(weights []float64) []float64 {
	normalized := make([]float64, len(weights))
	copy(normalized, weights)
	sum := floats.Sum(normalized)
	if sum == 0 {
		for i := range normalized {
			normalized[i] = 1 / float64(len(normalized))
		}
		return normalized
	}
	floats.Scale(1/sum, normalized)
	return normalized
}

// sample returns the index whose cumulative probability first exceeds sampled, a
// uniform number in [0, 1).
func sample(policy []float64, sampled float64) int {
	cumulative := 0.0
	for i, prob := range policy {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(policy) - 1 // Fallback in case of rounding errors
}
