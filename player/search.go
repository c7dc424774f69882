package player

import (
	"blokus/codec"
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/searcher"
	"math"
	"slices"

	"golang.org/x/exp/rand"
)

// SearchPlayer plays by MCTS. With a positive temperature it samples from the
// visit distribution, otherwise it plays the most visited move.
type SearchPlayer struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

func NewSearchPlayer(mcts *searcher.MCTS, temperature float64, seed uint64) *SearchPlayer {
	return &SearchPlayer{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (p *SearchPlayer) FindMove(state *game.GameState, updates []searcher.Segment) (game.Move, metrics.SearchMetric) {
	visits, metric := p.mcts.Simulate(state, updates)
	if len(visits) == 0 {
		return fallback(state), metric
	}
	if p.temperature <= 0 {
		return findMax(visits), metric
	}
	policy := adjustTemperature(visits, p.temperature)
	return sample(policy, state.Board.Size(), p.rng), metric
}

func adjustTemperature(visits map[game.Move]float64, temperature float64) map[game.Move]float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make(map[game.Move]float64, len(visits))
	for move, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		policy[move] = prob
	}
	// Normalize
	for move := range policy {
		policy[move] /= sum
	}
	return policy
}

// sample draws a move from policy. Moves are visited in action id order so a
// seeded rng gives reproducible choices.
func sample(policy map[game.Move]float64, boardSize int, rng *rand.Rand) game.Move {
	moves := make([]game.Move, 0, len(policy))
	for move := range policy {
		moves = append(moves, move)
	}
	slices.SortFunc(moves, func(a, b game.Move) int {
		return codec.EncodeMove(a, boardSize) - codec.EncodeMove(b, boardSize)
	})

	sampled := rng.Float64()
	cumulative := 0.0
	for _, move := range moves {
		cumulative += policy[move]
		if sampled < cumulative {
			return move
		}
	}
	return moves[len(moves)-1] // Fallback in case of rounding errors
}

func findMax(visits map[game.Move]float64) game.Move {
	var maxMove game.Move
	maxVisits := -1.0
	for move, v := range visits {
		if v > maxVisits {
			maxVisits = v
			maxMove = move
		}
	}
	return maxMove
}
