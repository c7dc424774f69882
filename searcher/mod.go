// Package searcher implements tree-parallel Monte Carlo tree search over
// game.State with virtual loss and tree reuse between turns.
package searcher

import "math"

// Hyperparameters for MCTS

const CSquared = 2.0 // Exploration constant

const Win = 1.0   // Reward for winning outcome
const Loss = -Win // Reward for loss outcome (negate from opponent perspective)
const Draw = 0.0

// MaxCutoff disables the rollout cutoff.
const MaxCutoff = math.MaxInt

// rewardFor converts a rollout result into the reward for mover. A negative
// player means nobody won.
func rewardFor(mover, player int, score float64) float64 {
	switch {
	case player < 0:
		return Draw
	case mover == player:
		return score
	}
	return -score
}
