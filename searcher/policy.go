package searcher

import (
	"blokus/game"
	"math"
)

// uct scores the children of one node. Mean rewards lie in [Loss, Win] and
// are rescaled to [0, 1] so that CSquared keeps its textbook calibration.
type uct struct {
	cSquared float64
	logN     float64
}

func newUCT(cSquared, parentVisits float64) uct {
	if parentVisits <= 0 {
		panic("parent node has no visits")
	}
	return uct{cSquared: cSquared, logN: math.Log(parentVisits)}
}

// value is the child's mean reward for its mover, mapped to [0, 1].
func value(rewards, visits float64) float64 {
	return (rewards/visits - Loss) / (Win - Loss)
}

func (u uct) evaluate(rewards, visits float64) float64 {
	if visits <= 0 {
		panic("child node has no visits")
	}
	return value(rewards, visits) + math.Sqrt(u.cSquared*u.logN/visits)
}

// best returns the explored move with the highest score. Ties go to the
// earliest move in explored. Each child is read under its own lock.
func (u uct) best(explored []game.Move, children map[game.Move]*decision) game.Move {
	var move game.Move
	maxScore := math.Inf(-1)
	for _, m := range explored {
		child := children[m]
		child.RLock()
		score := u.evaluate(child.rewards, child.visits)
		child.RUnlock()
		if score > maxScore {
			maxScore = score
			move = m
		}
	}
	return move
}
