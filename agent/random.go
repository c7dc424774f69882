package agent

import (
	"blokus/codec"

	"golang.org/x/exp/rand"
)

// RandomAgent picks uniformly among legal actions. Reset restores the seed so
// evaluation runs are reproducible.
type RandomAgent struct {
	seed uint64
	rng  *rand.Rand
}

func NewRandomAgent(seed uint64) *RandomAgent {
	return &RandomAgent{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (a *RandomAgent) SelectAction(_ codec.Tensor, mask codec.Mask, _ bool) int {
	if mask.Empty() {
		return codec.PassAction
	}
	return mask.Legal[a.rng.Intn(mask.Len())]
}

func (a *RandomAgent) Reset() {
	a.rng = rand.New(rand.NewSource(a.seed))
}
