package agent

import (
	"blokus/codec"

	"golang.org/x/exp/rand"
)

// Transition is one step of experience. It is not modified after Push.
type Transition struct {
	State     codec.Tensor
	Action    int
	Reward    float64
	NextState codec.Tensor
	Done      bool
	Mask      codec.Mask
	NextMask  codec.Mask
}

// ReplayBuffer is a fixed-capacity ring of transitions; once full, each push
// overwrites the oldest entry. It has a single writer and a single reader.
type ReplayBuffer struct {
	entries []Transition
	next    int
	size    int
}

func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity <= 0 {
		panic("replay buffer capacity must be positive")
	}
	return &ReplayBuffer{entries: make([]Transition, capacity)}
}

func (b *ReplayBuffer) Push(t Transition) {
	b.entries[b.next] = t
	b.next = (b.next + 1) % len(b.entries)
	if b.size < len(b.entries) {
		b.size++
	}
}

func (b *ReplayBuffer) Len() int { return b.size }

func (b *ReplayBuffer) Cap() int { return len(b.entries) }

// Sample draws min(n, Len) distinct transitions uniformly at random.
func (b *ReplayBuffer) Sample(n int, rng *rand.Rand) []Transition {
	n = min(n, b.size)
	if n <= 0 {
		return nil
	}
	batch := make([]Transition, 0, n)
	for _, i := range sampleIndices(b.size, n, rng) {
		batch = append(batch, b.entries[i])
	}
	return batch
}

// sampleIndices picks k distinct indices from [0, n) with Floyd's algorithm,
// touching k entries rather than n.
func sampleIndices(n, k int, rng *rand.Rand) []int {
	chosen := make(map[int]struct{}, k)
	indices := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		i := rng.Intn(j + 1)
		if _, ok := chosen[i]; ok {
			i = j
		}
		chosen[i] = struct{}{}
		indices = append(indices, i)
	}
	return indices
}
