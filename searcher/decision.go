package searcher

import (
	"blokus/game"
	"sync"

	"golang.org/x/exp/rand"
)

// decision is a node for the state reached by a move. Rewards are kept from
// the point of view of mover, the player who made that move, so a parent
// picks the child with the highest value.
type decision struct {
	sync.RWMutex
	parent     *decision
	mover      int // -1 at the root
	player     int // Player to move
	hash       game.StateHash
	unexplored []game.Move
	explored   []game.Move
	children   map[game.Move]*decision
	rewards    float64
	visits     float64
}

func newDecision(parent *decision, mover int, state game.State) *decision {
	moves := state.LegalMoves()
	unexplored := make([]game.Move, len(moves))
	copy(unexplored, moves)
	rand.Shuffle(len(unexplored), func(i, j int) {
		unexplored[i], unexplored[j] = unexplored[j], unexplored[i]
	})

	return &decision{
		parent:     parent,
		mover:      mover,
		player:     state.Player(),
		hash:       state.Hash(),
		unexplored: unexplored,
		children:   make(map[game.Move]*decision, len(moves)),
	}
}

// SelectOrExpand descends one level. It expands an unexplored move if there
// is one, otherwise selects the child with the highest UCT value. Both apply a
// virtual loss to the returned child. A terminal node returns itself.
func (d *decision) SelectOrExpand(state game.State) (*decision, game.State, bool) {
	d.Lock()
	defer d.Unlock()

	if len(d.unexplored) == 0 && len(d.explored) == 0 { // Terminal node
		return d, state, false
	}

	if len(d.unexplored) > 0 { // Expandable node
		move := d.unexplored[len(d.unexplored)-1]
		d.unexplored = d.unexplored[:len(d.unexplored)-1]
		d.explored = append(d.explored, move)

		next := state.Play(move)
		child := newDecision(d, d.player, next)
		d.children[move] = child
		child.ApplyLoss()
		return child, next, false
	}

	// Fully expanded node
	move := d.pickMove()
	child := d.children[move]
	child.ApplyLoss()
	return child, state.Play(move), true
}

func (d *decision) pickMove() game.Move {
	return newUCT(CSquared, d.visits).best(d.explored, d.children)
}

func (d *decision) ApplyLoss() {
	d.Lock()
	defer d.Unlock()

	d.rewards += Loss
	d.visits++
}

func (d *decision) reverseLoss() {
	d.rewards -= Loss
	d.visits--
}

// Backup records a rollout result and returns the parent.
func (d *decision) Backup(player int, score float64) *decision {
	d.Lock()
	defer d.Unlock()

	if d.parent != nil { // Non-root node
		d.reverseLoss()
	}

	d.rewards += rewardFor(d.mover, player, score)
	d.visits++

	return d.parent
}

func (d *decision) Visits() float64 {
	d.RLock()
	defer d.RUnlock()

	return d.visits
}

// Policy maps each explored move to its share of the children's visits.
func (d *decision) Policy() map[game.Move]float64 {
	d.RLock()
	defer d.RUnlock()

	total := 0.0
	visits := make(map[game.Move]float64, len(d.explored))
	for _, move := range d.explored {
		v := d.children[move].Visits()
		visits[move] = v
		total += v
	}
	if total == 0 {
		return visits
	}
	for move := range visits {
		visits[move] /= total
	}
	return visits
}
