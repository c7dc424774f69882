package game

import "math/bits"

// PieceSet is a bit set of piece types.
type PieceSet uint32

const FullPieceSet PieceSet = 1<<NumPieceTypes - 1

func (s PieceSet) Has(t PieceType) bool {
	return t.Valid() && s&(1<<t) != 0
}

func (s PieceSet) Without(t PieceType) PieceSet {
	return s &^ (1 << t)
}

func (s PieceSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Types lists the members in piece index order.
func (s PieceSet) Types() []PieceType {
	types := make([]PieceType, 0, s.Len())
	for t := PieceType(0); t < NumPieceTypes; t++ {
		if s.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

// Cells is the total number of cells of the pieces in the set.
func (s PieceSet) Cells() int {
	total := 0
	for t := PieceType(0); t < NumPieceTypes; t++ {
		if s.Has(t) {
			total += t.Size()
		}
	}
	return total
}

// PlayerConfig describes a seat at game creation.
type PlayerConfig struct {
	Name  string
	Agent string // registry id of the agent playing the seat, empty for humans
}

// Player is a seat's mutable state. Only GameState mutates it.
type Player struct {
	ID                   int
	Name                 string
	Agent                string
	Remaining            PieceSet
	HasPassed            bool
	LastPieceWasMonomino bool
}

const (
	bonusAllPlaced    = 15
	bonusMonominoLast = 5
)

// Score is minus the remaining cells, with +15 for placing every piece and
// a further +5 when the monomino went last.
func (p *Player) Score() int {
	if p.Remaining == 0 {
		score := bonusAllPlaced
		if p.LastPieceWasMonomino {
			score += bonusMonominoLast
		}
		return score
	}
	return -p.Remaining.Cells()
}
