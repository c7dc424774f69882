package game

type StateHash uint64

// State is the view of a game that search needs. Play never mutates the
// receiver.
type State interface {
	Player() int
	LegalMoves() []Move
	Play(Move) State
	Hash() StateHash
	Winner() (int, bool)
	IsOver() bool
}

// Evaluate scores a state between -1 and 1 by how favorable it is to the
// current player.
type Evaluate func(State) float64
