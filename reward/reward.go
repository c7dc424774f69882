// Package reward computes per-player rewards for Blokus transitions: a
// sparse terminal outcome plus potential-based shaping.
package reward

import (
	"blokus/game"
	"blokus/utils"
)

const (
	Gamma = 0.99

	WeightPlaced      = 0.5
	WeightCorners     = 0.3
	WeightLargePieces = -0.2

	// CornerCap is the corner count at which the corner term saturates.
	CornerCap = 50
	// LargePieceSize is the smallest piece size counted as large.
	LargePieceSize = 4
	// LargePieceNorm divides the count of large pieces in hand. It is fixed
	// at 12 although the catalog holds 17 pieces of size 4 or more, so the
	// large-piece term starts above 1.
	LargePieceNorm = 12
)

// Shaper holds the shaping weights. Its zero value is not useful; start
// from DefaultShaper.
type Shaper struct {
	Gamma             float64
	WeightPlaced      float64
	WeightCorners     float64
	WeightLargePieces float64
	CornerCap         int
	LargePieceNorm    float64
}

func DefaultShaper() Shaper {
	return Shaper{
		Gamma:             Gamma,
		WeightPlaced:      WeightPlaced,
		WeightCorners:     WeightCorners,
		WeightLargePieces: WeightLargePieces,
		CornerCap:         CornerCap,
		LargePieceNorm:    LargePieceNorm,
	}
}

// Potential scores how promising the position is for player: cells placed,
// open corners, and large pieces still in hand.
func (s Shaper) Potential(state *game.GameState, player int) float64 {
	p := state.Players[player]
	placed := float64(game.TotalCells-p.Remaining.Cells()) / game.TotalCells

	corners := 0
	if state.IsFirstMove(player) {
		if _, ok := state.Board.StartingCorner(player); ok {
			corners = 1
		}
	} else {
		corners = len(state.Board.PlayerCorners(player))
	}
	cornerTerm := 0.0
	if s.CornerCap > 0 {
		cornerTerm = utils.Clamp(float64(corners)/float64(s.CornerCap), 0, 1)
	}

	large := 0
	for _, t := range p.Remaining.Types() {
		if t.Size() >= LargePieceSize {
			large++
		}
	}
	largeTerm := 0.0
	if s.LargePieceNorm > 0 {
		largeTerm = float64(large) / s.LargePieceNorm
	}

	return s.WeightPlaced*placed + s.WeightCorners*cornerTerm + s.WeightLargePieces*largeTerm
}

// Shaped is the sparse outcome of after plus gamma*Potential(after) minus
// Potential(before).
func (s Shaper) Shaped(before, after *game.GameState, player int) float64 {
	return Sparse(after, player) + s.Gamma*s.Potential(after, player) - s.Potential(before, player)
}

// Sparse is 0 while the game runs. Once finished it is +1 for the unique top
// score, 0 for a shared top score and -1 otherwise.
func Sparse(state *game.GameState, player int) float64 {
	if state.Status != game.Finished {
		return 0
	}
	scores := state.Scores()
	top := 0
	best := scores[0]
	for _, sc := range scores {
		if sc > best {
			best = sc
		}
	}
	for _, sc := range scores {
		if sc == best {
			top++
		}
	}
	switch {
	case scores[player] < best:
		return -1
	case top > 1:
		return 0
	}
	return 1
}

// Dense rewards the size of the placed piece plus ten times the outcome.
func Dense(after *game.GameState, move game.Move, player int) float64 {
	return float64(move.Piece.Size())/5 + 10*Sparse(after, player)
}
