package codec

import (
	"blokus/game"
	"slices"
)

// PassAction is returned when no legal action exists. It never encodes a
// placement; callers treat it as a forced pass.
const PassAction = -1

// orientationSlots is the fixed orientation stride, independent of how many
// orientations a piece actually has.
const orientationSlots = game.MaxOrientations

func ActionSpaceSize(boardSize int) int {
	return game.NumPieceTypes * orientationSlots * boardSize * boardSize
}

// Encode maps a placement to a dense action id.
func Encode(piece game.PieceType, orientation, row, col, boardSize int) int {
	cells := boardSize * boardSize
	return int(piece)*orientationSlots*cells + orientation*cells + row*boardSize + col
}

// Decode is the inverse of Encode. It performs no validation.
func Decode(action, boardSize int) (piece game.PieceType, orientation, row, col int) {
	cells := boardSize * boardSize
	piece = game.PieceType(action / (orientationSlots * cells))
	rem := action % (orientationSlots * cells)
	orientation = rem / cells
	rem %= cells
	return piece, orientation, rem / boardSize, rem % boardSize
}

func EncodeMove(m game.Move, boardSize int) int {
	return Encode(m.Piece, m.Orientation, m.Row, m.Col, boardSize)
}

// DecodeAction turns an action id into a move for the current player. It
// reports false for ids outside the action space and for orientation slots
// the piece does not have. Geometric legality is not checked.
func DecodeAction(action int, state *game.GameState) (game.Move, bool) {
	size := state.Board.Size()
	if action < 0 || action >= ActionSpaceSize(size) {
		return game.Move{}, false
	}
	piece, orientation, row, col := Decode(action, size)
	if !piece.Valid() || orientation >= game.NumOrientations(piece) {
		return game.Move{}, false
	}
	return game.Move{
		Player:      state.Current,
		Piece:       piece,
		Orientation: orientation,
		Row:         row,
		Col:         col,
	}, true
}

// Mask is the set of legal actions out of an action space of Size ids.
// Legal is sorted ascending.
type Mask struct {
	Size  int
	Legal []int
}

// ActionMaskFor lists the current player's legal actions. A finished game
// yields an empty mask.
func ActionMaskFor(state *game.GameState) Mask {
	size := state.Board.Size()
	moves := state.LegalMoves()
	legal := make([]int, len(moves))
	for i, m := range moves {
		legal[i] = EncodeMove(m, size)
	}
	slices.Sort(legal)
	return Mask{Size: ActionSpaceSize(size), Legal: slices.Compact(legal)}
}

// ValidActions is the list form of ActionMaskFor.
func ValidActions(state *game.GameState) []int {
	return ActionMaskFor(state).Legal
}

func (m Mask) Len() int { return len(m.Legal) }

func (m Mask) Empty() bool { return len(m.Legal) == 0 }

func (m Mask) Has(action int) bool {
	_, found := slices.BinarySearch(m.Legal, action)
	return found
}

// Dense expands the mask to one flag per action id.
func (m Mask) Dense() []bool {
	dense := make([]bool, m.Size)
	for _, a := range m.Legal {
		dense[a] = true
	}
	return dense
}
