package game

import (
	"fmt"
	"slices"
)

// PieceType identifies one of the 21 polyominoes. The numeric value is the
// piece index used by the action codec.
type PieceType int

const (
	I1 PieceType = iota
	I2
	I3
	L3
	I4
	L4
	T4
	O4
	S4
	F
	I5
	L5
	N
	P
	T5
	U
	V
	W
	X
	Y
	Z
)

const NumPieceTypes = 21

// TotalCells is the number of cells covered by a full set of pieces.
const TotalCells = 89

// MaxOrientations bounds the size of the dihedral group acting on a piece.
const MaxOrientations = 8

// Cell is a (row, column) coordinate on the board or inside a piece.
type Cell struct {
	Row int
	Col int
}

func (c Cell) Add(o Cell) Cell { return Cell{c.Row + o.Row, c.Col + o.Col} }
func (c Cell) Sub(o Cell) Cell { return Cell{c.Row - o.Row, c.Col - o.Col} }

// Piece is one orientation of a piece type. Cells are normalized so the
// minimum row and column are both zero.
type Piece struct {
	Type        PieceType
	Orientation int
	Cells       []Cell
}

func (p Piece) Size() int { return len(p.Cells) }

// Bounds returns the height and width of the piece's bounding box.
func (p Piece) Bounds() (height, width int) {
	for _, c := range p.Cells {
		height = max(height, c.Row+1)
		width = max(width, c.Col+1)
	}
	return height, width
}

var pieceNames = [NumPieceTypes]string{
	"I1", "I2", "I3", "L3", "I4", "L4", "T4", "O4", "S4",
	"F", "I5", "L5", "N", "P", "T5", "U", "V", "W", "X", "Y", "Z",
}

var baseShapes = [NumPieceTypes][]Cell{
	I1: {{0, 0}},
	I2: {{0, 0}, {0, 1}},
	I3: {{0, 0}, {0, 1}, {0, 2}},
	L3: {{0, 0}, {0, 1}, {1, 0}},
	I4: {{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	L4: {{0, 0}, {1, 0}, {2, 0}, {2, 1}},
	T4: {{0, 1}, {1, 0}, {1, 1}, {1, 2}},
	O4: {{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	S4: {{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	F:  {{0, 1}, {0, 2}, {1, 0}, {1, 1}, {2, 1}},
	I5: {{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}},
	L5: {{0, 0}, {1, 0}, {2, 0}, {3, 0}, {3, 1}},
	N:  {{0, 0}, {1, 0}, {1, 1}, {2, 1}, {3, 1}},
	P:  {{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}},
	T5: {{0, 0}, {0, 1}, {0, 2}, {1, 1}, {2, 1}},
	U:  {{0, 0}, {0, 2}, {1, 0}, {1, 1}, {1, 2}},
	V:  {{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}},
	W:  {{0, 0}, {1, 0}, {1, 1}, {2, 1}, {2, 2}},
	X:  {{0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 1}},
	Y:  {{0, 1}, {1, 0}, {1, 1}, {2, 1}, {3, 1}},
	Z:  {{0, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 2}},
}

// catalog holds every orientation of every piece type. It is computed once
// and never mutated afterwards.
var catalog = buildCatalog()

func buildCatalog() [NumPieceTypes][]Piece {
	var pieces [NumPieceTypes][]Piece
	for t := range NumPieceTypes {
		for i, cells := range Orientations(baseShapes[t]) {
			pieces[t] = append(pieces[t], Piece{Type: PieceType(t), Orientation: i, Cells: cells})
		}
	}
	return pieces
}

func (t PieceType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("PieceType(%d)", int(t))
	}
	return pieceNames[t]
}

func (t PieceType) Valid() bool {
	return t >= 0 && t < NumPieceTypes
}

// Size is the number of cells of the piece type.
func (t PieceType) Size() int {
	return len(baseShapes[t])
}

func AllPieceTypes() []PieceType {
	types := make([]PieceType, NumPieceTypes)
	for i := range types {
		types[i] = PieceType(i)
	}
	return types
}

// ParsePieceType maps a piece name such as "L5" back to its type.
func ParsePieceType(name string) (PieceType, bool) {
	for i, n := range pieceNames {
		if n == name {
			return PieceType(i), true
		}
	}
	return 0, false
}

// Pieces lists every orientation of t in a fixed order. The returned slice
// is shared and must not be modified.
func Pieces(t PieceType) []Piece {
	return catalog[t]
}

// GetPiece returns orientation o of piece type t.
func GetPiece(t PieceType, o int) (Piece, bool) {
	if !t.Valid() || o < 0 || o >= len(catalog[t]) {
		return Piece{}, false
	}
	return catalog[t][o], true
}

func NumOrientations(t PieceType) int {
	if !t.Valid() {
		return 0
	}
	return len(catalog[t])
}

// Orientations returns the distinct images of a shape under the 8 rotations
// and reflections of the square, each normalized and sorted. Rotations of
// the shape come first, then rotations of its mirror image.
func Orientations(base []Cell) [][]Cell {
	var result [][]Cell
	seen := make(map[string]bool, MaxOrientations)
	add := func(cells []Cell) {
		key := fmt.Sprint(cells)
		if !seen[key] {
			seen[key] = true
			result = append(result, cells)
		}
	}

	for _, shape := range [][]Cell{normalizeCells(base), flip(base)} {
		for range 4 {
			add(shape)
			shape = rotate(shape)
		}
	}
	return result
}

// normalizeCells translates cells so the minimum row and column are zero and
// sorts them row-major.
func normalizeCells(cells []Cell) []Cell {
	if len(cells) == 0 {
		return nil
	}
	minRow, minCol := cells[0].Row, cells[0].Col
	for _, c := range cells[1:] {
		minRow = min(minRow, c.Row)
		minCol = min(minCol, c.Col)
	}
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{c.Row - minRow, c.Col - minCol}
	}
	slices.SortFunc(out, compareCells)
	return out
}

// rotate turns the shape 90 degrees clockwise.
func rotate(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{c.Col, -c.Row}
	}
	return normalizeCells(out)
}

// flip mirrors the shape horizontally.
func flip(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{c.Row, -c.Col}
	}
	return normalizeCells(out)
}

func compareCells(a, b Cell) int {
	if a.Row != b.Row {
		return a.Row - b.Row
	}
	return a.Col - b.Col
}
