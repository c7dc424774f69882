package game

import "fmt"

// Move places orientation Orientation of Piece with its bounding box's
// top-left at (Row, Col).
type Move struct {
	Player      int
	Piece       PieceType
	Orientation int
	Row         int
	Col         int
}

func (m Move) String() string {
	return fmt.Sprintf("P%d %s/%d@(%d,%d)", m.Player, m.Piece, m.Orientation, m.Row, m.Col)
}

// Cells returns the board cells the move covers.
func (m Move) Cells() []Cell {
	piece, ok := GetPiece(m.Piece, m.Orientation)
	if !ok {
		return nil
	}
	origin := Cell{m.Row, m.Col}
	cells := make([]Cell, len(piece.Cells))
	for i, c := range piece.Cells {
		cells[i] = origin.Add(c)
	}
	return cells
}
