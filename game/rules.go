package game

import "slices"

// Validate checks whether piece may be placed with its top-left at
// (row, col) for player. It returns nil for a legal placement and an
// *IllegalMoveError otherwise. Checks short-circuit in order: bounds,
// vacancy, then the starting corner for a player without pieces on the
// board, or edge and corner contact for everyone else.
func Validate(b *Board, piece Piece, row, col, player int, isFirstMove bool) error {
	origin := Cell{row, col}
	for _, c := range piece.Cells {
		p := origin.Add(c)
		if !b.InBounds(p.Row, p.Col) {
			return &IllegalMoveError{Reason: ReasonOutOfBounds, Cell: p}
		}
	}
	for _, c := range piece.Cells {
		p := origin.Add(c)
		if b.Cell(p.Row, p.Col) != Empty {
			return &IllegalMoveError{Reason: ReasonOccupied, Cell: p}
		}
	}

	if isFirstMove || len(b.PlayerCells(player)) == 0 {
		corner, ok := b.StartingCorner(player)
		if !ok {
			return reject(ReasonStartingCorner)
		}
		for _, c := range piece.Cells {
			if origin.Add(c) == corner {
				return nil
			}
		}
		return reject(ReasonStartingCorner)
	}

	edges := b.PlayerEdges(player)
	corners := b.PlayerCorners(player)
	touchesCorner := false
	for _, c := range piece.Cells {
		p := origin.Add(c)
		if edges.Contains(p) {
			return reject(ReasonEdgeContact)
		}
		if corners.Contains(p) {
			touchesCorner = true
		}
	}
	if !touchesCorner {
		return reject(ReasonNoCornerContact)
	}
	return nil
}

// anchors are the cells a new piece must cover: the starting corner for a
// first move, the player's corners otherwise.
func anchors(b *Board, player int, isFirstMove bool) []Cell {
	if isFirstMove || len(b.PlayerCells(player)) == 0 {
		if corner, ok := b.StartingCorner(player); ok {
			return []Cell{corner}
		}
		return nil
	}
	return b.PlayerCorners(player).Sorted()
}

// LegalPlacements returns every distinct top-left position at which piece is
// legal for player, in row-major order. Only translations that map one of
// the piece's cells onto an anchor cell are probed.
func LegalPlacements(b *Board, piece Piece, player int, isFirstMove bool) []Cell {
	seen := make(map[Cell]struct{})
	var placements []Cell
	for _, anchor := range anchors(b, player, isFirstMove) {
		for _, c := range piece.Cells {
			pos := anchor.Sub(c)
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			if Validate(b, piece, pos.Row, pos.Col, player, isFirstMove) == nil {
				placements = append(placements, pos)
			}
		}
	}
	slices.SortFunc(placements, compareCells)
	return placements
}

// HasAnyLegalMove reports whether player can place any of the remaining
// pieces. It stops at the first legal placement found.
func HasAnyLegalMove(b *Board, remaining PieceSet, player int, isFirstMove bool) bool {
	anchorCells := anchors(b, player, isFirstMove)
	if len(anchorCells) == 0 {
		return false
	}
	for _, t := range remaining.Types() {
		for _, piece := range Pieces(t) {
			for _, anchor := range anchorCells {
				for _, c := range piece.Cells {
					pos := anchor.Sub(c)
					if Validate(b, piece, pos.Row, pos.Col, player, isFirstMove) == nil {
						return true
					}
				}
			}
		}
	}
	return false
}
