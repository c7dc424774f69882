package game

import (
	"slices"
	"strings"
	"sync"
)

const (
	MaxPlayers = 4
	MinPlayers = 2

	// ClassicBoardSize and DuoBoardSize are the two standard board sizes.
	ClassicBoardSize = 20
	DuoBoardSize     = 14
	MinBoardSize     = 5

	Empty int8 = 0
)

var (
	orthogonal = []Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonal   = []Cell{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// CellSet is an unordered set of board cells.
type CellSet map[Cell]struct{}

func (s CellSet) Contains(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the cells in row-major order.
func (s CellSet) Sorted() []Cell {
	cells := make([]Cell, 0, len(s))
	for c := range s {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, compareCells)
	return cells
}

type playerCache struct {
	cells   CellSet
	corners CellSet
	edges   CellSet
}

// Board is a square grid. A cell holds Empty or the owning player's id + 1.
// Per-player cell, corner and edge sets are computed lazily and dropped
// whenever a piece is placed.
type Board struct {
	size int
	grid []int8

	mu    sync.Mutex
	cache [MaxPlayers]*playerCache
}

func NewBoard(size int) *Board {
	return &Board{
		size: size,
		grid: make([]int8, size*size),
	}
}

func (b *Board) Size() int { return b.size }

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// Cell returns the raw cell value: Empty or owner + 1.
func (b *Board) Cell(row, col int) int8 {
	return b.grid[row*b.size+col]
}

// Owner reports which player occupies a cell, if any.
func (b *Board) Owner(row, col int) (int, bool) {
	v := b.grid[row*b.size+col]
	if v == Empty {
		return 0, false
	}
	return int(v) - 1, true
}

func (b *Board) IsEmpty(row, col int) bool {
	return b.InBounds(row, col) && b.grid[row*b.size+col] == Empty
}

// StartingCorner is the cell a player's first piece must cover. The 14x14
// Duo board uses two inner starting points, every other size uses the four
// board corners clockwise from the top-left.
func (b *Board) StartingCorner(player int) (Cell, bool) {
	last := b.size - 1
	if b.size == DuoBoardSize {
		switch player {
		case 0:
			return Cell{4, 4}, true
		case 1:
			return Cell{9, 9}, true
		}
		return Cell{}, false
	}
	switch player {
	case 0:
		return Cell{0, 0}, true
	case 1:
		return Cell{0, last}, true
	case 2:
		return Cell{last, last}, true
	case 3:
		return Cell{last, 0}, true
	}
	return Cell{}, false
}

// PlacePiece writes the piece translated by (row, col) for player. Nothing is
// written unless every cell is in bounds and empty.
func (b *Board) PlacePiece(piece Piece, row, col, player int) bool {
	origin := Cell{row, col}
	for _, c := range piece.Cells {
		p := origin.Add(c)
		if !b.IsEmpty(p.Row, p.Col) {
			return false
		}
	}
	for _, c := range piece.Cells {
		p := origin.Add(c)
		b.grid[p.Row*b.size+p.Col] = int8(player + 1)
	}

	b.mu.Lock()
	b.cache = [MaxPlayers]*playerCache{}
	b.mu.Unlock()
	return true
}

// PlayerCells returns the cells owned by player. The set is shared with the
// board's cache and must not be modified.
func (b *Board) PlayerCells(player int) CellSet {
	return b.playerCache(player).cells
}

// PlayerCorners returns the cells where player may anchor a new piece: the
// starting corner while the player owns nothing, otherwise every empty cell
// diagonal to an owned cell that shares no side with one.
func (b *Board) PlayerCorners(player int) CellSet {
	return b.playerCache(player).corners
}

// PlayerEdges returns the cells sharing a side with player's pieces that the
// player does not own itself.
func (b *Board) PlayerEdges(player int) CellSet {
	return b.playerCache(player).edges
}

func (b *Board) playerCache(player int) *playerCache {
	b.mu.Lock()
	defer b.mu.Unlock()

	if player < 0 || player >= MaxPlayers {
		return &playerCache{cells: CellSet{}, corners: CellSet{}, edges: CellSet{}}
	}
	if b.cache[player] == nil {
		b.cache[player] = b.computeCache(player)
	}
	return b.cache[player]
}

func (b *Board) computeCache(player int) *playerCache {
	mark := int8(player + 1)
	pc := &playerCache{cells: CellSet{}, corners: CellSet{}, edges: CellSet{}}
	for i, v := range b.grid {
		if v == mark {
			pc.cells[Cell{i / b.size, i % b.size}] = struct{}{}
		}
	}

	if len(pc.cells) == 0 {
		if corner, ok := b.StartingCorner(player); ok {
			pc.corners[corner] = struct{}{}
		}
		return pc
	}

	owns := func(c Cell) bool {
		return b.InBounds(c.Row, c.Col) && b.grid[c.Row*b.size+c.Col] == mark
	}
	for c := range pc.cells {
		for _, d := range orthogonal {
			n := c.Add(d)
			if b.InBounds(n.Row, n.Col) && !owns(n) {
				pc.edges[n] = struct{}{}
			}
		}
		for _, d := range diagonal {
			n := c.Add(d)
			if !b.IsEmpty(n.Row, n.Col) {
				continue
			}
			touches := false
			for _, o := range orthogonal {
				if owns(n.Add(o)) {
					touches = true
					break
				}
			}
			if !touches {
				pc.corners[n] = struct{}{}
			}
		}
	}
	return pc
}

func (b *Board) CountOccupied() int {
	count := 0
	for _, v := range b.grid {
		if v != Empty {
			count++
		}
	}
	return count
}

func (b *Board) CountPlayerCells(player int) int {
	return len(b.PlayerCells(player))
}

// Copy returns an independent board. Caches are not carried over.
func (b *Board) Copy() *Board {
	return &Board{
		size: b.size,
		grid: slices.Clone(b.grid),
	}
}

// Equal reports whether two boards have identical occupancy.
func (b *Board) Equal(o *Board) bool {
	return b.size == o.size && slices.Equal(b.grid, o.grid)
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := range b.size {
		for c := range b.size {
			v := b.grid[r*b.size+c]
			if v == Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('0' + byte(v))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
