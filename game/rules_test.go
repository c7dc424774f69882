package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireReason(t *testing.T, err error, reason Reason) {
	t.Helper()
	require.Error(t, err)
	got, ok := RejectionReason(err)
	require.True(t, ok, "error should carry a rejection reason: %v", err)
	require.Equal(t, reason, got, "unexpected rejection: %v", err)
}

func TestValidate(t *testing.T) {
	t.Run("out of bounds is checked on translated cells", func(t *testing.T) {
		b := NewBoard(10)
		err := Validate(b, mustPiece(t, I5, 0), 0, 6, 0, true)
		requireReason(t, err, ReasonOutOfBounds)
		require.True(t, errors.Is(err, ErrIllegalMove))

		err = Validate(b, mustPiece(t, I1, 0), 10, 0, 0, true)
		requireReason(t, err, ReasonOutOfBounds)
	})

	t.Run("occupied cells are rejected", func(t *testing.T) {
		b := NewBoard(10)
		b.PlacePiece(mustPiece(t, I1, 0), 0, 0, 1)
		requireReason(t, Validate(b, mustPiece(t, I2, 0), 0, 0, 0, true), ReasonOccupied)
	})

	t.Run("first move must cover the starting corner", func(t *testing.T) {
		b := NewBoard(20)
		requireReason(t, Validate(b, mustPiece(t, I1, 0), 1, 1, 0, true), ReasonStartingCorner)
		require.NoError(t, Validate(b, mustPiece(t, I1, 0), 0, 0, 0, true))
		require.NoError(t, Validate(b, mustPiece(t, I2, 0), 0, 18, 1, true), "Player 1 starts at the top-right")
		requireReason(t, Validate(b, mustPiece(t, I2, 0), 0, 0, 1, true), ReasonStartingCorner)
	})

	t.Run("a player without cells is treated as a first move", func(t *testing.T) {
		b := NewBoard(20)
		requireReason(t, Validate(b, mustPiece(t, I1, 0), 5, 5, 0, false), ReasonStartingCorner)
	})

	t.Run("edge contact is rejected before corner contact is considered", func(t *testing.T) {
		b := NewBoard(20)
		b.PlacePiece(mustPiece(t, I1, 0), 0, 0, 0)
		// I2 vertical at (1,0) touches (0,0) by edge
		vertical := mustPiece(t, I2, 1)
		requireReason(t, Validate(b, vertical, 1, 0, 0, false), ReasonEdgeContact)
	})

	t.Run("piece must touch an own corner", func(t *testing.T) {
		b := NewBoard(20)
		b.PlacePiece(mustPiece(t, I1, 0), 0, 0, 0)
		requireReason(t, Validate(b, mustPiece(t, I1, 0), 5, 5, 0, false), ReasonNoCornerContact)
		require.NoError(t, Validate(b, mustPiece(t, I1, 0), 1, 1, 0, false))
	})

	t.Run("touching other players by edge is allowed", func(t *testing.T) {
		b := NewBoard(20)
		b.PlacePiece(mustPiece(t, I1, 0), 0, 0, 0)
		b.PlacePiece(mustPiece(t, I1, 0), 2, 1, 1)
		require.NoError(t, Validate(b, mustPiece(t, I2, 0), 1, 1, 0, false))
	})
}

func TestLegalPlacements(t *testing.T) {
	t.Run("first move placements all cover the corner", func(t *testing.T) {
		b := NewBoard(20)
		total := 0
		for _, piece := range Pieces(L5) {
			placements := LegalPlacements(b, piece, 2, true)
			total += len(placements)
			for _, pos := range placements {
				require.NoError(t, Validate(b, piece, pos.Row, pos.Col, 2, true))
				covers := false
				for _, c := range piece.Cells {
					if pos.Add(c) == (Cell{19, 19}) {
						covers = true
					}
				}
				require.True(t, covers, "placement %v should cover the corner", pos)
			}
		}
		require.Positive(t, total, "Some L5 orientation fits the corner")
	})

	t.Run("orientations without a cell in the corner of their box cannot start", func(t *testing.T) {
		b := NewBoard(20)
		for _, piece := range Pieces(L5) {
			maxRow, maxCol := 0, 0
			for _, c := range piece.Cells {
				maxRow, maxCol = max(maxRow, c.Row), max(maxCol, c.Col)
			}
			hasCorner := false
			for _, c := range piece.Cells {
				if c == (Cell{maxRow, maxCol}) {
					hasCorner = true
				}
			}
			placements := LegalPlacements(b, piece, 2, true)
			if hasCorner {
				require.Equal(t, []Cell{{19 - maxRow, 19 - maxCol}}, placements, "L5/%d", piece.Orientation)
			} else {
				require.Empty(t, placements, "L5/%d", piece.Orientation)
			}
		}
	})

	t.Run("placements are unique and sorted", func(t *testing.T) {
		b := NewBoard(20)
		b.PlacePiece(mustPiece(t, O4, 0), 5, 5, 0)
		piece := mustPiece(t, I1, 0)
		placements := LegalPlacements(b, piece, 0, false)
		require.Equal(t, []Cell{{4, 4}, {4, 7}, {7, 4}, {7, 7}}, placements)
	})

	t.Run("matches a brute force scan", func(t *testing.T) {
		b := NewBoard(10)
		b.PlacePiece(mustPiece(t, F, 0), 0, 0, 0)
		b.PlacePiece(mustPiece(t, W, 2), 3, 2, 1)
		for _, piece := range Pieces(Y) {
			var brute []Cell
			for r := -4; r < 10; r++ {
				for c := -4; c < 10; c++ {
					if Validate(b, piece, r, c, 0, false) == nil {
						brute = append(brute, Cell{r, c})
					}
				}
			}
			require.Equal(t, brute, LegalPlacements(b, piece, 0, false), "Y/%d", piece.Orientation)
		}
	})

	t.Run("no anchors means no moves", func(t *testing.T) {
		b := NewBoard(DuoBoardSize)
		require.Empty(t, LegalPlacements(b, mustPiece(t, I1, 0), 3, true), "Seat without a starting corner")
		require.False(t, HasAnyLegalMove(b, FullPieceSet, 3, true))
	})

	t.Run("any legal move agrees with enumeration", func(t *testing.T) {
		b := NewBoard(MinBoardSize)
		require.True(t, HasAnyLegalMove(b, FullPieceSet, 0, true))
		require.False(t, HasAnyLegalMove(b, 0, 0, true), "No pieces left")
	})
}
