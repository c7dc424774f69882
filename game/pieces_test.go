package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPieceCatalog(t *testing.T) {
	t.Run("full set covers 89 cells", func(t *testing.T) {
		total := 0
		for _, pt := range AllPieceTypes() {
			total += len(Pieces(pt)[0].Cells)
		}
		require.Equal(t, TotalCells, total, "Default orientations should cover 89 cells")
		require.Equal(t, TotalCells, FullPieceSet.Cells(), "Full piece set should cover 89 cells")
	})

	t.Run("orientation counts match the dihedral symmetry of each piece", func(t *testing.T) {
		expected := map[PieceType]int{
			I1: 1, I2: 2, I3: 2, L3: 4, I4: 2, L4: 8, T4: 4, O4: 1, S4: 4,
			F: 8, I5: 2, L5: 8, N: 8, P: 8, T5: 4, U: 4, V: 4, W: 4, X: 1, Y: 8, Z: 4,
		}
		for pt, count := range expected {
			require.Equal(t, count, NumOrientations(pt), "Orientation count of %s", pt)
		}
	})

	t.Run("orientations are normalized and unique", func(t *testing.T) {
		for _, pt := range AllPieceTypes() {
			seen := map[string]bool{}
			for i, piece := range Pieces(pt) {
				require.Equal(t, i, piece.Orientation, "Orientation ids should be dense")
				require.Equal(t, pt.Size(), piece.Size(), "Every orientation of %s keeps its size", pt)

				minRow, minCol := piece.Cells[0].Row, piece.Cells[0].Col
				for _, c := range piece.Cells {
					minRow = min(minRow, c.Row)
					minCol = min(minCol, c.Col)
				}
				require.Zero(t, minRow, "%s/%d should start at row 0", pt, i)
				require.Zero(t, minCol, "%s/%d should start at column 0", pt, i)

				key := fmt.Sprint(piece.Cells)
				require.False(t, seen[key], "%s/%d duplicates an earlier orientation", pt, i)
				seen[key] = true
			}
		}
	})

	t.Run("regenerating orientations is deterministic", func(t *testing.T) {
		for _, pt := range AllPieceTypes() {
			first := Orientations(baseShapes[pt])
			second := Orientations(baseShapes[pt])
			require.Equal(t, first, second, "Orientations of %s should be reproducible", pt)
		}
	})

	t.Run("orientation set is closed under rotation and reflection", func(t *testing.T) {
		for _, pt := range AllPieceTypes() {
			members := map[string]bool{}
			for _, piece := range Pieces(pt) {
				members[fmt.Sprint(piece.Cells)] = true
			}
			for _, piece := range Pieces(pt) {
				require.True(t, members[fmt.Sprint(rotate(piece.Cells))], "Rotation of %s should stay in the set", pt)
				require.True(t, members[fmt.Sprint(flip(piece.Cells))], "Reflection of %s should stay in the set", pt)
			}
		}
	})

	t.Run("looking up pieces", func(t *testing.T) {
		_, ok := GetPiece(X, 1)
		require.False(t, ok, "X has a single orientation")
		_, ok = GetPiece(PieceType(NumPieceTypes), 0)
		require.False(t, ok, "Piece index out of range")

		piece, ok := GetPiece(L5, 7)
		require.True(t, ok)
		require.Equal(t, L5, piece.Type)

		pt, ok := ParsePieceType("W")
		require.True(t, ok)
		require.Equal(t, W, pt)
	})
}

func TestPieceSet(t *testing.T) {
	set := FullPieceSet
	require.Equal(t, NumPieceTypes, set.Len())

	set = set.Without(I1).Without(Z)
	require.False(t, set.Has(I1))
	require.False(t, set.Has(Z))
	require.True(t, set.Has(X))
	require.Equal(t, NumPieceTypes-2, set.Len())
	require.Equal(t, TotalCells-6, set.Cells())
	require.Equal(t, I2, set.Types()[0], "Types should be listed in piece index order")
}
