package codec

import (
	"blokus/game"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireUnitRange(t *testing.T, obs Tensor) {
	t.Helper()
	for i, v := range obs.Data {
		f := float64(v)
		require.False(t, math.IsNaN(f) || math.IsInf(f, 0), "value %d is not finite", i)
		require.GreaterOrEqual(t, v, float32(0), "value %d below 0", i)
		require.LessOrEqual(t, v, float32(1), "value %d above 1", i)
	}
}

func TestObserve(t *testing.T) {
	t.Run("empty board", func(t *testing.T) {
		gs, err := game.NewDefaultGame(20, 4)
		require.NoError(t, err)

		obs := Observe(gs, nil, 0)
		require.Equal(t, 20, obs.Height)
		require.Equal(t, 20, obs.Width)
		require.Equal(t, NumChannels, obs.Channels)
		requireUnitRange(t, obs)

		require.Equal(t, float32(1), obs.At(0, 0, ChannelCorners+0), "Starting corner of player 0")
		require.Equal(t, float32(1), obs.At(19, 0, ChannelCorners+3), "Starting corner of player 3")
		require.Equal(t, float32(0), obs.At(0, 0, ChannelTurn))
		for ch := ChannelPieces; ch < ChannelPieces+game.NumPieceTypes; ch++ {
			require.Equal(t, float32(1), obs.At(7, 3, ch), "All pieces remain")
		}
		require.Equal(t, float32(1), obs.At(2, 2, ChannelPieceCount+1))
		require.Equal(t, float32(1), obs.At(2, 2, ChannelFirstMove+2))
		require.Equal(t, float32(0), obs.At(2, 2, ChannelPerspective))
	})

	t.Run("occupancy, history and piece planes follow play", func(t *testing.T) {
		gs, err := game.NewDefaultGame(14, 2)
		require.NoError(t, err)
		before := gs.Board.Copy()
		require.NoError(t, gs.PlayMove(game.Move{Player: 0, Piece: game.I1, Row: 4, Col: 4}))
		middle := gs.Board.Copy()
		require.NoError(t, gs.PlayMove(game.Move{Player: 1, Piece: game.I2, Row: 9, Col: 9}))

		obs := Observe(gs, []*game.Board{middle, before}, 1)
		requireUnitRange(t, obs)

		require.Equal(t, float32(1), obs.At(4, 4, ChannelOccupancy+0))
		require.Equal(t, float32(1), obs.At(9, 10, ChannelOccupancy+1))
		require.Equal(t, float32(0), obs.At(4, 4, ChannelOccupancy+2), "Unused seats stay empty")
		require.Equal(t, float32(1), obs.At(4, 4, ChannelHistory1+0), "T-1 board has player 0's piece")
		require.Equal(t, float32(0), obs.At(9, 9, ChannelHistory1+1), "T-1 board predates player 1's move")
		require.Equal(t, float32(0), obs.At(4, 4, ChannelHistory2+0), "T-2 board is empty")

		require.Equal(t, float32(1), obs.At(5, 5, ChannelCorners+0), "Diagonal of player 0's monomino")
		require.Equal(t, float32(0), obs.At(4, 4, ChannelCorners+0))

		require.Equal(t, float32(0), obs.At(0, 0, ChannelPieces+int(game.I2)), "Perspective player used I2")
		require.Equal(t, float32(1), obs.At(0, 0, ChannelPieces+int(game.I1)))
		require.InDelta(t, 20.0/21.0, obs.At(0, 0, ChannelPieceCount), 1e-6)
		require.InDelta(t, 2.0/84.0, obs.At(13, 13, ChannelTurn), 1e-6)
		require.Equal(t, float32(0), obs.At(0, 0, ChannelFirstMove+0))
		require.InDelta(t, 1.0/3.0, obs.At(0, 0, ChannelPerspective), 1e-6)
	})

	t.Run("finished games stay in range", func(t *testing.T) {
		gs, err := game.NewDefaultGame(game.MinBoardSize, 2)
		require.NoError(t, err)
		var history []*game.Board
		for !gs.IsOver() {
			history = append([]*game.Board{gs.Board.Copy()}, history...)
			moves := gs.LegalMoves()
			require.NoError(t, gs.PlayMove(moves[0]))
			requireUnitRange(t, Observe(gs, history, gs.Current))
		}
		requireUnitRange(t, Observe(gs, history, 1))
	})

	t.Run("turn channel is clamped", func(t *testing.T) {
		gs, err := game.NewDefaultGame(14, 2)
		require.NoError(t, err)
		gs.History = make([]game.Move, 200)
		obs := Observe(gs, nil, 0)
		require.Equal(t, float32(1), obs.At(0, 0, ChannelTurn))
		requireUnitRange(t, obs)
	})
}

func TestHistoryBoards(t *testing.T) {
	gs, err := game.NewDefaultGame(20, 2)
	require.NoError(t, err)
	require.Empty(t, HistoryBoards(gs, HistoryDepth))

	var boards []*game.Board
	for _, m := range []game.Move{
		{Player: 0, Piece: game.I1, Row: 0, Col: 0},
		{Player: 1, Piece: game.I1, Row: 0, Col: 19},
		{Player: 0, Piece: game.I2, Row: 1, Col: 1},
	} {
		boards = append(boards, gs.Board.Copy())
		require.NoError(t, gs.PlayMove(m))
	}

	history := HistoryBoards(gs, HistoryDepth)
	require.Len(t, history, 2)
	require.True(t, boards[2].Equal(history[0]), "Most recent board comes first")
	require.True(t, boards[1].Equal(history[1]))

	require.Len(t, HistoryBoards(gs, 5), 3)
	require.True(t, boards[0].Equal(HistoryBoards(gs, 5)[2]))
}
