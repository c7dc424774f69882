package codec

import (
	"blokus/game"
	"blokus/utils"
)

// Channel layout of an observation. Per-player groups always span four
// channels; seats beyond the game's player count stay zero.
const (
	ChannelOccupancy   = 0
	ChannelCorners     = 4
	ChannelHistory1    = 8
	ChannelHistory2    = 12
	ChannelTurn        = 16
	ChannelPieces      = 17
	ChannelPieceCount  = 38
	ChannelFirstMove   = 42
	ChannelPerspective = 46

	NumChannels = 47
)

// MaxTurns normalizes the turn channel: four players with 21 pieces each.
const MaxTurns = game.MaxPlayers * game.NumPieceTypes

// HistoryDepth is the number of earlier boards an observation encodes.
const HistoryDepth = 2

// Observe encodes state from perspective's point of view. history holds the
// boards before the last one and the one before that, most recent first;
// missing entries are zero-filled.
func Observe(state *game.GameState, history []*game.Board, perspective int) Tensor {
	size := state.Board.Size()
	obs := NewTensor(size, size, NumChannels)
	numPlayers := min(state.NumPlayers(), game.MaxPlayers)

	occupancy(obs, state.Board, ChannelOccupancy, numPlayers)

	for p := range numPlayers {
		var corners []game.Cell
		if state.IsFirstMove(p) {
			if corner, ok := state.Board.StartingCorner(p); ok {
				corners = []game.Cell{corner}
			}
		} else {
			corners = state.Board.PlayerCorners(p).Sorted()
		}
		for _, c := range corners {
			obs.Set(c.Row, c.Col, ChannelCorners+p, 1)
		}
	}

	for i, channel := range []int{ChannelHistory1, ChannelHistory2} {
		if i < len(history) && history[i] != nil && history[i].Size() == size {
			occupancy(obs, history[i], channel, numPlayers)
		}
	}

	obs.Fill(ChannelTurn, float32(utils.Clamp(float64(state.TurnNumber())/MaxTurns, 0, 1)))

	if perspective >= 0 && perspective < state.NumPlayers() {
		remaining := state.Players[perspective].Remaining
		for _, t := range remaining.Types() {
			obs.Fill(ChannelPieces+int(t), 1)
		}
	}

	for p := range numPlayers {
		count := float64(state.Players[p].Remaining.Len()) / game.NumPieceTypes
		obs.Fill(ChannelPieceCount+p, float32(count))
		if state.IsFirstMove(p) {
			obs.Fill(ChannelFirstMove+p, 1)
		}
	}

	obs.Fill(ChannelPerspective, float32(utils.Clamp(float64(perspective)/(game.MaxPlayers-1), 0, 1)))
	return obs
}

func occupancy(obs Tensor, b *game.Board, channel, numPlayers int) {
	size := b.Size()
	for r := range size {
		for c := range size {
			if owner, ok := b.Owner(r, c); ok && owner < numPlayers {
				obs.Set(r, c, channel+owner, 1)
			}
		}
	}
}
