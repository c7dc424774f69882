package codec

import "blokus/game"

// HistoryBoards rebuilds the boards before the last depth moves of state,
// most recent first, by replaying its move history.
func HistoryBoards(state *game.GameState, depth int) []*game.Board {
	moves := state.History
	n := min(depth, len(moves))
	if n == 0 {
		return nil
	}

	boards := make([]*game.Board, n)
	b := game.NewBoard(state.Board.Size())
	for i, m := range moves[:len(moves)-1] {
		if k := len(moves) - 1 - i; k < n {
			boards[k] = b.Copy()
		}
		if piece, ok := game.GetPiece(m.Piece, m.Orientation); ok {
			b.PlacePiece(piece, m.Row, m.Col, m.Player)
		}
	}
	boards[0] = b
	return boards
}
