// Package player adapts agents and search to a common move-finding
// interface, and builds players from an agent catalog.
package player

import (
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/searcher"
	"errors"
)

var (
	ErrUnknownAgent  = errors.New("unknown agent")
	ErrAgentDisabled = errors.New("agent is disabled")
)

// Player chooses a move for the player to move in state. updates lists the
// moves played since the player's previous call.
type Player interface {
	FindMove(state *game.GameState, updates []searcher.Segment) (game.Move, metrics.SearchMetric)
}

// fallback returns the first legal move. It panics on a finished game.
func fallback(state *game.GameState) game.Move {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		panic("No legal moves at all!")
	}
	return moves[0]
}
