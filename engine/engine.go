// Package engine runs games between players in process.
package engine

import (
	"blokus/experiments/metrics"
	"blokus/meta"
)

// MaxMoves bounds a game; every move places a piece, so a game cannot be
// longer.
const MaxMoves = meta.MAX_TURNS

type Engine interface {
	// Run plays a game till it is finished or a max number of moves is reached
	Run() (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
