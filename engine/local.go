package engine

import (
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/player"
	"blokus/searcher"
	"time"

	"github.com/rs/zerolog/log"
)

type LocalEngine struct {
	state   *game.GameState
	players []player.Player
}

// NewLocalEngine seats players[i] as player i of state.
func NewLocalEngine(state *game.GameState, players []player.Player) *LocalEngine {
	if len(players) != state.NumPlayers() {
		panic("number of players does not match the game")
	}
	return &LocalEngine{state: state, players: players}
}

func (e *LocalEngine) State() *game.GameState { return e.state }

// Run plays the game to the end. Each player is told the moves played since
// its previous turn, its own included, so search players can reuse trees.
func (e *LocalEngine) Run() (metrics.GameMetric, []metrics.MoveMetric) {
	updates := make([][]searcher.Segment, len(e.players))

	log.Info().Msgf("player %d is starting", e.state.Current)
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.state.Current,
		StartTime:      time.Now(),
	}

	var moveMetrics []metrics.MoveMetric
	for step := 1; !e.state.IsOver() && step <= MaxMoves; step++ {
		current := e.state.Current
		move, searchMetric := e.players[current].FindMove(e.state, updates[current])
		updates[current] = nil

		if err := e.state.PlayMove(move); err != nil {
			log.Error().Err(err).Msgf("player %d chose an illegal move %v", current, move)
			moves := e.state.LegalMoves()
			move = moves[0]
			if err := e.state.PlayMove(move); err != nil {
				panic(err)
			}
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       current,
			Move:         move,
			SearchMetric: searchMetric,
		})

		segment := searcher.Segment{Move: move, StateHash: e.state.Hash()}
		for i := range updates {
			updates[i] = append(updates[i], segment)
		}
	}

	if !e.state.IsOver() {
		log.Warn().Msgf("stopped after %d moves without finishing", MaxMoves)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)
	gameMetric.Scores = e.state.Scores()
	gameMetric.Winner = -1
	if winner, ok := e.state.Winner(); ok && e.state.IsOver() {
		gameMetric.Winner = winner
	}
	log.Info().Msgf("game finished after %d moves with scores %v", gameMetric.TotalMoves, gameMetric.Scores)
	return gameMetric, moveMetrics
}
