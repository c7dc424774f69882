package player

import (
	"blokus/agent"
	"blokus/codec"
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/searcher"
	"time"

	"github.com/rs/zerolog/log"
)

// AgentPlayer plays the actions chosen by an agent.Agent from encoded
// observations.
type AgentPlayer struct {
	agent         agent.Agent
	deterministic bool
}

func NewAgentPlayer(a agent.Agent, deterministic bool) *AgentPlayer {
	return &AgentPlayer{agent: a, deterministic: deterministic}
}

func (p *AgentPlayer) Agent() agent.Agent { return p.agent }

func (p *AgentPlayer) FindMove(state *game.GameState, _ []searcher.Segment) (game.Move, metrics.SearchMetric) {
	start := time.Now()
	history := codec.HistoryBoards(state, codec.HistoryDepth)
	obs := codec.Observe(state, history, state.Current)
	mask := codec.ActionMaskFor(state)

	action := p.agent.SelectAction(obs, mask, p.deterministic)
	move, ok := codec.DecodeAction(action, state)
	if !ok || !mask.Has(action) {
		log.Warn().Msgf("agent chose illegal action %d for player %d, playing the first legal move", action, state.Current)
		move = fallback(state)
	}
	return move, metrics.SearchMetric{Goroutines: 1, Episodes: 1, Duration: time.Since(start)}
}
