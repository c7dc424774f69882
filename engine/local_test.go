package engine

import (
	"blokus/agent"
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/player"
	"blokus/searcher"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingPlayer struct {
	inner   player.Player
	updates [][]searcher.Segment
}

func (r *recordingPlayer) FindMove(state *game.GameState, updates []searcher.Segment) (game.Move, metrics.SearchMetric) {
	r.updates = append(r.updates, append([]searcher.Segment(nil), updates...))
	return r.inner.FindMove(state, updates)
}

type illegalPlayer struct{}

func (illegalPlayer) FindMove(state *game.GameState, _ []searcher.Segment) (game.Move, metrics.SearchMetric) {
	return game.Move{Player: state.Current, Piece: game.X, Row: 2, Col: 2}, metrics.SearchMetric{}
}

func newGame(t *testing.T, size, players int) *game.GameState {
	t.Helper()
	gs, err := game.NewDefaultGame(size, players)
	require.NoError(t, err)
	return gs
}

func TestLocalEngineRun(t *testing.T) {
	t.Run("random players finish a game", func(t *testing.T) {
		gs := newGame(t, game.DuoBoardSize, 2)
		e := NewLocalEngine(gs, []player.Player{
			player.NewAgentPlayer(agent.NewRandomAgent(1), false),
			player.NewAgentPlayer(agent.NewRandomAgent(2), false),
		})

		gameMetric, moveMetrics := e.Run()

		require.True(t, e.State().IsOver())
		require.Equal(t, len(gs.History), gameMetric.TotalMoves)
		require.Len(t, moveMetrics, gameMetric.TotalMoves)
		require.Equal(t, gs.Scores(), gameMetric.Scores)
		require.Equal(t, 0, gameMetric.StartingPlayer)
		if winner, ok := gs.Winner(); ok {
			require.Equal(t, winner, gameMetric.Winner)
		} else {
			require.Equal(t, -1, gameMetric.Winner)
		}
		for i, m := range moveMetrics {
			require.Equal(t, i+1, m.Step)
			require.Equal(t, gs.History[i], m.Move)
			require.Equal(t, m.Player, m.Move.Player)
		}
	})

	t.Run("players hear every move since their last turn", func(t *testing.T) {
		gs := newGame(t, game.MinBoardSize, 2)
		first := &recordingPlayer{inner: player.NewAgentPlayer(agent.NewRandomAgent(3), false)}
		second := &recordingPlayer{inner: player.NewAgentPlayer(agent.NewRandomAgent(4), false)}

		NewLocalEngine(gs, []player.Player{first, second}).Run()

		require.Empty(t, first.updates[0], "Nothing happened before the first move")
		require.Len(t, second.updates[0], 1)
		require.Equal(t, gs.History[0], second.updates[0][0].Move)
		if len(first.updates) > 1 && len(second.updates) > 0 {
			require.Equal(t, gs.History[0], first.updates[1][0].Move, "A player hears its own move")
		}

		replay := newGame(t, game.MinBoardSize, 2)
		require.NoError(t, replay.PlayMove(gs.History[0]))
		require.Equal(t, replay.Hash(), second.updates[0][0].StateHash)
	})

	t.Run("illegal choices fall back to a legal move", func(t *testing.T) {
		gs := newGame(t, game.MinBoardSize, 2)
		gameMetric, _ := NewLocalEngine(gs, []player.Player{
			illegalPlayer{},
			player.NewAgentPlayer(agent.NewRandomAgent(5), false),
		}).Run()
		require.True(t, gs.IsOver())
		require.Positive(t, gameMetric.TotalMoves)
	})

	t.Run("mismatched seats panic", func(t *testing.T) {
		require.Panics(t, func() {
			NewLocalEngine(newGame(t, 20, 4), []player.Player{illegalPlayer{}})
		})
	})
}
