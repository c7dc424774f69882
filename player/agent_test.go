package player

import (
	"blokus/agent"
	"blokus/codec"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	action int
	seen   codec.Tensor
	mask   codec.Mask
}

func (s *stubAgent) SelectAction(obs codec.Tensor, mask codec.Mask, _ bool) int {
	s.seen, s.mask = obs, mask
	return s.action
}

func (s *stubAgent) Reset() {}

func TestAgentPlayer(t *testing.T) {
	t.Run("plays the agent's action", func(t *testing.T) {
		gs := newSmallGame(t)
		mask := codec.ActionMaskFor(gs)
		stub := &stubAgent{action: mask.Legal[len(mask.Legal)-1]}

		move, metric := NewAgentPlayer(stub, true).FindMove(gs, nil)

		require.Equal(t, stub.action, codec.EncodeMove(move, gs.Board.Size()))
		require.Equal(t, mask, stub.mask)
		require.Equal(t, codec.NumChannels, stub.seen.Channels)
		require.Equal(t, 1, metric.Episodes)
	})

	t.Run("falls back on illegal actions", func(t *testing.T) {
		gs := newSmallGame(t)
		move, _ := NewAgentPlayer(&stubAgent{action: codec.PassAction}, true).FindMove(gs, nil)
		requireLegal(t, gs, move)
	})

	t.Run("random agent plays a whole game", func(t *testing.T) {
		gs := newSmallGame(t)
		p := NewAgentPlayer(agent.NewRandomAgent(1), false)
		for steps := 0; !gs.IsOver(); steps++ {
			require.Less(t, steps, 50)
			move, _ := p.FindMove(gs, nil)
			require.NoError(t, gs.PlayMove(move))
		}
	})
}
