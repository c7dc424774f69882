package searcher

import (
	"blokus/game"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUCT(t *testing.T) {
	t.Run("needs visits on both ends", func(t *testing.T) {
		require.Panics(t, func() { newUCT(CSquared, 0) }, "Parent without visits")
		require.Panics(t, func() { newUCT(CSquared, 4).evaluate(1, 0) }, "Child without visits")
	})

	t.Run("mean reward is rescaled to the unit interval", func(t *testing.T) {
		require.Equal(t, 1.0, value(3*Win, 3))
		require.Equal(t, 0.0, value(3*Loss, 3))
		require.Equal(t, 0.5, value(Draw, 3))
		require.Equal(t, 0.75, value(Win+Draw, 2))
	})

	t.Run("score adds the exploration bonus", func(t *testing.T) {
		policy := newUCT(CSquared, 100)
		got := policy.evaluate(4, 10)
		expected := 0.7 + math.Sqrt(CSquared*math.Log(100)/10)
		require.InDelta(t, expected, got, 1e-12)
	})

	t.Run("exploration grows with parent visits and shrinks with child visits", func(t *testing.T) {
		require.Greater(t, newUCT(CSquared, 1000).evaluate(0, 10), newUCT(CSquared, 100).evaluate(0, 10))
		require.Greater(t, newUCT(CSquared, 100).evaluate(0, 10), newUCT(CSquared, 100).evaluate(0, 20))
	})
}

func TestUCTBest(t *testing.T) {
	t.Run("highest mean wins at equal visits", func(t *testing.T) {
		children := map[game.Move]*decision{
			mv(0): {rewards: -2, visits: 4},
			mv(1): {rewards: 3, visits: 4},
			mv(2): {rewards: 0, visits: 4},
		}
		got := newUCT(CSquared, 12).best([]game.Move{mv(0), mv(1), mv(2)}, children)
		require.Equal(t, mv(1), got)
	})

	t.Run("ties go to the first explored move", func(t *testing.T) {
		children := map[game.Move]*decision{
			mv(0): {rewards: 1, visits: 2},
			mv(1): {rewards: 1, visits: 2},
		}
		require.Equal(t, mv(1), newUCT(CSquared, 4).best([]game.Move{mv(1), mv(0)}, children))
	})

	t.Run("rewards of a three player node are read from each mover", func(t *testing.T) {
		// player 2 won every rollout through mv(2); movers 0 and 1 lost theirs
		children := map[game.Move]*decision{
			mv(0): {mover: 0, rewards: 5 * rewardFor(0, 2, Win), visits: 5},
			mv(1): {mover: 1, rewards: 5 * rewardFor(1, 2, Win), visits: 5},
			mv(2): {mover: 2, rewards: 5 * rewardFor(2, 2, Win), visits: 5},
		}
		got := newUCT(CSquared, 15).best([]game.Move{mv(0), mv(1), mv(2)}, children)
		require.Equal(t, mv(2), got)
	})
}
