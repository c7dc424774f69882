package agent

import (
	"blokus/codec"
	"blokus/game"
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func tinyConfig() Config {
	config := DefaultConfig()
	config.HiddenSize = 8
	config.BufferSize = 32
	config.BatchSize = 4
	config.LearningRate = 1e-2
	config.EpsilonDecay = 10
	return config
}

func newTinyDQN(t *testing.T) *DQN {
	t.Helper()
	d, err := NewDQN(game.MinBoardSize, tinyConfig())
	require.NoError(t, err)
	return d
}

func randomObservation(rng *rand.Rand) codec.Tensor {
	obs := codec.NewTensor(game.MinBoardSize, game.MinBoardSize, codec.NumChannels)
	for i := range obs.Data {
		if rng.Float64() < 0.2 {
			obs.Data[i] = 1
		}
	}
	return obs
}

func TestNewDQN(t *testing.T) {
	t.Run("rejects invalid configuration", func(t *testing.T) {
		config := tinyConfig()
		config.BatchSize = 0
		_, err := NewDQN(game.MinBoardSize, config)
		require.ErrorIs(t, err, game.ErrInvalidConfig)

		_, err = NewDQN(3, tinyConfig())
		require.ErrorIs(t, err, game.ErrInvalidConfig)
	})

	t.Run("target starts equal to online", func(t *testing.T) {
		d := newTinyDQN(t)
		require.Equal(t, d.online.params, d.target.params)
		require.Equal(t, codec.ActionSpaceSize(game.MinBoardSize), d.online.Outputs())
		require.Equal(t, game.MinBoardSize*game.MinBoardSize*codec.NumChannels, d.online.Inputs())
	})
}

func TestSelectAction(t *testing.T) {
	d := newTinyDQN(t)
	for i := range d.online.params {
		d.online.params[i] = 0
	}
	size := codec.ActionSpaceSize(game.MinBoardSize)
	d.online.b2.SetVec(5, 100)
	d.online.b2.SetVec(10, 3)
	d.online.b2.SetVec(20, 7)
	mask := codec.Mask{Size: size, Legal: []int{10, 20, 30}}
	obs := codec.NewTensor(game.MinBoardSize, game.MinBoardSize, codec.NumChannels)

	require.Equal(t, 20, d.SelectAction(obs, mask, true), "Illegal action 5 must be masked out")
	require.Equal(t, codec.PassAction, d.SelectAction(obs, codec.Mask{Size: size}, false))

	// epsilon starts at 1, so exploration only ever picks legal actions
	for range 30 {
		require.True(t, mask.Has(d.SelectAction(obs, mask, false)))
	}
}

func TestUpdate(t *testing.T) {
	t.Run("no-op until a batch is stored", func(t *testing.T) {
		d := newTinyDQN(t)
		rng := rand.New(rand.NewSource(1))
		for range 3 {
			d.Store(Transition{State: randomObservation(rng), Action: 1, Done: true})
		}
		before := append([]float64(nil), d.online.params...)
		_, ok := d.Update()
		require.False(t, ok)
		require.Equal(t, before, d.online.params)
		require.Zero(t, d.Steps())
	})

	t.Run("loss decreases on a fixed batch", func(t *testing.T) {
		d := newTinyDQN(t)
		rng := rand.New(rand.NewSource(2))
		for i := range 4 {
			d.Store(Transition{State: randomObservation(rng), Action: i * 7, Reward: 1, Done: true})
		}

		first, ok := d.Update()
		require.True(t, ok)
		var last UpdateMetrics
		for range 60 {
			last, _ = d.Update()
		}
		require.Less(t, last.Loss, first.Loss)
		require.Equal(t, 61, d.Steps())
		require.NotEqual(t, d.online.params, d.target.params, "Target trails the online network")
	})

	t.Run("bootstraps from legal next actions", func(t *testing.T) {
		d := newTinyDQN(t)
		next := randomObservation(rand.New(rand.NewSource(3)))
		mask := codec.Mask{Size: codec.ActionSpaceSize(game.MinBoardSize), Legal: []int{4, 9}}
		tr := Transition{Reward: 0.5, NextState: next, NextMask: mask}

		best := maskedArgMax(d.online.Forward(toInput(next)), mask)
		want := 0.5 + d.config.Gamma*d.target.Value(toInput(next), best)
		require.InDelta(t, want, d.targetValue(tr), 1e-12)

		tr.Done = true
		require.Equal(t, 0.5, d.targetValue(tr))

		tr.Done = false
		tr.NextMask = codec.Mask{Size: mask.Size}
		require.Equal(t, 0.5, d.targetValue(tr), "No legal next action leaves nothing to bootstrap from")
	})
}

func TestDecayEpsilon(t *testing.T) {
	d := newTinyDQN(t)
	require.Equal(t, 1.0, d.Epsilon())
	for range 10 {
		d.DecayEpsilon()
	}
	require.InDelta(t, 0.05, d.Epsilon(), 1e-9)
}

func TestCheckpoint(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		d := newTinyDQN(t)
		rng := rand.New(rand.NewSource(4))
		for i := range 4 {
			d.Store(Transition{State: randomObservation(rng), Action: i, Reward: -1, Done: true})
		}
		for range 3 {
			d.Update()
		}
		d.DecayEpsilon()

		var buf bytes.Buffer
		require.NoError(t, d.Save(&buf))

		config := tinyConfig()
		config.HiddenSize = 99
		loaded, err := LoadDQN(&buf, config)
		require.NoError(t, err)
		require.Equal(t, 8, loaded.online.Hidden(), "Network shape comes from the checkpoint")
		require.Equal(t, d.online.params, loaded.online.params)
		require.Equal(t, d.target.params, loaded.target.params)
		require.Equal(t, d.optimizer.m, loaded.optimizer.m)
		require.Equal(t, d.optimizer.t, loaded.optimizer.t)
		require.Equal(t, d.Steps(), loaded.Steps())
		require.Equal(t, d.Epsilon(), loaded.Epsilon())
	})

	t.Run("file round trip", func(t *testing.T) {
		d := newTinyDQN(t)
		path := t.TempDir() + "/model.bin"
		require.NoError(t, d.SaveFile(path))
		loaded, err := LoadDQNFile(path, tinyConfig())
		require.NoError(t, err)
		require.Equal(t, d.online.params, loaded.online.params)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		_, err := LoadDQN(bytes.NewBufferString("NOPE\x01\x00"), tinyConfig())
		require.ErrorIs(t, err, ErrCheckpointFormat)

		var buf bytes.Buffer
		buf.WriteString("BLKQ")
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(9)))
		_, err = LoadDQN(&buf, tinyConfig())
		require.ErrorIs(t, err, ErrCheckpointFormat)
	})

	t.Run("truncated blob", func(t *testing.T) {
		d := newTinyDQN(t)
		var buf bytes.Buffer
		require.NoError(t, d.Save(&buf))
		_, err := LoadDQN(bytes.NewReader(buf.Bytes()[:buf.Len()/2]), tinyConfig())
		require.Error(t, err)
	})
}
