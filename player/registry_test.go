package player

import (
	"blokus/agent"
	"blokus/game"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCatalog = `
agents:
  - id: random
    name: Rookie
    description: plays any legal move
    type: random
    level: beginner
    style: unpredictable
    tags: [baseline]
    seed: 3
  - id: search
    name: Thinker
    type: search
    level: medium
    search:
      goroutines: 2
      episodes: 40
      cutoff: 4
      evaluation: mobility
  - id: retired
    name: Old model
    type: random
    enabled: false
  - id: duo-dqn
    name: Student
    type: model
    model_path: models/duo.bin
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newSmallGame(t *testing.T) *game.GameState {
	t.Helper()
	gs, err := game.NewDefaultGame(game.MinBoardSize, 2)
	require.NoError(t, err)
	return gs
}

func requireLegal(t *testing.T, gs *game.GameState, move game.Move) {
	t.Helper()
	require.NoError(t, gs.CanPlay(move), "move %v should be legal", move)
}

func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry(writeCatalog(t, testCatalog))
	require.NoError(t, err)

	t.Run("lists agents in catalog order", func(t *testing.T) {
		all := registry.List(false)
		require.Len(t, all, 4)
		require.Equal(t, "random", all[0].ID)
		require.Equal(t, []string{"baseline"}, all[0].Tags)
		require.True(t, all[0].Enabled, "Entries are enabled unless they say otherwise")

		enabled := registry.List(true)
		require.Len(t, enabled, 3)
		for _, a := range enabled {
			require.NotEqual(t, "retired", a.ID)
		}
	})

	t.Run("get returns metadata", func(t *testing.T) {
		m, err := registry.Get("search")
		require.NoError(t, err)
		require.Equal(t, TypeSearch, m.Type)
		require.Equal(t, 40, m.Search.Episodes)

		_, err = registry.Get("nobody")
		require.ErrorIs(t, err, ErrUnknownAgent)
	})

	t.Run("load builds playing agents", func(t *testing.T) {
		gs := newSmallGame(t)
		for _, id := range []string{"random", "search"} {
			p, err := registry.Load(id, game.MinBoardSize)
			require.NoError(t, err, id)
			move, _ := p.FindMove(gs, nil)
			requireLegal(t, gs, move)
		}
	})

	t.Run("load rejects unknown and disabled agents", func(t *testing.T) {
		_, err := registry.Load("nobody", game.MinBoardSize)
		require.ErrorIs(t, err, ErrUnknownAgent)
		_, err = registry.Load("retired", game.MinBoardSize)
		require.ErrorIs(t, err, ErrAgentDisabled)
	})

	t.Run("load reads models relative to the catalog", func(t *testing.T) {
		_, err := registry.Load("duo-dqn", game.MinBoardSize)
		require.Error(t, err, "Model file does not exist yet")

		config := agent.DefaultConfig()
		config.HiddenSize = 4
		config.BufferSize = 8
		dqn, err := agent.NewDQN(game.MinBoardSize, config)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(registry.baseDir, "models"), 0o755))
		require.NoError(t, dqn.SaveFile(filepath.Join(registry.baseDir, "models", "duo.bin")))

		p, err := registry.Load("duo-dqn", game.MinBoardSize)
		require.NoError(t, err)
		gs := newSmallGame(t)
		move, _ := p.FindMove(gs, nil)
		requireLegal(t, gs, move)

		_, err = registry.Load("duo-dqn", game.DuoBoardSize)
		require.ErrorIs(t, err, game.ErrInvalidConfig, "Board size must match the model")
	})
}

func TestNewRegistry(t *testing.T) {
	cases := []struct {
		name   string
		agents []AgentMetadata
	}{
		{"missing id", []AgentMetadata{{Type: TypeRandom}}},
		{"unknown type", []AgentMetadata{{ID: "a", Type: "oracle"}}},
		{"model without path", []AgentMetadata{{ID: "a", Type: TypeModel}}},
		{"unknown evaluation", []AgentMetadata{{ID: "a", Type: TypeSearch, Search: SearchConfig{Evaluation: "vibes"}}}},
		{"duplicate id", []AgentMetadata{{ID: "a", Type: TypeRandom}, {ID: "a", Type: TypeRandom}}},
	}
	for _, tc := range cases {
		_, err := NewRegistry("", tc.agents)
		require.ErrorIs(t, err, game.ErrInvalidConfig, tc.name)
	}

	_, err := LoadRegistry(writeCatalog(t, "agents: [oops"))
	require.Error(t, err)
}

func TestShippedRegistry(t *testing.T) {
	r, err := LoadRegistry(filepath.Join("..", "configs", "agents.yaml"))
	require.NoError(t, err)
	require.Len(t, r.List(true), 3)
	require.Len(t, r.List(false), 4)

	m, err := r.Get("mcts-fast")
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, m.Search.Duration)

	_, err = r.Load("dqn-duo", game.DuoBoardSize)
	require.ErrorIs(t, err, ErrAgentDisabled)
}
