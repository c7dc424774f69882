package player

import (
	"blokus/agent"
	"blokus/game"
	"blokus/meta"
	"blokus/searcher"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type AgentType string

const (
	TypeRandom AgentType = "random"
	TypeSearch AgentType = "search"
	TypeModel  AgentType = "model"
)

// SearchConfig configures a search agent. Zero values fall back to the
// defaults in package meta.
type SearchConfig struct {
	Goroutines  int           `yaml:"goroutines"`
	Episodes    int           `yaml:"episodes"`
	Duration    time.Duration `yaml:"duration"`
	Cutoff      int           `yaml:"cutoff"`
	Evaluation  string        `yaml:"evaluation"`
	Temperature float64       `yaml:"temperature"`
}

// AgentMetadata describes one catalog entry.
type AgentMetadata struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Type        AgentType    `yaml:"type"`
	Level       string       `yaml:"level"`
	Style       string       `yaml:"style"`
	Tags        []string     `yaml:"tags"`
	Enabled     bool         `yaml:"enabled"`
	Seed        uint64       `yaml:"seed"`
	ModelPath   string       `yaml:"model_path"`
	Search      SearchConfig `yaml:"search"`
}

// UnmarshalYAML enables entries that do not say otherwise.
func (m *AgentMetadata) UnmarshalYAML(value *yaml.Node) error {
	type plain AgentMetadata
	p := plain{Enabled: true}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = AgentMetadata(p)
	return nil
}

var evaluations = map[string]game.Evaluate{
	"":                   game.EvaluatePlacementMobility,
	"placement_mobility": game.EvaluatePlacementMobility,
	"placement":          game.EvaluatePlacement,
	"mobility":           game.EvaluateMobility,
}

// Evaluation looks up a state evaluation by name. The empty name is the
// default evaluation.
func Evaluation(name string) (game.Evaluate, bool) {
	evaluate, ok := evaluations[name]
	return evaluate, ok
}

func (m AgentMetadata) validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: agent without id", game.ErrInvalidConfig)
	}
	switch m.Type {
	case TypeRandom, TypeSearch:
	case TypeModel:
		if m.ModelPath == "" {
			return fmt.Errorf("%w: model agent %q needs a model path", game.ErrInvalidConfig, m.ID)
		}
	default:
		return fmt.Errorf("%w: agent %q has unknown type %q", game.ErrInvalidConfig, m.ID, m.Type)
	}
	if _, ok := evaluations[m.Search.Evaluation]; !ok {
		return fmt.Errorf("%w: agent %q has unknown evaluation %q", game.ErrInvalidConfig, m.ID, m.Search.Evaluation)
	}
	return nil
}

// Registry is the catalog of agents players can be built from. Model paths
// are resolved against baseDir.
type Registry struct {
	baseDir string
	agents  []AgentMetadata
	byID    map[string]int
}

func NewRegistry(baseDir string, agents []AgentMetadata) (*Registry, error) {
	r := &Registry{
		baseDir: baseDir,
		agents:  make([]AgentMetadata, 0, len(agents)),
		byID:    make(map[string]int, len(agents)),
	}
	for _, a := range agents {
		if err := a.validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byID[a.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate agent id %q", game.ErrInvalidConfig, a.ID)
		}
		r.byID[a.ID] = len(r.agents)
		r.agents = append(r.agents, a)
	}
	return r, nil
}

type catalog struct {
	Agents []AgentMetadata `yaml:"agents"`
}

// LoadRegistry reads a YAML catalog. Model paths are relative to the
// catalog's directory.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent registry: %w", err)
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse agent registry: %w", err)
	}
	return NewRegistry(filepath.Dir(path), c.Agents)
}

// List returns the catalog in file order.
func (r *Registry) List(onlyEnabled bool) []AgentMetadata {
	list := make([]AgentMetadata, 0, len(r.agents))
	for _, a := range r.agents {
		if a.Enabled || !onlyEnabled {
			list = append(list, a)
		}
	}
	return list
}

func (r *Registry) Get(id string) (AgentMetadata, error) {
	i, ok := r.byID[id]
	if !ok {
		return AgentMetadata{}, fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}
	return r.agents[i], nil
}

// Load builds a fresh player for an enabled agent on a boardSize board.
func (r *Registry) Load(id string, boardSize int) (Player, error) {
	m, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !m.Enabled {
		return nil, fmt.Errorf("%w: %q", ErrAgentDisabled, id)
	}

	switch m.Type {
	case TypeRandom:
		return NewAgentPlayer(agent.NewRandomAgent(m.Seed), false), nil
	case TypeSearch:
		return NewSearchPlayer(newMCTS(m.Search), m.Search.Temperature, m.Seed), nil
	}

	path := m.ModelPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	dqn, err := agent.LoadDQNFile(path, agent.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to load model for agent %q: %w", id, err)
	}
	if dqn.BoardSize() != boardSize {
		return nil, fmt.Errorf("%w: agent %q was trained on a %d board, not %d",
			game.ErrInvalidConfig, id, dqn.BoardSize(), boardSize)
	}
	return NewAgentPlayer(dqn, true), nil
}

func newMCTS(config SearchConfig) *searcher.MCTS {
	goroutines := config.Goroutines
	if goroutines <= 0 {
		goroutines = meta.GO_ROUTINES
	}
	options := []searcher.Option{
		searcher.WithCutoff(meta.WITH_CUTOFF),
		searcher.WithCutoff(config.Cutoff),
		searcher.WithEvaluationFn(evaluations[config.Evaluation]),
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	} else {
		options = append(options, searcher.WithEpisodes(meta.EPISODES), searcher.WithEpisodes(config.Episodes))
	}
	return searcher.NewMCTS(goroutines, options...)
}
