package training

import (
	"blokus/agent"
	"blokus/env"
	"blokus/game"
	"blokus/meta"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	OpponentRandom = "random"
	OpponentSelf   = "self"
)

// Config drives a training run. Fields missing from a YAML file keep their
// DefaultConfig values.
type Config struct {
	ExperimentName string       `yaml:"experiment_name"`
	ModelsDir      string       `yaml:"models_dir"`
	Env            env.Config   `yaml:"env"`
	Agent          agent.Config `yaml:"agent"`

	TotalEpisodes   int    `yaml:"total_episodes"`
	UpdateFrequency int    `yaml:"update_frequency"` // learner steps between updates
	LearnerSeat     int    `yaml:"learner_seat"`
	Opponent        string `yaml:"opponent"`
	OpponentSeed    uint64 `yaml:"opponent_seed"`

	EvalFrequency           int  `yaml:"eval_frequency"` // episodes per epoch
	EvalGames               int  `yaml:"eval_games"`
	CheckpointFrequency     int  `yaml:"checkpoint_frequency"` // epochs
	KeepPeriodicCheckpoints bool `yaml:"keep_periodic_checkpoints"`
	LogFrequency            int  `yaml:"log_frequency"`
	WinRateWindow           int  `yaml:"win_rate_window"`
}

func DefaultConfig() Config {
	return Config{
		ExperimentName:          "blokus_experiment",
		ModelsDir:               filepath.Join(meta.OUTPUT_DIR, "experiments"),
		Env:                     env.DefaultConfig(),
		Agent:                   agent.DefaultConfig(),
		TotalEpisodes:           100_000,
		UpdateFrequency:         4,
		Opponent:                OpponentRandom,
		OpponentSeed:            42,
		EvalFrequency:           1000,
		EvalGames:               100,
		CheckpointFrequency:     10,
		KeepPeriodicCheckpoints: true,
		LogFrequency:            100,
		WinRateWindow:           100,
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read training config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse training config: %w", err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if err := c.Env.Validate(); err != nil {
		return err
	}
	if err := c.Agent.Validate(); err != nil {
		return err
	}
	switch {
	case c.ExperimentName == "":
		return fmt.Errorf("%w: experiment name is required", game.ErrInvalidConfig)
	case c.TotalEpisodes <= 0:
		return fmt.Errorf("%w: total episodes must be positive", game.ErrInvalidConfig)
	case c.UpdateFrequency <= 0:
		return fmt.Errorf("%w: update frequency must be positive", game.ErrInvalidConfig)
	case c.LearnerSeat < 0 || c.LearnerSeat >= c.Env.NumPlayers:
		return fmt.Errorf("%w: learner seat %d out of range", game.ErrInvalidConfig, c.LearnerSeat)
	case c.Opponent != OpponentRandom && c.Opponent != OpponentSelf:
		return fmt.Errorf("%w: unknown opponent %q", game.ErrInvalidConfig, c.Opponent)
	case c.EvalFrequency <= 0 || c.EvalGames <= 0:
		return fmt.Errorf("%w: evaluation frequency and games must be positive", game.ErrInvalidConfig)
	case c.CheckpointFrequency <= 0:
		return fmt.Errorf("%w: checkpoint frequency must be positive", game.ErrInvalidConfig)
	case c.WinRateWindow <= 0:
		return fmt.Errorf("%w: win rate window must be positive", game.ErrInvalidConfig)
	}
	return nil
}

func (c Config) ExperimentDir() string {
	return filepath.Join(c.ModelsDir, c.ExperimentName)
}
