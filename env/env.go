// Package env wraps a Blokus game in a step/reset interface for learning
// agents. Observations are always from the point of view of the player to
// move.
package env

import (
	"blokus/codec"
	"blokus/game"
	"blokus/reward"
	"fmt"
)

// InvalidActionPenalty is the reward for an action that does not decode to a
// legal placement. It also ends the episode.
const InvalidActionPenalty = -10.0

type RewardMode string

const (
	RewardShaped RewardMode = "shaped"
	RewardSparse RewardMode = "sparse"
	RewardDense  RewardMode = "dense"
)

type Config struct {
	BoardSize  int        `yaml:"board_size"`
	NumPlayers int        `yaml:"num_players"`
	Reward     RewardMode `yaml:"reward"`
	MaxSteps   int        `yaml:"max_steps"`
}

// DefaultConfig is a two-player duo game with shaped rewards.
func DefaultConfig() Config {
	return Config{
		BoardSize:  game.DuoBoardSize,
		NumPlayers: 2,
		Reward:     RewardShaped,
		MaxSteps:   200,
	}
}

func (c Config) Validate() error {
	switch c.Reward {
	case RewardShaped, RewardSparse, RewardDense:
	default:
		return fmt.Errorf("%w: unknown reward mode %q", game.ErrInvalidConfig, c.Reward)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive", game.ErrInvalidConfig)
	}
	_, err := game.NewDefaultGame(c.BoardSize, c.NumPlayers)
	return err
}

// Info describes the game after a reset or step.
type Info struct {
	Current      int
	Turn         int
	Status       game.Status
	Scores       []int
	ValidActions int
	Winner       int // -1 unless HasWinner
	HasWinner    bool
	ValidAction  bool
}

type StepResult struct {
	Obs        codec.Tensor
	Reward     float64
	Terminated bool
	Truncated  bool
	Info       Info
}

type Env struct {
	config  Config
	shaper  reward.Shaper
	state   *game.GameState
	history []*game.Board
	steps   int
}

// New validates config and returns a reset environment.
func New(config Config) (*Env, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	e := &Env{config: config, shaper: reward.DefaultShaper()}
	if _, _, err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Env) Config() Config { return e.config }

// State is the live game. Callers must not modify it.
func (e *Env) State() *game.GameState { return e.state }

// Steps counts accepted actions since the last reset.
func (e *Env) Steps() int { return e.steps }

func (e *Env) Reset() (codec.Tensor, Info, error) {
	state, err := game.NewDefaultGame(e.config.BoardSize, e.config.NumPlayers)
	if err != nil {
		return codec.Tensor{}, Info{}, err
	}
	e.state = state
	e.history = e.history[:0]
	e.steps = 0
	return e.Observe(state.Current), e.info(true), nil
}

// Observe encodes the current game for perspective.
func (e *Env) Observe(perspective int) codec.Tensor {
	return codec.Observe(e.state, e.history, perspective)
}

func (e *Env) ActionMask() codec.Mask {
	return codec.ActionMaskFor(e.state)
}

func (e *Env) ValidActions() []int {
	return codec.ValidActions(e.state)
}

// Step applies action for the player to move. codec.PassAction passes the
// turn. Actions that fail to decode or validate are penalized and end the
// episode without changing the game.
func (e *Env) Step(action int) StepResult {
	if e.state.IsOver() {
		return StepResult{
			Obs:        e.Observe(e.state.Current),
			Terminated: true,
			Info:       e.info(false),
		}
	}

	before := e.state.Copy()
	player := e.state.Current

	var move game.Move
	var err error
	if action == codec.PassAction {
		err = e.state.ForcePass()
	} else if m, ok := codec.DecodeAction(action, e.state); ok {
		move = m
		err = e.state.PlayMove(m)
	} else {
		err = fmt.Errorf("%w: action %d", game.ErrIllegalMove, action)
	}
	if err != nil {
		return StepResult{
			Obs:        e.Observe(e.state.Current),
			Reward:     InvalidActionPenalty,
			Terminated: true,
			Info:       e.info(false),
		}
	}

	e.pushHistory(before.Board)
	e.steps++

	return StepResult{
		Obs:        e.Observe(e.state.Current),
		Reward:     e.reward(before, move, action, player),
		Terminated: e.state.IsOver(),
		Truncated:  e.steps >= e.config.MaxSteps,
		Info:       e.info(true),
	}
}

func (e *Env) reward(before *game.GameState, move game.Move, action, player int) float64 {
	switch e.config.Reward {
	case RewardSparse:
		return reward.Sparse(e.state, player)
	case RewardDense:
		if action == codec.PassAction {
			return 10 * reward.Sparse(e.state, player)
		}
		return reward.Dense(e.state, move, player)
	}
	return e.shaper.Shaped(before, e.state, player)
}

func (e *Env) pushHistory(b *game.Board) {
	e.history = append([]*game.Board{b}, e.history...)
	if len(e.history) > codec.HistoryDepth {
		e.history = e.history[:codec.HistoryDepth]
	}
}

func (e *Env) info(valid bool) Info {
	winner, ok := -1, false
	if e.state.IsOver() {
		winner, ok = e.state.Winner()
	}
	return Info{
		Current:      e.state.Current,
		Turn:         e.state.TurnNumber(),
		Status:       e.state.Status,
		Scores:       e.state.Scores(),
		ValidActions: len(e.state.LegalMoves()),
		Winner:       winner,
		HasWinner:    ok,
		ValidAction:  valid,
	}
}
