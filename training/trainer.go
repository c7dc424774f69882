// Package training runs DQN self-play: episodes against an opponent, periodic
// evaluation against a random baseline and resumable checkpoints.
package training

import (
	"blokus/agent"
	"blokus/codec"
	"blokus/env"
	"blokus/experiments/metrics"
	"blokus/game"
	"blokus/reward"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EpisodeStats summarizes one training episode from the learner's seat.
type EpisodeStats struct {
	Steps        int
	LearnerSteps int
	Reward       float64
	Loss         float64 // mean over the updates that ran
	QMean        float64
	Updates      int
	Outcome      float64 // +1 win, 0 draw, -1 loss
	Scores       []int
}

type Trainer struct {
	config      Config
	env         *env.Env
	learner     *agent.DQN
	opponent    agent.Agent
	evaluator   *Evaluator
	checkpoints *CheckpointManager
	writer      *metrics.Writer

	state    TrainingState
	outcomes []float64
	episodes []metrics.EpisodeRecord
	evals    []metrics.EvalRecord
}

// NewTrainer prepares a run in the experiment directory. With resume set and
// a saved run present, the learner and progress are restored from the latest
// checkpoint.
func NewTrainer(config Config, resume bool) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	e, err := env.New(config.Env)
	if err != nil {
		return nil, err
	}
	checkpoints, err := NewCheckpointManager(config.ExperimentDir())
	if err != nil {
		return nil, err
	}
	writer, err := metrics.NewWriterAt(config.ExperimentDir())
	if err != nil {
		return nil, err
	}

	t := &Trainer{
		config:      config,
		env:         e,
		evaluator:   NewEvaluator(config.Env, config.EvalGames, true),
		checkpoints: checkpoints,
		writer:      writer,
	}

	if resume && checkpoints.HasCheckpoint() {
		state, ok, err := checkpoints.LoadMetadata()
		if err != nil {
			return nil, err
		}
		learner, err := checkpoints.Load("latest", config.Agent)
		if err != nil {
			return nil, err
		}
		if learner.BoardSize() != config.Env.BoardSize {
			return nil, fmt.Errorf("%w: checkpoint board size %d, configured %d",
				game.ErrInvalidConfig, learner.BoardSize(), config.Env.BoardSize)
		}
		if !ok {
			state = NewTrainingState(config)
		}
		state.Config = config
		t.learner = learner
		t.state = state
		log.Info().Msgf("Resuming %s from episode %d", config.ExperimentName, state.TotalEpisodes)
	} else {
		learner, err := agent.NewDQN(config.Env.BoardSize, config.Agent)
		if err != nil {
			return nil, err
		}
		t.learner = learner
		t.state = NewTrainingState(config)
	}

	t.opponent = agent.NewRandomAgent(config.OpponentSeed)
	if config.Opponent == OpponentSelf {
		t.opponent = t.learner
	}
	return t, nil
}

func (t *Trainer) Learner() *agent.DQN { return t.learner }

func (t *Trainer) State() TrainingState { return t.state }

func (t *Trainer) Checkpoints() *CheckpointManager { return t.checkpoints }

// TrainEpisode plays one game. Only the learner's moves become transitions:
// each one spans from the learner's observation to its next turn, so the
// opponents' replies are part of the environment. An outcome decided on an
// opponent's move is credited to the learner's last transition.
func (t *Trainer) TrainEpisode() (EpisodeStats, error) {
	if _, _, err := t.env.Reset(); err != nil {
		return EpisodeStats{}, err
	}
	seat := t.config.LearnerSeat

	var stats EpisodeStats
	var pending *agent.Transition
	var lastMover int
	var res env.StepResult

	record := func(m agent.UpdateMetrics, ok bool) {
		if ok {
			stats.Updates++
			stats.Loss += m.Loss
			stats.QMean += m.QMean
		}
	}
	store := func(tr agent.Transition) {
		if stats.LearnerSteps%t.config.UpdateFrequency == 0 {
			record(Step(t.learner, tr))
			return
		}
		t.learner.Store(tr)
	}

	for {
		current := t.env.State().Current
		obs := t.env.Observe(current)
		mask := t.env.ActionMask()

		if current == seat {
			if pending != nil {
				pending.NextState = obs
				pending.NextMask = mask
				store(*pending)
			}
			action := t.learner.SelectAction(obs, mask, false)
			res = t.env.Step(action)
			pending = &agent.Transition{
				State:  obs,
				Action: action,
				Reward: res.Reward,
				Mask:   mask,
			}
			stats.Reward += res.Reward
			stats.LearnerSteps++
		} else {
			res = t.env.Step(t.opponent.SelectAction(obs, mask, false))
		}
		lastMover = current
		stats.Steps++

		if res.Terminated || res.Truncated {
			break
		}
	}

	if pending != nil {
		final := t.env.State()
		if lastMover != seat && final.IsOver() {
			bonus := t.terminalReward(final, seat)
			pending.Reward += bonus
			stats.Reward += bonus
		}
		pending.NextState = t.env.Observe(seat)
		pending.NextMask = codec.Mask{Size: codec.ActionSpaceSize(final.Board.Size())}
		pending.Done = true
		store(*pending)
	}
	if stats.LearnerSteps%t.config.UpdateFrequency != 0 {
		record(t.learner.Update())
	}
	t.learner.DecayEpsilon()

	if stats.Updates > 0 {
		stats.Loss /= float64(stats.Updates)
		stats.QMean /= float64(stats.Updates)
	}
	stats.Scores = t.env.State().Scores()
	stats.Outcome = reward.Sparse(t.env.State(), seat)
	return stats, nil
}

// terminalReward is the outcome part of the configured reward that the
// learner would have received had it made the final move.
func (t *Trainer) terminalReward(state *game.GameState, seat int) float64 {
	outcome := reward.Sparse(state, seat)
	if t.config.Env.Reward == env.RewardDense {
		return 10 * outcome
	}
	return outcome
}

// Train runs episodes until the configured total or until ctx is cancelled,
// evaluating once per epoch and saving a final checkpoint either way.
func (t *Trainer) Train(ctx context.Context) (TrainingState, error) {
	log.Info().
		Str("run", t.state.RunID).
		Str("experiment", t.config.ExperimentName).
		Int("board_size", t.config.Env.BoardSize).
		Int("episodes", t.config.TotalEpisodes).
		Msg("training started")

	for t.state.TotalEpisodes < t.config.TotalEpisodes {
		if err := ctx.Err(); err != nil {
			log.Warn().Msg("training interrupted")
			break
		}

		stats, err := t.TrainEpisode()
		if err != nil {
			return t.state, err
		}
		t.state.TotalEpisodes++
		t.state.TotalSteps += stats.Steps
		t.state.CurrentEpsilon = t.learner.Epsilon()
		winRate := t.observeOutcome(stats.Outcome)

		t.episodes = append(t.episodes, metrics.EpisodeRecord{
			Episode: t.state.TotalEpisodes,
			Steps:   stats.Steps,
			Reward:  stats.Reward,
			Loss:    stats.Loss,
			QMean:   stats.QMean,
			Epsilon: t.state.CurrentEpsilon,
			Outcome: stats.Outcome,
			WinRate: winRate,
		})

		if t.config.LogFrequency > 0 && t.state.TotalEpisodes%t.config.LogFrequency == 0 {
			log.Info().Msgf("Episode %d: reward %.3f, loss %.4f, epsilon %.3f, win rate %.2f, buffer %d",
				t.state.TotalEpisodes, stats.Reward, stats.Loss, t.state.CurrentEpsilon, winRate,
				t.learner.Buffer().Len())
		}

		if t.state.TotalEpisodes%t.config.EvalFrequency == 0 {
			if err := t.endEpoch(); err != nil {
				return t.state, err
			}
		}
	}

	if err := t.checkpoints.Save(&t.state, t.learner, false, false); err != nil {
		return t.state, err
	}
	if err := t.flush(); err != nil {
		return t.state, err
	}
	log.Info().
		Int("episodes", t.state.TotalEpisodes).
		Float64("best_win_rate", t.state.BestWinRate).
		Int("best_epoch", t.state.BestEpoch).
		Msg("training finished")
	return t.state, nil
}

func (t *Trainer) observeOutcome(outcome float64) float64 {
	t.outcomes = append(t.outcomes, outcome)
	if len(t.outcomes) > t.config.WinRateWindow {
		t.outcomes = t.outcomes[1:]
	}
	wins := 0
	for _, o := range t.outcomes {
		if o > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(t.outcomes))
}

func (t *Trainer) endEpoch() error {
	t.state.CurrentEpoch = t.state.TotalEpisodes / t.config.EvalFrequency
	results, err := t.evaluator.Evaluate(t.learner)
	if err != nil {
		return err
	}
	t.evals = append(t.evals, metrics.EvalRecord{
		Episode:      t.state.TotalEpisodes,
		WinRate:      results.WinRate,
		AvgScoreDiff: results.AvgScoreDiff,
		AvgSteps:     results.AvgSteps,
		Wins:         results.Wins,
		Losses:       results.Losses,
		Draws:        results.Draws,
	})

	isBest := t.state.BestEpoch < 0 || results.WinRate > t.state.BestWinRate
	if isBest {
		t.state.BestWinRate = results.WinRate
		t.state.BestEpoch = t.state.CurrentEpoch
	}
	periodic := t.config.KeepPeriodicCheckpoints && t.state.CurrentEpoch%t.config.CheckpointFrequency == 0

	log.Info().Msgf("Epoch %d: eval win rate %.2f (%d/%d/%d), score diff %.2f",
		t.state.CurrentEpoch, results.WinRate, results.Wins, results.Losses, results.Draws, results.AvgScoreDiff)

	if err := t.checkpoints.Save(&t.state, t.learner, isBest, periodic); err != nil {
		return err
	}
	return t.flush()
}

// flush rewrites the episode and evaluation CSVs of this process.
func (t *Trainer) flush() error {
	if err := t.writer.WriteEpisodeRecords(t.episodes); err != nil {
		return err
	}
	return t.writer.WriteEvalRecords(t.evals)
}
