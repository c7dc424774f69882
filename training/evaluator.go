package training

import (
	"blokus/agent"
	"blokus/env"
	"slices"
)

// BaselineSeed seeds the random opponent every evaluation plays against.
const BaselineSeed = 42

type EvalResults struct {
	WinRate      float64
	AvgScoreDiff float64
	AvgSteps     float64
	Wins         int
	Losses       int
	Draws        int
	Total        int
}

// Evaluator pits an agent against a baseline that controls every other seat.
// With seat swapping the agent moves first in the first half of the games
// and second in the rest.
type Evaluator struct {
	config    env.Config
	baseline  agent.Agent
	numGames  int
	swapSides bool
}

func NewEvaluator(config env.Config, numGames int, swapSides bool) *Evaluator {
	return NewEvaluatorAgainst(config, agent.NewRandomAgent(BaselineSeed), numGames, swapSides)
}

func NewEvaluatorAgainst(config env.Config, baseline agent.Agent, numGames int, swapSides bool) *Evaluator {
	return &Evaluator{
		config:    config,
		baseline:  baseline,
		numGames:  numGames,
		swapSides: swapSides,
	}
}

// Evaluate plays deterministic games. A game is won when the agent's score
// beats the best baseline seat and drawn when it equals it.
func (ev *Evaluator) Evaluate(a agent.Agent) (EvalResults, error) {
	e, err := env.New(ev.config)
	if err != nil {
		return EvalResults{}, err
	}
	ev.baseline.Reset()

	var results EvalResults
	var diffs, steps float64
	for g := range ev.numGames {
		seat := 0
		if ev.swapSides && g >= ev.numGames/2 {
			seat = 1
		}
		diff, n, err := ev.play(e, a, seat)
		if err != nil {
			return results, err
		}
		switch {
		case diff > 0:
			results.Wins++
		case diff < 0:
			results.Losses++
		default:
			results.Draws++
		}
		diffs += float64(diff)
		steps += float64(n)
		results.Total++
	}

	if results.Total > 0 {
		total := float64(results.Total)
		results.WinRate = float64(results.Wins) / total
		results.AvgScoreDiff = diffs / total
		results.AvgSteps = steps / total
	}
	return results, nil
}

func (ev *Evaluator) play(e *env.Env, a agent.Agent, seat int) (diff, steps int, err error) {
	if _, _, err := e.Reset(); err != nil {
		return 0, 0, err
	}
	a.Reset()
	for {
		current := e.State().Current
		actor := ev.baseline
		if current == seat {
			actor = a
		}
		action := actor.SelectAction(e.Observe(current), e.ActionMask(), true)
		res := e.Step(action)
		steps++
		if res.Terminated || res.Truncated {
			break
		}
	}
	scores := e.State().Scores()
	others := slices.Delete(slices.Clone(scores), seat, seat+1)
	return scores[seat] - slices.Max(others), steps, nil
}
