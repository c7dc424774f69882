// Package agent holds the action-selecting agents: a uniform random
// baseline and a Double-DQN learner with experience replay.
package agent

import "blokus/codec"

// Agent picks an action id for an observation. It returns codec.PassAction
// when the mask is empty.
type Agent interface {
	SelectAction(obs codec.Tensor, mask codec.Mask, deterministic bool) int
	Reset()
}

// Learner is an Agent that improves from stored transitions.
type Learner interface {
	Agent
	Store(t Transition)
	Update() (UpdateMetrics, bool)
	DecayEpsilon()
}

// UpdateMetrics summarizes one gradient step.
type UpdateMetrics struct {
	Loss    float64
	QMean   float64
	QMax    float64
	Epsilon float64
}
