package training

import "blokus/agent"

// Step stores one transition and runs one learner update. The update is a
// no-op, reported by false, until the replay buffer holds a batch.
func Step(learner agent.Learner, t agent.Transition) (agent.UpdateMetrics, bool) {
	learner.Store(t)
	return learner.Update()
}
