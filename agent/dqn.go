package agent

import (
	"blokus/codec"
	"blokus/game"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// MaskedValue replaces the value of illegal actions before the arg-max.
const MaskedValue = -1e9

// Config holds the DQN hyperparameters.
type Config struct {
	LearningRate float64 `yaml:"learning_rate"`
	Gamma        float64 `yaml:"gamma"`
	EpsilonStart float64 `yaml:"epsilon_start"`
	EpsilonEnd   float64 `yaml:"epsilon_end"`
	EpsilonDecay int     `yaml:"epsilon_decay"` // episodes
	BufferSize   int     `yaml:"buffer_size"`
	BatchSize    int     `yaml:"batch_size"`
	Tau          float64 `yaml:"tau"`
	MaxGradNorm  float64 `yaml:"max_grad_norm"`
	HiddenSize   int     `yaml:"hidden_size"`
	Seed         uint64  `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		LearningRate: 1e-4,
		Gamma:        0.99,
		EpsilonStart: 1.0,
		EpsilonEnd:   0.05,
		EpsilonDecay: 50_000,
		BufferSize:   100_000,
		BatchSize:    64,
		Tau:          0.005,
		MaxGradNorm:  10,
		HiddenSize:   128,
		Seed:         42,
	}
}

func (c Config) Validate() error {
	switch {
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive", game.ErrInvalidConfig)
	case c.Gamma < 0 || c.Gamma > 1:
		return fmt.Errorf("%w: gamma must be in [0, 1]", game.ErrInvalidConfig)
	case c.EpsilonStart < 0 || c.EpsilonStart > 1 || c.EpsilonEnd < 0 || c.EpsilonEnd > 1:
		return fmt.Errorf("%w: epsilon must be in [0, 1]", game.ErrInvalidConfig)
	case c.BufferSize <= 0 || c.BatchSize <= 0:
		return fmt.Errorf("%w: buffer and batch size must be positive", game.ErrInvalidConfig)
	case c.Tau <= 0 || c.Tau > 1:
		return fmt.Errorf("%w: tau must be in (0, 1]", game.ErrInvalidConfig)
	case c.HiddenSize <= 0:
		return fmt.Errorf("%w: hidden size must be positive", game.ErrInvalidConfig)
	}
	return nil
}

// DQN is a Double-DQN learner. The online network selects actions and is
// trained; the target network evaluates bootstrap targets and trails the
// online network through soft updates.
type DQN struct {
	config    Config
	boardSize int
	online    *Network
	target    *Network
	optimizer *adam
	buffer    *ReplayBuffer
	epsilon   EpsilonSchedule
	rng       *rand.Rand
	steps     int
}

// NewDQN builds a learner for observations and actions of a boardSize board.
// Both networks start with identical weights.
func NewDQN(boardSize int, config Config) (*DQN, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if boardSize < game.MinBoardSize {
		return nil, fmt.Errorf("%w: board size %d", game.ErrInvalidConfig, boardSize)
	}

	rng := rand.New(rand.NewSource(config.Seed))
	inputs := boardSize * boardSize * codec.NumChannels
	outputs := codec.ActionSpaceSize(boardSize)
	online := NewNetwork(inputs, config.HiddenSize, outputs, rng)
	target := newNetwork(inputs, config.HiddenSize, outputs, make([]float64, len(online.params)))
	target.CopyFrom(online)

	return &DQN{
		config:    config,
		boardSize: boardSize,
		online:    online,
		target:    target,
		optimizer: newAdam(len(online.params), config.LearningRate),
		buffer:    NewReplayBuffer(config.BufferSize),
		epsilon: EpsilonSchedule{
			Start:         config.EpsilonStart,
			End:           config.EpsilonEnd,
			DecayEpisodes: config.EpsilonDecay,
		},
		rng: rng,
	}, nil
}

func (d *DQN) Config() Config { return d.config }

func (d *DQN) BoardSize() int { return d.boardSize }

func (d *DQN) Epsilon() float64 { return d.epsilon.Value() }

func (d *DQN) Steps() int { return d.steps }

func (d *DQN) Buffer() *ReplayBuffer { return d.buffer }

// SelectAction is epsilon-greedy over the legal actions. The greedy choice
// takes the arg-max of the online values with illegal actions forced to
// MaskedValue. Deterministic selection never explores.
func (d *DQN) SelectAction(obs codec.Tensor, mask codec.Mask, deterministic bool) int {
	if mask.Empty() {
		return codec.PassAction
	}
	if !deterministic && d.rng.Float64() < d.epsilon.Value() {
		return mask.Legal[d.rng.Intn(mask.Len())]
	}
	return maskedArgMax(d.online.Forward(toInput(obs)), mask)
}

func maskedArgMax(values []float64, mask codec.Mask) int {
	masked := make([]float64, len(values))
	for i := range masked {
		masked[i] = MaskedValue
	}
	for _, a := range mask.Legal {
		masked[a] = values[a]
	}
	return floats.MaxIdx(masked)
}

func (d *DQN) Reset() {}

func (d *DQN) Store(t Transition) {
	d.buffer.Push(t)
}

// Update performs one gradient step on a sampled batch. It reports false
// and does nothing until the buffer holds at least one batch.
func (d *DQN) Update() (UpdateMetrics, bool) {
	if d.buffer.Len() < d.config.BatchSize {
		return UpdateMetrics{}, false
	}
	batch := d.buffer.Sample(d.config.BatchSize, d.rng)

	grad := make([]float64, len(d.online.params))
	gl := newLayout(grad, d.online.inputs, d.online.hidden, d.online.outputs)

	var loss, qSum float64
	qMax := math.Inf(-1)
	scale := 1 / float64(len(batch))
	for _, t := range batch {
		x := toInput(t.State)
		q := d.online.Value(x, t.Action)
		delta := q - d.targetValue(t)

		l, g := huber(delta)
		loss += l
		qSum += q
		qMax = max(qMax, q)
		d.online.accumulate(gl, x, t.Action, g*scale)
	}

	clipNorm(grad, d.config.MaxGradNorm)
	d.optimizer.step(d.online.params, grad)
	d.target.SoftUpdate(d.online, d.config.Tau)
	d.steps++

	return UpdateMetrics{
		Loss:    loss * scale,
		QMean:   qSum * scale,
		QMax:    qMax,
		Epsilon: d.epsilon.Value(),
	}, true
}

// targetValue is r + gamma * Q_target(s', argmax_a' Q_online(s', a')) over
// legal next actions, or r alone for terminal transitions. A next state
// without legal actions is treated as terminal.
func (d *DQN) targetValue(t Transition) float64 {
	if t.Done || t.NextMask.Empty() {
		return t.Reward
	}
	next := toInput(t.NextState)
	best := maskedArgMax(d.online.Forward(next), t.NextMask)
	return t.Reward + d.config.Gamma*d.target.Value(next, best)
}

// DecayEpsilon advances the exploration schedule by one episode.
func (d *DQN) DecayEpsilon() {
	d.epsilon.Step()
}

// QValues exposes the online values for an observation.
func (d *DQN) QValues(obs codec.Tensor) []float64 {
	return d.online.Forward(toInput(obs))
}

func toInput(obs codec.Tensor) []float64 {
	x := make([]float64, len(obs.Data))
	for i, v := range obs.Data {
		x[i] = float64(v)
	}
	return x
}
