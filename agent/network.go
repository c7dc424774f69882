package agent

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Network is a two-layer perceptron mapping a flattened observation to one
// value per action: q = W2 relu(W1 x + b1) + b2. All parameters live in one
// flat slice so that copies, soft updates and optimizer steps are vector
// operations; the matrices are views into it.
type Network struct {
	inputs  int
	hidden  int
	outputs int

	params []float64
	w1     *mat.Dense
	b1     *mat.VecDense
	w2     *mat.Dense
	b2     *mat.VecDense
}

// layout is the parameter layout shared by weights, gradients and optimizer
// moments.
type layout struct {
	w1 *mat.Dense
	b1 *mat.VecDense
	w2 *mat.Dense
	b2 *mat.VecDense
}

func paramCount(inputs, hidden, outputs int) int {
	return hidden*inputs + hidden + outputs*hidden + outputs
}

func newLayout(data []float64, inputs, hidden, outputs int) layout {
	off := 0
	take := func(n int) []float64 {
		s := data[off : off+n]
		off += n
		return s
	}
	return layout{
		w1: mat.NewDense(hidden, inputs, take(hidden*inputs)),
		b1: mat.NewVecDense(hidden, take(hidden)),
		w2: mat.NewDense(outputs, hidden, take(outputs*hidden)),
		b2: mat.NewVecDense(outputs, take(outputs)),
	}
}

// NewNetwork initializes weights with He-uniform noise and zero biases.
func NewNetwork(inputs, hidden, outputs int, rng *rand.Rand) *Network {
	n := newNetwork(inputs, hidden, outputs, make([]float64, paramCount(inputs, hidden, outputs)))
	heInit(n.w1.RawMatrix().Data, inputs, rng)
	heInit(n.w2.RawMatrix().Data, hidden, rng)
	return n
}

func newNetwork(inputs, hidden, outputs int, params []float64) *Network {
	l := newLayout(params, inputs, hidden, outputs)
	return &Network{
		inputs:  inputs,
		hidden:  hidden,
		outputs: outputs,
		params:  params,
		w1:      l.w1,
		b1:      l.b1,
		w2:      l.w2,
		b2:      l.b2,
	}
}

func heInit(weights []float64, fanIn int, rng *rand.Rand) {
	limit := math.Sqrt(6.0 / float64(fanIn))
	for i := range weights {
		weights[i] = (2*rng.Float64() - 1) * limit
	}
}

func (n *Network) Inputs() int { return n.inputs }
func (n *Network) Hidden() int { return n.hidden }
func (n *Network) Outputs() int { return n.outputs }

// Params exposes the flat parameter vector.
func (n *Network) Params() []float64 { return n.params }

// hiddenLayer computes relu(W1 x + b1).
func (n *Network) hiddenLayer(x *mat.VecDense) *mat.VecDense {
	h := mat.NewVecDense(n.hidden, nil)
	h.MulVec(n.w1, x)
	h.AddVec(h, n.b1)
	data := h.RawVector().Data
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return h
}

// Forward returns the value of every action.
func (n *Network) Forward(x []float64) []float64 {
	h := n.hiddenLayer(mat.NewVecDense(n.inputs, x))
	q := mat.NewVecDense(n.outputs, nil)
	q.MulVec(n.w2, h)
	q.AddVec(q, n.b2)
	return q.RawVector().Data
}

// Value returns the value of a single action without computing the others.
func (n *Network) Value(x []float64, action int) float64 {
	h := n.hiddenLayer(mat.NewVecDense(n.inputs, x))
	return floats.Dot(n.w2.RawRowView(action), h.RawVector().Data) + n.b2.AtVec(action)
}

// accumulate adds the gradient of scale * q[action] at x into grad.
func (n *Network) accumulate(grad layout, x []float64, action int, scale float64) {
	xv := mat.NewVecDense(n.inputs, x)
	h := n.hiddenLayer(xv)
	hData := h.RawVector().Data

	floats.AddScaled(grad.w2.RawRowView(action), scale, hData)
	grad.b2.SetVec(action, grad.b2.AtVec(action)+scale)

	dh := make([]float64, n.hidden)
	floats.AddScaled(dh, scale, n.w2.RawRowView(action))
	for i, v := range hData {
		if v <= 0 {
			dh[i] = 0
		}
	}
	dhv := mat.NewVecDense(n.hidden, dh)
	grad.w1.RankOne(grad.w1, 1, dhv, xv)
	grad.b1.AddVec(grad.b1, dhv)
}

// CopyFrom overwrites the parameters with other's.
func (n *Network) CopyFrom(other *Network) {
	n.mustMatch(other)
	copy(n.params, other.params)
}

// SoftUpdate moves the parameters towards other's: p = tau*other + (1-tau)*p.
func (n *Network) SoftUpdate(other *Network, tau float64) {
	n.mustMatch(other)
	floats.Scale(1-tau, n.params)
	floats.AddScaled(n.params, tau, other.params)
}

func (n *Network) mustMatch(other *Network) {
	if n.inputs != other.inputs || n.hidden != other.hidden || n.outputs != other.outputs {
		panic(fmt.Sprintf("network shape mismatch: %dx%dx%d vs %dx%dx%d",
			n.inputs, n.hidden, n.outputs, other.inputs, other.hidden, other.outputs))
	}
}

// adam is the Adam optimizer over a flat parameter vector.
type adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	m     []float64
	v     []float64
	t     int
}

func newAdam(size int, lr float64) *adam {
	return &adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
		m:     make([]float64, size),
		v:     make([]float64, size),
	}
}

func (a *adam) step(params, grad []float64) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for i, g := range grad {
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g
		params[i] -= a.lr * (a.m[i] / c1) / (math.Sqrt(a.v[i]/c2) + a.eps)
	}
}

// clipNorm scales grad down so its L2 norm is at most maxNorm and returns the
// norm before clipping.
func clipNorm(grad []float64, maxNorm float64) float64 {
	norm := floats.Norm(grad, 2)
	if maxNorm > 0 && norm > maxNorm {
		floats.Scale(maxNorm/(norm+1e-6), grad)
	}
	return norm
}

// huber is the smooth L1 loss with threshold 1 and its derivative.
func huber(delta float64) (loss, grad float64) {
	if math.Abs(delta) <= 1 {
		return 0.5 * delta * delta, delta
	}
	if delta > 0 {
		return delta - 0.5, 1
	}
	return -delta - 0.5, -1
}
