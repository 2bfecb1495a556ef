package models

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

func init() {
	register("linear", func(nIn, nOut int, opt Options) Model {
		return newLinear(nIn, nOut, opt)
	})
}

// Softmax regression trained with SGD, momentum and weight decay.
type linear struct {
	opt Options
	W   []float64
	B   []float64
	vW  []float64
	vB  []float64
	nIn int
	out int
	// scratch buffers reused across batches
	logits []float64
	gradW  []float64
	gradB  []float64
}

func newLinear(nIn, nOut int, opt Options) *linear {
	m := &linear{
		opt: opt, nIn: nIn, out: nOut,
		W: make([]float64, nOut*nIn), B: make([]float64, nOut),
		vW: make([]float64, nOut*nIn), vB: make([]float64, nOut),
		logits: make([]float64, nOut),
		gradW:  make([]float64, nOut*nIn), gradB: make([]float64, nOut),
	}
	rng := rand.New(rand.NewSource(opt.Seed))
	scale := 1 / math.Sqrt(float64(nIn))
	for i := range m.W {
		m.W[i] = rng.NormFloat64() * scale
	}
	return m
}

func (m *linear) forward(x []float32) []float64 {
	for j := 0; j < m.out; j++ {
		sum := m.B[j]
		row := m.W[j*m.nIn : (j+1)*m.nIn]
		for i, v := range x {
			sum += row[i] * float64(v)
		}
		m.logits[j] = sum
	}
	return m.logits
}

// softmax in place, shifted by the max logit
func softmax(z []float64) {
	max := z[0]
	for _, v := range z[1:] {
		if v > max {
			max = v
		}
	}
	sum := 0.0
	for j, v := range z {
		z[j] = math.Exp(v - max)
		sum += z[j]
	}
	for j := range z {
		z[j] /= sum
	}
}

func argmax(z []float64) int {
	best := 0
	for j, v := range z {
		if v > z[best] {
			best = j
		}
	}
	return best
}

func (m *linear) TrainStep(x []float32, y []int32, lr float64) (float64, int) {
	batch := len(y)
	for i := range m.gradW {
		m.gradW[i] = 0
	}
	for i := range m.gradB {
		m.gradB[i] = 0
	}
	loss, correct := m.accumulate(x, y, true)
	scale := 1 / float64(batch)
	for j := 0; j < m.out; j++ {
		row := m.W[j*m.nIn : (j+1)*m.nIn]
		vRow := m.vW[j*m.nIn : (j+1)*m.nIn]
		gRow := m.gradW[j*m.nIn : (j+1)*m.nIn]
		for i := range row {
			row[i] -= lr * m.step(&vRow[i], gRow[i]*scale+m.opt.WeightDecay*row[i])
		}
		m.B[j] -= lr * m.step(&m.vB[j], m.gradB[j]*scale)
	}
	return loss, correct
}

// SGD update for one weight: momentum buffer plus optional nesterov lookahead
func (m *linear) step(buf *float64, d float64) float64 {
	if m.opt.Momentum == 0 {
		return d
	}
	*buf = m.opt.Momentum**buf + d
	if m.opt.Nesterov {
		return d + m.opt.Momentum**buf
	}
	return *buf
}

func (m *linear) EvalStep(x []float32, y []int32) (float64, int) {
	return m.accumulate(x, y, false)
}

func (m *linear) accumulate(x []float32, y []int32, grad bool) (loss float64, correct int) {
	for n, label := range y {
		sample := x[n*m.nIn : (n+1)*m.nIn]
		p := m.forward(sample)
		softmax(p)
		if argmax(p) == int(label) {
			correct++
		}
		loss += -math.Log(math.Max(p[label], 1e-12))
		if !grad {
			continue
		}
		for j := 0; j < m.out; j++ {
			delta := p[j]
			if j == int(label) {
				delta--
			}
			gRow := m.gradW[j*m.nIn : (j+1)*m.nIn]
			for i, v := range sample {
				gRow[i] += delta * float64(v)
			}
			m.gradB[j] += delta
		}
	}
	return loss, correct
}

// LinearState holds the checkpointed weights.
type LinearState struct {
	W, B []float64
	NIn  int
	NOut int
}

func (m *linear) State() interface{} {
	return &LinearState{W: m.W, B: m.B, NIn: m.nIn, NOut: m.out}
}

func (m *linear) LoadState(state interface{}) error {
	st, ok := state.(*LinearState)
	if !ok {
		return errors.Errorf("linear: cannot load state of type %T", state)
	}
	if st.NIn != m.nIn || st.NOut != m.out {
		return errors.Errorf("linear: state shape %dx%d does not match %dx%d", st.NOut, st.NIn, m.out, m.nIn)
	}
	copy(m.W, st.W)
	copy(m.B, st.B)
	return nil
}
