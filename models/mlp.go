package models

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

const hiddenUnits = 256

func init() {
	register("mlp", func(nIn, nOut int, opt Options) Model {
		return newMLP(nIn, hiddenUnits, nOut, opt)
	})
}

// Single hidden layer network with ReLU activation, trained the same way
// as the linear model.
type mlp struct {
	opt             Options
	W1, B1          []float64
	W2, B2          []float64
	v1, vb1         []float64
	v2, vb2         []float64
	nIn, nHid, nOut int

	hidden  []float64
	logits  []float64
	g1, gb1 []float64
	g2, gb2 []float64
	dHidden []float64
}

func newMLP(nIn, nHid, nOut int, opt Options) *mlp {
	m := &mlp{
		opt: opt, nIn: nIn, nHid: nHid, nOut: nOut,
		W1: make([]float64, nHid*nIn), B1: make([]float64, nHid),
		W2: make([]float64, nOut*nHid), B2: make([]float64, nOut),
		v1: make([]float64, nHid*nIn), vb1: make([]float64, nHid),
		v2: make([]float64, nOut*nHid), vb2: make([]float64, nOut),
		hidden: make([]float64, nHid), logits: make([]float64, nOut),
		g1: make([]float64, nHid*nIn), gb1: make([]float64, nHid),
		g2: make([]float64, nOut*nHid), gb2: make([]float64, nOut),
		dHidden: make([]float64, nHid),
	}
	rng := rand.New(rand.NewSource(opt.Seed))
	he := math.Sqrt(2 / float64(nIn))
	for i := range m.W1 {
		m.W1[i] = rng.NormFloat64() * he
	}
	he = math.Sqrt(2 / float64(nHid))
	for i := range m.W2 {
		m.W2[i] = rng.NormFloat64() * he
	}
	return m
}

func (m *mlp) forward(x []float32) []float64 {
	for h := 0; h < m.nHid; h++ {
		sum := m.B1[h]
		row := m.W1[h*m.nIn : (h+1)*m.nIn]
		for i, v := range x {
			sum += row[i] * float64(v)
		}
		if sum < 0 {
			sum = 0
		}
		m.hidden[h] = sum
	}
	for j := 0; j < m.nOut; j++ {
		sum := m.B2[j]
		row := m.W2[j*m.nHid : (j+1)*m.nHid]
		for h, v := range m.hidden {
			sum += row[h] * v
		}
		m.logits[j] = sum
	}
	return m.logits
}

func (m *mlp) TrainStep(x []float32, y []int32, lr float64) (float64, int) {
	for _, g := range [][]float64{m.g1, m.gb1, m.g2, m.gb2} {
		for i := range g {
			g[i] = 0
		}
	}
	loss, correct := m.accumulate(x, y, true)
	scale := 1 / float64(len(y))
	m.update(m.W1, m.v1, m.g1, lr, scale, true)
	m.update(m.B1, m.vb1, m.gb1, lr, scale, false)
	m.update(m.W2, m.v2, m.g2, lr, scale, true)
	m.update(m.B2, m.vb2, m.gb2, lr, scale, false)
	return loss, correct
}

func (m *mlp) update(w, buf, grad []float64, lr, scale float64, decay bool) {
	wd := 0.0
	if decay {
		wd = m.opt.WeightDecay
	}
	for i := range w {
		d := grad[i]*scale + wd*w[i]
		if m.opt.Momentum != 0 {
			buf[i] = m.opt.Momentum*buf[i] + d
			if m.opt.Nesterov {
				d += m.opt.Momentum * buf[i]
			} else {
				d = buf[i]
			}
		}
		w[i] -= lr * d
	}
}

func (m *mlp) EvalStep(x []float32, y []int32) (float64, int) {
	return m.accumulate(x, y, false)
}

func (m *mlp) accumulate(x []float32, y []int32, grad bool) (loss float64, correct int) {
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
		for h := range m.dHidden {
			m.dHidden[h] = 0
		}
		for j := 0; j < m.nOut; j++ {
			delta := p[j]
			if j == int(label) {
				delta--
			}
			row := m.W2[j*m.nHid : (j+1)*m.nHid]
			gRow := m.g2[j*m.nHid : (j+1)*m.nHid]
			for h, v := range m.hidden {
				gRow[h] += delta * v
				m.dHidden[h] += delta * row[h]
			}
			m.gb2[j] += delta
		}
		for h, d := range m.dHidden {
			if m.hidden[h] <= 0 {
				continue
			}
			gRow := m.g1[h*m.nIn : (h+1)*m.nIn]
			for i, v := range sample {
				gRow[i] += d * float64(v)
			}
			m.gb1[h] += d
		}
	}
	return loss, correct
}

// MLPState holds the checkpointed weights.
type MLPState struct {
	W1, B1, W2, B2  []float64
	NIn, NHid, NOut int
}

func (m *mlp) State() interface{} {
	return &MLPState{W1: m.W1, B1: m.B1, W2: m.W2, B2: m.B2, NIn: m.nIn, NHid: m.nHid, NOut: m.nOut}
}

func (m *mlp) LoadState(state interface{}) error {
	st, ok := state.(*MLPState)
	if !ok {
		return errors.Errorf("mlp: cannot load state of type %T", state)
	}
	if st.NIn != m.nIn || st.NHid != m.nHid || st.NOut != m.nOut {
		return errors.Errorf("mlp: state shape does not match")
	}
	copy(m.W1, st.W1)
	copy(m.B1, st.B1)
	copy(m.W2, st.W2)
	copy(m.B2, st.B2)
	return nil
}
