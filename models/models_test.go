package models

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

// two gaussian blobs which a linear boundary separates
func blobs(n int, rng *rand.Rand) ([]float32, []int32) {
	x := make([]float32, n*2)
	y := make([]int32, n)
	for i := 0; i < n; i++ {
		label := int32(i % 2)
		center := -2.0
		if label == 1 {
			center = 2.0
		}
		x[i*2] = float32(center + rng.NormFloat64()*0.5)
		x[i*2+1] = float32(center + rng.NormFloat64()*0.5)
		y[i] = label
	}
	return x, y
}

func TestNames(t *testing.T) {
	want := []string{"linear", "mlp"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("expect %v got %v", want, got)
	}
	if _, err := New("resnet50", 10, 10, Options{}); err == nil {
		t.Error("expect error for unregistered model")
	}
}

func TestModelsLearn(t *testing.T) {
	for _, name := range Names() {
		rng := rand.New(rand.NewSource(7))
		x, y := blobs(200, rng)
		m, err := New(name, 2, 2, Options{Momentum: 0.9, Nesterov: true, Seed: 7})
		if err != nil {
			t.Fatal(err)
		}
		var loss float64
		for epoch := 0; epoch < 50; epoch++ {
			loss, _ = m.TrainStep(x, y, 0.1)
		}
		evalLoss, correct := m.EvalStep(x, y)
		acc := float64(correct) / float64(len(y))
		t.Logf("%s: loss=%.4f eval=%.4f acc=%.2f", name, loss/200, evalLoss/200, acc)
		if acc < 0.95 {
			t.Errorf("%s: expect separable blobs learned, accuracy %.2f", name, acc)
		}
	}
}

func TestLinearGradient(t *testing.T) {
	// loss must not increase over descent steps on a fixed batch
	m := newLinear(2, 2, Options{Seed: 1})
	x := []float32{1, 0, 0, 1}
	y := []int32{0, 1}
	prev := math.Inf(1)
	for i := 0; i < 20; i++ {
		loss, _ := m.TrainStep(x, y, 0.5)
		if loss > prev+1e-9 {
			t.Fatalf("step %d: loss increased %v -> %v", i, prev, loss)
		}
		prev = loss
	}
}

func TestState(t *testing.T) {
	m := newLinear(3, 2, Options{Seed: 1})
	st, ok := m.State().(*LinearState)
	if !ok {
		t.Fatal("expect *LinearState")
	}
	if len(st.W) != 6 || len(st.B) != 2 || st.NIn != 3 || st.NOut != 2 {
		t.Errorf("bad state shape: %+v", st)
	}
	m2 := newLinear(3, 2, Options{Seed: 99})
	if err := m2.LoadState(st); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m2.W, m.W) {
		t.Error("weights not restored")
	}
	m3 := newLinear(4, 2, Options{})
	if err := m3.LoadState(st); err == nil {
		t.Error("expect shape mismatch error")
	}
}
