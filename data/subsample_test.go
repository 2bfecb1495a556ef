package data

import (
	"errors"
	"reflect"
	"testing"
)

// two classes of 50 items each, labels interleaved
func twoClassSet() Data {
	labels := make([]int32, 100)
	inputs := make([]float32, 100)
	for i := range labels {
		labels[i] = int32(i % 2)
		inputs[i] = float32(i)
	}
	return NewSet(2, []int{1}, labels, inputs)
}

func builder(d Data) BuildFunc {
	return func() (Source, error) { return d, nil }
}

func TestSubsampleSize(t *testing.T) {
	d := twoClassSet()
	for _, pct := range []int{1, 7, 10, 33, 50, 99, 100} {
		s, err := NewSubsampler(builder(d), pct, 42)
		if err != nil {
			t.Fatal(err)
		}
		sub, err := s.Dataset()
		if err != nil {
			t.Fatal(err)
		}
		want := d.Len() * pct / 100
		if sub.Len() != want {
			t.Errorf("pct=%d: got %d items, expect %d", pct, sub.Len(), want)
		}
	}
}

func TestSubsampleExample(t *testing.T) {
	// 100 items, 2 classes of 50, pct=10 => 10 items, 5 from each class
	d := twoClassSet()
	s, err := NewSubsampler(builder(d), 10, 42)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 10 {
		t.Fatal("got", sub.Len(), "items, expect 10")
	}
	count := map[int32]int{}
	for _, label := range sub.Labels() {
		count[label]++
	}
	if count[0] != 5 || count[1] != 5 {
		t.Error("class counts not balanced: got", count)
	}
}

func TestSubsampleDeterminism(t *testing.T) {
	d := twoClassSet()
	get := func(seed int64) []int {
		s, err := NewSubsampler(builder(d), 10, seed)
		if err != nil {
			t.Fatal(err)
		}
		sub, err := s.Dataset()
		if err != nil {
			t.Fatal(err)
		}
		return sub.Indices()
	}
	first := get(42)
	if !reflect.DeepEqual(first, get(42)) {
		t.Error("same seed gave different index sequences")
	}
	if reflect.DeepEqual(first, get(43)) {
		t.Error("seeds 42 and 43 gave identical index sequences")
	}
}

func TestSubsampleStratified(t *testing.T) {
	// unbalanced classes: 60 / 30 / 10
	labels := make([]int32, 100)
	for i := range labels {
		switch {
		case i < 60:
			labels[i] = 0
		case i < 90:
			labels[i] = 1
		default:
			labels[i] = 2
		}
	}
	d := NewSet(3, []int{1}, labels, make([]float32, 100))
	for _, pct := range []int{10, 20, 50} {
		s, err := NewSubsampler(builder(d), pct, 1)
		if err != nil {
			t.Fatal(err)
		}
		sub, err := s.Dataset()
		if err != nil {
			t.Fatal(err)
		}
		count := map[int32]int{}
		for _, label := range sub.Labels() {
			count[label]++
		}
		for c, n := range map[int32]int{0: 60, 1: 30, 2: 10} {
			exact := float64(n) * float64(pct) / 100
			diff := float64(count[c]) - exact
			if diff < -1 || diff > 1 {
				t.Errorf("pct=%d class %d: got %d of %d, expect within 1 of %g",
					pct, c, count[c], n, exact)
			}
		}
	}
}

func TestSubsampleFull(t *testing.T) {
	d := twoClassSet()
	s, err := NewSubsampler(builder(d), 100, 7)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	index := sub.Indices()
	if len(index) != d.Len() {
		t.Fatal("got", len(index), "items, expect", d.Len())
	}
	for i, ix := range index {
		if ix != i {
			t.Fatal("pct=100 should select every index: got", ix, "at", i)
		}
	}
}

func TestSubsamplePairing(t *testing.T) {
	d := twoClassSet()
	s, err := NewSubsampler(builder(d), 10, 42)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	// inputs were set to the item index, so each selected item must still
	// carry the label of its original index
	buf := make([]float32, sub.Len())
	index := make([]int, sub.Len())
	for i := range index {
		index[i] = i
	}
	sub.Input(index, buf)
	labels := sub.Labels()
	for i, v := range buf {
		if int32(int(v)%2) != labels[i] {
			t.Errorf("item %d: input %g paired with label %d", i, v, labels[i])
		}
	}
}

func TestSubsampleTinyClass(t *testing.T) {
	// a class smaller than 100/pct members may round to zero, never negative
	labels := append(make([]int32, 95), 1, 1, 1, 1, 1)
	d := NewSet(2, []int{1}, labels, make([]float32, 100))
	s, err := NewSubsampler(builder(d), 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 10 {
		t.Error("got", sub.Len(), "items, expect 10")
	}
}

func TestSubsampleFractionError(t *testing.T) {
	for _, pct := range []int{-1, 0, 101} {
		if _, err := NewSubsampler(builder(twoClassSet()), pct, 0); !errors.Is(err, ErrFraction) {
			t.Errorf("pct=%d: got %v, expect ErrFraction", pct, err)
		}
	}
}

// dataset with inputs but no way to get at the labels
type unlabelled struct{ n int }

func (d unlabelled) Len() int                    { return d.n }
func (d unlabelled) Input(index []int, buf []float32) {}

// dataset using the legacy targets accessor
type targetted struct {
	unlabelled
	targets []int32
}

func (d targetted) Targets() []int32 { return d.targets }

func TestSubsampleNoLabels(t *testing.T) {
	s, err := NewSubsampler(func() (Source, error) { return unlabelled{n: 10}, nil }, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.Dataset(); !errors.Is(err, ErrNoLabels) {
		t.Error("got", err, "expect ErrNoLabels")
	}
}

func TestSubsampleTargets(t *testing.T) {
	d := targetted{unlabelled: unlabelled{n: 10}, targets: []int32{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}}
	s, err := NewSubsampler(func() (Source, error) { return d, nil }, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	if sub.Len() != 5 {
		t.Error("got", sub.Len(), "items, expect 5")
	}
}

func TestWindowMode(t *testing.T) {
	d := twoClassSet()
	s, err := NewSubsampler(builder(d), 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := s.SetMode(Window).Dataset()
	if err != nil {
		t.Fatal(err)
	}
	// offset = 10 * (3 mod 10) = 30, so the window is [30, 40)
	want := []int{30, 31, 32, 33, 34, 35, 36, 37, 38, 39}
	if !reflect.DeepEqual(sub.Indices(), want) {
		t.Error("got", sub.Indices(), "expect", want)
	}
}

func TestMinimized(t *testing.T) {
	load := func(root, split string) (Data, error) { return twoClassSet(), nil }
	min, err := Minimized(load, 10, 42)
	if err != nil {
		t.Fatal(err)
	}
	d, err := min("", "train")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 10 {
		t.Error("got", d.Len(), "items, expect 10")
	}
	if _, err = Minimized(load, 0, 42); !errors.Is(err, ErrFraction) {
		t.Error("got", err, "expect ErrFraction")
	}
}
