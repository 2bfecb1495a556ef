package data

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrFraction is returned when the requested subset percentage is outside
// the (0,100] range.
var ErrFraction = errors.New("data: subset percentage must be between 1 and 100")

// BuildFunc constructs the full dataset which is to be subsampled.
type BuildFunc func() (Source, error)

// Mode selects how the subsampler picks indexes.
type Mode int

const (
	// Stratified picks a class balanced random sample. This is the default.
	Stratified Mode = iota
	// Window picks a contiguous block of indexes at an offset derived from
	// the seed by modular arithmetic. Position based rather than random,
	// kept for comparison with older experiment runs.
	Window
)

// Subsampler deterministically selects a class balanced subset of a dataset.
// The selection is a pure function of the dataset contents, the percentage
// and the seed, so repeated construction yields an identical index sequence.
type Subsampler struct {
	build BuildFunc
	pct   int
	seed  int64
	mode  Mode
}

// NewSubsampler creates a subsampler which keeps pct percent of the dataset
// returned by build. pct outside (0,100] is a configuration error.
func NewSubsampler(build BuildFunc, pct int, seed int64) (*Subsampler, error) {
	if pct < 1 || pct > 100 {
		return nil, ErrFraction
	}
	return &Subsampler{build: build, pct: pct, seed: seed, mode: Stratified}, nil
}

// SetMode overrides the default stratified selection.
func (s *Subsampler) SetMode(m Mode) *Subsampler {
	s.mode = m
	return s
}

// Dataset builds the full dataset and returns the reduced view over it.
// The total selected count is floor(pct*n/100) and, in stratified mode, each
// class keeps its share of the full set to within one element.
func (s *Subsampler) Dataset() (*Subset, error) {
	full, err := s.build()
	if err != nil {
		return nil, err
	}
	labels, err := LabelsOf(full)
	if err != nil {
		return nil, err
	}
	if len(labels) != full.Len() {
		return nil, fmt.Errorf("data: have %d labels for %d items", len(labels), full.Len())
	}
	var index []int
	if s.mode == Window {
		index = windowIndexes(len(labels), s.pct, s.seed)
	} else {
		index = stratifiedIndexes(labels, s.pct, s.seed)
	}
	return &Subset{src: full, index: index}, nil
}

// stratifiedIndexes partitions the indexes by label and samples each class
// uniformly at random with a generator seeded from seed. Per class counts
// are the floor of the proportional share, with the remainder handed out by
// largest fractional part so that the total is exactly floor(pct*n/100).
// Classes are visited in ascending label order and all draws come from the
// same generator, so the result depends only on (labels, pct, seed).
func stratifiedIndexes(labels []int32, pct int, seed int64) []int {
	total := len(labels) * pct / 100
	byClass := map[int32][]int{}
	classes := []int32{}
	for i, label := range labels {
		if _, ok := byClass[label]; !ok {
			classes = append(classes, label)
		}
		byClass[label] = append(byClass[label], i)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	take := make([]int, len(classes))
	frac := make([]float64, len(classes))
	picked := 0
	for ci, c := range classes {
		exact := float64(len(byClass[c])) * float64(pct) / 100
		take[ci] = int(math.Floor(exact))
		frac[ci] = exact - float64(take[ci])
		picked += take[ci]
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return frac[order[i]] > frac[order[j]] })
	for i := 0; picked < total; i++ {
		take[order[i]]++
		picked++
	}

	rng := rand.New(rand.NewSource(seed))
	index := make([]int, 0, total)
	for ci, c := range classes {
		members := byClass[c]
		perm := rng.Perm(len(members))
		for _, p := range perm[:take[ci]] {
			index = append(index, members[p])
		}
	}
	sort.Ints(index)
	return index
}

// windowIndexes returns the indexes [offset, split+offset) where offset
// cycles through pct * (seed mod floor(100/pct)). Clamped at n.
func windowIndexes(n, pct int, seed int64) []int {
	split := n * pct / 100
	offset := pct * int(seed%int64(100/pct))
	start, end := offset, split+offset
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	index := make([]int, end-start)
	for i := range index {
		index[i] = start + i
	}
	return index
}

// Subset is a read only view over a dataset restricted to the selected
// indexes, preserving the original item to label pairing. It satisfies the
// Data interface when the underlying dataset does.
type Subset struct {
	src   Source
	index []int
}

// Len function returns the number of selected items.
func (s *Subset) Len() int { return len(s.index) }

// Indices returns a copy of the selected indexes into the original dataset,
// in ascending order.
func (s *Subset) Indices() []int {
	return append([]int{}, s.index...)
}

func (s *Subset) Labels() []int32 {
	src, err := LabelsOf(s.src)
	if err != nil {
		return nil
	}
	labels := make([]int32, len(s.index))
	for i, ix := range s.index {
		labels[i] = src[ix]
	}
	return labels
}

func (s *Subset) Input(index []int, buf []float32) {
	mapped := make([]int, len(index))
	for i, ix := range index {
		mapped[i] = s.index[ix]
	}
	s.src.Input(mapped, buf)
}

func (s *Subset) Classes() []string {
	if d, ok := s.src.(interface{ Classes() []string }); ok {
		return d.Classes()
	}
	return nil
}

func (s *Subset) Shape() []int {
	if d, ok := s.src.(interface{ Shape() []int }); ok {
		return d.Shape()
	}
	return nil
}
