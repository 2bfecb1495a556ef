// Package data defines the dataset abstraction shared by the loaders and the
// training pipeline, plus utilities to persist converted datasets and to
// build reduced subsets for data-efficiency experiments.
package data

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
)

var (
	DataDir  = defaultDir()
	DataSets = []string{"train", "test", "valid"}
)

// ErrNoLabels is returned when a dataset exposes neither a label list nor a
// target list, so no stratification or accuracy calculation is possible.
var ErrNoLabels = errors.New("data: dataset provides neither labels nor targets")

func init() {
	gob.Register(set{})
}

func defaultDir() string {
	if dir := os.Getenv("VISIONTRAIN_DATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return path.Join(home, ".visiontrain", "data")
}

// Source is the minimal surface consumed by the subsampler and the batch
// loader: a length and indexed access to the flattened input values.
type Source interface {
	Len() int
	Input(index []int, buf []float32)
}

// Data interface type represents the raw data for a training, validation or
// test set. Every index in [0, Len) has exactly one entry in Labels.
type Data interface {
	Source
	Classes() []string
	Shape() []int
	Labels() []int32
}

// LabelSource is the canonical label accessor every dataset type is expected
// to implement.
type LabelSource interface {
	Labels() []int32
}

// TargetSource is implemented by older dataset types which expose targets
// instead of labels.
type TargetSource interface {
	Targets() []int32
}

// LabelsOf resolves the label list for an arbitrary dataset value. Datasets
// should implement LabelSource; TargetSource is accepted for compatibility.
// Returns ErrNoLabels if the value implements neither.
func LabelsOf(v interface{}) ([]int32, error) {
	switch d := v.(type) {
	case LabelSource:
		return d.Labels(), nil
	case TargetSource:
		return d.Targets(), nil
	}
	return nil, ErrNoLabels
}

type set struct {
	Class  []string
	Dims   []int
	Label  []int32
	Pixels []float32
}

// NewSet creates an in memory data set which implements the Data interface.
func NewSet(nclasses int, shape []int, labels []int32, inputs []float32) Data {
	classes := make([]string, nclasses)
	for i := range classes {
		classes[i] = strconv.Itoa(i)
	}
	return set{Class: classes, Dims: shape, Label: labels, Pixels: inputs}
}

func (d set) Len() int { return len(d.Label) }

func (d set) Classes() []string { return d.Class }

func (d set) Shape() []int { return d.Dims }

func (d set) Labels() []int32 { return d.Label }

func (d set) Input(index []int, buf []float32) {
	nfeat := Prod(d.Dims)
	for i, ix := range index {
		copy(buf[i*nfeat:], d.Pixels[ix*nfeat:(ix+1)*nfeat])
	}
}

// Flatten copies an arbitrary dataset into a plain in memory set, so views
// such as subsets can be gob encoded.
func Flatten(d Data) Data {
	index := make([]int, d.Len())
	for i := range index {
		index[i] = i
	}
	buf := make([]float32, d.Len()*Prod(d.Shape()))
	d.Input(index, buf)
	return set{Class: d.Classes(), Dims: d.Shape(), Label: d.Labels(), Pixels: buf}
}

// Prod returns the product of the dims, i.e. the number of values per item.
func Prod(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// Load data from disk for each of the splits which exist for this dataset.
func Load(name string) (map[string]Data, error) {
	d := make(map[string]Data)
	for _, key := range DataSets {
		file := name + "_" + key
		if FileExists(file + ".dat") {
			data, err := LoadFile(file)
			if err != nil {
				return nil, err
			}
			d[key] = data
		}
	}
	return d, nil
}

// Decode data from file in gob format under DataDir.
func LoadFile(name string) (Data, error) {
	f, err := os.Open(path.Join(DataDir, name+".dat"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var d Data
	if err = gob.NewDecoder(f).Decode(&d); err != nil {
		return nil, fmt.Errorf("data: error decoding %s.dat: %s", name, err)
	}
	return d, nil
}

// Encode in gob format and save to file under DataDir.
func SaveFile(d Data, name string) error {
	if err := os.MkdirAll(DataDir, 0755); err != nil {
		return err
	}
	f, err := os.Create(path.Join(DataDir, name+".dat"))
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(&d)
}

// Check if file exists under DataDir.
func FileExists(name string) bool {
	_, err := os.Stat(path.Join(DataDir, name))
	return err == nil
}
