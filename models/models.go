// Package models provides the classifiers which plug into the training
// loop. Models are registered by name so a run config can select one.
package models

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/davidhoof/visiontrain/train"
)

// Model couples the training step surface with checkpoint state. State
// returns a pointer to a gob encodable snapshot; LoadState copies a
// decoded snapshot of the same type back into the weights.
type Model interface {
	train.Module
	train.Stateful
	LoadState(state interface{}) error
}

// Options passed through from the run config.
type Options struct {
	WeightDecay float64
	Momentum    float64
	Nesterov    bool
	Seed        int64
}

type buildFunc func(nIn, nOut int, opt Options) Model

var registry = map[string]buildFunc{}

func register(name string, build buildFunc) {
	registry[name] = build
}

// New builds the named model for the given input and output sizes.
func New(name string, nIn, nOut int, opt Options) (Model, error) {
	build, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("unknown model: %s", name)
	}
	return build(nIn, nOut, opt), nil
}

// Names lists the registered models in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
