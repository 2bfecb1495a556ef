package data

import (
	"fmt"
	"sort"
)

// LoadFunc builds one split of a dataset rooted at the given directory.
// Split is one of the DataSets names.
type LoadFunc func(root, split string) (Data, error)

// Info describes a registered dataset: its loader plus the normalization
// constants and class count used to configure models and transforms.
type Info struct {
	Name       string
	NumClasses int
	InChannels int
	Mean       []float32
	Std        []float32
	Load       LoadFunc
}

var registry = map[string]Info{}

// Register adds a dataset to the registry, replacing any previous entry
// with the same name.
func Register(info Info) {
	registry[info.Name] = info
}

// Get looks up a dataset by name.
func Get(name string) (Info, error) {
	info, ok := registry[name]
	if !ok {
		return Info{}, fmt.Errorf("data: unknown dataset %q", name)
	}
	return info, nil
}

// Names returns the registered dataset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Minimized wraps a loader so that every split it builds is reduced to a
// stratified pct percent subset with the given seed.
func Minimized(load LoadFunc, pct int, seed int64) (LoadFunc, error) {
	if pct < 1 || pct > 100 {
		return nil, ErrFraction
	}
	return func(root, split string) (Data, error) {
		sub, err := NewSubsampler(func() (Source, error) {
			return load(root, split)
		}, pct, seed)
		if err != nil {
			return nil, err
		}
		s, err := sub.Dataset()
		if err != nil {
			return nil, err
		}
		return s, nil
	}, nil
}
