// Package train wraps an external model in an epoch based training loop
// with learning rate scheduling, metrics and checkpointing. The model
// itself and its gradient math live behind the Module interface.
package train

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"reflect"
	"strconv"
	"strings"
)

// Training configuration settings
type Config struct {
	Classifier  string
	DataSet     string
	Eta         float64
	WeightDecay float64
	Momentum    float64
	Nesterov    bool
	MaxEpoch    int
	BatchSize   int
	TestBatch   int
	SubsetPct   int
	RandSeed    int64
	LogEvery    int
	StopAfter   int
	DebugLevel  int
	OutputDir   string
}

// DefaultConfig returns the settings shared by the reference runs.
func DefaultConfig() Config {
	return Config{
		Classifier:  "linear",
		Eta:         0.01,
		WeightDecay: 0.0005,
		Momentum:    0.9,
		Nesterov:    true,
		MaxEpoch:    100,
		BatchSize:   128,
		SubsetPct:   100,
		LogEvery:    1,
		OutputDir:   "output",
	}
}

// Load config from json file.
func LoadConfig(file string) (c Config, err error) {
	f, err := os.Open(file)
	if err != nil {
		return c, err
	}
	defer f.Close()
	err = json.NewDecoder(f).Decode(&c)
	return c, err
}

// Save config to json file, creating the directory if needed.
func (c Config) Save(file string) error {
	if err := os.MkdirAll(path.Dir(file), 0755); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func (c Config) Fields() []string {
	st := reflect.TypeOf(c)
	fld := make([]string, st.NumField())
	for i := range fld {
		fld[i] = st.Field(i).Name
	}
	return fld
}

func (c Config) Get(key string) interface{} {
	s := reflect.ValueOf(c)
	return s.FieldByName(key).Interface()
}

func (c Config) String() string {
	str := []string{"== Config =="}
	for _, key := range c.Fields() {
		str = append(str, fmt.Sprintf("%-12s: %v", key, c.Get(key)))
	}
	return strings.Join(str, "\n")
}

func (c Config) SetString(key, val string) (Config, error) {
	s := reflect.ValueOf(&c).Elem()
	f := s.FieldByName(key)
	if !f.IsValid() {
		return c, fmt.Errorf("no such config field: %s", key)
	}
	var err error
	switch f.Type().Kind() {
	case reflect.Int, reflect.Int64:
		var x int64
		if x, err = strconv.ParseInt(val, 10, 64); err == nil {
			f.SetInt(x)
		}
	case reflect.Float64:
		var x float64
		if x, err = strconv.ParseFloat(val, 64); err == nil {
			f.SetFloat(x)
		}
	case reflect.Bool:
		var x bool
		if x, err = strconv.ParseBool(val); err == nil {
			f.SetBool(x)
		}
	case reflect.String:
		f.SetString(val)
	default:
		return c, fmt.Errorf("invalid type for SetString: %v", f.Type().Kind())
	}
	return c, err
}
