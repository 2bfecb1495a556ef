// Package sweep generates hyperparameter sweep launchers and registers
// them with a tracking service. One launcher is written per dataset,
// model and checkpoint input combination.
package sweep

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Sweep configuration, read from a yaml file.
type Config struct {
	Tracking        Tracking               `yaml:"tracking"`
	Setup           Setup                  `yaml:"setup"`
	Hyperparameters map[string]interface{} `yaml:"hyperparameters"`
}

// Tracking service settings. ProjectFormat contains a {dataset}
// placeholder which is filled in per dataset.
type Tracking struct {
	ProjectFormat string `yaml:"project_format_string"`
	SweepDir      string `yaml:"sweep_dir"`
	Username      string `yaml:"username"`
	BaseURL       string `yaml:"base_url"`
}

// CheckpointInput selects pretrained weights to start each run from.
type CheckpointInput struct {
	DatasetTrainedOn string `yaml:"dataset_trained_on"`
	Version          int    `yaml:"version"`
}

type Setup struct {
	Datasets         []string               `yaml:"datasets"`
	Models           []string               `yaml:"models"`
	CheckpointInputs []CheckpointInput      `yaml:"checkpoint_inputs"`
	DataDir          string                 `yaml:"data_dir"`
	OutputDir        string                 `yaml:"output_dir"`
	Defaults         map[string]interface{} `yaml:"defaults"`
}

// Load the sweep config and check the required fields are present.
func LoadConfig(file string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(file)
	if err != nil {
		return c, errors.Wrap(err, "read sweep config")
	}
	if err = yaml.Unmarshal(raw, &c); err != nil {
		return c, errors.Wrap(err, "parse sweep config")
	}
	switch {
	case c.Tracking.ProjectFormat == "":
		err = errors.New("tracking.project_format_string is required")
	case c.Tracking.SweepDir == "":
		err = errors.New("tracking.sweep_dir is required")
	case len(c.Setup.Datasets) == 0:
		err = errors.New("setup.datasets is empty")
	case len(c.Setup.Models) == 0:
		err = errors.New("setup.models is empty")
	}
	return c, err
}

// ProjectName expands the project format string for one dataset.
func (t Tracking) ProjectName(dataset string) string {
	return strings.ReplaceAll(t.ProjectFormat, "{dataset}", dataset)
}
