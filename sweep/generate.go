package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// launcher script run by each sweep agent
var launcherTmpl = template.Must(template.New("launcher").Parse(
	`#!/bin/sh
# {{.SweepName}}: train {{.Model}} on {{.Dataset}} from {{.Checkpoint}}
exec visiontrain-train \
	-DataSet {{.Dataset}} \
	-Classifier {{.Model}} \
	-data {{.DataDir}} \
	-OutputDir {{.OutputDir}} \
	-checkpoint {{.Checkpoint}} \
{{- range $key, $val := .Defaults}}
	-{{$key}} {{$val}} \
{{- end}}
	"$@"
`))

// Entry describes one generated launcher.
type Entry struct {
	Project    string
	SweepName  string
	Dataset    string
	Model      string
	Checkpoint string
	Program    string
	DataDir    string
	OutputDir  string
	Defaults   map[string]interface{}
}

// Generate writes a launcher script for every dataset, model and
// checkpoint input combination under sweepDir/project/model and returns
// the entries in generation order.
func Generate(conf Config) ([]Entry, error) {
	for _, dir := range []string{conf.Setup.DataDir, conf.Setup.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "create dir")
		}
	}
	var entries []Entry
	for _, dataset := range conf.Setup.Datasets {
		project := conf.Tracking.ProjectName(dataset)
		for _, model := range conf.Setup.Models {
			saveDir := filepath.Join(conf.Tracking.SweepDir, project, model)
			if err := os.MkdirAll(saveDir, 0755); err != nil {
				return nil, errors.Wrap(err, "create sweep dir")
			}
			for _, ckpt := range conf.Setup.CheckpointInputs {
				e, err := generateOne(conf, dataset, project, model, ckpt, saveDir)
				if err != nil {
					return nil, err
				}
				entries = append(entries, e)
			}
		}
	}
	log.WithField("count", len(entries)).Info("generated sweep launchers")
	return entries, nil
}

func generateOne(conf Config, dataset, project, model string, ckpt CheckpointInput, saveDir string) (Entry, error) {
	e := Entry{
		Project:   project,
		SweepName: model + ckpt.DatasetTrainedOn,
		Dataset:   dataset,
		Model:     model,
		Defaults:  conf.Setup.Defaults,
	}
	var err error
	if e.Checkpoint, err = resolveCheckpoint(conf.Setup.OutputDir, model, ckpt); err != nil {
		return e, err
	}
	if e.DataDir, err = filepath.Abs(conf.Setup.DataDir); err != nil {
		return e, err
	}
	if e.OutputDir, err = filepath.Abs(conf.Setup.OutputDir); err != nil {
		return e, err
	}
	program := filepath.Join(saveDir, e.SweepName+".sh")
	f, err := os.Create(program)
	if err != nil {
		return e, errors.Wrap(err, "create launcher")
	}
	defer f.Close()
	if err = launcherTmpl.Execute(f, e); err != nil {
		return e, errors.Wrapf(err, "render launcher %s", e.SweepName)
	}
	if err = f.Chmod(0755); err != nil {
		return e, err
	}
	if e.Program, err = filepath.Abs(program); err != nil {
		return e, err
	}
	return e, nil
}

// resolveCheckpoint finds the saved weights for a previous run, picking
// the first match of outputDir/<trained on>/<model>/version_<n>/checkpoints.
func resolveCheckpoint(outputDir, model string, ckpt CheckpointInput) (string, error) {
	pattern := filepath.Join(outputDir, ckpt.DatasetTrainedOn, model,
		fmt.Sprintf("version_%d", ckpt.Version), "checkpoints", "*.ckpt")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", errors.Wrap(err, "checkpoint glob")
	}
	if len(matches) == 0 {
		return "", errors.Errorf("no checkpoint matches %s", pattern)
	}
	sort.Strings(matches)
	return filepath.Abs(matches[0])
}
