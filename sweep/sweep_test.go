package sweep

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `
tracking:
  project_format_string: pretrained-{dataset}
  sweep_dir: %SWEEP%
  username: tester
setup:
  datasets: [cifar10, mnist]
  models: [linear]
  checkpoint_inputs:
    - dataset_trained_on: fractaldb60
      version: 0
  data_dir: %DATA%
  output_dir: %OUT%
  defaults:
    MaxEpoch: 100
hyperparameters:
  method: bayes
  metric:
    name: valid_acc
    goal: maximize
`

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := strings.NewReplacer(
		"%SWEEP%", filepath.Join(dir, "sweeps"),
		"%DATA%", filepath.Join(dir, "data"),
		"%OUT%", filepath.Join(dir, "output"),
	).Replace(testConfig)
	file := filepath.Join(dir, "sweep.yml")
	if err := os.WriteFile(file, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	// the checkpoint the inputs refer to
	ckptDir := filepath.Join(dir, "output", "fractaldb60", "linear", "version_0", "checkpoints")
	if err := os.MkdirAll(ckptDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ckptDir, "best.ckpt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := writeTestConfig(t, dir)
	conf, err := LoadConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if got := conf.Tracking.ProjectName("cifar10"); got != "pretrained-cifar10" {
		t.Errorf("expect pretrained-cifar10 got %s", got)
	}
	if len(conf.Setup.CheckpointInputs) != 1 || conf.Setup.CheckpointInputs[0].DatasetTrainedOn != "fractaldb60" {
		t.Errorf("bad checkpoint inputs: %+v", conf.Setup.CheckpointInputs)
	}
	if conf.Hyperparameters["method"] != "bayes" {
		t.Errorf("bad hyperparameters: %+v", conf.Hyperparameters)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(file, []byte("tracking:\n  sweep_dir: /tmp\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(file); err == nil {
		t.Error("expect validation error")
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	conf, err := LoadConfig(writeTestConfig(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := Generate(conf)
	if err != nil {
		t.Fatal(err)
	}
	// 2 datasets x 1 model x 1 checkpoint
	if len(entries) != 2 {
		t.Fatalf("expect 2 entries got %d", len(entries))
	}
	e := entries[0]
	if e.SweepName != "linearfractaldb60" {
		t.Errorf("expect sweep name linearfractaldb60 got %s", e.SweepName)
	}
	if !strings.HasSuffix(e.Checkpoint, "best.ckpt") {
		t.Errorf("unresolved checkpoint: %s", e.Checkpoint)
	}
	raw, err := os.ReadFile(e.Program)
	if err != nil {
		t.Fatal(err)
	}
	script := string(raw)
	for _, want := range []string{"-DataSet cifar10", "-Classifier linear", "-MaxEpoch 100", "best.ckpt"} {
		if !strings.Contains(script, want) {
			t.Errorf("launcher missing %q:\n%s", want, script)
		}
	}
}

func TestGenerateNoCheckpoint(t *testing.T) {
	dir := t.TempDir()
	conf, err := LoadConfig(writeTestConfig(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	conf.Setup.CheckpointInputs[0].Version = 99
	if _, err = Generate(conf); err == nil {
		t.Error("expect error for missing checkpoint")
	}
}

func TestLaunch(t *testing.T) {
	var posted sweepRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sweeps" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(sweepResponse{ID: "sweep123"})
	}))
	defer srv.Close()

	dir := t.TempDir()
	conf, err := LoadConfig(writeTestConfig(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	conf.Tracking.BaseURL = srv.URL
	if err = Launch(conf); err != nil {
		t.Fatal(err)
	}
	if posted.Project != "pretrained-mnist" {
		t.Errorf("last posted project %s", posted.Project)
	}
	if posted.Config["name"] != "linearmnist" && posted.Config["name"] != "linearfractaldb60" {
		t.Errorf("posted config name %v", posted.Config["name"])
	}
	files, err := filepath.Glob(filepath.Join(dir, "sweeps", "pretrained-cifar10", "sweep_agent_commands*.txt"))
	if err != nil || len(files) != 1 {
		t.Fatalf("agent commands file: %v %v", files, err)
	}
	raw, _ := os.ReadFile(files[0])
	if !strings.Contains(string(raw), "agent tester/pretrained-cifar10/sweep123 linear") {
		t.Errorf("bad agent command: %s", raw)
	}
}

func TestCreateSweepOffline(t *testing.T) {
	c := NewClient(Tracking{BaseURL: "http://127.0.0.1:1", Username: "tester"})
	id, err := c.CreateSweep("p", map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 36 {
		t.Errorf("expect uuid fallback, got %q", id)
	}
}
