package sweep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Client registers sweeps with the tracking service.
type Client struct {
	Tracking
	HTTP *http.Client
}

func NewClient(t Tracking) *Client {
	return &Client{Tracking: t, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

type sweepRequest struct {
	Project string                 `json:"project"`
	Config  map[string]interface{} `json:"config"`
}

type sweepResponse struct {
	ID string `json:"id"`
}

// CreateSweep posts the sweep definition and returns the sweep id. When
// no base url is configured or the service is unreachable a locally
// generated id is used so the launchers can still be written.
func (c *Client) CreateSweep(project string, def map[string]interface{}) (string, error) {
	if c.BaseURL == "" {
		return uuid.New().String(), nil
	}
	body, err := json.Marshal(sweepRequest{Project: project, Config: def})
	if err != nil {
		return "", errors.Wrap(err, "encode sweep")
	}
	resp, err := c.HTTP.Post(c.BaseURL+"/api/sweeps", "application/json", bytes.NewReader(body))
	if err != nil {
		id := uuid.New().String()
		log.WithError(err).WithField("id", id).Warn("tracking service unreachable, using local sweep id")
		return id, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.Errorf("create sweep: status %s", resp.Status)
	}
	var r sweepResponse
	if err = json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", errors.Wrap(err, "decode sweep response")
	}
	return r.ID, nil
}

// Launch generates the launchers, registers each sweep and appends the
// agent commands to a timestamped file per project.
func Launch(conf Config) error {
	entries, err := Generate(conf)
	if err != nil {
		return err
	}
	client := NewClient(conf.Tracking)
	stamp := time.Now().Format("02_01_2006_15")
	for _, e := range entries {
		def := map[string]interface{}{}
		for key, val := range conf.Hyperparameters {
			def[key] = val
		}
		def["name"] = e.SweepName
		def["program"] = e.Program
		id, err := client.CreateSweep(e.Project, def)
		if err != nil {
			return err
		}
		cmd := fmt.Sprintf("agent %s/%s/%s %s\n", conf.Tracking.Username, e.Project, id, e.Model)
		file := filepath.Join(conf.Tracking.SweepDir, e.Project, "sweep_agent_commands"+stamp+".txt")
		if err = appendLine(file, cmd); err != nil {
			return err
		}
		log.WithFields(log.Fields{"sweep": e.SweepName, "id": id}).Info("registered sweep")
	}
	return nil
}

func appendLine(file, line string) error {
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "agent commands file")
	}
	defer f.Close()
	_, err = f.WriteString(line)
	return err
}
