package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/davidhoof/visiontrain/train"
)

func TestIndexEmpty(t *testing.T) {
	m := NewMonitor("mnist linear", 10)
	srv := httptest.NewServer(m.Handler("", ""))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expect 200 got %s", resp.Status)
	}
}

func TestStatsJSON(t *testing.T) {
	m := NewMonitor("run", 10)
	m.Update(train.Stats{Epoch: 1, Loss: 0.9, TrainAcc: 0.4, ValidAcc: 0.5})
	m.Update(train.Stats{Epoch: 2, Loss: 0.7, TrainAcc: 0.6, ValidAcc: 0.62})
	srv := httptest.NewServer(m.Handler("", ""))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats []train.Stats
	if err = json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 || stats[1].Epoch != 2 || stats[1].ValidAcc != 0.62 {
		t.Errorf("bad stats: %+v", stats)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMonitor("run", 10)
	m.Update(train.Stats{Epoch: 1, Loss: 0.5, TrainAcc: 0.7, ValidAcc: 0.8})
	srv := httptest.NewServer(m.Handler("", ""))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	for _, want := range []string{"visiontrain_loss_train 0.5", "visiontrain_accuracy_valid 0.8", "visiontrain_epochs_total 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestBasicAuth(t *testing.T) {
	m := NewMonitor("run", 10)
	srv := httptest.NewServer(m.Handler("admin", "secret"))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expect 401 without credentials, got %s", resp.Status)
	}
	req, _ := http.NewRequest("GET", srv.URL+"/stats", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expect 200 with credentials, got %s", resp.Status)
	}
}

func TestWebsocketPush(t *testing.T) {
	m := NewMonitor("run", 10)
	srv := httptest.NewServer(m.Handler("", ""))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	for i := 0; i < 100; i++ {
		m.Lock()
		n := len(m.conns)
		m.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	m.Update(train.Stats{Epoch: 3, Loss: 0.3})
	var s train.Stats
	if err = conn.ReadJSON(&s); err != nil {
		t.Fatal(err)
	}
	if s.Epoch != 3 || s.Loss != 0.3 {
		t.Errorf("bad pushed stats: %+v", s)
	}
}
