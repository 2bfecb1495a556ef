// Package web serves a live monitor for a training run: an html status
// page with loss and accuracy charts, a json stats feed, a websocket
// push of per epoch stats and prometheus metrics.
package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"sync"

	"github.com/goji/httpauth"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/davidhoof/visiontrain/train"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Monitor collects the stats for one training run and serves them.
type Monitor struct {
	sync.Mutex
	Title    string
	MaxEpoch int
	stats    []train.Stats
	conns    []*websocket.Conn
	registry *prometheus.Registry
	metrics  *train.Metrics
}

func NewMonitor(title string, maxEpoch int) *Monitor {
	m := &Monitor{Title: title, MaxEpoch: maxEpoch, registry: prometheus.NewRegistry()}
	m.metrics = train.NewMetrics(m.registry)
	return m
}

// Metrics returns the gauges updated on each epoch, for wiring into the
// tester.
func (m *Monitor) Metrics() *train.Metrics {
	return m.metrics
}

// Update records the stats for one epoch and pushes them to any
// connected websocket clients.
func (m *Monitor) Update(s train.Stats) {
	m.Lock()
	defer m.Unlock()
	m.stats = append(m.stats, s)
	m.metrics.Update(s)
	msg, err := json.Marshal(s)
	if err != nil {
		return
	}
	conns := m.conns[:0]
	for _, conn := range m.conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			continue
		}
		conns = append(conns, conn)
	}
	m.conns = conns
}

// Stats returns a copy of the recorded epoch stats.
func (m *Monitor) Stats() []train.Stats {
	m.Lock()
	defer m.Unlock()
	return append([]train.Stats{}, m.stats...)
}

// Handler builds the router. When user and password are both set all
// routes sit behind basic auth.
func (m *Monitor) Handler(user, password string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", m.index)
	r.HandleFunc("/stats", m.statsJSON)
	r.HandleFunc("/ws", m.websocket)
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	if user != "" && password != "" {
		return httpauth.SimpleBasicAuth(user, password)(r)
	}
	return r
}

func (m *Monitor) index(w http.ResponseWriter, r *http.Request) {
	m.Lock()
	defer m.Unlock()
	page := indexData{Title: m.Title, MaxEpoch: m.MaxEpoch}
	if n := len(m.stats); n > 0 {
		page.Latest = m.stats[n-1]
		page.HaveStats = true
		page.LossPlot = lossPlot(m.stats, 560, 320)
		page.AccPlot = accuracyPlot(m.stats, 560, 320)
	}
	if err := indexTmpl.Execute(w, page); err != nil {
		logError(w, err)
	}
}

func (m *Monitor) statsJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.Stats()); err != nil {
		logError(w, err)
	}
}

func (m *Monitor) websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logError(w, err)
		return
	}
	m.Lock()
	m.conns = append(m.conns, conn)
	m.Unlock()
}

func logError(w http.ResponseWriter, err error) {
	log.WithError(err).Error("http handler")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

type indexData struct {
	Title     string
	MaxEpoch  int
	HaveStats bool
	Latest    train.Stats
	LossPlot  template.HTML
	AccPlot   template.HTML
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .HaveStats}}
<p>epoch <span id="epoch">{{.Latest.Epoch}}</span> of {{.MaxEpoch}}
 | loss {{printf "%.4f" .Latest.Loss}}
 | train {{printf "%.2f%%" (pct .Latest.TrainAcc)}}
 | valid {{printf "%.2f%%" (pct .Latest.ValidAcc)}}</p>
{{.LossPlot}}
{{.AccPlot}}
{{else}}
<p>waiting for the first epoch</p>
{{end}}
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"pct": func(v float64) float64 { return v * 100 },
}).Parse(indexHTML))
