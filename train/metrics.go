package train

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Accuracy accumulates the fraction of correct predictions over an epoch.
type Accuracy struct {
	correct int
	total   int
}

func (a *Accuracy) Add(correct, total int) {
	a.correct += correct
	a.total += total
}

// Compute returns the accuracy so far, 0 if nothing was accumulated.
func (a *Accuracy) Compute() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

func (a *Accuracy) Reset() {
	a.correct, a.total = 0, 0
}

// Metrics exports the training state of the current run.
type Metrics struct {
	TrainLoss prometheus.Gauge
	TrainAcc  prometheus.Gauge
	ValidAcc  prometheus.Gauge
	Epochs    prometheus.Counter
}

// NewMetrics registers the run gauges with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TrainLoss: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "visiontrain_loss_train",
			Help: "Mean training loss for the last completed epoch",
		}),
		TrainAcc: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "visiontrain_accuracy_train",
			Help: "Training accuracy for the last completed epoch",
		}),
		ValidAcc: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "visiontrain_accuracy_valid",
			Help: "Validation accuracy for the last completed epoch",
		}),
		Epochs: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "visiontrain_epochs_total",
			Help: "Completed training epochs",
		}),
	}
}

// Update publishes the stats for one epoch.
func (m *Metrics) Update(s Stats) {
	if m == nil {
		return
	}
	m.TrainLoss.Set(s.Loss)
	m.TrainAcc.Set(s.TrainAcc)
	m.ValidAcc.Set(s.ValidAcc)
	m.Epochs.Inc()
}
