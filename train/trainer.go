package train

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/davidhoof/visiontrain/stats"
)

// window for the moving average of the validation accuracy
const emaN = 10

// Training statistics for one epoch
type Stats struct {
	Epoch     int
	Loss      float64
	TrainAcc  float64
	ValidAcc  float64
	AvgValid  float64
	BestSince int
	Elapsed   time.Duration
}

// Module is the model side surface of the training loop. TrainStep runs
// forward and backward over one batch and applies the update at the given
// learning rate; EvalStep runs forward only. Both return the summed batch
// loss and the number of correct predictions.
type Module interface {
	TrainStep(x []float32, y []int32, lr float64) (loss float64, correct int)
	EvalStep(x []float32, y []int32) (loss float64, correct int)
}

// Stateful is implemented by modules whose weights can be checkpointed.
type Stateful interface {
	State() interface{}
}

// Tester evaluates performance after each epoch, returns true if training
// should stop.
type Tester interface {
	Test(m Module, epoch int, loss, trainAcc float64, start time.Time) bool
}

// Tester which evaluates the validation set and updates the stats.
type TestBase struct {
	Valid     *Loader
	Stats     []Stats
	MaxEpoch  int
	StopAfter int
	AccMax    float64
	Metrics   *Metrics
	bestEpoch int
}

// Create a new base tester from the config.
func NewTestBase(valid *Loader, conf Config) *TestBase {
	return &TestBase{Valid: valid, MaxEpoch: conf.MaxEpoch, StopAfter: conf.StopAfter}
}

// Evaluate the module over the loader, returns mean loss and accuracy.
func Evaluate(m Module, l *Loader) (loss, accuracy float64) {
	acc := new(Accuracy)
	for batch := 0; batch < l.Batches; batch++ {
		x, y := l.Batch(batch)
		batchLoss, correct := m.EvalStep(x, y)
		loss += batchLoss
		acc.Add(correct, len(y))
	}
	return loss / float64(l.Samples), acc.Compute()
}

func (t *TestBase) Test(m Module, epoch int, loss, trainAcc float64, start time.Time) bool {
	s := Stats{Epoch: epoch, Loss: loss, TrainAcc: trainAcc, BestSince: -1}
	if t.Valid != nil {
		_, s.ValidAcc = Evaluate(m, t.Valid)
		avg := 0.0
		if epoch > 1 {
			avg = t.Stats[epoch-2].AvgValid
		}
		s.AvgValid = stats.EMA(avg).Add(s.ValidAcc, emaN)
		if s.AvgValid > t.AccMax {
			t.AccMax = s.AvgValid
			t.bestEpoch = epoch
		}
		s.BestSince = epoch - t.bestEpoch
	}
	s.Elapsed = time.Since(start)
	t.Stats = append(t.Stats, s)
	t.Metrics.Update(s)
	return epoch >= t.MaxEpoch || (t.StopAfter > 0 && s.BestSince >= t.StopAfter)
}

// Tester which additionally logs the stats for each epoch.
type TestLogger struct {
	*TestBase
	logEvery int
}

// Create a new tester which logs the stats for each epoch.
func NewTestLogger(valid *Loader, conf Config) *TestLogger {
	return &TestLogger{TestBase: NewTestBase(valid, conf), logEvery: conf.LogEvery}
}

func (t *TestLogger) Test(m Module, epoch int, loss, trainAcc float64, start time.Time) bool {
	done := t.TestBase.Test(m, epoch, loss, trainAcc, start)
	s := t.Stats[len(t.Stats)-1]
	if done || t.logEvery == 0 || epoch%t.logEvery == 0 {
		log.WithFields(log.Fields{
			"epoch":     s.Epoch,
			"loss":      fmt.Sprintf("%.4f", s.Loss),
			"acc/train": fmt.Sprintf("%.2f%%", s.TrainAcc*100),
			"acc/valid": fmt.Sprintf("%.2f%%", s.ValidAcc*100),
			"acc_max":   fmt.Sprintf("%.2f%%", t.AccMax*100),
		}).Info("epoch done")
	}
	if done {
		log.WithField("elapsed", s.Elapsed.Round(10*time.Millisecond)).Info("run complete")
	}
	return done
}

// Train the module on the training set until the tester reports done.
// The learning rate follows a warmup cosine schedule over the total steps.
func Train(m Module, train *Loader, conf Config, test Tester, callbacks ...Callback) error {
	sched := NewWarmupCosineLR(conf.Eta, conf.MaxEpoch*train.Batches)
	for _, cb := range callbacks {
		if err := cb.OnTrainStart(m); err != nil {
			return err
		}
	}
	start := time.Now()
	done := false
	for epoch := 1; epoch <= conf.MaxEpoch && !done; epoch++ {
		loss, trainAcc := TrainEpoch(m, train, sched, epoch, conf.DebugLevel)
		done = test.Test(m, epoch, loss, trainAcc, start)
		for _, cb := range callbacks {
			if err := cb.OnEpochEnd(m, latest(test)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Perform one training epoch, returns the mean loss and accuracy.
func TrainEpoch(m Module, l *Loader, sched WarmupCosineLR, epoch, debug int) (float64, float64) {
	l.Shuffle()
	acc := new(Accuracy)
	loss := 0.0
	for batch := 0; batch < l.Batches; batch++ {
		step := (epoch-1)*l.Batches + batch
		lr := sched.LR(step)
		x, y := l.Batch(batch)
		batchLoss, correct := m.TrainStep(x, y, lr)
		loss += batchLoss
		acc.Add(correct, len(y))
		if debug >= 2 || (debug == 1 && batch == 0) {
			fmt.Printf("== train batch %d: lr=%.6f loss=%.4f ==\n", batch, lr, batchLoss)
		}
	}
	return loss / float64(l.Samples), acc.Compute()
}

func latest(test Tester) Stats {
	type statser interface{ Latest() Stats }
	if t, ok := test.(statser); ok {
		return t.Latest()
	}
	return Stats{}
}

// Latest returns the stats for the most recent epoch.
func (t *TestBase) Latest() Stats {
	if len(t.Stats) == 0 {
		return Stats{}
	}
	return t.Stats[len(t.Stats)-1]
}

// Exit with a logged error if err is set.
func CheckErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
