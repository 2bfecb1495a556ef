package train

import (
	"math/rand"

	"github.com/davidhoof/visiontrain/data"
)

// Loader batches a data set for the training loop. Batches are read through
// a shared buffer, so a batch is only valid until the next call.
type Loader struct {
	data.Data
	Samples   int
	BatchSize int
	Batches   int
	index     []int
	xBuffer   []float32
	yBuffer   []int32
	rng       *rand.Rand
}

// Create a new Loader, allocate the batch buffers and set the batch size.
func NewLoader(d data.Data, batchSize int, rng *rand.Rand) *Loader {
	l := &Loader{Data: d, Samples: d.Len(), rng: rng}
	if batchSize <= 0 || batchSize > l.Samples {
		l.BatchSize = l.Samples
	} else {
		l.BatchSize = batchSize
	}
	l.Batches = l.Samples / l.BatchSize
	if l.Samples%l.BatchSize != 0 {
		l.Batches++
	}
	nfeat := data.Prod(d.Shape())
	l.xBuffer = make([]float32, nfeat*l.BatchSize)
	l.yBuffer = make([]int32, l.BatchSize)
	l.index = make([]int, l.Samples)
	for i := range l.index {
		l.index[i] = i
	}
	return l
}

// Shuffle the batch order for the next epoch.
func (l *Loader) Shuffle() {
	l.index = l.rng.Perm(l.Samples)
}

// Batch returns the inputs and labels for the given batch number.
func (l *Loader) Batch(batch int) ([]float32, []int32) {
	start := batch * l.BatchSize
	end := start + l.BatchSize
	if end > l.Samples {
		end = l.Samples
	}
	index := l.index[start:end]
	l.Input(index, l.xBuffer)
	labels := l.Labels()
	for i, ix := range index {
		l.yBuffer[i] = labels[ix]
	}
	nfeat := data.Prod(l.Shape())
	return l.xBuffer[:len(index)*nfeat], l.yBuffer[:len(index)]
}
