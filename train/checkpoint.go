package train

import (
	"encoding/gob"
	"os"
	"path"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Callback hooks into the training loop.
type Callback interface {
	OnTrainStart(m Module) error
	OnEpochEnd(m Module, s Stats) error
}

// Checkpointer saves model weights under Dir. The initial weights are
// written once before training starts, the best weights are rewritten
// whenever the validation accuracy improves.
type Checkpointer struct {
	Dir       string
	SaveFirst bool
	best      float64
}

func NewCheckpointer(dir string, saveFirst bool) *Checkpointer {
	return &Checkpointer{Dir: dir, SaveFirst: saveFirst, best: -1}
}

func (c *Checkpointer) OnTrainStart(m Module) error {
	if !c.SaveFirst {
		return nil
	}
	return c.save(m, "first")
}

func (c *Checkpointer) OnEpochEnd(m Module, s Stats) error {
	if s.ValidAcc <= c.best {
		return nil
	}
	c.best = s.ValidAcc
	if err := c.save(m, "best"); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"epoch": s.Epoch, "acc/valid": s.ValidAcc,
	}).Debug("saved best checkpoint")
	return nil
}

func (c *Checkpointer) save(m Module, name string) error {
	st, ok := m.(Stateful)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return errors.Wrap(err, "checkpoint dir")
	}
	file := path.Join(c.Dir, name+".ckpt")
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrap(err, "create checkpoint")
	}
	defer f.Close()
	if err = gob.NewEncoder(f).Encode(st.State()); err != nil {
		return errors.Wrapf(err, "encode checkpoint %s", name)
	}
	return nil
}

// Restore decodes a saved checkpoint into state.
func Restore(file string, state interface{}) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "open checkpoint")
	}
	defer f.Close()
	return errors.Wrap(gob.NewDecoder(f).Decode(state), "decode checkpoint")
}
