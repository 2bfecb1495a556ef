package datasets

import (
	"bufio"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/img"
)

// tinyPaths indexes the tiny-imagenet-200 directory layout: wnids.txt lists
// the 200 class ids, per class train images sit under train/<wnid>/images
// and validation labels come from val/val_annotations.txt.
type tinyPaths struct {
	ids    []string
	index  map[string]int32
	files  []string
	labels []int32
}

func newTinyPaths(dir, split string) (*tinyPaths, error) {
	t := &tinyPaths{index: map[string]int32{}}
	ids, err := readLines(path.Join(dir, "wnids.txt"))
	if err != nil {
		return nil, err
	}
	t.ids = ids
	for i, id := range ids {
		t.index[id] = int32(i)
	}
	if split == "train" {
		err = t.addTrain(dir)
	} else {
		err = t.addVal(dir)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tinyPaths) addTrain(dir string) error {
	for _, id := range t.ids {
		boxes := path.Join(dir, "train", id, id+"_boxes.txt")
		f, err := os.Open(boxes)
		if err != nil {
			return err
		}
		s := bufio.NewScanner(f)
		for s.Scan() {
			fields := strings.Fields(s.Text())
			if len(fields) < 1 {
				continue
			}
			t.files = append(t.files, path.Join(dir, "train", id, "images", fields[0]))
			t.labels = append(t.labels, t.index[id])
		}
		err = s.Err()
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tinyPaths) addVal(dir string) error {
	f, err := os.Open(path.Join(dir, "val", "val_annotations.txt"))
	if err != nil {
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 2 {
			continue
		}
		label, ok := t.index[fields[1]]
		if !ok {
			return errors.Errorf("val_annotations.txt: unknown class id %s", fields[1])
		}
		t.files = append(t.files, path.Join(dir, "val", "images", fields[0]))
		t.labels = append(t.labels, label)
	}
	return s.Err()
}

// LoadTinyImageNet reads the 200 class 64x64 tiny imagenet dataset.
func LoadTinyImageNet(root, split string) (data.Data, error) {
	t, err := newTinyPaths(path.Join(root, "tiny-imagenet-200"), split)
	if err != nil {
		return nil, err
	}
	images, err := decodeAll(t.files, 3)
	if err != nil {
		return nil, err
	}
	return img.NewData(t.ids, t.labels, images), nil
}
