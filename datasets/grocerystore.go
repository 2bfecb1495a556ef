package datasets

import (
	"bufio"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/img"
)

// LoadGroceryStore reads the grocery store dataset from its per split index
// files. Each line holds the image path, the fine grained class and the
// coarse class; the coarse class is the training label.
func LoadGroceryStore(root, split string) (data.Data, error) {
	name := "val.txt"
	switch split {
	case "train":
		name = "train.txt"
	case "test":
		name = "test.txt"
	}
	dir := path.Join(root, "dataset")
	f, err := os.Open(path.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var files []string
	var labels []int32
	maxLabel := int32(0)
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "Filename") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			return nil, errors.Errorf("%s: malformed line %q", name, line)
		}
		label, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: bad class in %q", name, line)
		}
		files = append(files, path.Join(dir, strings.TrimSpace(fields[0])))
		labels = append(labels, int32(label))
		if int32(label) > maxLabel {
			maxLabel = int32(label)
		}
	}
	if err = s.Err(); err != nil {
		return nil, err
	}
	images, err := decodeAll(files, 3)
	if err != nil {
		return nil, err
	}
	classes := make([]string, maxLabel+1)
	for i := range classes {
		classes[i] = strconv.Itoa(i)
	}
	return img.NewData(classes, labels, images), nil
}
