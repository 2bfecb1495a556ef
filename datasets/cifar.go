package datasets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/img"
)

const (
	cifarWidth  = 32
	cifarHeight = 32
	cifarSize   = cifarWidth * cifarHeight
)

// LoadCIFAR10 reads the binary batch files from the cifar-10-batches-bin
// directory under root.
func LoadCIFAR10(root, split string) (data.Data, error) {
	dir := path.Join(root, "cifar-10-batches-bin")
	classes, err := readLines(path.Join(dir, "batches.meta.txt"))
	if err != nil {
		return nil, err
	}
	if split == "train" {
		d, err := loadCifarBatch(path.Join(dir, "data_batch_1.bin"), classes, 1)
		if err != nil {
			return nil, err
		}
		for i := 2; i <= 5; i++ {
			b, err := loadCifarBatch(path.Join(dir, fmt.Sprintf("data_batch_%d.bin", i)), classes, 1)
			if err != nil {
				return nil, err
			}
			d.Label = append(d.Label, b.Label...)
			d.Images = append(d.Images, b.Images...)
		}
		return d, nil
	}
	return loadCifarBatch(path.Join(dir, "test_batch.bin"), classes, 1)
}

// LoadCIFAR100 reads train.bin and test.bin from the cifar-100-binary
// directory under root, keeping the fine grained labels.
func LoadCIFAR100(root, split string) (data.Data, error) {
	dir := path.Join(root, "cifar-100-binary")
	classes, err := readLines(path.Join(dir, "fine_label_names.txt"))
	if err != nil {
		return nil, err
	}
	name := "train.bin"
	if split != "train" {
		name = "test.bin"
	}
	// each record carries a coarse then a fine label byte
	return loadCifarBatch(path.Join(dir, name), classes, 2)
}

// load a batch of cifar images and labels in binary format, labelBytes is
// the number of label bytes per record with the last one kept
func loadCifarBatch(name string, classes []string, labelBytes int) (*img.Data, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recordBytes := cifarSize*3 + labelBytes
	labels := make([]int32, 0, 10000)
	images := make([]*img.Image, 0, 10000)
	bytes := make([]uint8, recordBytes)
	for {
		_, err := io.ReadFull(f, bytes)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		labels = append(labels, int32(bytes[labelBytes-1]))
		m := img.NewImage(cifarWidth, cifarHeight, 3)
		for ch := 0; ch < 3; ch++ {
			plane := m.Pixels(ch)
			for j := 0; j < cifarSize; j++ {
				plane[j] = float32(bytes[labelBytes+ch*cifarSize+j]) / 255
			}
		}
		images = append(images, m)
	}
	return img.NewData(classes, labels, images), nil
}

// load class descriptions from file
func readLines(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	lines := []string{}
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, s.Err()
}
