package datasets

import (
	"encoding/binary"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/img"
)

const (
	imageMagic = 2051
	labelMagic = 2049
)

type labelHeader struct{ Magic, Num uint32 }

type imageHeader struct{ Magic, Num, Rows, Cols uint32 }

// LoadIDX reads an MNIST style dataset split from idx format files under
// dir. The test and valid splits share the t10k files.
func LoadIDX(dir string, classes []string) data.LoadFunc {
	return func(root, split string) (data.Data, error) {
		prefix := "train"
		if split != "train" {
			prefix = "t10k"
		}
		labels, err := readLabels(path.Join(root, dir, prefix+"-labels-idx1-ubyte"))
		if err != nil {
			return nil, err
		}
		images, err := readImages(path.Join(root, dir, prefix+"-images-idx3-ubyte"))
		if err != nil {
			return nil, err
		}
		if len(labels) != len(images) {
			return nil, errors.Errorf("%s: have %d labels for %d images", dir, len(labels), len(images))
		}
		return img.NewData(classes, labels, images), nil
	}
}

func readImages(name string) ([]*img.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var head imageHeader
	if err = binary.Read(f, binary.BigEndian, &head); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if head.Magic != imageMagic {
		return nil, errors.Errorf("%s: bad magic number %d", name, head.Magic)
	}
	n, h, w := int(head.Num), int(head.Rows), int(head.Cols)
	images := make([]*img.Image, n)
	pixels := make([]uint8, w*h)
	for i := range images {
		if _, err = io.ReadFull(f, pixels); err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		m := img.NewImage(w, h, 1)
		for j, pix := range pixels {
			m.Pix[j] = float32(pix) / 255
		}
		images[i] = m
	}
	return images, nil
}

func readLabels(name string) ([]int32, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var head labelHeader
	if err = binary.Read(f, binary.BigEndian, &head); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if head.Magic != labelMagic {
		return nil, errors.Errorf("%s: bad magic number %d", name, head.Magic)
	}
	bytes := make([]byte, head.Num)
	if _, err = io.ReadFull(f, bytes); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	labels := make([]int32, head.Num)
	for i, label := range bytes {
		labels[i] = int32(label)
	}
	return labels, nil
}
