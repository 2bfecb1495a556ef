package datasets

import (
	"encoding/json"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/img"
)

// LoadImageNet1k reads an imagenet layout: imagenet_class_index.json maps
// class ids to [wnid, name] pairs and the split directory holds one
// subdirectory of images per wnid.
func LoadImageNet1k(root, split string) (data.Data, error) {
	if split == "test" || split == "valid" {
		split = "val"
	}
	f, err := os.Open(path.Join(root, "imagenet_class_index.json"))
	if err != nil {
		return nil, err
	}
	var index map[string][2]string
	err = json.NewDecoder(f).Decode(&index)
	f.Close()
	if err != nil {
		return nil, errors.Wrap(err, "decoding imagenet_class_index.json")
	}
	synToClass := map[string]int32{}
	classes := make([]string, len(index))
	for id, v := range index {
		class, err := strconv.Atoi(id)
		if err != nil {
			return nil, errors.Wrapf(err, "bad class id %q", id)
		}
		synToClass[v[0]] = int32(class)
		classes[class] = v[1]
	}
	samplesDir := path.Join(root, split)
	entries, err := os.ReadDir(samplesDir)
	if err != nil {
		return nil, err
	}
	var files []string
	var labels []int32
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		label, ok := synToClass[e.Name()]
		if !ok {
			return nil, errors.Errorf("unknown synset directory %s", e.Name())
		}
		names, err := os.ReadDir(path.Join(samplesDir, e.Name()))
		if err != nil {
			return nil, err
		}
		sorted := make([]string, 0, len(names))
		for _, n := range names {
			if !n.IsDir() {
				sorted = append(sorted, n.Name())
			}
		}
		sort.Strings(sorted)
		for _, n := range sorted {
			files = append(files, path.Join(samplesDir, e.Name(), n))
			labels = append(labels, label)
		}
	}
	images, err := decodeAll(files, 3)
	if err != nil {
		return nil, err
	}
	return img.NewData(classes, labels, images), nil
}
