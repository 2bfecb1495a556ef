package datasets

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/img"
)

// share of a folder dataset held out as the validation split
const validSize = 0.15

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// LoadFolder reads a directory tree where each subdirectory of dir is one
// class containing image files. filter may be nil to accept every file.
// Images are decoded on a worker pool sized to the CPU count.
func LoadFolder(dir string, channels int, filter func(name string) bool) (*img.Data, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	classes := []string{}
	for _, e := range entries {
		if e.IsDir() {
			classes = append(classes, e.Name())
		}
	}
	sort.Strings(classes)
	if len(classes) == 0 {
		return nil, errors.Errorf("no class directories under %s", dir)
	}
	var files []string
	var labels []int32
	for ci, class := range classes {
		err := filepath.WalkDir(path.Join(dir, class), func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if !imageExts[strings.ToLower(filepath.Ext(p))] {
				return nil
			}
			if filter != nil && !filter(filepath.Base(p)) {
				return nil
			}
			files = append(files, p)
			labels = append(labels, int32(ci))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	images, err := decodeAll(files, channels)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"dir": dir, "images": len(images), "classes": len(classes)}).Info("loaded image folder")
	return img.NewData(classes, labels, images), nil
}

func decodeAll(files []string, channels int) ([]*img.Image, error) {
	images := make([]*img.Image, len(files))
	wp := workerpool.New(runtime.NumCPU())
	var mu sync.Mutex
	var firstErr error
	for i, file := range files {
		i, file := i, file
		wp.Submit(func() {
			m, err := decodeImage(file, channels)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			images[i] = m
		})
	}
	wp.StopWait()
	if firstErr != nil {
		return nil, firstErr
	}
	return images, nil
}

func decodeImage(file string, channels int) (*img.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file)
	}
	return img.FromImage(m, channels), nil
}

// folderSplits turns a single folder dataset into train and valid views by
// holding out the leading validSize share of the items.
func folderSplits(d *img.Data, split string) data.Data {
	cut := int(validSize * float64(d.Len()))
	if split == "train" {
		return d.Slice(cut, d.Len())
	}
	return d.Slice(0, cut)
}

// LoadCINIC10 builds a loader for the given partition of CINIC-10: "all",
// "imagenet" (items not sourced from cifar) or "cifar10".
func LoadCINIC10(part string) data.LoadFunc {
	return func(root, split string) (data.Data, error) {
		// the archive ships train, valid and test directories
		dir := split
		var filter func(string) bool
		switch part {
		case "imagenet":
			filter = func(name string) bool { return !strings.HasPrefix(name, "cifar10-") }
		case "cifar10":
			filter = func(name string) bool { return strings.HasPrefix(name, "cifar10-") }
		}
		return LoadFolder(path.Join(root, dir), 3, filter)
	}
}

// LoadHistAerial builds a loader for one of the HistAerial patch sizes:
// 25x25, 50x50 or 100x100.
func LoadHistAerial(patchSize string) data.LoadFunc {
	return func(root, split string) (data.Data, error) {
		d, err := LoadFolder(path.Join(root, patchSize+"_overlap_0percent"), 3, nil)
		if err != nil {
			return nil, err
		}
		return folderSplits(d, split), nil
	}
}

// LoadFractalDB60 reads the 60 category FractalDB rendering.
func LoadFractalDB60(root, split string) (data.Data, error) {
	d, err := LoadFolder(path.Join(root, "fractaldb_cat60_ins1000"), 3, nil)
	if err != nil {
		return nil, err
	}
	return folderSplits(d, split), nil
}

// LoadSUN397 reads the SUN397 scenes. Class directories are nested one
// letter deep, so classes are resolved from ClassName.txt when present.
func LoadSUN397(root, split string) (data.Data, error) {
	dir := path.Join(root, "SUN397")
	names, err := readLines(path.Join(dir, "ClassName.txt"))
	if err != nil {
		return nil, err
	}
	var files []string
	var labels []int32
	classes := make([]string, len(names))
	for ci, name := range names {
		classes[ci] = strings.TrimPrefix(name, "/")
		err := filepath.WalkDir(path.Join(dir, filepath.FromSlash(classes[ci])), func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if imageExts[strings.ToLower(filepath.Ext(p))] {
				files = append(files, p)
				labels = append(labels, int32(ci))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	images, err := decodeAll(files, 3)
	if err != nil {
		return nil, err
	}
	return folderSplits(img.NewData(classes, labels, images), split), nil
}

// LoadSVHN reads street view house numbers from an extracted train/test
// folder layout with one directory per digit. Parsing the upstream matlab
// containers is out of scope.
func LoadSVHN(root, split string) (data.Data, error) {
	dir := "train"
	if split != "train" {
		dir = "test"
	}
	return LoadFolder(path.Join(root, dir), 3, nil)
}
