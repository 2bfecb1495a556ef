// Command prepare downloads a dataset, converts each split to the
// internal gob format under the data directory and optionally reduces
// the training data to a stratified subset.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/davidhoof/visiontrain/data"
	"github.com/davidhoof/visiontrain/datasets"
	"github.com/davidhoof/visiontrain/img"
	"github.com/davidhoof/visiontrain/train"
)

func main() {
	var root string
	var subset int
	var seed int64
	var skipDownload, normalize bool
	flag.StringVar(&root, "root", data.DataDir, "directory for downloads and converted files")
	flag.IntVar(&subset, "subset", 100, "percentage of each split to keep")
	flag.Int64Var(&seed, "seed", 0, "subsampling random seed")
	flag.BoolVar(&skipDownload, "skip-download", false, "convert only, assume files are present")
	flag.BoolVar(&normalize, "normalize", false, "bake per channel normalization into the converted files")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("Usage: prepare [opts] <dataset>...")
		fmt.Println("datasets:", data.Names())
		os.Exit(1)
	}
	data.DataDir = root
	for _, name := range flag.Args() {
		train.CheckErr(prepare(name, root, subset, seed, skipDownload, normalize))
	}
}

func prepare(name, root string, subset int, seed int64, skipDownload, normalize bool) error {
	info, err := data.Get(name)
	if err != nil {
		return err
	}
	if !skipDownload {
		if err = datasets.Download(name, root); err != nil {
			return err
		}
	}
	load := info.Load
	if normalize {
		base := load
		load = func(root, split string) (data.Data, error) {
			d, err := base(root, split)
			if err != nil {
				return nil, err
			}
			if set, ok := d.(*img.Data); ok {
				return img.Apply(set, img.Normalize(info.Mean, info.Std), nil), nil
			}
			return d, nil
		}
	}
	if subset != 100 {
		if load, err = data.Minimized(load, subset, seed); err != nil {
			return err
		}
	}
	for _, split := range data.DataSets {
		d, err := load(root, split)
		if err != nil {
			log.WithFields(log.Fields{"dataset": name, "split": split}).WithError(err).Warn("split skipped")
			continue
		}
		file := name + "_" + split
		if err = data.SaveFile(data.Flatten(d), file); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"file": file + ".dat", "samples": d.Len(), "shape": d.Shape(),
		}).Info("converted split")
	}
	return nil
}
