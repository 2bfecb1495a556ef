// Command train runs one training job: it loads the configured dataset,
// optionally reduced to a stratified subset, builds the classifier and
// drives the epoch loop. A live monitor can be served over http.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/davidhoof/visiontrain/data"
	_ "github.com/davidhoof/visiontrain/datasets"
	"github.com/davidhoof/visiontrain/models"
	"github.com/davidhoof/visiontrain/train"
	"github.com/davidhoof/visiontrain/web"
)

func main() {
	conf := train.DefaultConfig()
	var confFile, dataRoot, checkpoint, addr, user, pass string
	flag.StringVar(&confFile, "config", "", "json config file to load")
	flag.StringVar(&dataRoot, "data", data.DataDir, "dataset root directory")
	flag.StringVar(&checkpoint, "checkpoint", "", "restore weights from this file")
	flag.StringVar(&addr, "addr", "", "serve the run monitor on this address")
	flag.StringVar(&user, "user", "", "monitor basic auth user")
	flag.StringVar(&pass, "pass", "", "monitor basic auth password")

	// override config settings from command line
	flag.StringVar(&conf.DataSet, "DataSet", conf.DataSet, "dataset name")
	flag.StringVar(&conf.Classifier, "Classifier", conf.Classifier, "model name")
	flag.Float64Var(&conf.Eta, "eta", conf.Eta, "learning rate")
	flag.Float64Var(&conf.WeightDecay, "decay", conf.WeightDecay, "weight decay parameter")
	flag.Float64Var(&conf.Momentum, "momentum", conf.Momentum, "sgd momentum")
	flag.BoolVar(&conf.Nesterov, "nesterov", conf.Nesterov, "nesterov momentum")
	flag.IntVar(&conf.MaxEpoch, "epochs", conf.MaxEpoch, "max epochs")
	flag.IntVar(&conf.BatchSize, "batch", conf.BatchSize, "train batch size")
	flag.IntVar(&conf.SubsetPct, "subset", conf.SubsetPct, "stratified subset percentage")
	flag.Int64Var(&conf.RandSeed, "seed", conf.RandSeed, "random number seed")
	flag.IntVar(&conf.StopAfter, "stop", conf.StopAfter, "stop when not improving for this many epochs")
	flag.IntVar(&conf.DebugLevel, "debug", conf.DebugLevel, "debug logging level")
	flag.StringVar(&conf.OutputDir, "out", conf.OutputDir, "run output directory")
	flag.Parse()

	if confFile != "" {
		base, err := train.LoadConfig(confFile)
		train.CheckErr(err)
		conf = override(base, conf)
	}
	if conf.DataSet == "" {
		fmt.Println("Usage: train [opts] -DataSet <name>")
		fmt.Println("datasets:", data.Names())
		os.Exit(1)
	}
	fmt.Println(conf)
	run(conf, dataRoot, checkpoint, addr, user, pass)
}

func run(conf train.Config, dataRoot, checkpoint, addr, user, pass string) {
	info, err := data.Get(conf.DataSet)
	train.CheckErr(err)
	// prepared gob files take precedence over the raw dataset files
	load := func(root, split string) (data.Data, error) {
		file := conf.DataSet + "_" + split
		if data.FileExists(file + ".dat") {
			return data.LoadFile(file)
		}
		return info.Load(root, split)
	}
	if conf.SubsetPct != 100 {
		load, err = data.Minimized(load, conf.SubsetPct, conf.RandSeed)
		train.CheckErr(err)
	}
	trainSet, err := load(dataRoot, "train")
	train.CheckErr(err)
	validSet, err := load(dataRoot, "valid")
	if err != nil {
		log.WithError(err).Warn("no validation split, using test")
		validSet, err = load(dataRoot, "test")
		train.CheckErr(err)
	}
	seed := conf.RandSeed
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	trainLoader := train.NewLoader(trainSet, conf.BatchSize, rng)
	batch := conf.TestBatch
	if batch == 0 {
		batch = conf.BatchSize
	}
	validLoader := train.NewLoader(validSet, batch, rng)

	m, err := models.New(conf.Classifier, data.Prod(trainSet.Shape()), info.NumClasses, models.Options{
		WeightDecay: conf.WeightDecay,
		Momentum:    conf.Momentum,
		Nesterov:    conf.Nesterov,
		Seed:        seed,
	})
	train.CheckErr(err)
	if checkpoint != "" {
		train.CheckErr(restore(m, checkpoint))
	}

	outDir := path.Join(conf.OutputDir, conf.DataSet, conf.Classifier)
	train.CheckErr(conf.Save(path.Join(outDir, "config.json")))
	callbacks := []train.Callback{train.NewCheckpointer(path.Join(outDir, "checkpoints"), true)}

	tester := train.NewTestLogger(validLoader, conf)
	if addr != "" {
		mon := web.NewMonitor(conf.DataSet+" "+conf.Classifier, conf.MaxEpoch)
		tester.Metrics = mon.Metrics()
		callbacks = append(callbacks, monitorCallback{mon})
		go func() {
			log.WithField("addr", addr).Info("serving run monitor")
			if err := http.ListenAndServe(addr, mon.Handler(user, pass)); err != nil {
				log.WithError(err).Error("monitor stopped")
			}
		}()
	}
	train.CheckErr(train.Train(m, trainLoader, conf, tester, callbacks...))
	train.CheckErr(train.SaveStats(tester.Stats, path.Join(outDir, "stats.json")))
}

func restore(m models.Model, file string) error {
	state := m.State()
	if err := train.Restore(file, state); err != nil {
		return err
	}
	if err := m.LoadState(state); err != nil {
		return err
	}
	log.WithField("file", file).Info("restored checkpoint")
	return nil
}

// keep values changed on the command line, fall back to the config file
func override(base, cli train.Config) train.Config {
	def := train.DefaultConfig()
	for _, key := range base.Fields() {
		if cli.Get(key) != def.Get(key) {
			var err error
			if base, err = base.SetString(key, fmt.Sprint(cli.Get(key))); err != nil {
				train.CheckErr(err)
			}
		}
	}
	return base
}

type monitorCallback struct {
	mon *web.Monitor
}

func (c monitorCallback) OnTrainStart(train.Module) error { return nil }

func (c monitorCallback) OnEpochEnd(m train.Module, s train.Stats) error {
	c.mon.Update(s)
	return nil
}
