// Command web serves the run monitor for a recorded training run: the
// stats and config written by the train command under the run output
// directory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/davidhoof/visiontrain/train"
	"github.com/davidhoof/visiontrain/web"
)

func main() {
	var addr, user, pass string
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&user, "user", "", "basic auth user")
	flag.StringVar(&pass, "pass", "", "basic auth password")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("Usage: web [opts] <run dir>")
		os.Exit(1)
	}
	dir := flag.Arg(0)
	conf, err := train.LoadConfig(path.Join(dir, "config.json"))
	train.CheckErr(err)
	stats, err := train.LoadStats(path.Join(dir, "stats.json"))
	train.CheckErr(err)

	mon := web.NewMonitor(conf.DataSet+" "+conf.Classifier, conf.MaxEpoch)
	for _, s := range stats {
		mon.Update(s)
	}
	log.WithFields(log.Fields{"addr": addr, "epochs": len(stats)}).Info("serving run monitor")
	train.CheckErr(http.ListenAndServe(addr, mon.Handler(user, pass)))
}
