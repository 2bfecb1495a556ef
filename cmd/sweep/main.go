// Command sweep reads a yaml sweep configuration, writes one launcher
// per dataset, model and checkpoint combination and registers each
// sweep with the tracking service.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davidhoof/visiontrain/sweep"
	"github.com/davidhoof/visiontrain/train"
)

func main() {
	var generateOnly bool
	flag.BoolVar(&generateOnly, "generate", false, "write the launchers without registering sweeps")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("Usage: sweep [opts] <config.yml>")
		os.Exit(1)
	}
	conf, err := sweep.LoadConfig(flag.Arg(0))
	train.CheckErr(err)
	if generateOnly {
		_, err = sweep.Generate(conf)
		train.CheckErr(err)
		return
	}
	train.CheckErr(sweep.Launch(conf))
}
