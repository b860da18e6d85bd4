// Command snark drives the zero-knowledge proof lifecycle over circuit
// description files: validate, setup, prove, verify.
//
// Exit codes: 0 on success (including a verified=NO outcome), 1 on
// usage errors, 2 on runtime failures (I/O, malformed artifacts).
package main

import (
	"errors"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/zkforge/snarkpipe/engine"
	"github.com/zkforge/snarkpipe/log"
	"github.com/zkforge/snarkpipe/pipeline"
	"github.com/zkforge/snarkpipe/storage"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		printUsage()
		os.Exit(1)
	}
	args := flag.Args()
	if len(args) < 2 {
		printUsage()
		os.Exit(1)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output)

	pipe := pipeline.New(engine.NewGroth16(), storage.New())
	if _, err := pipe.Run(pipeline.Action(args[0]), args[1:]); err != nil {
		if errors.Is(err, pipeline.ErrUnknownAction) {
			printUsage()
			os.Exit(1)
		}
		log.Errorw(err, "action failed")
		os.Exit(2)
	}
}
