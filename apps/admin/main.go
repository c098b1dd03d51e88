package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	logsvc "github.com/alihaimran285-byte/final-project-sub001/services/logger"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logsvc.NewRollbarLogger(os.Stderr, "ADMIN", conf)
	logger.Enable(false)

	cli := commandLine{conf: conf, logger: logger}
	if err := cli.run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		os.Exit(1)
	}
}
