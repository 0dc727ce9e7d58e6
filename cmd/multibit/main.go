package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/benbjohnson/clock"

	"github.com/khalid-nowaf/multibit/pkg/cli"
	"github.com/khalid-nowaf/multibit/pkg/config"
	"github.com/khalid-nowaf/multibit/pkg/logging"
)

func main() {
	ctx := kong.Parse(&cli.CLI, kong.UsageOnError())

	conf, err := config.Load(cli.CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(conf.Log)
	session := cli.NewSession(conf, logger, os.Stdout, clock.New())

	if err := ctx.Run(session); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
