package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

// ============================================================================
// SOLUTIONS CLI — durable solutions indicators from the command line
// ============================================================================

const version = "0.3.0"

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&versionCmd{}, "")

	for _, c := range reportCommands() {
		commander.Register(c, "reports")
	}
	commander.Register(&optionsCmd{}, "reports")
	commander.Register(&mapCmd{}, "reports")
	commander.Register(&checkCmd{}, "data")
	commander.Register(&exportCmd{}, "data")
	commander.Register(&chartCmd{}, "data")
	commander.Register(&serveCmd{}, "server")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
