package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/mitchellh/cli"

	"github.com/joeandaverde/db3image/cmd/dbinspect/command"
)

func main() {
	args := os.Args[1:]

	logger := log.New()
	logger.SetOutput(os.Stderr)

	commands := map[string]cli.CommandFactory{
		"schema": func() (cli.Command, error) {
			return &command.SchemaCommand{Log: logger}, nil
		},
		"page": func() (cli.Command, error) {
			return &command.PageCommand{Log: logger}, nil
		},
	}

	inspectCLI := &cli.CLI{
		Name:         "dbinspect",
		Args:         args,
		Commands:     commands,
		HelpFunc:     cli.BasicHelpFunc("dbinspect"),
		Autocomplete: true,
	}

	exitCode, err := inspectCLI.Run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}

	os.Exit(exitCode)
}
