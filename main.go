package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/workstation/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the workstation command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		if !errors.Is(executionError, cli.ErrSetupIncomplete) {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		}
		os.Exit(1)
	}
}
