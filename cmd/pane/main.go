// Package main is the entry point for the pane CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pane-dev/pane/internal/cli"
)

var (
	version = "dev"
)

func main() {
	err := cli.Execute(version)
	if err == nil {
		return
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "pane: %v\n", exitErr.Err)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
