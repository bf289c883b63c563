// Package main is the entry point for the fmfix CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fmfix/fmfix/cmd/fmfix/commands"
	"github.com/fmfix/fmfix/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}
	os.Exit(errors.ExitUser)
}
