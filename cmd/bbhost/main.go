// Package main is the entry point for the bbhost CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/bashbuiltins/cmd/bbhost/commands"
	"github.com/thoreinstein/bashbuiltins/internal/errors"
)

func main() {
	err := commands.Execute()
	if err != nil {
		var exitErr *errors.ExitError
		switch {
		case errors.As(err, &exitErr) && exitErr.Silent():
		case errors.As(err, &exitErr) && exitErr.Suggestion != "":
			fmt.Fprintf(os.Stderr, "Error: %v\n%s\n", err, exitErr.Suggestion)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(errors.CodeOf(err))
}
