// Package editor opens manifest files in the user's editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
)

// Editor runs an interactive editor attached to the given streams.
type Editor struct {
	Getenv   func(string) string
	LookPath func(string) (string, error)
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

// New returns an editor using the process environment and terminal.
func New() *Editor {
	return &Editor{
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Command returns the editor command line. Fallback chain: $EDITOR,
// $VISUAL, nano, vi. Variables may carry arguments ("code -w").
func (e *Editor) Command() []string {
	for _, key := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(e.Getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	if _, err := e.LookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}

// Open runs the editor on path and waits for it to exit.
func (e *Editor) Open(ctx context.Context, path string) error {
	argv := e.Command()
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}
