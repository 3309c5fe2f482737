package demo

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

// Option configures the demo definitions.
type Option func(*config)

type config struct {
	out  io.Writer
	errs io.Writer
}

// WithOutput sets where builtins write outside of a call, such as the
// unload report. It defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.out = w
	}
}

// WithErrors sets where builtins report problems outside of a call, such
// as a bad assignment to a varcounter variable. It defaults to os.Stderr.
func WithErrors(w io.Writer) Option {
	return func(c *config) {
		c.errs = w
	}
}

// Definitions returns the demo builtins sorted by name.
func Definitions(opts ...Option) []builtin.Definition {
	cfg := config{out: os.Stdout, errs: os.Stderr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return []builtin.Definition{
		canpanicDef,
		counterDef,
		filesizeDef,
		loadfailDef,
		nonrequiredargsDef,
		unloadDefinition(cfg.out),
		upcaseDef,
		usevarsDef,
		varcounterDefinition(cfg.errs),
	}
}

// Register adds the demo builtins to reg. Every definition is attempted and
// the failures are joined.
func Register(reg *builtin.Registry, opts ...Option) error {
	var errs []error
	for _, def := range Definitions(opts...) {
		if err := reg.Register(def); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
