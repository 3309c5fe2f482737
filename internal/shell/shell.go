package shell

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

// DefaultName is the shell name used as $0 and as the diagnostic prefix.
const DefaultName = "bbhost"

// Shell is an in-process host for builtins. It owns a variable store with
// the host's rules, a loader, and the few commands needed to drive them:
// enable, help, declare, readonly, unset, echo, true and false.
//
// A Shell runs one command at a time and is not safe for concurrent use.
// Builtins may read variables from other goroutines.
type Shell struct {
	name     string
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
	registry *builtin.Registry
	depth    int
	seed     int64
	now      func() time.Time

	store    *variables.MemStore
	vars     *variables.Table
	loader   *builtin.Loader
	specials *specials

	status int
	exited bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithName sets $0 and the diagnostic prefix.
func WithName(name string) Option {
	return func(s *Shell) {
		if name != "" {
			s.name = name
		}
	}
}

// WithOutput sets the standard output and error streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry sets the registry enable loads from.
func WithRegistry(r *builtin.Registry) Option {
	return func(s *Shell) {
		s.registry = r
	}
}

// WithNameRefDepth sets the nameref resolution limit.
func WithNameRefDepth(n int) Option {
	return func(s *Shell) {
		s.depth = n
	}
}

// WithRandomSeed seeds the RANDOM sequence.
func WithRandomSeed(seed int64) Option {
	return func(s *Shell) {
		s.seed = seed
	}
}

// WithClock replaces the time source of SECONDS and the EPOCH variables.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a shell with no builtins enabled.
func New(opts ...Option) *Shell {
	s := &Shell{
		name:     DefaultName,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   slog.New(slog.DiscardHandler),
		registry: builtin.Default(),
		depth:    variables.DefaultMaxNameRefDepth,
		seed:     time.Now().UnixNano(),
		now:      time.Now,
		store:    variables.NewMemStore(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.vars = variables.New(s.store,
		variables.WithMaxNameRefDepth(s.depth),
		variables.WithLogger(s.logger),
	)
	s.loader = builtin.NewLoader(s,
		builtin.WithRegistry(s.registry),
		builtin.WithLogger(s.logger),
		builtin.WithVariableOptions(variables.WithMaxNameRefDepth(s.depth)),
	)
	s.specials = newSpecials(s)
	s.specials.install(s.store)
	return s
}

// Stdout implements builtin.Host.
func (s *Shell) Stdout() io.Writer { return s.stdout }

// Stderr implements builtin.Host.
func (s *Shell) Stderr() io.Writer { return s.stderr }

// Variables implements builtin.Host.
func (s *Shell) Variables() variables.Store { return s.store }

// Vars returns the variable table of the shell.
func (s *Shell) Vars() *variables.Table { return s.vars }

// Loader returns the loader that owns the enabled builtins.
func (s *Shell) Loader() *builtin.Loader { return s.loader }

// Registry returns the registry enable loads from.
func (s *Shell) Registry() *builtin.Registry { return s.registry }

// Name returns $0.
func (s *Shell) Name() string { return s.name }

// Status returns the exit status of the last command, $?.
func (s *Shell) Status() int { return s.status }

// Enable loads the named builtins as "enable -f" does.
func (s *Shell) Enable(names ...string) error {
	for _, name := range names {
		if _, err := s.loader.Load(name); err != nil {
			return err
		}
	}
	return nil
}

// Close disables every builtin, running their cleanup hooks.
func (s *Shell) Close() error {
	s.loader.UnloadAll()
	return nil
}
