package builtin

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// State is the lifecycle state of a builtin.
type State int

const (
	Unloaded State = iota
	Loading
	Enabled
	Invoking
	Disabling
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Enabled:
		return "enabled"
	case Invoking:
		return "invoking"
	case Disabling:
		return "disabling"
	default:
		return "unknown"
	}
}

// Handle is the opaque reference the host keeps for a loaded builtin.
type Handle uint64

// instance is one loaded handler.
type instance struct {
	meta     Metadata
	handler  Builtin
	state    State
	poisoned bool
	// dynamics are the dynamic variables bound by the handler. They are
	// removed on unload.
	dynamics map[string]struct{}
}

// Loader owns the handlers of one host. Handles index an arena of
// instances; the host only ever sees the integer.
type Loader struct {
	host     Host
	registry *Registry
	logger   *slog.Logger
	varOpts  []variables.Option

	mu      sync.Mutex
	next    Handle
	handles map[Handle]*instance
	byName  map[string]Handle
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRegistry sets the registry definitions are loaded from. The default
// is the process-wide registry.
func WithRegistry(r *Registry) LoaderOption {
	return func(l *Loader) {
		l.registry = r
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithVariableOptions configures the variable tables handed to handlers.
func WithVariableOptions(opts ...variables.Option) LoaderOption {
	return func(l *Loader) {
		l.varOpts = append(l.varOpts, opts...)
	}
}

// NewLoader returns a loader for host.
func NewLoader(host Host, opts ...LoaderOption) *Loader {
	l := &Loader{
		host:     host,
		registry: defaultRegistry,
		logger:   slog.New(slog.DiscardHandler),
		handles:  make(map[Handle]*instance),
		byName:   make(map[string]Handle),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load creates the handler registered under name. On failure the host error
// stream receives "<name>: error: <message>" and no handler exists.
// Loading a name that is already enabled returns its handle.
func (l *Loader) Load(name string) (Handle, error) {
	def, ok := l.registry.Lookup(name)
	if !ok {
		return 0, errors.Wrap(ErrNotRegistered, name)
	}

	l.mu.Lock()
	if h, loaded := l.byName[name]; loaded {
		l.mu.Unlock()
		return h, nil
	}
	l.next++
	h := l.next
	inst := &instance{meta: def.Metadata, state: Loading, dynamics: make(map[string]struct{})}
	l.handles[h] = inst
	l.byName[name] = h
	l.mu.Unlock()

	handler, err := construct(def)
	if err == nil && handler == nil {
		err = errors.New("constructor returned no handler")
	}
	if err != nil {
		l.mu.Lock()
		delete(l.handles, h)
		delete(l.byName, name)
		l.mu.Unlock()

		loadErr := &LoadError{Name: name, Err: err}
		fmt.Fprintln(l.host.Stderr(), loadErr.Error())
		l.logger.Warn("builtin failed to load", "name", name, "error", err)
		return 0, loadErr
	}

	l.mu.Lock()
	inst.handler = handler
	inst.state = Enabled
	l.mu.Unlock()

	l.logger.Debug("builtin loaded", "name", name, "handle", uint64(h))
	return h, nil
}

func construct(def Definition) (b Builtin, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, errors.Wrapf(ErrPanic, "%v", r)
		}
	}()
	return def.construct()
}

// Lookup returns the handle of an enabled builtin.
func (l *Loader) Lookup(name string) (Handle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.byName[name]
	return h, ok
}

// State returns the lifecycle state behind h. Unknown handles are
// Unloaded.
func (l *Loader) State(h Handle) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if inst, ok := l.handles[h]; ok {
		return inst.state
	}
	return Unloaded
}

// Metadata returns the metadata of the builtin behind h.
func (l *Loader) Metadata(h Handle) (Metadata, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inst, ok := l.handles[h]
	if !ok {
		return Metadata{}, false
	}
	return inst.meta, true
}

// Enabled returns the names of the loaded builtins in sorted order.
func (l *Loader) Enabled() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.byName))
}

// Invoke runs the handler behind h with words and returns the exit status.
// Panics in the handler are recovered, the handler is marked unusable, and
// output is flushed on every path.
func (l *Loader) Invoke(h Handle, words word.List) int {
	l.mu.Lock()
	inst, ok := l.handles[h]
	if !ok {
		l.mu.Unlock()
		fmt.Fprintf(l.host.Stderr(), "%v: %d\n", ErrUnknownHandle, uint64(h))
		return ExitFailure
	}
	if inst.state != Enabled {
		state := inst.state
		l.mu.Unlock()
		fmt.Fprintf(l.host.Stderr(), "%s: %v\n", inst.meta.Name, ErrBusy)
		l.logger.Warn("rejected invocation", "name", inst.meta.Name, "state", state.String())
		return ExitFailure
	}
	if inst.poisoned {
		l.mu.Unlock()
		fmt.Fprintf(l.host.Stderr(), "%s: %v\n", inst.meta.Name, ErrPoisoned)
		return ExitFailure
	}
	inst.state = Invoking
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		inst.state = Enabled
		l.mu.Unlock()
	}()

	vars := variables.New(&trackingStore{Store: l.host.Variables(), loader: l, inst: inst}, l.tableOptions(inst)...)
	args := NewArgs(inst.meta, words, l.host.Stdout(), l.host.Stderr(), vars)
	return l.call(inst, args)
}

func (l *Loader) tableOptions(inst *instance) []variables.Option {
	opts := slices.Clone(l.varOpts)
	return append(opts,
		variables.WithLogger(l.logger),
		variables.WithPanicHandler(func(name string, r any) {
			l.logger.Error("dynamic variable hook panicked", "builtin", inst.meta.Name, "variable", name, "panic", r)
		}),
	)
}

func (l *Loader) call(inst *instance, args *Args) (status int) {
	defer args.flush()
	defer func() {
		if r := recover(); r != nil {
			l.mu.Lock()
			inst.poisoned = true
			l.mu.Unlock()

			l.logger.Error("builtin panicked", "name", inst.meta.Name, "panic", r, "stack", string(debug.Stack()))
			args.Errorf("%v: %v", ErrPanic, r)
			status = ExitFailure
		}
	}()

	err := inst.handler.Call(args)
	status, report := statusOf(err)
	switch {
	case report:
		args.Errorf("%v", err)
	case status == ExUsage && !isReported(err):
		args.ShowUsage()
	}
	return status
}

func isReported(err error) bool {
	var perr *options.Error
	return errors.As(err, &perr)
}

// Unload runs the cleanup hook of the handler behind h, removes the dynamic
// variables it bound, and forgets the handle. The cleanup hook is skipped
// for handlers that panicked.
func (l *Loader) Unload(h Handle) error {
	l.mu.Lock()
	inst, ok := l.handles[h]
	if !ok {
		l.mu.Unlock()
		return ErrUnknownHandle
	}
	if inst.state != Enabled {
		l.mu.Unlock()
		return errors.Wrap(ErrBusy, inst.meta.Name)
	}
	inst.state = Disabling
	dynamics := slices.Sorted(maps.Keys(inst.dynamics))
	l.mu.Unlock()

	if c, ok := inst.handler.(Cleaner); ok && !inst.poisoned {
		l.cleanup(inst.meta.Name, c)
	}

	store := l.host.Variables()
	for _, name := range dynamics {
		if cell, ok := store.Peek(name); ok && cell.Dynamic {
			if err := store.Unbind(name); err != nil {
				l.logger.Warn("removing dynamic variable", "name", name, "error", err)
			}
		}
	}

	l.mu.Lock()
	inst.state = Unloaded
	delete(l.handles, h)
	delete(l.byName, inst.meta.Name)
	l.mu.Unlock()

	l.logger.Debug("builtin unloaded", "name", inst.meta.Name, "handle", uint64(h))
	return nil
}

func (l *Loader) cleanup(name string, c Cleaner) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("cleanup panicked", "name", name, "panic", r)
			fmt.Fprintf(l.host.Stderr(), "%s: %v: %v\n", name, ErrPanic, r)
		}
	}()
	c.Cleanup()
}

// UnloadAll unloads every builtin. Errors are logged and the rest are still
// unloaded.
func (l *Loader) UnloadAll() {
	l.mu.Lock()
	handles := slices.Sorted(maps.Keys(l.handles))
	l.mu.Unlock()
	for _, h := range handles {
		if err := l.Unload(h); err != nil {
			l.logger.Warn("unloading builtin", "handle", uint64(h), "error", err)
		}
	}
}

// trackingStore records the dynamic variables a handler binds.
type trackingStore struct {
	variables.Store
	loader *Loader
	inst   *instance
}

func (s *trackingStore) BindDynamic(name string, d variables.Dynamic) error {
	if err := s.Store.BindDynamic(name, d); err != nil {
		return err
	}
	s.loader.mu.Lock()
	s.inst.dynamics[name] = struct{}{}
	s.loader.mu.Unlock()
	return nil
}

// StaticHost is a Host made of fixed writers and a store.
type StaticHost struct {
	Out  io.Writer
	Err  io.Writer
	Vars variables.Store
}

func (h StaticHost) Stdout() io.Writer { return h.Out }

func (h StaticHost) Stderr() io.Writer { return h.Err }

func (h StaticHost) Variables() variables.Store { return h.Vars }
