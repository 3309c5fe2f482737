package builtin

import (
	"maps"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for registry operations.
var (
	// ErrAlreadyRegistered is returned when a definition with the same name
	// is already registered.
	ErrAlreadyRegistered = errors.New("builtin already registered")

	// ErrNotRegistered is returned when loading a name with no definition.
	ErrNotRegistered = errors.New("builtin not registered")
)

// Registry holds builtin definitions by name. It is safe for concurrent
// use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. It returns an error if the definition is
// invalid or its name is taken.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; exists {
		return errors.Wrap(ErrAlreadyRegistered, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.defs))
}

// Definitions returns every registered definition sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.defs))
	for _, name := range slices.Sorted(maps.Keys(r.defs)) {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// defaultRegistry is the process-wide table consulted by the host loader
// entry points.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds def to the process-wide registry.
func Register(def Definition) error {
	return defaultRegistry.Register(def)
}

// MustRegister is like Register but panics on error. It is meant for init
// functions.
func MustRegister(def Definition) {
	if err := Register(def); err != nil {
		panic(err)
	}
}
