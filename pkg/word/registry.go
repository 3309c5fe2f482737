package word

import (
	"slices"
	"sync"
)

// Dynamic is a converter whose result type is only known at runtime.
type Dynamic func(Word) (any, error)

func erase[T any](c Converter[T]) Dynamic {
	return func(w Word) (any, error) {
		v, err := c(w)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Dynamic{
		"string":   erase(String),
		"osstring": erase(OSString),
		"path":     erase(Path),
		"bytes":    erase(Bytes),
		"bool":     erase(Bool),
		"float64":  erase(Float64),
		"int":      erase(Int),
		"int8":     erase(Int8),
		"int16":    erase(Int16),
		"int32":    erase(Int32),
		"int64":    erase(Int64),
		"uint":     erase(Uint),
		"uint8":    erase(Uint8),
		"uint16":   erase(Uint16),
		"uint32":   erase(Uint32),
		"uint64":   erase(Uint64),
	}
)

// Lookup returns the converter registered under target, such as "int64" or
// "path". Declarative option tables use it to pick a conversion by name.
func Lookup(target string) (Dynamic, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[target]
	return c, ok
}

// Register adds a named conversion. It replaces any previous registration.
func Register[T any](target string, c Converter[T]) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[target] = erase(c)
}

// Targets returns the registered conversion names in sorted order.
func Targets() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
