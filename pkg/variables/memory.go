package variables

import (
	"bytes"
	"maps"
	"slices"
	"sync"
)

// MemStore is an in-memory Store with the host's storage rules. It backs
// the in-process shell and is handy for testing builtins without a host.
type MemStore struct {
	mu       sync.Mutex
	cells    map[string]*memCell
	specials map[string]func() []byte
}

type memCell struct {
	kind     Kind
	value    []byte
	indexed  map[int64][]byte
	assoc    map[string][]byte
	ref      string
	readOnly bool
	dynamic  Dynamic
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		cells:    make(map[string]*memCell),
		specials: make(map[string]func() []byte),
	}
}

// SetSpecial registers a read-only variable whose value is computed by fn
// on every read. Special variables always exist.
func (m *MemStore) SetSpecial(name string, fn func() []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specials[name] = fn
}

// DeclareNameRef binds name as a nameref to target.
func (m *MemStore) DeclareNameRef(name, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.cells[name]; ok && c.readOnly {
		return ErrReadOnly
	}
	m.cells[name] = &memCell{kind: NameRef, ref: target}
	return nil
}

// MarkReadOnly flags an existing variable as readonly.
func (m *MemStore) MarkReadOnly(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cells[name]
	if ok {
		c.readOnly = true
	}
	return ok
}

// Names returns the bound variable names in sorted order. Special
// variables are not included.
func (m *MemStore) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.cells))
}

func (m *MemStore) Peek(name string) (Cell, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.specials[name]; ok {
		return Cell{Kind: Scalar, ReadOnly: true, Special: true}, true
	}
	c, ok := m.cells[name]
	if !ok {
		return Cell{}, false
	}
	return Cell{Kind: c.kind, Ref: c.ref, ReadOnly: c.readOnly, Dynamic: c.dynamic != nil}, true
}

func (m *MemStore) Lookup(name string) (Cell, bool) {
	m.mu.Lock()
	fn, special := m.specials[name]
	c, ok := m.cells[name]
	m.mu.Unlock()

	// Computed values are produced outside the lock: hooks may read other
	// variables.
	if special {
		return Cell{Kind: Scalar, Value: fn(), ReadOnly: true, Special: true}, true
	}
	if !ok {
		return Cell{}, false
	}
	if c.dynamic != nil {
		v, ok := c.dynamic.Get()
		if !ok {
			v = nil
		}
		return Cell{Kind: Scalar, Value: v, Dynamic: true, ReadOnly: c.readOnly}, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return c.snapshot(), true
}

func (c *memCell) snapshot() Cell {
	cell := Cell{Kind: c.kind, Ref: c.ref, ReadOnly: c.readOnly}
	switch c.kind {
	case Scalar:
		cell.Value = bytes.Clone(c.value)
	case Indexed:
		cell.Indexed = make(map[int64][]byte, len(c.indexed))
		for k, v := range c.indexed {
			cell.Indexed[k] = bytes.Clone(v)
		}
	case Assoc:
		cell.Assoc = make(map[string][]byte, len(c.assoc))
		for k, v := range c.assoc {
			cell.Assoc[k] = bytes.Clone(v)
		}
	}
	return cell
}

func (m *MemStore) writable(name string) (*memCell, error) {
	if _, ok := m.specials[name]; ok {
		return nil, ErrReadOnly
	}
	c := m.cells[name]
	if c != nil && c.readOnly {
		return nil, ErrReadOnly
	}
	return c, nil
}

func (m *MemStore) Bind(name string, value []byte) error {
	m.mu.Lock()
	c, err := m.writable(name)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if c != nil && c.dynamic != nil {
		d := c.dynamic
		m.mu.Unlock()
		d.Set(bytes.Clone(value))
		return nil
	}
	defer m.mu.Unlock()
	m.cells[name] = &memCell{kind: Scalar, value: bytes.Clone(value)}
	return nil
}

func (m *MemStore) BindIndex(name string, index int64, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.writable(name)
	if err != nil {
		return err
	}
	if c == nil {
		c = &memCell{kind: Indexed, indexed: make(map[int64][]byte)}
		m.cells[name] = c
	}
	if c.kind != Indexed {
		return ErrKindMismatch
	}
	c.indexed[index] = bytes.Clone(value)
	return nil
}

func (m *MemStore) BindKey(name, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.writable(name)
	if err != nil {
		return err
	}
	if c == nil || c.kind != Assoc {
		return ErrKindMismatch
	}
	c.assoc[key] = bytes.Clone(value)
	return nil
}

func (m *MemStore) DeclareIndexed(name string) error {
	return m.declare(name, Indexed)
}

func (m *MemStore) DeclareAssoc(name string) error {
	return m.declare(name, Assoc)
}

func (m *MemStore) declare(name string, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.writable(name)
	if err != nil {
		return err
	}
	if c != nil {
		if c.kind == kind {
			return nil
		}
		return ErrKindMismatch
	}
	c = &memCell{kind: kind}
	if kind == Indexed {
		c.indexed = make(map[int64][]byte)
	} else {
		c.assoc = make(map[string][]byte)
	}
	m.cells[name] = c
	return nil
}

func (m *MemStore) Unbind(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.writable(name); err != nil {
		return err
	}
	delete(m.cells, name)
	return nil
}

func (m *MemStore) UnbindIndex(name string, index int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.writable(name)
	if err != nil || c == nil {
		return err
	}
	if c.kind != Indexed {
		return ErrKindMismatch
	}
	delete(c.indexed, index)
	return nil
}

func (m *MemStore) UnbindKey(name, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.writable(name)
	if err != nil || c == nil {
		return err
	}
	if c.kind != Assoc {
		return ErrKindMismatch
	}
	delete(c.assoc, key)
	return nil
}

func (m *MemStore) BindDynamic(name string, d Dynamic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.writable(name); err != nil {
		return err
	}
	m.cells[name] = &memCell{kind: Scalar, dynamic: d}
	return nil
}

// Restore replaces the cell bound to name with a copy of cell. Dynamic and
// special cells cannot be restored and are ignored.
func (m *MemStore) Restore(name string, cell Cell) {
	if cell.Dynamic || cell.Special || cell.Kind == Unset {
		return
	}
	c := &memCell{kind: cell.Kind, ref: cell.Ref, readOnly: cell.ReadOnly}
	switch cell.Kind {
	case Scalar:
		c.value = bytes.Clone(cell.Value)
	case Indexed:
		c.indexed = make(map[int64][]byte, len(cell.Indexed))
		for k, v := range cell.Indexed {
			c.indexed[k] = bytes.Clone(v)
		}
	case Assoc:
		c.assoc = make(map[string][]byte, len(cell.Assoc))
		for k, v := range cell.Assoc {
			c.assoc[k] = bytes.Clone(v)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[name] = c
}

// Reset removes every bound variable. Special variables stay registered.
func (m *MemStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.cells)
}
