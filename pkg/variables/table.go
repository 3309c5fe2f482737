package variables

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// DefaultMaxNameRefDepth matches the host's own nameref limit.
const DefaultMaxNameRefDepth = 8

// Variable is a resolved snapshot. Name is the name the cell was found
// under after following namerefs.
type Variable struct {
	Name string
	Cell
}

// Item is one element of an array enumeration.
type Item struct {
	Key   string
	Value []byte
}

// Table gives typed access to a host Store. It validates names before every
// access, follows namerefs, and enforces the kind rules of arrays. It holds
// no state between calls, so a cell observed in one call may be gone in the
// next.
type Table struct {
	store    Store
	maxDepth int
	logger   *slog.Logger
	onPanic  func(name string, recovered any)
}

// Option configures a Table.
type Option func(*Table)

// WithMaxNameRefDepth bounds nameref resolution. Values below 1 are ignored.
func WithMaxNameRefDepth(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for recovered dynamic variable panics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithPanicHandler registers a callback for panics recovered from Dynamic
// hooks.
func WithPanicHandler(fn func(name string, recovered any)) Option {
	return func(t *Table) {
		t.onPanic = fn
	}
}

// New returns a Table over store.
func New(store Store, opts ...Option) *Table {
	t := &Table{
		store:    store,
		maxDepth: DefaultMaxNameRefDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the underlying host store.
func (t *Table) Store() Store {
	return t.store
}

func checkRead(op, name string) error {
	if ValidName(name) || SpecialName(name) {
		return nil
	}
	return &Error{Op: op, Name: name, Err: ErrInvalidName}
}

func checkWrite(op, name string) error {
	if ValidName(name) {
		return nil
	}
	if SpecialName(name) {
		return &Error{Op: op, Name: name, Err: ErrReadOnly}
	}
	return &Error{Op: op, Name: name, Err: ErrInvalidName}
}

// Resolve follows namerefs starting at name and returns the final name and
// its cell. An unbound nameref resolves to itself.
func (t *Table) Resolve(name string) (string, Cell, error) {
	if err := checkRead("resolve", name); err != nil {
		return "", Cell{}, err
	}
	return t.resolve("resolve", name, true)
}

// resolve follows namerefs with Peek, so no hook runs on the way. The
// final cell is read with Lookup only when evaluate is set; writers
// need its kind and flags, not its value.
func (t *Table) resolve(op, name string, evaluate bool) (string, Cell, error) {
	cur := name
	for depth := 0; ; depth++ {
		cell, ok := t.store.Peek(cur)
		if !ok {
			return cur, Cell{Kind: Unset}, nil
		}
		if cell.Kind != NameRef || cell.Ref == "" {
			if evaluate {
				if cell, ok = t.store.Lookup(cur); !ok {
					return cur, Cell{Kind: Unset}, nil
				}
			}
			return cur, cell, nil
		}
		if depth >= t.maxDepth {
			return "", Cell{}, &Error{Op: op, Name: name, Err: ErrNameRefCycle}
		}
		if !ValidName(cell.Ref) {
			return "", Cell{}, &Error{Op: op, Name: cell.Ref, Err: ErrInvalidName}
		}
		cur = cell.Ref
	}
}

// resolveWrite resolves name for a mutation and rejects readonly targets.
func (t *Table) resolveWrite(op, name string) (string, Cell, error) {
	if err := checkWrite(op, name); err != nil {
		return "", Cell{}, err
	}
	target, cell, err := t.resolve(op, name, false)
	if err != nil {
		return "", Cell{}, err
	}
	if cell.ReadOnly || cell.Special {
		return "", Cell{}, &Error{Op: op, Name: target, Err: ErrReadOnly}
	}
	if cell.Kind == NameRef {
		// Unbound nameref: there is no target to write to.
		return "", Cell{}, &Error{Op: op, Name: target, Err: ErrKindMismatch}
	}
	return target, cell, nil
}

// Find returns a snapshot of the variable name resolves to. A missing
// variable is reported with Kind Unset and no error.
func (t *Table) Find(name string) (Variable, error) {
	if err := checkRead("find", name); err != nil {
		return Variable{}, err
	}
	target, cell, err := t.resolve("find", name, true)
	if err != nil {
		return Variable{}, err
	}
	if cell.Kind == NameRef {
		cell = Cell{Kind: Unset}
	}
	return Variable{Name: target, Cell: cell}, nil
}

// Peek is Resolve without values: the kind and flags of the variable name
// resolves to, with no dynamic or special value computed. An unbound
// nameref is reported as itself.
func (t *Table) Peek(name string) (Variable, error) {
	if err := checkRead("peek", name); err != nil {
		return Variable{}, err
	}
	target, cell, err := t.resolve("peek", name, false)
	if err != nil {
		return Variable{}, err
	}
	return Variable{Name: target, Cell: cell}, nil
}

// Get returns the value of a scalar. For arrays it returns element 0 like
// a plain $NAME expansion does.
func (t *Table) Get(name string) ([]byte, bool, error) {
	v, err := t.Find(name)
	if err != nil {
		return nil, false, err
	}
	switch v.Kind {
	case Scalar:
		if v.Dynamic && v.Value == nil {
			return nil, false, nil
		}
		return v.Value, true, nil
	case Indexed:
		val, ok := v.Indexed[0]
		return val, ok, nil
	case Assoc:
		val, ok := v.Assoc["0"]
		return val, ok, nil
	}
	return nil, false, nil
}

// FindString is Get for callers that only care about the text. Errors read
// as unset.
func (t *Table) FindString(name string) (string, bool) {
	v, ok, err := t.Get(name)
	if err != nil || !ok {
		return "", false
	}
	return string(v), true
}

// GetAs reads name and converts it with conv.
func GetAs[T any](t *Table, name string, conv word.Converter[T]) (T, bool, error) {
	var zero T
	raw, ok, err := t.Get(name)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := conv(word.New(raw))
	if err != nil {
		return zero, false, opError("get", name, err)
	}
	return v, true, nil
}

// Set assigns a scalar value. Assigning to an array sets element 0, or key
// "0" of an associative array.
func (t *Table) Set(name string, value []byte) error {
	target, cell, err := t.resolveWrite("set", name)
	if err != nil {
		return err
	}
	switch cell.Kind {
	case Indexed:
		err = t.store.BindIndex(target, 0, value)
	case Assoc:
		err = t.store.BindKey(target, "0", value)
	default:
		err = t.store.Bind(target, value)
	}
	return opError("set", target, err)
}

// SetString is Set with a string value.
func (t *Table) SetString(name, value string) error {
	return t.Set(name, []byte(value))
}

// Unset removes the variable name resolves to. Removing a missing variable
// is not an error.
func (t *Table) Unset(name string) error {
	if err := checkWrite("unset", name); err != nil {
		return err
	}
	target, cell, err := t.resolve("unset", name, false)
	if err != nil {
		return err
	}
	if cell.Kind == Unset {
		return nil
	}
	if cell.ReadOnly || cell.Special {
		return &Error{Op: "unset", Name: target, Err: ErrReadOnly}
	}
	return opError("unset", target, t.store.Unbind(target))
}

// UnsetNameRef removes name itself without following it.
func (t *Table) UnsetNameRef(name string) error {
	if err := checkWrite("unset", name); err != nil {
		return err
	}
	cell, ok := t.store.Peek(name)
	if !ok {
		return nil
	}
	if cell.ReadOnly || cell.Special {
		return &Error{Op: "unset", Name: name, Err: ErrReadOnly}
	}
	return opError("unset", name, t.store.Unbind(name))
}

// UnsetElement removes one element of an array. For indexed arrays the
// subscript must be a non-negative integer. Unsetting element 0 of a
// scalar removes the scalar.
func (t *Table) UnsetElement(name, subscript string) error {
	if err := checkWrite("unset", name); err != nil {
		return err
	}
	target, cell, err := t.resolve("unset", name, false)
	if err != nil {
		return err
	}
	if cell.ReadOnly || cell.Special {
		return &Error{Op: "unset", Name: target, Err: ErrReadOnly}
	}
	switch cell.Kind {
	case Indexed:
		idx, err := ParseIndex(subscript)
		if err != nil {
			return &Error{Op: "unset", Name: target, Err: err}
		}
		return opError("unset", target, t.store.UnbindIndex(target, idx))
	case Assoc:
		return opError("unset", target, t.store.UnbindKey(target, subscript))
	case Scalar:
		if idx, err := ParseIndex(subscript); err == nil && idx == 0 {
			return opError("unset", target, t.store.Unbind(target))
		}
	}
	return nil
}

// ArrayGet reads element index of an indexed array. A scalar reads as an
// array with one element at index 0.
func (t *Table) ArrayGet(name string, index int64) ([]byte, bool, error) {
	if index < 0 {
		return nil, false, &Error{Op: "array get", Name: name, Err: ErrBadSubscript}
	}
	v, err := t.Find(name)
	if err != nil {
		return nil, false, err
	}
	switch v.Kind {
	case Unset:
		return nil, false, nil
	case Scalar:
		if index == 0 {
			return v.Value, true, nil
		}
		return nil, false, nil
	case Indexed:
		val, ok := v.Indexed[index]
		return val, ok, nil
	}
	return nil, false, &Error{Op: "array get", Name: v.Name, Err: ErrKindMismatch}
}

// ArraySet writes element index of an indexed array. An unset name becomes
// an indexed array; any kind other than an indexed array is a mismatch.
func (t *Table) ArraySet(name string, index int64, value []byte) error {
	if index < 0 {
		return &Error{Op: "array set", Name: name, Err: ErrBadSubscript}
	}
	target, cell, err := t.resolveWrite("array set", name)
	if err != nil {
		return err
	}
	if cell.Kind != Unset && cell.Kind != Indexed {
		return &Error{Op: "array set", Name: target, Err: ErrKindMismatch}
	}
	return opError("array set", target, t.store.BindIndex(target, index, value))
}

// DeclareIndexed makes name an empty indexed array unless it already is
// one.
func (t *Table) DeclareIndexed(name string) error {
	target, cell, err := t.resolveWrite("declare", name)
	if err != nil {
		return err
	}
	switch cell.Kind {
	case Indexed:
		return nil
	case Unset:
		return opError("declare", target, t.store.DeclareIndexed(target))
	}
	return &Error{Op: "declare", Name: target, Err: ErrKindMismatch}
}

// DeclareAssoc makes name an empty associative array unless it already is
// one.
func (t *Table) DeclareAssoc(name string) error {
	target, cell, err := t.resolveWrite("declare", name)
	if err != nil {
		return err
	}
	switch cell.Kind {
	case Assoc:
		return nil
	case Unset:
		return opError("declare", target, t.store.DeclareAssoc(target))
	}
	return &Error{Op: "declare", Name: target, Err: ErrKindMismatch}
}

// AssocGet reads key of an associative array.
func (t *Table) AssocGet(name, key string) ([]byte, bool, error) {
	v, err := t.Find(name)
	if err != nil {
		return nil, false, err
	}
	switch v.Kind {
	case Unset:
		return nil, false, nil
	case Assoc:
		val, ok := v.Assoc[key]
		return val, ok, nil
	}
	return nil, false, &Error{Op: "assoc get", Name: v.Name, Err: ErrKindMismatch}
}

// AssocSet writes key of an associative array. An unset name is declared
// associative first; any other kind is a mismatch.
func (t *Table) AssocSet(name, key string, value []byte) error {
	target, cell, err := t.resolveWrite("assoc set", name)
	if err != nil {
		return err
	}
	switch cell.Kind {
	case Unset:
		if err := t.store.DeclareAssoc(target); err != nil {
			return opError("assoc set", target, err)
		}
	case Assoc:
	default:
		return &Error{Op: "assoc set", Name: target, Err: ErrKindMismatch}
	}
	return opError("assoc set", target, t.store.BindKey(target, key, value))
}

// Items enumerates the live elements of name. Indexed arrays are returned
// in index order, associative arrays in key order, and a scalar as the
// single element "0".
func (t *Table) Items(name string) ([]Item, error) {
	v, err := t.Find(name)
	if err != nil {
		return nil, err
	}
	switch v.Kind {
	case Scalar:
		return []Item{{Key: "0", Value: v.Value}}, nil
	case Indexed:
		keys := slices.Sorted(maps.Keys(v.Indexed))
		items := make([]Item, 0, len(keys))
		for _, k := range keys {
			items = append(items, Item{Key: strconv.FormatInt(k, 10), Value: v.Indexed[k]})
		}
		return items, nil
	case Assoc:
		keys := slices.Sorted(maps.Keys(v.Assoc))
		items := make([]Item, 0, len(keys))
		for _, k := range keys {
			items = append(items, Item{Key: k, Value: v.Assoc[k]})
		}
		return items, nil
	}
	return nil, nil
}

// Bind makes name a dynamic variable computed by d. Panics raised by d are
// recovered and reported to the panic handler.
func (t *Table) Bind(name string, d Dynamic) error {
	if d == nil {
		return &Error{Op: "bind", Name: name, Err: errors.New("nil dynamic variable")}
	}
	if err := checkWrite("bind", name); err != nil {
		return err
	}
	if cell, ok := t.store.Peek(name); ok && (cell.ReadOnly || cell.Special) {
		return &Error{Op: "bind", Name: name, Err: ErrReadOnly}
	}
	return opError("bind", name, t.store.BindDynamic(name, &guarded{name: name, d: d, table: t}))
}

// guarded keeps panics in user hooks from reaching the host.
type guarded struct {
	name  string
	d     Dynamic
	table *Table
}

func (g *guarded) recovered(r any) {
	g.table.logger.Error("dynamic variable panicked", "name", g.name, "panic", r)
	if g.table.onPanic != nil {
		g.table.onPanic(g.name, r)
	}
}

func (g *guarded) Get() (value []byte, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.recovered(r)
			value, ok = nil, false
		}
	}()
	return g.d.Get()
}

func (g *guarded) Set(value []byte) {
	defer func() {
		if r := recover(); r != nil {
			g.recovered(r)
		}
	}()
	g.d.Set(value)
}
