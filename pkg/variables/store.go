package variables

// Kind is the shape of a variable cell.
type Kind int

const (
	// Unset means the name has no cell.
	Unset Kind = iota
	// Scalar is a plain string value.
	Scalar
	// Indexed is a sparse integer-indexed array.
	Indexed
	// Assoc is a string-keyed associative array.
	Assoc
	// NameRef is an alias resolved to another name at access time.
	NameRef
)

func (k Kind) String() string {
	switch k {
	case Unset:
		return "unset"
	case Scalar:
		return "scalar"
	case Indexed:
		return "indexed array"
	case Assoc:
		return "associative array"
	case NameRef:
		return "nameref"
	default:
		return "unknown"
	}
}

// Cell is a snapshot of one host variable. Maps are copies owned by the
// caller.
type Cell struct {
	Kind    Kind
	Value   []byte
	Indexed map[int64][]byte
	Assoc   map[string][]byte
	// Ref is the target name of a nameref.
	Ref string
	// ReadOnly is set for variables declared readonly by the shell.
	ReadOnly bool
	// Special marks values computed by the host, such as RANDOM.
	Special bool
	// Dynamic marks values computed by a Dynamic bound from a builtin.
	Dynamic bool
}

// Dynamic computes the value of a variable each time it is read and
// receives every assignment to it.
type Dynamic interface {
	// Get returns the current value. ok is false when the variable should
	// read as empty.
	Get() (value []byte, ok bool)
	// Set receives an assigned value.
	Set(value []byte)
}

// DynamicFuncs adapts a pair of functions to Dynamic. A nil SetFunc ignores
// assignments.
type DynamicFuncs struct {
	GetFunc func() ([]byte, bool)
	SetFunc func([]byte)
}

func (d DynamicFuncs) Get() ([]byte, bool) {
	return d.GetFunc()
}

func (d DynamicFuncs) Set(value []byte) {
	if d.SetFunc != nil {
		d.SetFunc(value)
	}
}

// Store is the raw variable table of a host shell. Implementations never
// follow namerefs and never validate names; the Table does both before
// calling in.
type Store interface {
	// Lookup returns the cell bound to name. Dynamic and special values
	// are computed, which may have side effects.
	Lookup(name string) (Cell, bool)
	// Peek is Lookup without values: only Kind, Ref and the flags are
	// set, and no dynamic or special value is computed.
	Peek(name string) (Cell, bool)
	// Bind assigns a scalar value.
	Bind(name string, value []byte) error
	// BindIndex assigns an element of an indexed array, creating the array
	// when name is unbound.
	BindIndex(name string, index int64, value []byte) error
	// BindKey assigns an element of an existing associative array.
	BindKey(name, key string, value []byte) error
	// DeclareIndexed creates an empty indexed array.
	DeclareIndexed(name string) error
	// DeclareAssoc creates an empty associative array.
	DeclareAssoc(name string) error
	// Unbind removes the cell bound to name.
	Unbind(name string) error
	// UnbindIndex removes one element of an indexed array.
	UnbindIndex(name string, index int64) error
	// UnbindKey removes one element of an associative array.
	UnbindKey(name, key string) error
	// BindDynamic binds name to a computed value.
	BindDynamic(name string, d Dynamic) error
}
