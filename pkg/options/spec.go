package options

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// ArgKind describes whether an option takes an argument.
type ArgKind int

const (
	// NoArgument marks a plain flag.
	NoArgument ArgKind = iota
	// RequiredArgument marks an option that always consumes an argument.
	RequiredArgument
	// OptionalArgument marks an option whose argument may be omitted.
	OptionalArgument
)

func (k ArgKind) String() string {
	switch k {
	case NoArgument:
		return "none"
	case RequiredArgument:
		return "required"
	case OptionalArgument:
		return "optional"
	default:
		return "unknown"
	}
}

// Sentinel errors for building option tables.
var (
	// ErrDuplicateOption is returned when two entries share a letter.
	ErrDuplicateOption = errors.New("duplicate option letter")

	// ErrInvalidLetter is returned for letters outside [A-Za-z0-9].
	ErrInvalidLetter = errors.New("invalid option letter")
)

// Entry maps one option letter to the constructor of its parsed value.
type Entry[T any] struct {
	letter byte
	kind   ArgKind
	build  func(arg *word.Word) (T, error)
}

// Letter returns the option letter.
func (e Entry[T]) Letter() byte { return e.letter }

// Kind returns the argument kind.
func (e Entry[T]) Kind() ArgKind { return e.kind }

// Flag declares an option without argument that always yields v.
func Flag[T any](letter byte, v T) Entry[T] {
	return Entry[T]{
		letter: letter,
		kind:   NoArgument,
		build:  func(*word.Word) (T, error) { return v, nil },
	}
}

// Required declares an option with a mandatory argument converted by conv
// and wrapped into the parsed value by wrap.
func Required[T, V any](letter byte, conv word.Converter[V], wrap func(V) T) Entry[T] {
	return Entry[T]{
		letter: letter,
		kind:   RequiredArgument,
		build: func(arg *word.Word) (T, error) {
			v, err := conv(*arg)
			if err != nil {
				var zero T
				return zero, err
			}
			return wrap(v), nil
		},
	}
}

// Optional declares an option whose argument may be missing. wrap receives
// nil when no argument was supplied.
func Optional[T, V any](letter byte, conv word.Converter[V], wrap func(*V) T) Entry[T] {
	return Entry[T]{
		letter: letter,
		kind:   OptionalArgument,
		build: func(arg *word.Word) (T, error) {
			if arg == nil {
				return wrap(nil), nil
			}
			v, err := conv(*arg)
			if err != nil {
				var zero T
				return zero, err
			}
			return wrap(&v), nil
		},
	}
}

// Custom declares an option with an arbitrary constructor. arg is nil when
// no argument is present, which only happens for NoArgument and
// OptionalArgument entries.
func Custom[T any](letter byte, kind ArgKind, build func(arg *word.Word) (T, error)) Entry[T] {
	return Entry[T]{letter: letter, kind: kind, build: build}
}

// Spec is an immutable option table.
type Spec[T any] struct {
	entries map[byte]Entry[T]
	order   []byte
}

// NewSpec builds an option table. Letters must be unique ASCII letters or
// digits.
func NewSpec[T any](entries ...Entry[T]) (*Spec[T], error) {
	s := &Spec[T]{
		entries: make(map[byte]Entry[T], len(entries)),
		order:   make([]byte, 0, len(entries)),
	}
	for _, e := range entries {
		if !validLetter(e.letter) {
			return nil, errors.Wrapf(ErrInvalidLetter, "%q", e.letter)
		}
		if _, exists := s.entries[e.letter]; exists {
			return nil, errors.Wrapf(ErrDuplicateOption, "'%c'", e.letter)
		}
		if e.build == nil {
			return nil, errors.Newf("option '%c' has no constructor", e.letter)
		}
		s.entries[e.letter] = e
		s.order = append(s.order, e.letter)
	}
	return s, nil
}

// MustSpec is like NewSpec but panics on error. Use it for tables declared
// at package level.
func MustSpec[T any](entries ...Entry[T]) *Spec[T] {
	s, err := NewSpec(entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the argument kind declared for letter.
func (s *Spec[T]) Lookup(letter byte) (ArgKind, bool) {
	e, ok := s.entries[letter]
	return e.kind, ok
}

// Letters returns the declared letters in declaration order.
func (s *Spec[T]) Letters() []byte {
	out := make([]byte, len(s.order))
	copy(out, s.order)
	return out
}

// String renders the table as a host optstring: ':' follows letters with
// a required argument and ';' letters with an optional one.
func (s *Spec[T]) String() string {
	var sb strings.Builder
	for _, l := range s.order {
		sb.WriteByte(l)
		switch s.entries[l].kind {
		case RequiredArgument:
			sb.WriteByte(':')
		case OptionalArgument:
			sb.WriteByte(';')
		}
	}
	return sb.String()
}

func validLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
