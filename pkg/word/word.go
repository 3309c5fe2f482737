// Package word provides zero-copy views over the byte strings a host shell
// hands to a builtin, and the conversions that turn them into Go values.
package word

import (
	"bytes"
	"strings"
)

// Word is a view over one host-provided argument or variable cell.
//
// The bytes behind a Word are borrowed from the host and are only valid for
// the duration of the invocation that produced them. Use [Word.Clone] or one
// of the owned conversions before storing a value in handler state.
type Word struct {
	b []byte
}

// New returns a Word viewing b. The slice is not copied.
func New(b []byte) Word {
	return Word{b: b}
}

// FromString returns a Word holding a copy of s.
func FromString(s string) Word {
	return Word{b: []byte(s)}
}

// Bytes returns the borrowed bytes of the word.
func (w Word) Bytes() []byte {
	return w.b
}

// Clone returns a Word backed by an owned copy of the bytes.
func (w Word) Clone() Word {
	return Word{b: bytes.Clone(w.b)}
}

// String returns the word as a Go string. The result is an owned copy.
func (w Word) String() string {
	return string(w.b)
}

// Len returns the number of bytes in the word.
func (w Word) Len() int {
	return len(w.b)
}

// IsEmpty reports whether the word has no bytes.
func (w Word) IsEmpty() bool {
	return len(w.b) == 0
}

// HasPrefix reports whether the word begins with prefix.
func (w Word) HasPrefix(prefix string) bool {
	return len(w.b) >= len(prefix) && string(w.b[:len(prefix)]) == prefix
}

// Equal reports whether the word is exactly s.
func (w Word) Equal(s string) bool {
	return string(w.b) == s
}

// List is an ordered, read-only sequence of words.
type List struct {
	words []Word
}

// NewList wraps raw host cells without copying them.
func NewList(cells [][]byte) List {
	words := make([]Word, len(cells))
	for i, c := range cells {
		words[i] = New(c)
	}
	return List{words: words}
}

// ListOf builds a List from strings. It is mostly useful in tests and for
// hosts that already hold Go strings.
func ListOf(args ...string) List {
	words := make([]Word, len(args))
	for i, a := range args {
		words[i] = FromString(a)
	}
	return List{words: words}
}

// Len returns the number of words.
func (l List) Len() int {
	return len(l.words)
}

// At returns the word at index i. It panics if i is out of range.
func (l List) At(i int) Word {
	return l.words[i]
}

// Slice returns the words from index i to the end.
func (l List) Slice(i int) List {
	if i >= len(l.words) {
		return List{}
	}
	return List{words: l.words[i:]}
}

// Words returns a copy of the slice of words. The words themselves still
// borrow host memory.
func (l List) Words() []Word {
	out := make([]Word, len(l.words))
	copy(out, l.words)
	return out
}

// Strings converts every word with [OSString].
func (l List) Strings() []string {
	out := make([]string, len(l.words))
	for i, w := range l.words {
		out[i] = w.String()
	}
	return out
}

// String renders the list the way a shell would echo it.
func (l List) String() string {
	return strings.Join(l.Strings(), " ")
}
