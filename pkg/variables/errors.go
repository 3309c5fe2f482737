package variables

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors for variable access.
var (
	// ErrInvalidName is returned for names outside the identifier grammar.
	ErrInvalidName = errors.New("not a valid identifier")

	// ErrKindMismatch is returned when an operation does not apply to the
	// kind of the existing variable.
	ErrKindMismatch = errors.New("variable kind mismatch")

	// ErrNameRefCycle is returned when nameref resolution exceeds the
	// configured depth.
	ErrNameRefCycle = errors.New("circular name reference")

	// ErrReadOnly is returned for writes to readonly or special variables.
	ErrReadOnly = errors.New("readonly variable")

	// ErrBadSubscript is returned for negative or malformed array indices.
	ErrBadSubscript = errors.New("bad array subscript")
)

// Error records the failed operation and the name it was applied to.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var verr *Error
	if errors.As(err, &verr) {
		return err
	}
	return &Error{Op: op, Name: name, Err: err}
}
