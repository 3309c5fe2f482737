package builtin

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/options"
)

// Exit statuses understood by the host.
const (
	ExitSuccess = 0
	ExitFailure = 1
	// ExitBadUsage is what scripts observe after a usage error.
	ExitBadUsage = 2
	// ExUsage is returned to the host for usage errors. The host reports it
	// to scripts as ExitBadUsage.
	ExUsage = 258
)

// ErrUsage reports incorrect usage. Returning it from Call prints the
// usage line unless an option parser already reported the problem.
var ErrUsage = options.ErrUsage

// Sentinel errors for loader operations.
var (
	// ErrBusy is returned when a handler is invoked or unloaded while it is
	// already running.
	ErrBusy = errors.New("builtin is already running")

	// ErrUnknownHandle is returned for handles that are not loaded.
	ErrUnknownHandle = errors.New("unknown builtin handle")

	// ErrPanic marks a recovered panic.
	ErrPanic = errors.New("internal error")

	// ErrPoisoned is returned for handlers that panicked earlier.
	ErrPoisoned = errors.New("invalid internal state")
)

// ExitCode is an error that makes the invocation exit with the given
// status without printing anything.
type ExitCode int

func (c ExitCode) Error() string {
	return "exit status " + strconv.Itoa(int(c))
}

// LoadError reports a handler that could not be constructed.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return e.Name + ": error: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// statusOf maps the result of Call to an exit status. report is false when
// the error was already reported or carries no message for the user.
func statusOf(err error) (status int, report bool) {
	if err == nil {
		return ExitSuccess, false
	}
	var code ExitCode
	if errors.As(err, &code) {
		return int(code), false
	}
	if errors.Is(err, ErrUsage) {
		return ExUsage, false
	}
	return ExitFailure, true
}
