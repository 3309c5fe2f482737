package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for the bbhost CLI. Builtin invocations exit with the status
// of the builtin instead.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates invalid input, a bad manifest or bad configuration.
	ExitUser = 1

	// ExitSystem indicates an I/O or environment failure.
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested file or builtin was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrInvalidManifest indicates a builtin manifest failed validation.
	ErrInvalidManifest = crdb.New("invalid manifest")

	// ErrUnknownBuiltin indicates no builtin is registered under a name.
	ErrUnknownBuiltin = crdb.New("unknown builtin")
)

// Helpers re-exported so callers need a single errors import.
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
	Is    = crdb.Is
	As    = crdb.As
	Join  = crdb.Join
)

// ExitError wraps an error with an exit code and optional suggestion for the
// CLI. It supports unwrapping via Is and As.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError for a configuration problem.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check the file passed with --config or BBHOST_ environment variables",
	}
}

// NewStatusError reports a builtin or script exit status through the CLI.
// The error carries no message of its own; the builtin already printed its
// diagnostics.
func NewStatusError(status int) *ExitError {
	return &ExitError{Code: status}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Silent reports whether the error has nothing to print.
func (e *ExitError) Silent() bool {
	return e.Err == nil
}

// CodeOf returns the exit code for err: the code of the outermost ExitError,
// ExitSuccess for nil, and ExitUser otherwise.
func CodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
