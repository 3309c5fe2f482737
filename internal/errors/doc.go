// Package errors provides error handling conventions for the bbhost CLI.
//
// The package re-exports the wrapping helpers of
// github.com/cockroachdb/errors, defines sentinel errors for CLI failure
// conditions, and an ExitError type carrying the process exit code.
//
// # Sentinel Errors
//
//	if errors.Is(err, bberrors.ErrUnknownBuiltin) {
//	    // suggest "bbhost list"
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Invalid input, manifest or configuration
//   - ExitSystem (2): I/O or environment failure
//
// Commands that run builtins exit with the builtin status instead; they
// return [NewStatusError] so the CLI prints nothing extra.
package errors
