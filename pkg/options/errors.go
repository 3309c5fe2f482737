package options

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// ErrUsage matches every option parsing failure. Builtins map it to the
// host's usage exit status.
var ErrUsage = errors.New("usage error")

// Per-kind sentinels, matched with errors.Is.
var (
	ErrInvalidOption      = errors.New("invalid option")
	ErrMissingArgument    = errors.New("option requires an argument")
	ErrInvalidValue       = errors.New("invalid value for option")
	ErrUnexpectedArgument = errors.New("unexpected argument")
	ErrHelp               = errors.New("help requested")
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	InvalidOption ErrorKind = iota + 1
	MissingArgument
	InvalidValue
	UnexpectedArgument
	Help
)

// Error is a parse failure. Its message is the diagnostic printed after the
// builtin name.
type Error struct {
	Kind ErrorKind
	// Letter is the option letter, zero for UnexpectedArgument and Help.
	Letter byte
	// Text is the offending word or argument.
	Text string
	// Err is the conversion failure behind an InvalidValue error.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidOption:
		return fmt.Sprintf("invalid option -- '%c'", e.Letter)
	case MissingArgument:
		return fmt.Sprintf("option requires an argument -- '%c'", e.Letter)
	case InvalidValue:
		return fmt.Sprintf("invalid value '%s' for option -- '%c'", e.Text, e.Letter)
	case UnexpectedArgument:
		return fmt.Sprintf("unexpected argument '%s'", e.Text)
	case Help:
		return "help requested"
	default:
		return "option parsing failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrUsage and the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	if target == ErrUsage {
		return true
	}
	switch e.Kind {
	case InvalidOption:
		return target == ErrInvalidOption
	case MissingArgument:
		return target == ErrMissingArgument
	case InvalidValue:
		return target == ErrInvalidValue
	case UnexpectedArgument:
		return target == ErrUnexpectedArgument
	case Help:
		return target == ErrHelp
	}
	return false
}

// Reporter writes diagnostics in the host builtin format.
type Reporter struct {
	// Name is the builtin name used as prefix.
	Name string
	// Out receives the diagnostics. Nil discards them.
	Out io.Writer
	// Help prints the builtin help for --help. Nil prints nothing.
	Help func()
}

// Report writes "<name>: <diagnostic>" for err. Help errors print the help
// text instead.
func (r Reporter) Report(err *Error) {
	if err.Kind == Help {
		if r.Help != nil {
			r.Help()
		}
		return
	}
	if r.Out == nil {
		return
	}
	if r.Name == "" {
		fmt.Fprintf(r.Out, "%s\n", err)
		return
	}
	fmt.Fprintf(r.Out, "%s: %s\n", r.Name, err)
}

// Finished fails with an UnexpectedArgument error naming the first word of
// rest, if any. The diagnostic is reported through r.
func Finished(rest word.List, r Reporter) error {
	if rest.Len() == 0 {
		return nil
	}
	err := &Error{Kind: UnexpectedArgument, Text: rest.At(0).String()}
	r.Report(err)
	return err
}
