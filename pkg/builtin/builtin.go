package builtin

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

// Builtin is a command handler. One instance is created when the builtin is
// enabled and receives every invocation until it is disabled.
//
// Call must not retain args, or any word or variable view obtained from
// it, after returning.
type Builtin interface {
	Call(args *Args) error
}

// Cleaner is implemented by handlers that release resources when they are
// disabled.
type Cleaner interface {
	Cleanup()
}

// Func adapts a plain function to Builtin for stateless commands.
type Func func(args *Args) error

// Call calls f(args).
func (f Func) Call(args *Args) error {
	return f(args)
}

// Host is what the loader needs from the shell that embeds it.
type Host interface {
	Stdout() io.Writer
	Stderr() io.Writer
	Variables() variables.Store
}

// Metadata is the static description of a builtin shown by the host's help
// command.
type Metadata struct {
	// Name is the command name. It must be a C identifier because the
	// host loader derives symbol names from it.
	Name string
	// ShortDoc is the one line usage summary.
	ShortDoc string
	// LongDoc is the help text. It may be written as an indented block;
	// see HelpText.
	LongDoc string
}

// Usage returns ShortDoc, or the name when no summary was given.
func (m Metadata) Usage() string {
	if m.ShortDoc == "" {
		return m.Name
	}
	return m.ShortDoc
}

// LongDocLines returns the normalized help text.
func (m Metadata) LongDocLines() []string {
	return HelpText(m.LongDoc)
}

// Definition ties metadata to a handler constructor. Exactly one of Create
// and TryCreate must be set.
type Definition struct {
	Metadata

	// Create builds a handler that cannot fail to load.
	Create func() Builtin
	// TryCreate builds a handler or reports why the builtin cannot load.
	TryCreate func() (Builtin, error)
}

// ErrInvalidDefinition is returned for definitions the loader cannot use.
var ErrInvalidDefinition = errors.New("invalid builtin definition")

// Validate checks the definition.
func (d Definition) Validate() error {
	if !validName(d.Name) {
		return errors.Wrapf(ErrInvalidDefinition, "name %q", d.Name)
	}
	if (d.Create == nil) == (d.TryCreate == nil) {
		return errors.Wrapf(ErrInvalidDefinition, "%s: exactly one of Create and TryCreate is required", d.Name)
	}
	return nil
}

func (d Definition) construct() (Builtin, error) {
	if d.TryCreate != nil {
		return d.TryCreate()
	}
	return d.Create(), nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// HelpText normalizes help text authored as an indented block. Leading
// blank lines and trailing whitespace are removed, then the smallest
// indentation of the non-blank lines is stripped from every line. Escape
// sequences such as "\t" are kept as written.
func HelpText(raw string) []string {
	text := raw
	for text != "" {
		// A line made only of blanks is still a leading blank line.
		nl := strings.IndexByte(text, '\n')
		if nl < 0 || strings.TrimSpace(text[:nl]) != "" {
			break
		}
		text = text[nl+1:]
	}
	text = strings.TrimRightFunc(text, isSpace)
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	margin := -1
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if len(line) < margin || strings.TrimSpace(line) == "" {
			line = strings.TrimLeft(line, " \t")
		} else {
			line = line[margin:]
		}
		lines[i] = strings.TrimRightFunc(line, isSpace)
	}
	return lines
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
