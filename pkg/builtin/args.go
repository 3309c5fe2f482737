package builtin

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// Args is the view of one invocation. It is only valid during Call.
type Args struct {
	meta   Metadata
	words  word.List
	stdout *bufio.Writer
	stderr *bufio.Writer
	vars   *variables.Table

	// pos reports how many words the option parser consumed.
	pos func() int
}

// NewArgs builds the invocation view. Loaders call it; it is exported for
// testing handlers without a loader.
func NewArgs(meta Metadata, words word.List, stdout, stderr io.Writer, vars *variables.Table) *Args {
	return &Args{
		meta:   meta,
		words:  words,
		stdout: bufio.NewWriter(stdout),
		stderr: bufio.NewWriter(stderr),
		vars:   vars,
	}
}

// Name returns the builtin name.
func (a *Args) Name() string {
	return a.meta.Name
}

// Metadata returns the builtin metadata.
func (a *Args) Metadata() Metadata {
	return a.meta
}

// Stdout returns the buffered standard output of the invocation. It is
// flushed when Call returns.
func (a *Args) Stdout() io.Writer {
	return a.stdout
}

// Stderr returns the buffered error stream of the invocation.
func (a *Args) Stderr() io.Writer {
	return a.stderr
}

// Vars returns the variable table of the host.
func (a *Args) Vars() *variables.Table {
	return a.vars
}

func (a *Args) offset() int {
	if a.pos == nil {
		return 0
	}
	return a.pos()
}

// Words returns the arguments not consumed by option parsing.
func (a *Args) Words() word.List {
	return a.words.Slice(a.offset())
}

// Len returns the number of remaining arguments.
func (a *Args) Len() int {
	return a.Words().Len()
}

// IsEmpty reports whether no arguments remain.
func (a *Args) IsEmpty() bool {
	return a.Len() == 0
}

// Strings converts the remaining arguments to UTF-8 strings.
func (a *Args) Strings() ([]string, error) {
	rest := a.Words()
	out := make([]string, 0, rest.Len())
	for i := range rest.Len() {
		s, err := word.String(rest.At(i))
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Paths returns the remaining arguments as filesystem paths.
func (a *Args) Paths() []string {
	return a.Words().Strings()
}

func (a *Args) reporter() options.Reporter {
	return options.Reporter{Name: a.meta.Name, Out: a.stderr, Help: a.ShowHelp}
}

// ParseOptions returns a parser over the arguments of a. Words consumed by
// the parser are no longer reported by Words.
func ParseOptions[T any](a *Args, spec *options.Spec[T]) *options.Parser[T] {
	p := options.NewParser(spec, a.Words(), a.reporter())
	base := a.offset()
	a.words = a.words.Slice(base)
	a.pos = p.Pos
	return p
}

// Options returns the options of a as a lazy sequence.
func Options[T any](a *Args, spec *options.Spec[T]) iter.Seq2[T, error] {
	return ParseOptions(a, spec).All()
}

// NoOptions fails if the arguments start with an option. "--" is consumed
// and "--help" prints the help text.
func (a *Args) NoOptions() error {
	p := ParseOptions(a, noOptions)
	_, _, err := p.Next()
	return err
}

var noOptions = options.MustSpec[struct{}]()

// Finished fails with an "unexpected argument" diagnostic if arguments
// remain.
func (a *Args) Finished() error {
	return options.Finished(a.Words(), a.reporter())
}

// Errorf prints "<name>: <message>" to the error stream.
func (a *Args) Errorf(format string, args ...any) {
	fmt.Fprintf(a.stderr, "%s: %s\n", a.meta.Name, fmt.Sprintf(format, args...))
}

// Warnf prints "<name>: warning: <message>" to the error stream.
func (a *Args) Warnf(format string, args ...any) {
	fmt.Fprintf(a.stderr, "%s: warning: %s\n", a.meta.Name, fmt.Sprintf(format, args...))
}

// ShowUsage prints the usage line the way the host does for bad usage.
func (a *Args) ShowUsage() {
	fmt.Fprintf(a.stderr, "%s: usage: %s\n", a.meta.Name, a.meta.Usage())
}

// ShowHelp prints the help text to standard output.
func (a *Args) ShowHelp() {
	WriteHelp(a.stdout, a.meta)
}

// WriteHelp writes help for m in the host help command format.
func WriteHelp(w io.Writer, m Metadata) {
	fmt.Fprintf(w, "%s: %s\n", m.Name, m.Usage())
	for _, line := range m.LongDocLines() {
		if line == "" {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func (a *Args) flush() {
	_ = a.stdout.Flush()
	_ = a.stderr.Flush()
}
