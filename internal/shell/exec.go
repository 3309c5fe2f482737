package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// Exit statuses of the shell itself.
const (
	StatusNotFound    = 127
	StatusSyntaxError = 2
)

// Run executes one command line and returns its exit status. Leading
// NAME=value words are assignments; the first other word names the
// command. A blank line leaves $? unchanged.
func (s *Shell) Run(line string) int {
	lx := &lexer{src: line, expand: s.expand}
	tokens, err := lx.tokens()
	if err != nil {
		s.errorf("%v", err)
		return s.setStatus(StatusSyntaxError)
	}
	if len(tokens) == 0 {
		return s.status
	}

	i := 0
	for ; i < len(tokens) && tokens[i].assign > 0; i++ {
		if err := s.assign(tokens[i]); err != nil {
			s.errorf("%v", err)
			return s.setStatus(builtin.ExitFailure)
		}
	}
	if i == len(tokens) {
		return s.setStatus(builtin.ExitSuccess)
	}

	args := make([]string, 0, len(tokens)-i-1)
	for _, tok := range tokens[i+1:] {
		args = append(args, tok.text)
	}
	return s.setStatus(s.exec(tokens[i].text, args))
}

// Call runs the command name with args as given, without quote removal or
// expansion, and returns its exit status.
func (s *Shell) Call(name string, args ...string) int {
	return s.setStatus(s.exec(name, args))
}

func (s *Shell) setStatus(status int) int {
	s.status = status
	return status
}

// RunScript runs r line by line and returns the status of the last
// command. A line ending in a backslash continues on the next line. The
// exit command stops the script.
func (s *Shell) RunScript(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	defer s.specials.lineno.Store(0)

	var (
		line    int64
		start   int64
		pending strings.Builder
	)
	s.exited = false
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if pending.Len() == 0 {
			start = line
		}
		if cont, ok := strings.CutSuffix(text, "\\"); ok && !strings.HasSuffix(cont, "\\") {
			pending.WriteString(cont)
			continue
		}
		pending.WriteString(text)

		s.specials.lineno.Store(start)
		s.Run(pending.String())
		pending.Reset()
		if s.exited {
			return s.status, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return s.status, errors.Wrap(err, "reading script")
	}
	if pending.Len() > 0 {
		s.specials.lineno.Store(start)
		s.Run(pending.String())
	}
	return s.status, nil
}

// exec runs a loaded builtin or one of the shell commands.
func (s *Shell) exec(name string, args []string) int {
	if h, ok := s.loader.Lookup(name); ok {
		status := s.loader.Invoke(h, word.ListOf(args...))
		if status == builtin.ExUsage {
			status = builtin.ExitBadUsage
		}
		return status
	}

	switch name {
	case "enable":
		return s.enable(args)
	case "help":
		return s.help(args)
	case "declare", "typeset", "local":
		return s.declare("declare", args, false)
	case "readonly":
		return s.declare("readonly", args, true)
	case "unset":
		return s.unset(args)
	case "echo":
		return s.echo(args)
	case "exit":
		return s.exit(args)
	case "true", ":":
		return builtin.ExitSuccess
	case "false":
		return builtin.ExitFailure
	}

	s.errorf("%s: command not found", name)
	return StatusNotFound
}

// assign applies a NAME=value or NAME[sub]=value word.
func (s *Shell) assign(tok token) error {
	target, value := tok.text[:tok.assign], []byte(tok.text[tok.assign+1:])
	name, sub, element := variables.SplitSubscript(target)
	if !element {
		return s.vars.Set(name, value)
	}

	v, err := s.vars.Peek(name)
	if err != nil {
		return err
	}
	if v.Kind == variables.Assoc {
		return s.vars.AssocSet(name, sub, value)
	}
	idx, err := variables.ParseIndex(sub)
	if err != nil {
		return &variables.Error{Op: "assign", Name: target, Err: err}
	}
	return s.vars.ArraySet(name, idx, value)
}

// errorf prints a shell diagnostic. Inside a script the line number is
// included.
func (s *Shell) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if line := s.specials.lineno.Load(); line > 0 {
		fmt.Fprintf(s.stderr, "%s: line %d: %s\n", s.name, line, msg)
		return
	}
	fmt.Fprintf(s.stderr, "%s: %s\n", s.name, msg)
}
