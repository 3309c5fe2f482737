package shell

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// commands describes the commands the shell implements itself.
var commands = map[string]builtin.Metadata{
	"enable": {
		Name:     "enable",
		ShortDoc: "enable [-d] [-f filename] [name ...]",
		LongDoc: `
			Enable and disable loadable builtins.

			Options:
			  -f	load builtin NAME from shared object FILENAME
			  -d	remove a builtin loaded with -f

			Without options, each NAME must already be enabled. With no
			NAME, the enabled builtins are listed.`,
	},
	"help": {
		Name:     "help",
		ShortDoc: "help [-s] [pattern ...]",
		LongDoc: `
			Display information about builtin commands.

			Options:
			  -s	output only a short usage synopsis for each topic`,
	},
	"declare": {
		Name:     "declare",
		ShortDoc: "declare [-aAnrp] [name[=value] ...]",
		LongDoc: `
			Set variable values and attributes.

			Options:
			  -a	make NAMEs indexed arrays
			  -A	make NAMEs associative arrays
			  -n	make NAME a reference to the variable named by its value
			  -r	make NAMEs readonly
			  -p	display the attributes and value of each NAME`,
	},
	"readonly": {
		Name:     "readonly",
		ShortDoc: "readonly [-aAp] [name[=value] ...]",
		LongDoc:  "Mark shell variables as unchangeable.",
	},
	"unset": {
		Name:     "unset",
		ShortDoc: "unset [-v] [-n] [name ...]",
		LongDoc: `
			Unset values and attributes of shell variables.

			Options:
			  -v	treat each NAME as a shell variable
			  -n	treat each NAME as a name reference and unset the
				variable itself rather than the variable it references`,
	},
	"echo": {
		Name:     "echo",
		ShortDoc: "echo [-n] [arg ...]",
		LongDoc:  "Write arguments to the standard output.",
	},
	"exit": {
		Name:     "exit",
		ShortDoc: "exit [n]",
		LongDoc:  "Exit the script with a status of N, or the status of the last command.",
	},
	"true":  {Name: "true", ShortDoc: "true", LongDoc: "Return a successful result."},
	"false": {Name: "false", ShortDoc: "false", LongDoc: "Return an unsuccessful result."},
}

// parseArgs parses the options of a shell command. ok is false when the
// command must stop with status.
func parseArgs[T any](s *Shell, cmd string, spec *options.Spec[T], args []string) (opts []T, rest []string, status int, ok bool) {
	meta := commands[cmd]
	p := options.NewParser(spec, word.ListOf(args...), options.Reporter{
		Name: s.name + ": " + cmd,
		Out:  s.stderr,
		Help: func() { builtin.WriteHelp(s.stdout, meta) },
	})
	opts, err := p.Collect()
	switch {
	case errors.Is(err, options.ErrHelp):
		return nil, nil, builtin.ExitBadUsage, false
	case err != nil:
		fmt.Fprintf(s.stderr, "%s: usage: %s\n", cmd, meta.Usage())
		return nil, nil, builtin.ExitBadUsage, false
	}
	return opts, p.Rest().Strings(), builtin.ExitSuccess, true
}

type enableOpt struct {
	file    string
	disable bool
}

var enableSpec = options.MustSpec(
	options.Required('f', word.Path, func(f string) enableOpt { return enableOpt{file: f} }),
	options.Flag('d', enableOpt{disable: true}),
)

func (s *Shell) enable(args []string) int {
	opts, names, status, ok := parseArgs(s, "enable", enableSpec, args)
	if !ok {
		return status
	}

	var (
		file    string
		disable bool
	)
	for _, o := range opts {
		if o.disable {
			disable = true
		} else {
			file = o.file
		}
	}

	switch {
	case disable && file != "":
		s.errorf("enable: cannot use -d and -f together")
		return builtin.ExitBadUsage
	case disable:
		return s.disable(names)
	case file != "":
		if len(names) == 0 {
			names = []string{libraryName(file)}
		}
		return s.load(file, names)
	case len(names) == 0:
		for _, name := range s.loader.Enabled() {
			fmt.Fprintf(s.stdout, "enable %s\n", name)
		}
		return builtin.ExitSuccess
	}

	status = builtin.ExitSuccess
	for _, name := range names {
		if _, loaded := s.loader.Lookup(name); loaded {
			continue
		}
		if _, own := commands[name]; own {
			continue
		}
		s.errorf("enable: %s: not a shell builtin", name)
		status = builtin.ExitFailure
	}
	return status
}

// libraryName derives the builtin name from a shared object path, so
// "./libcounter.so" names "counter".
func libraryName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, "lib")
}

func (s *Shell) load(file string, names []string) int {
	status := builtin.ExitSuccess
	for _, name := range names {
		if _, ok := s.registry.Lookup(name); !ok {
			s.errorf("enable: cannot find %s_struct in shared object %s: undefined symbol: %s_struct", name, file, name)
			status = builtin.ExitFailure
			continue
		}
		if _, err := s.loader.Load(name); err != nil {
			s.errorf("enable: load function for %s returns failure (0): not loaded", name)
			status = builtin.ExitFailure
			continue
		}
		s.logger.Debug("enabled builtin", "name", name, "file", file)
	}
	return status
}

func (s *Shell) disable(names []string) int {
	status := builtin.ExitSuccess
	for _, name := range names {
		h, ok := s.loader.Lookup(name)
		if !ok {
			s.errorf("enable: %s: not dynamically loaded", name)
			status = builtin.ExitFailure
			continue
		}
		if err := s.loader.Unload(h); err != nil {
			s.errorf("enable: %v", err)
			status = builtin.ExitFailure
		}
	}
	return status
}

var helpSpec = options.MustSpec(options.Flag('s', true))

func (s *Shell) help(args []string) int {
	opts, topics, status, ok := parseArgs(s, "help", helpSpec, args)
	if !ok {
		return status
	}
	short := len(opts) > 0

	if len(topics) == 0 {
		for _, meta := range s.topics() {
			fmt.Fprintf(s.stdout, " %s\n", meta.Usage())
		}
		return builtin.ExitSuccess
	}

	status = builtin.ExitSuccess
	for _, topic := range topics {
		meta, found := s.topic(topic)
		if !found {
			s.errorf("help: no help topics match `%s'.  Try `help help' or `man -k %s' or `info %s'.", topic, topic, topic)
			status = builtin.ExitFailure
			continue
		}
		if short {
			fmt.Fprintf(s.stdout, "%s: %s\n", meta.Name, meta.Usage())
			continue
		}
		builtin.WriteHelp(s.stdout, meta)
	}
	return status
}

// topic returns the help of an enabled builtin or a shell command.
func (s *Shell) topic(name string) (builtin.Metadata, bool) {
	if h, ok := s.loader.Lookup(name); ok {
		return s.loader.Metadata(h)
	}
	meta, ok := commands[name]
	return meta, ok
}

// topics returns every help topic sorted by name.
func (s *Shell) topics() []builtin.Metadata {
	all := maps.Clone(commands)
	for _, name := range s.loader.Enabled() {
		if meta, ok := s.topic(name); ok {
			all[name] = meta
		}
	}
	out := make([]builtin.Metadata, 0, len(all))
	for _, name := range slices.Sorted(maps.Keys(all)) {
		out = append(out, all[name])
	}
	return out
}

type declFlag uint8

const (
	declIndexed declFlag = 1 << iota
	declAssoc
	declNameRef
	declReadOnly
	declPrint
)

var declareSpec = options.MustSpec(
	options.Flag('a', declIndexed),
	options.Flag('A', declAssoc),
	options.Flag('n', declNameRef),
	options.Flag('r', declReadOnly),
	options.Flag('p', declPrint),
)

func (s *Shell) declare(cmd string, args []string, readonly bool) int {
	opts, rest, status, ok := parseArgs(s, cmd, declareSpec, args)
	if !ok {
		return status
	}

	var flags declFlag
	if readonly {
		flags |= declReadOnly
	}
	for _, f := range opts {
		flags |= f
	}
	if flags&declIndexed != 0 && flags&declAssoc != 0 {
		s.errorf("%s: cannot use -a and -A together", cmd)
		return builtin.ExitBadUsage
	}

	if flags&declPrint != 0 || len(rest) == 0 {
		return s.printVariables(cmd, rest, flags)
	}

	status = builtin.ExitSuccess
	for _, arg := range rest {
		if err := s.declareOne(arg, flags); err != nil {
			s.errorf("%s: %v", cmd, err)
			status = builtin.ExitFailure
		}
	}
	return status
}

func (s *Shell) declareOne(arg string, flags declFlag) error {
	name, value, hasValue := strings.Cut(arg, "=")
	if !variables.ValidName(name) {
		return errors.Newf("`%s': not a valid identifier", arg)
	}

	switch {
	case flags&declNameRef != 0:
		if value != "" && !variables.ValidName(value) {
			return errors.Newf("`%s': invalid variable name for name reference", value)
		}
		if value == name {
			return errors.Newf("%s: nameref variable self references not allowed", name)
		}
		if cell, ok := s.store.Peek(name); ok && (cell.ReadOnly || cell.Special) {
			return &variables.Error{Op: "declare", Name: name, Err: variables.ErrReadOnly}
		}
		if err := s.store.DeclareNameRef(name, value); err != nil {
			return &variables.Error{Op: "declare", Name: name, Err: err}
		}
		if flags&declReadOnly != 0 {
			s.store.MarkReadOnly(name)
		}
		return nil

	case flags&declAssoc != 0:
		if err := s.vars.DeclareAssoc(name); err != nil {
			return err
		}
		if hasValue {
			if err := s.vars.AssocSet(name, "0", []byte(value)); err != nil {
				return err
			}
		}

	case flags&declIndexed != 0:
		if err := s.vars.DeclareIndexed(name); err != nil {
			return err
		}
		if hasValue {
			if err := s.vars.ArraySet(name, 0, []byte(value)); err != nil {
				return err
			}
		}

	case hasValue:
		if err := s.vars.Set(name, []byte(value)); err != nil {
			return err
		}
	}

	if flags&declReadOnly != 0 {
		return s.markReadOnly(name)
	}
	return nil
}

func (s *Shell) markReadOnly(name string) error {
	v, err := s.vars.Peek(name)
	if err != nil {
		return err
	}
	target, cell := v.Name, v.Cell
	if cell.Special {
		return nil
	}
	if cell.Kind == variables.Unset {
		if err := s.store.Bind(target, nil); err != nil {
			return &variables.Error{Op: "readonly", Name: target, Err: err}
		}
	}
	s.store.MarkReadOnly(target)
	return nil
}

func (s *Shell) printVariables(cmd string, names []string, flags declFlag) int {
	all := len(names) == 0
	if all {
		names = s.store.Names()
	}

	status := builtin.ExitSuccess
	for _, name := range names {
		cell, ok := s.store.Lookup(name)
		if !ok {
			s.errorf("%s: %s: not found", cmd, name)
			status = builtin.ExitFailure
			continue
		}
		if all && !matches(cell, flags) {
			continue
		}
		fmt.Fprintln(s.stdout, formatDeclare(name, cell))
	}
	return status
}

// matches filters listings by the attribute flags given.
func matches(cell variables.Cell, flags declFlag) bool {
	switch {
	case flags&declIndexed != 0 && cell.Kind != variables.Indexed:
		return false
	case flags&declAssoc != 0 && cell.Kind != variables.Assoc:
		return false
	case flags&declNameRef != 0 && cell.Kind != variables.NameRef:
		return false
	case flags&declReadOnly != 0 && !cell.ReadOnly:
		return false
	}
	return true
}

// formatDeclare renders a variable the way declare -p does.
func formatDeclare(name string, cell variables.Cell) string {
	var attrs string
	switch cell.Kind {
	case variables.Indexed:
		attrs = "a"
	case variables.Assoc:
		attrs = "A"
	case variables.NameRef:
		attrs = "n"
	}
	if cell.ReadOnly {
		attrs += "r"
	}
	if attrs == "" {
		attrs = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "declare -%s %s", attrs, name)
	switch cell.Kind {
	case variables.Scalar:
		if cell.Value != nil || !cell.ReadOnly {
			b.WriteString("=" + quote(string(cell.Value)))
		}
	case variables.NameRef:
		b.WriteString("=" + quote(cell.Ref))
	case variables.Indexed:
		parts := make([]string, 0, len(cell.Indexed))
		for _, idx := range slices.Sorted(maps.Keys(cell.Indexed)) {
			parts = append(parts, fmt.Sprintf("[%d]=%s", idx, quote(string(cell.Indexed[idx]))))
		}
		b.WriteString("=(" + strings.Join(parts, " ") + ")")
	case variables.Assoc:
		b.WriteString("=(")
		for _, key := range slices.Sorted(maps.Keys(cell.Assoc)) {
			fmt.Fprintf(&b, "[%s]=%s ", quoteKey(key), quote(string(cell.Assoc[key])))
		}
		b.WriteString(")")
	}
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if strings.IndexByte("\"\\$`", s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func quoteKey(key string) string {
	if key != "" && strings.IndexFunc(key, func(r rune) bool { return !isNameChar(byte(r)) || r > 0x7f }) < 0 {
		return key
	}
	return quote(key)
}

type unsetMode int

const (
	unsetVariable unsetMode = iota
	unsetNameRef
)

var unsetSpec = options.MustSpec(
	options.Flag('v', unsetVariable),
	options.Flag('n', unsetNameRef),
)

func (s *Shell) unset(args []string) int {
	opts, names, status, ok := parseArgs(s, "unset", unsetSpec, args)
	if !ok {
		return status
	}
	mode := unsetVariable
	for _, m := range opts {
		mode = m
	}

	status = builtin.ExitSuccess
	for _, arg := range names {
		name, sub, element := variables.SplitSubscript(arg)
		if !variables.ValidName(name) {
			s.errorf("unset: `%s': not a valid identifier", arg)
			status = builtin.ExitFailure
			continue
		}

		var err error
		switch {
		case element:
			err = s.vars.UnsetElement(name, sub)
		case mode == unsetNameRef:
			err = s.vars.UnsetNameRef(name)
		default:
			err = s.vars.Unset(name)
		}
		if err != nil {
			if errors.Is(err, variables.ErrReadOnly) {
				s.errorf("unset: %s: cannot unset: readonly variable", name)
			} else {
				s.errorf("unset: %v", err)
			}
			status = builtin.ExitFailure
		}
	}
	return status
}

func (s *Shell) echo(args []string) int {
	newline := true
	for len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	fmt.Fprint(s.stdout, strings.Join(args, " "))
	if newline {
		fmt.Fprintln(s.stdout)
	}
	return builtin.ExitSuccess
}

func (s *Shell) exit(args []string) int {
	s.exited = true
	if len(args) == 0 {
		return s.status
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		s.errorf("exit: %s: numeric argument required", args[0])
		return StatusSyntaxError
	}
	return n & 0xff
}
