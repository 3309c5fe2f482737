package options

import (
	"iter"

	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// Parser scans an argument list with the host's short option rules. It is
// single-pass: once the options are exhausted, or after the first failure,
// it yields nothing further.
type Parser[T any] struct {
	spec  *Spec[T]
	args  word.List
	rep   Reporter
	argi  int // word being scanned
	chari int // offset inside args[argi], 0 between words
	done  bool
	err   error
}

// NewParser returns a parser over args. Diagnostics go through rep.
func NewParser[T any](spec *Spec[T], args word.List, rep Reporter) *Parser[T] {
	return &Parser[T]{spec: spec, args: args, rep: rep}
}

// Next returns the next parsed option. ok is false once scanning stopped.
// A non-nil error is returned exactly once and has already been reported.
func (p *Parser[T]) Next() (v T, ok bool, err error) {
	if p.done {
		return v, false, nil
	}

	if p.chari == 0 {
		if p.argi >= p.args.Len() {
			p.done = true
			return v, false, nil
		}
		w := p.args.At(p.argi)
		switch {
		case w.Equal("--"):
			p.argi++
			p.done = true
			return v, false, nil
		case w.Equal("--help"):
			p.argi++
			return v, false, p.fail(&Error{Kind: Help, Text: "--help"})
		case w.Len() < 2 || !w.HasPrefix("-"):
			// A lone "-" and plain words are positional.
			p.done = true
			return v, false, nil
		}
		p.chari = 1
	}

	cur := p.args.At(p.argi).Bytes()
	letter := cur[p.chari]
	p.chari++
	atEnd := p.chari >= len(cur)

	entry, declared := p.spec.entries[letter]
	if !declared {
		if atEnd {
			p.advance()
		}
		return v, false, p.fail(&Error{Kind: InvalidOption, Letter: letter})
	}

	var arg *word.Word
	switch entry.kind {
	case NoArgument:
		if atEnd {
			p.advance()
		}

	case RequiredArgument:
		if !atEnd {
			rest := word.New(cur[p.chari:])
			arg = &rest
			p.advance()
			break
		}
		p.advance()
		if p.argi >= p.args.Len() {
			return v, false, p.fail(&Error{Kind: MissingArgument, Letter: letter})
		}
		next := p.args.At(p.argi)
		arg = &next
		p.argi++

	case OptionalArgument:
		if !atEnd {
			rest := word.New(cur[p.chari:])
			arg = &rest
			p.advance()
			break
		}
		p.advance()
		if p.argi < p.args.Len() && !p.args.At(p.argi).HasPrefix("-") {
			next := p.args.At(p.argi)
			arg = &next
			p.argi++
		}
	}

	v, err = entry.build(arg)
	if err != nil {
		text := ""
		if arg != nil {
			text = arg.String()
		}
		return v, false, p.fail(&Error{Kind: InvalidValue, Letter: letter, Text: text, Err: err})
	}
	return v, true, nil
}

// All returns the remaining options as a sequence. The sequence stops after
// yielding the first error.
func (p *Parser[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := p.Next()
			if err != nil {
				yield(v, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Collect drains the parser into a slice, stopping at the first error.
func (p *Parser[T]) Collect() ([]T, error) {
	var out []T
	for v, err := range p.All() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Done reports whether option scanning has stopped.
func (p *Parser[T]) Done() bool {
	return p.done
}

// Err returns the failure that stopped the parser, if any.
func (p *Parser[T]) Err() error {
	return p.err
}

// Pos returns the index of the first word not consumed by the parser.
func (p *Parser[T]) Pos() int {
	if p.chari > 0 {
		return p.argi + 1
	}
	return p.argi
}

// Rest returns the positional arguments left after the options. It panics
// if the option sequence has not been consumed yet.
func (p *Parser[T]) Rest() word.List {
	if !p.done {
		panic("options: Rest called before the options were consumed")
	}
	return p.args.Slice(p.Pos())
}

// Finished drains any pending options and fails if positional arguments
// remain.
func (p *Parser[T]) Finished() error {
	for _, err := range p.All() {
		if err != nil {
			return err
		}
	}
	if p.err != nil {
		return p.err
	}
	return Finished(p.Rest(), p.rep)
}

func (p *Parser[T]) advance() {
	p.argi++
	p.chari = 0
}

func (p *Parser[T]) fail(err *Error) error {
	p.done = true
	p.err = err
	p.rep.Report(err)
	return err
}
