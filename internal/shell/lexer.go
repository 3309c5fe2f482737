package shell

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Syntax errors reported by the tokenizer.
var (
	ErrUnterminatedQuote = errors.New("unexpected EOF while looking for matching quote")
	ErrBadSubstitution   = errors.New("bad substitution")
)

// token is one word of a command line after quote removal and expansion.
type token struct {
	text string
	// assign is the offset of the '=' when the word starts with an unquoted
	// NAME= or NAME[sub]= prefix, and -1 otherwise.
	assign int
}

// lexer splits a command line into words. Words are separated by blanks,
// quotes group text, and $NAME, ${NAME} and ${NAME[sub]} are expanded.
// Expanded text is never split again.
type lexer struct {
	src    string
	pos    int
	expand func(ref string) (string, error)
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (l *lexer) tokens() ([]token, error) {
	var out []token
	for {
		for !l.eof() && isBlank(l.src[l.pos]) {
			l.pos++
		}
		if l.eof() || l.src[l.pos] == '#' {
			return out, nil
		}
		tok, err := l.word()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
}

func (l *lexer) word() (token, error) {
	var b strings.Builder
	tok := token{assign: -1}
	// literal stays true while the word could still be an assignment.
	// Quotes and expansions are allowed inside the subscript.
	literal, subscript := true, false

	for !l.eof() && !isBlank(l.src[l.pos]) {
		c := l.src[l.pos]
		switch c {
		case '\'':
			end := strings.IndexByte(l.src[l.pos+1:], '\'')
			if end < 0 {
				return tok, errors.Wrap(ErrUnterminatedQuote, "`''")
			}
			b.WriteString(l.src[l.pos+1 : l.pos+1+end])
			l.pos += end + 2
			literal = literal && subscript
		case '"':
			if err := l.doubleQuoted(&b); err != nil {
				return tok, err
			}
			literal = literal && subscript
		case '\\':
			l.pos++
			if !l.eof() {
				b.WriteByte(l.src[l.pos])
				l.pos++
			}
			literal = literal && subscript
		case '$':
			if err := l.dollar(&b); err != nil {
				return tok, err
			}
			literal = literal && subscript
		case '=':
			if literal && tok.assign < 0 && isAssignTarget(b.String()) {
				tok.assign = b.Len()
			}
			b.WriteByte(c)
			l.pos++
		case '[':
			if literal && tok.assign < 0 && b.Len() > 0 {
				subscript = true
			}
			b.WriteByte(c)
			l.pos++
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	tok.text = b.String()
	return tok, nil
}

func (l *lexer) doubleQuoted(b *strings.Builder) error {
	l.pos++
	for !l.eof() {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return nil
		case '\\':
			if l.pos+1 < len(l.src) && strings.IndexByte("$\"\\`", l.src[l.pos+1]) >= 0 {
				b.WriteByte(l.src[l.pos+1])
				l.pos += 2
				continue
			}
			b.WriteByte(c)
			l.pos++
		case '$':
			if err := l.dollar(b); err != nil {
				return err
			}
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return errors.Wrap(ErrUnterminatedQuote, "`\"'")
}

// dollar expands the reference starting at the '$' under the cursor. A '$'
// not followed by a name is kept as is.
func (l *lexer) dollar(b *strings.Builder) error {
	l.pos++
	if l.eof() {
		b.WriteByte('$')
		return nil
	}

	var ref string
	c := l.src[l.pos]
	switch {
	case c == '{':
		end := strings.IndexByte(l.src[l.pos:], '}')
		if end < 0 {
			return errors.Wrap(ErrBadSubstitution, l.src[l.pos-1:])
		}
		ref = l.src[l.pos+1 : l.pos+end]
		l.pos += end + 1
		if ref == "" {
			return errors.Wrap(ErrBadSubstitution, "${}")
		}
	case isNameStart(c):
		start := l.pos
		for !l.eof() && isNameChar(l.src[l.pos]) {
			l.pos++
		}
		ref = l.src[start:l.pos]
	case strings.IndexByte("?$#0123456789", c) >= 0:
		ref = string(c)
		l.pos++
	default:
		b.WriteByte('$')
		return nil
	}

	value, err := l.expand(ref)
	if err != nil {
		return err
	}
	b.WriteString(value)
	return nil
}

func isNameStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9'
}

// isAssignTarget reports whether s is NAME or NAME[sub].
func isAssignTarget(s string) bool {
	name := s
	if open := strings.IndexByte(s, '['); open > 0 {
		if !strings.HasSuffix(s, "]") {
			return false
		}
		name = s[:open]
	}
	if name == "" || !isNameStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isNameChar(name[i]) {
			return false
		}
	}
	return true
}
