package shell

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

// expand returns the value of a parameter reference: NAME, NAME[sub],
// NAME[@], #NAME for the length of a value, or #NAME[@] for the number of
// elements. Unset variables expand to nothing.
func (s *Shell) expand(ref string) (string, error) {
	if length, ok := strings.CutPrefix(ref, "#"); ok && length != "" {
		return s.expandLength(ref, length)
	}

	name, sub, indexed := variables.SplitSubscript(ref)
	if !variables.ValidName(name) && !variables.SpecialName(name) {
		return "", errors.Wrapf(ErrBadSubstitution, "${%s}", ref)
	}
	if !indexed {
		v, _, err := s.vars.Get(name)
		return string(v), err
	}

	if sub == "@" || sub == "*" {
		items, err := s.vars.Items(name)
		if err != nil {
			return "", err
		}
		values := make([]string, len(items))
		for i, item := range items {
			values[i] = string(item.Value)
		}
		return strings.Join(values, " "), nil
	}

	v, _, err := s.element(name, sub)
	return string(v), err
}

func (s *Shell) expandLength(ref, target string) (string, error) {
	name, sub, indexed := variables.SplitSubscript(target)
	if !variables.ValidName(name) && !variables.SpecialName(name) {
		return "", errors.Wrapf(ErrBadSubstitution, "${%s}", ref)
	}
	if indexed && (sub == "@" || sub == "*") {
		items, err := s.vars.Items(name)
		return strconv.Itoa(len(items)), err
	}

	var (
		v   []byte
		err error
	)
	if indexed {
		v, _, err = s.element(name, sub)
	} else {
		v, _, err = s.vars.Get(name)
	}
	return strconv.Itoa(len([]rune(string(v)))), err
}

// element reads name[sub], treating sub as a key for associative arrays
// and as an index otherwise.
func (s *Shell) element(name, sub string) ([]byte, bool, error) {
	v, err := s.vars.Find(name)
	if err != nil {
		return nil, false, err
	}
	if v.Kind == variables.Assoc {
		return s.vars.AssocGet(name, sub)
	}
	idx, err := variables.ParseIndex(sub)
	if err != nil {
		return nil, false, &variables.Error{Op: "expand", Name: name, Err: err}
	}
	return s.vars.ArrayGet(name, idx)
}
