package variables

import (
	"strconv"
	"strings"
)

// ValidName reports whether name matches the shell identifier grammar:
// ASCII letters, digits and underscores, not starting with a digit.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// SpecialName reports whether name is a special parameter such as "?", "$"
// or a positional parameter. Special parameters can be read but never
// assigned.
func SpecialName(name string) bool {
	if len(name) == 1 && strings.ContainsRune("?$#!-@*", rune(name[0])) {
		return true
	}
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

// ParseIndex parses a non-negative indexed array subscript.
func ParseIndex(subscript string) (int64, error) {
	i, err := strconv.ParseInt(subscript, 10, 64)
	if err != nil || i < 0 {
		return 0, ErrBadSubscript
	}
	return i, nil
}

// SplitSubscript splits "name[sub]" into its parts. ok is false when ref
// has no subscript.
func SplitSubscript(ref string) (name, subscript string, ok bool) {
	open := strings.IndexByte(ref, '[')
	if open <= 0 || !strings.HasSuffix(ref, "]") {
		return ref, "", false
	}
	return ref[:open], ref[open+1 : len(ref)-1], true
}
