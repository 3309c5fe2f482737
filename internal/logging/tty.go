package logging

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// ColorMode controls ANSI colors in log and report output.
type ColorMode string

const (
	// ColorAuto colors terminals unless NO_COLOR is set or TERM is dumb.
	ColorAuto ColorMode = "auto"
	// ColorAlways colors every writer.
	ColorAlways ColorMode = "always"
	// ColorNever disables colors.
	ColorNever ColorMode = "never"
)

// ParseColorMode converts a --color value. The empty string is ColorAuto.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(s)); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", errors.Newf("invalid color mode %q: must be auto, always or never", s)
	}
}

// Enabled reports whether output written to w should be colored.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return colorEnv(os.LookupEnv) && IsTTY(w)
	}
}

// colorEnv applies NO_COLOR (https://no-color.org) and TERM=dumb.
func colorEnv(lookup func(string) (string, bool)) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if t, _ := lookup("TERM"); t == "dumb" {
		return false
	}
	return true
}

// IsTTY reports whether w is a terminal. Writers that expose Fd, such as
// *os.File, are checked; anything else is not a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor is ColorAuto.Enabled.
func SupportsColor(w io.Writer) bool {
	return ColorAuto.Enabled(w)
}
