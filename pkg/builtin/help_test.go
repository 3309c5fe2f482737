package builtin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
		{
			name: "only blanks",
			raw:  "\n   \n\t\n",
			want: nil,
		},
		{
			name: "indented block",
			raw: `
    Counter builtin.

    Options:
      -r  reset the counter
  `,
			want: []string{"Counter builtin.", "", "Options:", "  -r  reset the counter"},
		},
		{
			name: "leading line of spaces",
			raw:  "   \n  first\n   second",
			want: []string{"first", " second"},
		},
		{
			name: "blank lines after a line of spaces",
			raw:  "   \n\n    Line one\n      indented",
			want: []string{"Line one", "  indented"},
		},
		{
			name: "mixed blank lines",
			raw:  "\r\n\t\n \r\n  body",
			want: []string{"body"},
		},
		{
			name: "escapes kept as written",
			raw:  `  tab\there`,
			want: []string{`tab\there`},
		},
		{
			name: "trailing whitespace removed",
			raw:  "a  \r\nb\t",
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HelpText(tt.raw))
		})
	}
}

func TestWriteHelp(t *testing.T) {
	var buf bytes.Buffer
	WriteHelp(&buf, Metadata{
		Name:     "counter",
		ShortDoc: "counter [-r] [-s value]",
		LongDoc: `
			Print and update a counter.

			With no options the value is printed.
		`,
	})

	want := "counter: counter [-r] [-s value]\n" +
		"    Print and update a counter.\n" +
		"\n" +
		"    With no options the value is printed.\n"
	assert.Equal(t, want, buf.String())
}

func TestMetadataUsage(t *testing.T) {
	assert.Equal(t, "upcase", Metadata{Name: "upcase"}.Usage())
	assert.Equal(t, "upcase [word ...]", Metadata{Name: "upcase", ShortDoc: "upcase [word ...]"}.Usage())
}
