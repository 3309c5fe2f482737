package frontmatter

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

type meta struct {
	Name     string `yaml:"name"`
	ShortDoc string `yaml:"short_doc,omitempty"`
	Options  []struct {
		Letter string `yaml:"letter"`
		Arg    string `yaml:"arg"`
	} `yaml:"options,omitempty"`
}

func TestMustParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantOpts int
		wantBody string
		wantErr  error
	}{
		{
			name: "manifest with options",
			input: `---
name: greet
short_doc: greet [-n name]
options:
  - letter: n
    arg: required
---

Print a greeting.
`,
			wantName: "greet",
			wantOpts: 1,
			wantBody: "Print a greeting.\n",
		},
		{
			name:     "no body",
			input:    "---\nname: nobody\n---\n",
			wantName: "nobody",
		},
		{
			name:     "closing delimiter at end of file",
			input:    "---\nname: eof\n---",
			wantName: "eof",
		},
		{
			name:     "CRLF line endings",
			input:    "---\r\nname: crlf\r\n---\r\n\r\nCRLF body.\r\n",
			wantName: "crlf",
			wantBody: "CRLF body.\r\n",
		},
		{
			name:     "body containing a rule",
			input:    "---\nname: rule\n---\nabove\n---\nbelow\n",
			wantName: "rule",
			wantBody: "above\n---\nbelow\n",
		},
		{
			name:    "no frontmatter",
			input:   "# Just a markdown file\n",
			wantErr: ErrMissingFrontmatter,
		},
		{
			name:    "unterminated",
			input:   "---\nname: open\n",
			wantErr: ErrUnterminated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m meta
			body, err := MustParse(strings.NewReader(tt.input), &m)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("MustParse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("MustParse() error = %v", err)
			}
			if m.Name != tt.wantName {
				t.Errorf("name: got %q, want %q", m.Name, tt.wantName)
			}
			if len(m.Options) != tt.wantOpts {
				t.Errorf("options: got %d, want %d", len(m.Options), tt.wantOpts)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body: got %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestMustParse_InvalidYAML(t *testing.T) {
	var m meta
	_, err := MustParse(strings.NewReader("---\nname: [broken\n---\nbody"), &m)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing frontmatter") {
		t.Errorf("error should mention frontmatter: %v", err)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	in := meta{Name: "greet", ShortDoc: "greet -n NAME"}

	data, err := Format(in, "Print a greeting.")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "---\nname: greet\nshort_doc: greet -n NAME\n---\n\nPrint a greeting.\n"
	if string(data) != want {
		t.Errorf("Format() = %q, want %q", data, want)
	}

	var out meta
	body, err := MustParse(strings.NewReader(string(data)), &out)
	if err != nil {
		t.Fatalf("MustParse() error = %v", err)
	}
	if out.Name != in.Name || out.ShortDoc != in.ShortDoc {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
	if string(body) != "Print a greeting.\n" {
		t.Errorf("body = %q", body)
	}
}
