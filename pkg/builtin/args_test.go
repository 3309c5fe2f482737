package builtin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

func newArgs(stdout, stderr *bytes.Buffer, args ...string) *Args {
	meta := Metadata{Name: "demo", ShortDoc: "demo [-v] [file ...]", LongDoc: "Demo command."}
	return NewArgs(meta, word.ListOf(args...), stdout, stderr, variables.New(variables.NewMemStore()))
}

func TestArgs_OptionsThenWords(t *testing.T) {
	var stdout, stderr bytes.Buffer
	a := newArgs(&stdout, &stderr, "-v", "a.txt", "b.txt")
	spec := options.MustSpec(options.Flag('v', true))

	var verbose bool
	for v, err := range Options(a, spec) {
		require.NoError(t, err)
		verbose = v
	}

	assert.True(t, verbose)
	assert.Equal(t, []string{"a.txt", "b.txt"}, a.Paths())
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, "demo", a.Name())

	err := a.Finished()
	assert.ErrorIs(t, err, options.ErrUnexpectedArgument)
	a.flush()
	assert.Equal(t, "demo: unexpected argument 'a.txt'\n", stderr.String())
}

func TestArgs_NoOptions(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   error
		wantWords []string
		wantOut   string
		wantErrs  string
	}{
		{name: "plain words", args: []string{"a", "b"}, wantWords: []string{"a", "b"}},
		{name: "double dash consumed", args: []string{"--", "-x"}, wantWords: []string{"-x"}},
		{name: "lone dash is a word", args: []string{"-"}, wantWords: []string{"-"}},
		{name: "no words", wantWords: []string{}},
		{
			name:      "option rejected",
			args:      []string{"-x", "a"},
			wantErr:   options.ErrInvalidOption,
			wantWords: []string{"a"},
			wantErrs:  "demo: invalid option -- 'x'\n",
		},
		{
			name:      "help",
			args:      []string{"--help"},
			wantErr:   options.ErrHelp,
			wantWords: []string{},
			wantOut:   "demo: demo [-v] [file ...]\n    Demo command.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			a := newArgs(&stdout, &stderr, tt.args...)

			err := a.NoOptions()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrUsage)
			} else {
				assert.NoError(t, err)
			}

			words, convErr := a.Strings()
			require.NoError(t, convErr)
			assert.Equal(t, tt.wantWords, words)

			a.flush()
			assert.Equal(t, tt.wantOut, stdout.String())
			assert.Equal(t, tt.wantErrs, stderr.String())
		})
	}
}

func TestArgs_StringsRejectsInvalidUTF8(t *testing.T) {
	var stdout, stderr bytes.Buffer
	a := NewArgs(Metadata{Name: "demo"}, word.NewList([][]byte{{0xff, 0xfe}}), &stdout, &stderr, nil)

	_, err := a.Strings()
	assert.ErrorIs(t, err, word.ErrConversion)
	assert.Equal(t, []string{"\xff\xfe"}, a.Paths())
}

func TestArgs_Diagnostics(t *testing.T) {
	var stdout, stderr bytes.Buffer
	a := newArgs(&stdout, &stderr)

	a.Errorf("cannot open %s", "x")
	a.Warnf("%s: no such file", "y")
	a.ShowUsage()

	assert.Empty(t, stderr.String(), "output is buffered until flush")
	a.flush()
	want := "demo: cannot open x\n" +
		"demo: warning: y: no such file\n" +
		"demo: usage: demo [-v] [file ...]\n"
	assert.Equal(t, want, stderr.String())
}
