package options

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

type counterOpt interface{}

type (
	reset struct{}
	set   int
	add   int
)

func counterSpec(t *testing.T) *Spec[counterOpt] {
	t.Helper()
	spec, err := NewSpec(
		Flag[counterOpt]('r', reset{}),
		Required('s', word.Int, func(n int) counterOpt { return set(n) }),
		Required('a', word.Int, func(n int) counterOpt { return add(n) }),
	)
	require.NoError(t, err)
	return spec
}

func parse[T any](spec *Spec[T], args ...string) ([]T, []string, string, error) {
	var stderr bytes.Buffer
	p := NewParser(spec, word.ListOf(args...), Reporter{Name: "counter", Out: &stderr})
	got, err := p.Collect()
	var rest []string
	if p.Done() {
		rest = p.Rest().Strings()
	}
	return got, rest, stderr.String(), err
}

func TestParser_Counter(t *testing.T) {
	spec := counterSpec(t)

	tests := []struct {
		name     string
		args     []string
		want     []counterOpt
		wantRest []string
		wantErr  error
		wantDiag string
	}{
		{
			name:     "required argument that starts with a hyphen",
			args:     []string{"-s", "-10"},
			want:     []counterOpt{set(-10)},
			wantRest: []string{},
		},
		{
			name:     "positional only",
			args:     []string{"bad"},
			want:     nil,
			wantRest: []string{"bad"},
		},
		{
			name:     "clustered with attached argument",
			args:     []string{"-rs5", "-a", "2", "x", "-r"},
			want:     []counterOpt{reset{}, set(5), add(2)},
			wantRest: []string{"x", "-r"},
		},
		{
			name:     "double dash ends options",
			args:     []string{"-r", "--", "-a"},
			want:     []counterOpt{reset{}},
			wantRest: []string{"-a"},
		},
		{
			name:     "lone hyphen is positional",
			args:     []string{"-r", "-", "-r"},
			want:     []counterOpt{reset{}},
			wantRest: []string{"-", "-r"},
		},
		{
			name:     "missing argument",
			args:     []string{"-r", "-s"},
			want:     []counterOpt{reset{}},
			wantErr:  ErrMissingArgument,
			wantDiag: "counter: option requires an argument -- 's'\n",
		},
		{
			name:     "invalid option",
			args:     []string{"-rz"},
			want:     []counterOpt{reset{}},
			wantErr:  ErrInvalidOption,
			wantDiag: "counter: invalid option -- 'z'\n",
		},
		{
			name:     "invalid value",
			args:     []string{"-a", "ten"},
			wantErr:  ErrInvalidValue,
			wantDiag: "counter: invalid value 'ten' for option -- 'a'\n",
		},
		{
			name:     "overflow is an invalid value",
			args:     []string{"-s99999999999999999999"},
			wantErr:  ErrInvalidValue,
			wantDiag: "counter: invalid value '99999999999999999999' for option -- 's'\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, diag, err := parse(spec, tt.args...)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDiag, diag)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

type optArg struct {
	letter byte
	value  *uint64
}

func optionalSpec(t *testing.T) *Spec[optArg] {
	t.Helper()
	spec, err := NewSpec(
		Optional('f', word.Uint64, func(v *uint64) optArg { return optArg{'f', v} }),
		Flag('b', optArg{letter: 'b'}),
	)
	require.NoError(t, err)
	return spec
}

func describe(opts []optArg) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if o.value == nil {
			out = append(out, string(o.letter))
			continue
		}
		out = append(out, fmt.Sprintf("%c=%d", o.letter, *o.value))
	}
	return out
}

func TestParser_OptionalArgument(t *testing.T) {
	spec := optionalSpec(t)

	tests := []struct {
		name     string
		args     []string
		want     []string
		wantRest []string
	}{
		{name: "attached", args: []string{"-f1"}, want: []string{"f=1"}, wantRest: []string{}},
		{name: "next word", args: []string{"-f", "2", "x"}, want: []string{"f=2"}, wantRest: []string{"x"}},
		{name: "no next word", args: []string{"-f"}, want: []string{"f"}, wantRest: []string{}},
		{name: "hyphen word is rescanned", args: []string{"-f", "-b"}, want: []string{"f", "b"}, wantRest: []string{}},
		{name: "lone hyphen stays positional", args: []string{"-f", "-"}, want: []string{"f"}, wantRest: []string{"-"}},
		{name: "clustered before optional", args: []string{"-bf", "3"}, want: []string{"b", "f=3"}, wantRest: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, diag, err := parse(spec, tt.args...)
			require.NoError(t, err)
			assert.Empty(t, diag)
			assert.Equal(t, tt.want, describe(got))
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestParser_StopsAfterFirstFailure(t *testing.T) {
	spec := counterSpec(t)
	var stderr bytes.Buffer
	p := NewParser(spec, word.ListOf("-x", "-y", "-r"), Reporter{Name: "counter", Out: &stderr})

	_, ok, err := p.Next()
	assert.False(t, ok)
	require.Error(t, err)

	_, ok, err = p.Next()
	assert.False(t, ok)
	assert.NoError(t, err)

	assert.Equal(t, "counter: invalid option -- 'x'\n", stderr.String())
	assert.ErrorIs(t, p.Err(), ErrInvalidOption)
}

func TestParser_Finished(t *testing.T) {
	spec := counterSpec(t)
	var stderr bytes.Buffer
	p := NewParser(spec, word.ListOf("-r", "bad", "worse"), Reporter{Name: "counter", Out: &stderr})

	err := p.Finished()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedArgument)
	assert.Equal(t, "unexpected argument 'bad'", err.Error())
	assert.Equal(t, "counter: unexpected argument 'bad'\n", stderr.String())

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bad", perr.Text)
}

func TestParser_Help(t *testing.T) {
	spec := counterSpec(t)
	var stderr bytes.Buffer
	helped := 0
	p := NewParser(spec, word.ListOf("--help"), Reporter{
		Name: "counter",
		Out:  &stderr,
		Help: func() { helped++ },
	})

	_, err := p.Collect()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHelp)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, 1, helped)
	assert.Empty(t, stderr.String())
}

func TestParser_IteratorIsLazy(t *testing.T) {
	spec := counterSpec(t)
	p := NewParser(spec, word.ListOf("-r", "-r", "-r"), Reporter{})

	n := 0
	for _, err := range p.All() {
		require.NoError(t, err)
		n++
		if n == 1 {
			break
		}
	}
	assert.False(t, p.Done())

	rest, err := p.Collect()
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.True(t, p.Done())
}

func TestParser_RestBeforeDonePanics(t *testing.T) {
	p := NewParser(counterSpec(t), word.ListOf("-r"), Reporter{})
	assert.Panics(t, func() { p.Rest() })
}

func TestParser_ConversionErrorIsWrapped(t *testing.T) {
	_, _, _, err := parse(counterSpec(t), "-s", "x")
	assert.ErrorIs(t, err, word.ErrConversion)
}
