package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

func TestNewSpec(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry[string]
		want    string
		wantErr error
	}{
		{
			name: "optstring",
			entries: []Entry[string]{
				Flag('r', "r"),
				Required('s', word.String, func(s string) string { return s }),
				Optional('f', word.String, func(*string) string { return "f" }),
			},
			want: "rs:f;",
		},
		{
			name:    "empty table",
			entries: nil,
			want:    "",
		},
		{
			name:    "duplicate letter",
			entries: []Entry[string]{Flag('r', "a"), Flag('r', "b")},
			wantErr: ErrDuplicateOption,
		},
		{
			name:    "punctuation is not a letter",
			entries: []Entry[string]{Flag(':', "colon")},
			wantErr: ErrInvalidLetter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewSpec(tt.entries...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.String())
		})
	}
}

func TestSpecLookup(t *testing.T) {
	spec := MustSpec(
		Flag('k', 1),
		Custom('m', OptionalArgument, func(*word.Word) (int, error) { return 2, nil }),
	)

	kind, ok := spec.Lookup('m')
	require.True(t, ok)
	assert.Equal(t, OptionalArgument, kind)
	assert.Equal(t, "optional", kind.String())

	_, ok = spec.Lookup('z')
	assert.False(t, ok)

	assert.Equal(t, []byte{'k', 'm'}, spec.Letters())
}

func TestMustSpecPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustSpec(Flag('a', 1), Flag('a', 2))
	})
}
