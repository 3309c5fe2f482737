package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "resource not found", NewExitError(ErrNotFound, ExitUser).Error())
	assert.Equal(t, "counter.toml: invalid manifest",
		NewUserError(Wrap(ErrInvalidManifest, "counter.toml"), "fix it").Error())
	assert.Equal(t, "exit code 258", NewStatusError(258).Error())
	assert.Equal(t, "exit code 1", NewExitError(nil, ExitUser).Error())
}

func TestExitError_Chain(t *testing.T) {
	inner := NewConfigError(Wrapf(ErrInvalidConfig, "log.level %q", "loud"))
	wrapped := fmt.Errorf("pre-run: %w", inner)

	assert.True(t, Is(wrapped, ErrInvalidConfig))
	assert.False(t, Is(wrapped, ErrInvalidManifest))
	assert.False(t, Is(NewStatusError(1), ErrNotFound))

	var exitErr *ExitError
	require.True(t, As(wrapped, &exitErr))
	assert.Same(t, inner, exitErr)
	assert.NotEmpty(t, exitErr.Suggestion)
	assert.False(t, As(ErrUnknownBuiltin, &exitErr))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", New("boom"), ExitUser},
		{"user error", NewUserError(ErrUnknownBuiltin, ""), ExitUser},
		{"system error", NewSystemError(New("io"), ""), ExitSystem},
		{"builtin status", Wrap(NewStatusError(3), "exec"), 3},
		{"outermost wins", NewExitError(NewStatusError(7), ExitSystem), ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestExitError_Silent(t *testing.T) {
	assert.True(t, NewStatusError(2).Silent())
	assert.False(t, NewUserError(New("x"), "").Silent())
	assert.False(t, NewSystemError(ErrNotFound, "retry").Silent())
}
