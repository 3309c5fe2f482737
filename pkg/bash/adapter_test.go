package bash

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/thoreinstein/bashbuiltins/internal/demo"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	adapter *Adapter
	store   *variables.MemStore
	out     bytes.Buffer
	err     bytes.Buffer
	drop    bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: variables.NewMemStore()}
	reg := builtin.NewRegistry()
	require.NoError(t, demo.Register(reg, demo.WithOutput(&f.drop)))
	host := builtin.StaticHost{Out: &f.out, Err: &f.err, Vars: f.store}
	f.adapter = NewAdapter(host, builtin.WithRegistry(reg))
	return f
}

func TestAdapter_LoadAndInvoke(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.adapter.Load("counter"))
	assert.True(t, f.adapter.Load("counter"), "loading twice keeps the handler")
	assert.Equal(t, []string{"counter"}, f.adapter.Loader().Enabled())

	assert.Equal(t, builtin.ExitSuccess, f.adapter.Invoke("counter", word.List{}))
	assert.Equal(t, builtin.ExitSuccess, f.adapter.Invoke("counter", word.List{}))
	assert.Equal(t, "0\n1\n", f.out.String())

	assert.Equal(t, builtin.ExUsage, f.adapter.Invoke("counter", word.ListOf("-x")))
	assert.Contains(t, f.err.String(), "counter: ")
}

func TestAdapter_LoadFailures(t *testing.T) {
	f := newFixture(t)

	assert.False(t, f.adapter.Load("loadfail"))
	assert.False(t, f.adapter.Load("missing"))
	assert.Equal(t,
		"loadfail: error: something really bad happened\n"+
			"missing: error: builtin not registered\n",
		f.err.String())
	assert.Empty(t, f.adapter.Loader().Enabled())
}

func TestAdapter_InvokeUnknown(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, builtin.ExitFailure, f.adapter.Invoke("upcase", word.ListOf("a")))
	assert.Equal(t, "upcase: unknown builtin handle\n", f.err.String())
	assert.Empty(t, f.out.String())
}

func TestAdapter_Unload(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.adapter.Load("unload"))
	f.adapter.Invoke("unload", word.List{})
	f.adapter.Invoke("unload", word.List{})
	assert.Equal(t, "1\n2\n", f.out.String())

	f.adapter.Unload("unload")
	assert.Equal(t, "[drop] 2\n", f.drop.String())
	assert.Empty(t, f.adapter.Loader().Enabled())

	f.adapter.Unload("unload")
	assert.Equal(t, "[drop] 2\n", f.drop.String(), "second unload is a no-op")
}

func TestAdapter_UnloadRemovesDynamics(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.adapter.Load("varcounter"))
	require.Equal(t, builtin.ExitSuccess, f.adapter.Invoke("varcounter", word.ListOf("TICK")))

	cell, ok := f.store.Lookup("TICK")
	require.True(t, ok)
	assert.True(t, cell.Dynamic)
	assert.Equal(t, "0", string(cell.Value))

	f.adapter.Unload("varcounter")
	_, ok = f.store.Lookup("TICK")
	assert.False(t, ok)
}

func TestAdapter_Docs(t *testing.T) {
	f := newFixture(t)

	_, _, ok := f.adapter.Docs("upcase")
	assert.False(t, ok, "docs need a loaded builtin")

	require.True(t, f.adapter.Load("upcase"))
	usage, long, ok := f.adapter.Docs("upcase")
	require.True(t, ok)
	assert.Equal(t, "upcase [args]", usage)
	assert.Equal(t, []string{"Print the uppercase equivalent of the arguments."}, long)

	require.True(t, f.adapter.Load("canpanic"))
	usage, long, ok = f.adapter.Docs("canpanic")
	require.True(t, ok)
	assert.Equal(t, "canpanic [panic]", usage)
	assert.Empty(t, long)
}

func TestLoggerFromEnv(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		value string
		level slog.Level
		off   bool
	}{
		{value: "", off: true},
		{value: "0", off: true},
		{value: "1", level: slog.LevelDebug},
		{value: "true", level: slog.LevelDebug},
		{value: "2", level: logging.LevelTrace},
	}
	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			var out bytes.Buffer
			getenv := func(key string) string {
				if key == DebugEnv {
					return tt.value
				}
				return ""
			}
			logger := loggerFromEnv(getenv, &out)
			if tt.off {
				assert.False(t, logger.Enabled(ctx, slog.LevelError))
				return
			}
			assert.True(t, logger.Enabled(ctx, tt.level))
			assert.False(t, logger.Enabled(ctx, tt.level-1))

			logger.Debug("loaded", "name", "counter")
			assert.Contains(t, out.String(), "loaded")
		})
	}
}
