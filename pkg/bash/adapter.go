package bash

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// Adapter maps the per-name entry points bash calls onto a builtin.Loader.
// Bash identifies builtins by name, the loader by handle.
type Adapter struct {
	loader *builtin.Loader
	stderr io.Writer
}

// NewAdapter returns an adapter loading builtins into host.
func NewAdapter(host builtin.Host, opts ...builtin.LoaderOption) *Adapter {
	stderr := host.Stderr()
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Adapter{loader: builtin.NewLoader(host, opts...), stderr: stderr}
}

// Loader returns the underlying loader.
func (a *Adapter) Loader() *builtin.Loader {
	return a.loader
}

// Load creates the handler for name. It reports whether bash should keep
// the builtin; failures have already been printed.
func (a *Adapter) Load(name string) bool {
	_, err := a.loader.Load(name)
	if err == nil {
		return true
	}
	var loadErr *builtin.LoadError
	if !errors.As(err, &loadErr) {
		fmt.Fprintf(a.stderr, "%s: error: %v\n", name, builtin.ErrNotRegistered)
	}
	return false
}

// Invoke runs name with the words bash passed. Usage errors return
// builtin.ExUsage, which bash reports to scripts as 2.
func (a *Adapter) Invoke(name string, words word.List) int {
	h, ok := a.loader.Lookup(name)
	if !ok {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, builtin.ErrUnknownHandle)
		return builtin.ExitFailure
	}
	return a.loader.Invoke(h, words)
}

// Unload runs the cleanup of name and removes its dynamic variables.
func (a *Adapter) Unload(name string) {
	h, ok := a.loader.Lookup(name)
	if !ok {
		return
	}
	if err := a.loader.Unload(h); err != nil {
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
	}
}

// Docs returns the usage line and the help lines bash shows for name. The
// help builtin indents each line itself.
func (a *Adapter) Docs(name string) (usage string, long []string, ok bool) {
	h, found := a.loader.Lookup(name)
	if !found {
		return "", nil, false
	}
	meta, found := a.loader.Metadata(h)
	if !found {
		return "", nil, false
	}
	return meta.Usage(), meta.LongDocLines(), true
}

// DebugEnv selects the log level of a loaded library: "1" or "true" logs
// at debug level and "2" at trace level. Logging is off otherwise.
const DebugEnv = "BBHOST_DEBUG"

// loggerFromEnv returns the logger for a library loaded into bash.
func loggerFromEnv(getenv func(string) string, out io.Writer) *slog.Logger {
	var level slog.Level
	switch getenv(DebugEnv) {
	case "1", "true":
		level = slog.LevelDebug
	case "2":
		level = logging.LevelTrace
	default:
		return logging.NewDiscard()
	}
	return logging.New(logging.Config{Level: level, Format: logging.FormatText, Output: out})
}
