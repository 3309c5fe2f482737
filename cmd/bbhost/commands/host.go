package commands

import (
	"io"
	"log/slog"

	"github.com/thoreinstein/bashbuiltins/internal/config"
	"github.com/thoreinstein/bashbuiltins/internal/demo"
	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/shell"
	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/manifest"
)

// catalog is every builtin bbhost can enable, with where it came from.
type catalog struct {
	registry *builtin.Registry
	// sources maps manifest builtins to their file. Demo builtins are
	// absent.
	sources map[string]string
}

func (c *catalog) source(name string) string {
	if src, ok := c.sources[name]; ok {
		return src
	}
	return "builtin"
}

// loadCatalog registers the demo builtins and the manifests of the
// configured directories. Output the demo builtins produce outside of a
// call goes to out. Broken manifests are logged and skipped so one bad
// file does not hide the rest.
func loadCatalog(c *config.Config, out io.Writer, logger *slog.Logger) (*catalog, error) {
	reg := builtin.NewRegistry()
	if err := demo.Register(reg, demo.WithOutput(out)); err != nil {
		return nil, errors.Wrap(err, "registering demo builtins")
	}

	manifests, err := manifest.LoadDirs(c.ManifestDirs...)
	if err != nil {
		logger.Warn("skipping unreadable manifests", "error", err)
	}
	if err := manifest.Register(reg, manifests); err != nil {
		logger.Warn("skipping invalid manifests", "error", err)
	}

	cat := &catalog{registry: reg, sources: make(map[string]string)}
	for _, m := range manifests {
		if _, ok := reg.Lookup(m.Name); ok && m.Source != "" {
			cat.sources[m.Name] = m.Source
		}
	}
	logger.Debug("loaded builtins", "count", len(reg.Names()), "manifests", len(manifests))
	return cat, nil
}

// newShell builds the in-process shell over cat. The state file, when set,
// is restored before the shell is returned.
func newShell(c *config.Config, cat *catalog, stdout, stderr io.Writer, logger *slog.Logger) (*shell.Shell, error) {
	opts := []shell.Option{
		shell.WithName(c.ShellName),
		shell.WithOutput(stdout, stderr),
		shell.WithLogger(logger),
		shell.WithRegistry(cat.registry),
		shell.WithNameRefDepth(c.NameRefMaxDepth),
	}
	if c.RandomSeed != 0 {
		opts = append(opts, shell.WithRandomSeed(c.RandomSeed))
	}
	sh := shell.New(opts...)

	if path := statePath(c); path != "" {
		if err := sh.LoadState(path); err != nil {
			_ = sh.Close()
			return nil, errors.NewUserError(err, "Remove the state file or pass a different --state")
		}
	}
	return sh, nil
}

// saveShell persists the variables when a state file is configured.
func saveShell(c *config.Config, sh *shell.Shell) error {
	path := statePath(c)
	if path == "" {
		return nil
	}
	if err := sh.SaveState(path); err != nil {
		return errors.NewSystemError(err, "Check that the state directory is writable")
	}
	return nil
}

func statePath(c *config.Config) string {
	if stateFile != "" {
		return stateFile
	}
	return c.StateFile
}
