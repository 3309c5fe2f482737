package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "bbhost"

const (
	// ConfigFileName is the config file base name; viper adds the extension.
	ConfigFileName = "config"
	// StateFileName is the default name of the shell variable snapshot.
	StateFileName = "state.cbor"
	// ManifestDirName holds builtin manifests under the data directory.
	ManifestDirName = "builtins"
)

// DefaultDirPerm is used by EnsureDir when perm is 0.
const DefaultDirPerm = 0o700

var (
	// ErrHomeDirNotFound is returned by ExpandHome when $HOME is unknown.
	ErrHomeDirNotFound = errors.New("home directory not found")
	// ErrInvalidPath is returned by Validate.
	ErrInvalidPath = errors.New("invalid path")
)

// ConfigDir is $XDG_CONFIG_HOME/bbhost.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ManifestDir is $XDG_DATA_HOME/bbhost/builtins.
func ManifestDir() string {
	return filepath.Join(xdg.DataHome, AppName, ManifestDirName)
}

// StateFile is $XDG_STATE_HOME/bbhost/state.cbor.
func StateFile() string {
	return filepath.Join(xdg.StateHome, AppName, StateFileName)
}

// Reload re-reads the XDG environment variables. Tests call it after
// t.Setenv.
func Reload() {
	xdg.Reload()
}

// EnsureDir is os.MkdirAll with DefaultDirPerm for a zero perm.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return errors.Wrapf(os.MkdirAll(path, perm), "creating %s", path)
}

// ExpandHome replaces a leading "~" or "~/" with the home directory. Other
// paths, including "~user", are returned unchanged.
func ExpandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return filepath.Join(home, rest), nil
}

// Validate checks that path is well formed, not that it exists. The empty
// path is valid and selects the default.
func Validate(path string) error {
	switch {
	case path == "":
		return nil
	case strings.ContainsRune(path, 0):
		return errors.Wrapf(ErrInvalidPath, "%q contains a NUL byte", path)
	case filepath.Clean(path) == ".":
		return errors.Wrapf(ErrInvalidPath, "%q", path)
	}
	return nil
}
