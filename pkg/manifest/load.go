package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

// LoadDir decodes every manifest file directly inside dir, sorted by file
// name. Files with other extensions are skipped. A missing directory yields
// no manifests.
func LoadDir(dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading manifest directory %s", dir)
	}

	var (
		manifests []*Manifest
		errs      []error
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := FormatOf(path); err != nil {
			continue
		}
		m, err := DecodeFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		manifests = append(manifests, m)
	}
	return manifests, errors.Join(errs...)
}

// LoadDirs loads each directory in order.
func LoadDirs(dirs ...string) ([]*Manifest, error) {
	var (
		all  []*Manifest
		errs []error
	)
	for _, dir := range dirs {
		ms, err := LoadDir(dir)
		all = append(all, ms...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

// Register adds the manifests to reg. Invalid manifests and names that are
// already registered are reported together; the valid rest is registered.
func Register(reg *builtin.Registry, manifests []*Manifest) error {
	var errs []error
	for _, m := range manifests {
		def, err := m.Definition()
		if err == nil {
			err = reg.Register(def)
		}
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "manifest %s", sourceOf(m)))
		}
	}
	return errors.Join(errs...)
}

// Names returns the builtin names declared by manifests, sorted.
func Names(manifests []*Manifest) []string {
	names := make([]string, 0, len(manifests))
	for _, m := range manifests {
		names = append(names, m.Name)
	}
	slices.Sort(names)
	return names
}

func sourceOf(m *Manifest) string {
	if m.Source != "" {
		return m.Source
	}
	return m.Name
}
