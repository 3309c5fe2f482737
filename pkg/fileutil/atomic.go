// Package fileutil provides the file helpers used for manifests and state
// snapshots: atomic replacement and size-limited reads.
package fileutil

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
)

// AtomicWriteFile replaces path with data. Readers see either the old
// content or the new content, never a partial file. The parent directory
// must already exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWrite(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWrite replaces path with whatever write produces. The output goes
// to a temp file beside path that is renamed over it once write, the
// flush and the fsync all succeed. On any failure path is untouched and
// the temp file is removed.
func AtomicWrite(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bbhost-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing temp file")
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}
