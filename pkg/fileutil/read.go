package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
)

// MaxFileSize is the maximum file size we'll read (1MB).
// Manifests and snapshots are far smaller.
const MaxFileSize = 1024 * 1024 // 1MB

// ErrFileTooLarge indicates that a file exceeded the read limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast if size is already too large
	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, MaxFileSize)
	}

	return ReadWithLimit(f, MaxFileSize)
}

// ReadWithLimit reads r to the end, failing with ErrFileTooLarge once more
// than limit bytes arrive. It is used for manifests read from stdin.
func ReadWithLimit(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "input exceeds %d bytes", limit)
	}
	return data, nil
}
