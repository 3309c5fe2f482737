package shell

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/thoreinstein/bashbuiltins/internal/paths"
	"github.com/thoreinstein/bashbuiltins/pkg/fileutil"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned for snapshots written by a newer format.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the persisted state of the shell variables. Dynamic and
// special variables are computed and never saved.
type Snapshot struct {
	Version   int                      `cbor:"1,keyasint"`
	Variables map[string]SavedVariable `cbor:"2,keyasint,omitempty"`
}

// SavedVariable is one variable of a snapshot.
type SavedVariable struct {
	Kind     variables.Kind    `cbor:"1,keyasint"`
	Value    []byte            `cbor:"2,keyasint,omitempty"`
	Indexed  map[int64][]byte  `cbor:"3,keyasint,omitempty"`
	Assoc    map[string][]byte `cbor:"4,keyasint,omitempty"`
	Ref      string            `cbor:"5,keyasint,omitempty"`
	ReadOnly bool              `cbor:"6,keyasint,omitempty"`
}

var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("shell: failed to create CBOR enc mode: %v", err))
	}
	snapshotEncMode = em
}

// Snapshot captures the bound variables.
func (s *Shell) Snapshot() *Snapshot {
	snap := &Snapshot{Version: SnapshotVersion, Variables: make(map[string]SavedVariable)}
	for _, name := range s.store.Names() {
		if peek, ok := s.store.Peek(name); !ok || peek.Dynamic || peek.Special {
			continue
		}
		cell, ok := s.store.Lookup(name)
		if !ok || cell.Kind == variables.Unset {
			continue
		}
		snap.Variables[name] = SavedVariable{
			Kind:     cell.Kind,
			Value:    cell.Value,
			Indexed:  cell.Indexed,
			Assoc:    cell.Assoc,
			Ref:      cell.Ref,
			ReadOnly: cell.ReadOnly,
		}
	}
	return snap
}

// Restore binds the variables of snap, replacing variables of the same
// name. Other variables are left alone.
func (s *Shell) Restore(snap *Snapshot) error {
	if snap.Version > SnapshotVersion {
		return errors.Wrapf(ErrSnapshotVersion, "version %d", snap.Version)
	}
	var errs []error
	for name, v := range snap.Variables {
		if !variables.ValidName(name) {
			errs = append(errs, &variables.Error{Op: "restore", Name: name, Err: variables.ErrInvalidName})
			continue
		}
		if v.Kind < variables.Scalar || v.Kind > variables.NameRef {
			errs = append(errs, &variables.Error{Op: "restore", Name: name, Err: variables.ErrKindMismatch})
			continue
		}
		if cell, ok := s.store.Peek(name); ok && (cell.Dynamic || cell.Special) {
			continue
		}
		s.store.Restore(name, variables.Cell{
			Kind:     v.Kind,
			Value:    v.Value,
			Indexed:  v.Indexed,
			Assoc:    v.Assoc,
			Ref:      v.Ref,
			ReadOnly: v.ReadOnly,
		})
	}
	return errors.Join(errs...)
}

// MarshalSnapshot encodes snap as canonical CBOR.
func MarshalSnapshot(snap *Snapshot) ([]byte, error) {
	return snapshotEncMode.Marshal(snap)
}

// UnmarshalSnapshot decodes a snapshot written by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	return &snap, nil
}

// SaveState writes the variables to path atomically.
func (s *Shell) SaveState(path string) error {
	data, err := MarshalSnapshot(s.Snapshot())
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	if err := paths.EnsureDir(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return err
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "saving state to %s", path)
	}
	s.logger.Debug("saved shell state", "path", path, "variables", len(s.store.Names()))
	return nil
}

// LoadState restores the variables saved at path. A missing file is not
// an error.
func (s *Shell) LoadState(path string) error {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "loading state from %s", path)
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		return errors.Wrap(err, path)
	}
	return s.Restore(snap)
}
