//go:build bash && cgo

package bash

/*
#include "bashbuiltin.h"
*/
import "C"

import (
	"bytes"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

// errRejected is returned when bash refuses an assignment without saying
// why. Bash has already printed its own message in that case.
var errRejected = errors.New("assignment rejected by the shell")

// shellStore is a variables.Store over the bash variable table. Bash is
// single threaded; the mutex only guards the dynamic variable hooks.
type shellStore struct {
	mu       sync.Mutex
	dynamics map[string]variables.Dynamic
}

func newShellStore() *shellStore {
	return &shellStore{dynamics: make(map[string]variables.Dynamic)}
}

func (s *shellStore) dynamic(name string) variables.Dynamic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamics[name]
}

// find returns the raw SHELL_VAR bound to name without following namerefs.
func find(name string) *C.SHELL_VAR {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.find_variable_noref(cname)
}

func goBytes(p *C.char) []byte {
	if p == nil {
		return nil
	}
	return []byte(C.GoString(p))
}

func readOnly(v *C.SHELL_VAR) bool {
	return v.attributes&C.att_readonly != 0
}

func isIndexed(v *C.SHELL_VAR) bool {
	return v.attributes&C.att_array != 0
}

func isAssoc(v *C.SHELL_VAR) bool {
	return v.attributes&C.att_assoc != 0
}

func (s *shellStore) Lookup(name string) (variables.Cell, bool) {
	return s.cell(name, true)
}

func (s *shellStore) Peek(name string) (variables.Cell, bool) {
	return s.cell(name, false)
}

// cell describes the SHELL_VAR bound to name. Values, including the ones
// computed by dynamic_value hooks, are only read when evaluate is set.
func (s *shellStore) cell(name string, evaluate bool) (variables.Cell, bool) {
	v := find(name)
	if v == nil {
		return variables.Cell{}, false
	}
	cell := variables.Cell{ReadOnly: readOnly(v)}
	switch {
	case C.bb_is_dynamic(v) != 0:
		cell.Kind = variables.Scalar
		cell.Dynamic = true
		if d := s.dynamic(name); d != nil && evaluate {
			if value, ok := d.Get(); ok {
				cell.Value = bytes.Clone(value)
			}
		}
	case v.attributes&C.att_nameref != 0:
		cell.Kind = variables.NameRef
		cell.Ref = string(goBytes(v.value))
	case isIndexed(v):
		cell.Kind = variables.Indexed
		if evaluate {
			cell.Indexed = arrayItems(v)
		}
	case isAssoc(v):
		cell.Kind = variables.Assoc
		if evaluate {
			cell.Assoc = assocItems(v)
		}
	case v.attributes&C.att_invisible != 0:
		return variables.Cell{}, false
	default:
		cell.Kind = variables.Scalar
		cell.Special = v.dynamic_value != nil
		if !evaluate {
			break
		}
		if cell.Special {
			v = C.bb_refresh(v)
		}
		cell.Value = goBytes(v.value)
	}
	return cell, true
}

func arrayItems(v *C.SHELL_VAR) map[int64][]byte {
	n := C.bb_array_count(v)
	items := make(map[int64][]byte, int(n))
	if n <= 0 {
		return items
	}
	inds := (*C.arrayind_t)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.arrayind_t(0)))))
	defer C.free(unsafe.Pointer(inds))
	vals := (**C.char)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	defer C.free(unsafe.Pointer(vals))

	got := int(C.bb_array_items(v, inds, vals, n))
	is, vs := unsafe.Slice(inds, got), unsafe.Slice(vals, got)
	for i := range got {
		items[int64(is[i])] = goBytes(vs[i])
	}
	return items
}

func assocItems(v *C.SHELL_VAR) map[string][]byte {
	n := C.bb_assoc_count(v)
	items := make(map[string][]byte, int(n))
	if n <= 0 {
		return items
	}
	keys := (**C.char)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	defer C.free(unsafe.Pointer(keys))
	vals := (**C.char)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	defer C.free(unsafe.Pointer(vals))

	got := int(C.bb_assoc_items(v, keys, vals, n))
	ks, vs := unsafe.Slice(keys, got), unsafe.Slice(vals, got)
	for i := range got {
		items[C.GoString(ks[i])] = goBytes(vs[i])
	}
	return items
}

func (s *shellStore) Bind(name string, value []byte) error {
	if v := find(name); v != nil {
		if readOnly(v) {
			return variables.ErrReadOnly
		}
		if C.bb_is_dynamic(v) != 0 {
			if d := s.dynamic(name); d != nil {
				d.Set(bytes.Clone(value))
			}
			return nil
		}
	}
	cname, cvalue := C.CString(name), C.CString(string(value))
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cvalue))
	if C.bind_variable(cname, cvalue, 0) == nil {
		return errRejected
	}
	return nil
}

func (s *shellStore) BindIndex(name string, index int64, value []byte) error {
	if v := find(name); v != nil {
		if readOnly(v) {
			return variables.ErrReadOnly
		}
		if !isIndexed(v) {
			return variables.ErrKindMismatch
		}
	}
	cname, cvalue := C.CString(name), C.CString(string(value))
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cvalue))
	if C.bind_array_variable(cname, C.arrayind_t(index), cvalue, 0) == nil {
		return errRejected
	}
	return nil
}

func (s *shellStore) BindKey(name, key string, value []byte) error {
	v := find(name)
	if v == nil || !isAssoc(v) {
		return variables.ErrKindMismatch
	}
	if readOnly(v) {
		return variables.ErrReadOnly
	}
	cname, cvalue := C.CString(name), C.CString(string(value))
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(cvalue))
	// The table takes ownership of the key.
	if C.bind_assoc_variable(v, cname, C.CString(key), cvalue, 0) == nil {
		return errRejected
	}
	return nil
}

func (s *shellStore) DeclareIndexed(name string) error {
	return s.declare(name, variables.Indexed)
}

func (s *shellStore) DeclareAssoc(name string) error {
	return s.declare(name, variables.Assoc)
}

func (s *shellStore) declare(name string, kind variables.Kind) error {
	if v := find(name); v != nil {
		switch {
		case readOnly(v):
			return variables.ErrReadOnly
		case kind == variables.Indexed && isIndexed(v), kind == variables.Assoc && isAssoc(v):
			return nil
		default:
			return variables.ErrKindMismatch
		}
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var v *C.SHELL_VAR
	if kind == variables.Indexed {
		v = C.make_new_array_variable(cname)
	} else {
		v = C.make_new_assoc_variable(cname)
	}
	if v == nil {
		return errRejected
	}
	return nil
}

func (s *shellStore) Unbind(name string) error {
	v := find(name)
	if v == nil {
		return nil
	}
	if readOnly(v) {
		return variables.ErrReadOnly
	}
	s.mu.Lock()
	delete(s.dynamics, name)
	s.mu.Unlock()

	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.unbind_variable_noref(cname)
	return nil
}

func (s *shellStore) UnbindIndex(name string, index int64) error {
	v := find(name)
	if v == nil {
		return nil
	}
	if readOnly(v) {
		return variables.ErrReadOnly
	}
	if !isIndexed(v) {
		return variables.ErrKindMismatch
	}
	if ae := C.array_remove((*C.ARRAY)(unsafe.Pointer(v.value)), C.arrayind_t(index)); ae != nil {
		C.array_dispose_element(ae)
	}
	return nil
}

func (s *shellStore) UnbindKey(name, key string) error {
	v := find(name)
	if v == nil {
		return nil
	}
	if readOnly(v) {
		return variables.ErrReadOnly
	}
	if !isAssoc(v) {
		return variables.ErrKindMismatch
	}
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))
	C.assoc_remove((*C.HASH_TABLE)(unsafe.Pointer(v.value)), ckey)
	return nil
}

func (s *shellStore) BindDynamic(name string, d variables.Dynamic) error {
	if v := find(name); v != nil {
		if readOnly(v) {
			return variables.ErrReadOnly
		}
		// Rebinding would hand the empty value to the previous hook.
		if C.bb_is_dynamic(v) != 0 {
			if err := s.Unbind(name); err != nil {
				return err
			}
		}
	}
	cname, empty := C.CString(name), C.CString("")
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(empty))
	v := C.bind_variable(cname, empty, 0)
	if v == nil {
		return errRejected
	}
	s.mu.Lock()
	s.dynamics[name] = d
	s.mu.Unlock()
	C.bb_make_dynamic(v)
	return nil
}

// get and set serve the hooks installed by bb_make_dynamic.
func (s *shellStore) get(name string) ([]byte, bool) {
	d := s.dynamic(name)
	if d == nil {
		return nil, false
	}
	return d.Get()
}

func (s *shellStore) set(name string, value []byte) {
	if d := s.dynamic(name); d != nil {
		d.Set(value)
	}
}
