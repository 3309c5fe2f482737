//go:build bash && cgo

package bash

/*
#include "bashbuiltin.h"
*/
import "C"

import (
	"log/slog"
	"os"
	"sync"
	"unsafe"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

var (
	initOnce sync.Once
	adapter  *Adapter
	store    *shellStore
	logger   *slog.Logger

	// docs holds the C strings handed to bash descriptors, by name.
	docsMu sync.Mutex
	docs   = make(map[string]docStrings)
)

type docStrings struct {
	short *C.char
	long  **C.char
	lines int
}

func setup() {
	initOnce.Do(func() {
		logger = loggerFromEnv(os.Getenv, os.Stderr)
		store = newShellStore()
		host := builtin.StaticHost{Out: os.Stdout, Err: os.Stderr, Vars: store}
		adapter = NewAdapter(host, builtin.WithRegistry(builtin.Default()), builtin.WithLogger(logger))
	})
}

//export bbBuiltinLoad
func bbBuiltinLoad(cname *C.char, def *C.struct_builtin) C.int {
	setup()
	name := C.GoString(cname)
	if !adapter.Load(name) {
		return 0
	}
	usage, long, ok := adapter.Docs(name)
	if ok {
		installDocs(name, def, usage, long)
	}
	return 1
}

func installDocs(name string, def *C.struct_builtin, usage string, long []string) {
	ptrSize := C.size_t(unsafe.Sizeof((*C.char)(nil)))
	array := (**C.char)(C.malloc(C.size_t(len(long)+1) * ptrSize))
	lines := unsafe.Slice(array, len(long)+1)
	for i, line := range long {
		lines[i] = C.CString(line)
	}
	lines[len(long)] = nil

	d := docStrings{short: C.CString(usage), long: array, lines: len(long)}
	def.short_doc = d.short
	def.long_doc = array

	docsMu.Lock()
	old, had := docs[name]
	docs[name] = d
	docsMu.Unlock()
	if had {
		old.free()
	}
}

func (d docStrings) free() {
	for _, line := range unsafe.Slice(d.long, d.lines) {
		C.free(unsafe.Pointer(line))
	}
	C.free(unsafe.Pointer(d.long))
	C.free(unsafe.Pointer(d.short))
}

//export bbBuiltinInvoke
func bbBuiltinInvoke(cname *C.char, list *C.WORD_LIST) C.int {
	setup()
	var cells [][]byte
	for ; list != nil; list = list.next {
		if list.word == nil {
			continue
		}
		cells = append(cells, goBytes(list.word.word))
	}
	return C.int(adapter.Invoke(C.GoString(cname), word.NewList(cells)))
}

//export bbBuiltinUnload
func bbBuiltinUnload(cname *C.char, def *C.struct_builtin) {
	setup()
	name := C.GoString(cname)
	adapter.Unload(name)

	docsMu.Lock()
	d, ok := docs[name]
	delete(docs, name)
	docsMu.Unlock()
	if ok {
		def.short_doc = nil
		def.long_doc = nil
		d.free()
	}
}

// bbDynamicGet returns a malloc'd copy of the value, or NULL for an empty
// read.
//
//export bbDynamicGet
func bbDynamicGet(cname *C.char) *C.char {
	setup()
	value, ok := store.get(C.GoString(cname))
	if !ok {
		return nil
	}
	return C.CString(string(value))
}

//export bbDynamicSet
func bbDynamicSet(cname *C.char, cvalue *C.char) {
	setup()
	store.set(C.GoString(cname), goBytes(cvalue))
}
