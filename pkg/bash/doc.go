// Package bash exports registered builtins to bash as a loadable builtin
// library.
//
// Bash finds a builtin NAME in a shared object through three symbols:
// the NAME_struct descriptor, and the optional NAME_builtin_load and
// NAME_builtin_unload hooks. bashbuiltin.h provides BB_DEFINE_BUILTIN to
// emit them; the library's main package lists one line per builtin in a
// C file:
//
//	#include "bashbuiltin.h"
//
//	BB_DEFINE_BUILTIN(counter)
//	BB_DEFINE_BUILTIN(varcounter)
//
// The generated functions call back into this package, which drives an
// [Adapter] over [builtin.Default] and a variable store backed by the bash
// variable table. Build the library with:
//
//	go build -tags bash -buildmode=c-shared -o libbbdemo.so ./cmd/bbdemo
//
// and enable it from bash with "enable -f ./libbbdemo.so counter".
//
// Only [Adapter] is available without the bash build tag; it is what the
// cgo layer calls and is tested on its own.
package bash
