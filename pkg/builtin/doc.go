// Package builtin implements the registration protocol between a shell host
// and Go command handlers.
//
// A Definition pairs Metadata with a constructor and is added to a Registry,
// usually from an init function:
//
//	func init() {
//		builtin.MustRegister(builtin.Definition{
//			Metadata: builtin.Metadata{Name: "upcase", ShortDoc: "upcase [word ...]"},
//			Create:   func() builtin.Builtin { return builtin.Func(upcase) },
//		})
//	}
//
// A Loader creates handlers on demand and hands the host an opaque Handle.
// Invoke converts the handler result to an exit status: nil is success, an
// ExitCode is returned as is, usage errors become ExUsage, and any other
// error is printed as "<name>: <message>" with status 1. Panics are
// recovered at the boundary and leave the handler unusable until it is
// unloaded.
package builtin
