// Package variables reads and writes shell variables through a host Store.
//
// A [Table] wraps the raw host table and applies the rules every builtin
// needs: names are validated before any access, namerefs are followed up to
// a fixed depth, and array writes only auto-create arrays on unset names.
//
//	vars := variables.New(store)
//	if err := vars.ArraySet("RED", 1, []byte("X")); err != nil {
//		return err
//	}
//
// Writes are applied immediately. Nothing is cached between calls, because
// other shell commands may change the table between two invocations of a
// builtin.
package variables
