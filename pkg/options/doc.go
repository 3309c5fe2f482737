// Package options parses single-letter command line options the way the
// host shell's internal getopt does.
//
// An option table is built at runtime from entries that map a letter to the
// constructor of a parsed value. Parsed values are usually a small interface
// with one concrete type per option:
//
//	type opt interface{}
//	type reset struct{}
//	type set int
//
//	var spec = options.MustSpec(
//		options.Flag[opt]('r', reset{}),
//		options.Required('s', word.Int, func(n int) opt { return set(n) }),
//	)
//
// # Scanning Rules
//
//   - Options may be clustered ("-rs10") and arguments may be attached.
//   - A required argument takes the rest of the word, or else the next word
//     whatever it looks like.
//   - An optional argument takes the rest of the word, or else the next word
//     only when it does not start with a hyphen.
//   - "--" ends the options and is consumed. A lone "-" and the first word
//     without a leading hyphen are positional.
//   - "--help" prints the builtin help and fails with [ErrHelp].
//
// Every failure is reported once as "<name>: <diagnostic>" and matches
// [ErrUsage].
package options
