// Package manifest declares builtins in TOML, YAML or markdown files.
//
// A manifest names the builtin, its help text and its short options:
//
//	name = "greet"
//	short_doc = "greet [-l] [-n name] [word ...]"
//
//	[[options]]
//	letter = "n"
//	name = "name"
//	arg = "required"
//	type = "string"
//
// Invoking the builtin parses the options with the getopt rules of the
// options package and stores the result in two shell arrays. The
// associative array OPTS maps option names to their values: flags store
// how often they were given, options with an argument store the last one.
// The indexed array ARGS holds the operands. Both names can be changed
// with the store and args keys.
//
// [LoadDir] reads a directory of manifests and [Register] adds the valid
// ones to a [builtin.Registry].
package manifest
