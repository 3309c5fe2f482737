// Package shell is a small in-process host for builtins.
//
// It is not a general shell. It runs one simple command per line with
// quoting, parameter expansion and assignments, which is enough to enable
// builtins, call them, and inspect the variables they touch:
//
//	sh := shell.New(shell.WithRegistry(reg))
//	sh.Run("enable -f ./libcounter.so counter")
//	sh.Run("counter -s 10")
//	sh.Run(`echo "$RANDOM ${arr[1]}"`)
//
// Expanded values are never split into more words, and there are no
// pipelines, redirections or control structures.
//
// Variables follow the host rules: sparse indexed arrays, associative
// arrays, namerefs, readonly variables, and the computed variables RANDOM,
// SRANDOM, LINENO, SECONDS, EPOCHSECONDS, EPOCHREALTIME and BASHPID.
// [Shell.SaveState] and [Shell.LoadState] persist the plain variables as
// CBOR between runs.
package shell
