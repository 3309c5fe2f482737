// Package demo holds a set of small builtins that exercise the binding
// layer: option parsing, variable access, dynamic variables, unload hooks,
// load failures and the panic boundary.
//
// The host CLI registers them next to the manifest builtins, and the
// shared library build exports them to bash:
//
//	$ enable -f ./libbbdemo.so counter varcounter
//	$ counter; counter
//	0
//	1
//	$ varcounter N; echo $N $N
//	0 1
package demo
