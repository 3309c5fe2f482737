package demo

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

var canpanicDef = builtin.Definition{
	Metadata: builtin.Metadata{Name: "canpanic", ShortDoc: "canpanic [panic]"},
	Create:   func() builtin.Builtin { return builtin.Func(canpanic) },
}

func canpanic(args *builtin.Args) error {
	if slices.Contains(args.Words().Strings(), "panic") {
		panic("DO PANIC")
	}
	_, err := args.Stdout().Write([]byte("OK\n"))
	return err
}

// ErrLoadFailed is what loadfail reports when it is enabled.
var ErrLoadFailed = errors.New("something really bad happened")

var loadfailDef = builtin.Definition{
	Metadata: builtin.Metadata{Name: "loadfail"},
	TryCreate: func() (builtin.Builtin, error) {
		return nil, ErrLoadFailed
	},
}
