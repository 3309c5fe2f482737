package demo

import (
	"fmt"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

var nonrequiredargsDef = builtin.Definition{
	Metadata: builtin.Metadata{
		Name:     "nonrequiredargs",
		ShortDoc: "nonrequiredargs [-f [N]] [-b [TEXT]]",
	},
	Create: func() builtin.Builtin { return builtin.Func(nonrequiredargs) },
}

// optArg is one parsed option with its optional argument.
type optArg struct {
	letter byte
	value  string
}

func (o optArg) String() string {
	return fmt.Sprintf("-%c %s", o.letter, o.value)
}

func describe[V any](v *V) string {
	if v == nil {
		return "(none)"
	}
	return fmt.Sprint(*v)
}

var nonrequiredargsSpec = options.MustSpec(
	options.Optional('f', word.Uint64, func(n *uint64) optArg { return optArg{'f', describe(n)} }),
	options.Optional('b', word.String, func(s *string) optArg { return optArg{'b', describe(s)} }),
)

func nonrequiredargs(args *builtin.Args) error {
	if _, err := fmt.Fprintln(args.Stdout(), " -"); err != nil {
		return err
	}
	for opt, err := range builtin.Options(args, nonrequiredargsSpec) {
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(args.Stdout(), opt); err != nil {
			return err
		}
	}
	return nil
}
