package demo

import (
	"strings"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

var upcaseDef = builtin.Definition{
	Metadata: builtin.Metadata{
		Name:     "upcase",
		ShortDoc: "upcase [args]",
		LongDoc:  "Print the uppercase equivalent of the arguments.",
	},
	Create: func() builtin.Builtin { return builtin.Func(upcase) },
}

func upcase(args *builtin.Args) error {
	if err := args.NoOptions(); err != nil {
		return err
	}
	words, err := args.Strings()
	if err != nil {
		return err
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	_, err = args.Stdout().Write([]byte(strings.Join(words, " ") + "\n"))
	return err
}
