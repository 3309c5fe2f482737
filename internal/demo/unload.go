package demo

import (
	"fmt"
	"io"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

func unloadDefinition(out io.Writer) builtin.Definition {
	return builtin.Definition{
		Metadata: builtin.Metadata{
			Name:     "unload",
			ShortDoc: "unload",
			LongDoc:  "Print how many times it was called, and the total when it is disabled.",
		},
		Create: func() builtin.Builtin { return &dropper{out: out} },
	}
}

// dropper counts its calls and reports the total when it is unloaded.
// Cleanup runs after the last call has returned, so it writes to the
// process output rather than the invocation streams.
type dropper struct {
	out   io.Writer
	calls int
}

func (d *dropper) Call(args *builtin.Args) error {
	if err := args.NoOptions(); err != nil {
		return err
	}
	d.calls++
	_, err := fmt.Fprintln(args.Stdout(), d.calls)
	return err
}

func (d *dropper) Cleanup() {
	fmt.Fprintf(d.out, "[drop] %d\n", d.calls)
}
