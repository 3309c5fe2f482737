package demo

import (
	"fmt"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

var counterDef = builtin.Definition{
	Metadata: builtin.Metadata{
		Name:     "counter",
		ShortDoc: "counter [-r] [-s value] [-a value]",
		LongDoc: `
			Print a value, and increment it.

			Options:
			  -r	Reset the value to 0.
			  -s	Set the counter to a specific value.
			  -a	Increment the counter by a value.
		`,
	},
	Create: func() builtin.Builtin { return &counter{} },
}

type counterOp struct {
	reset bool
	set   *int
	add   int
}

var counterSpec = options.MustSpec(
	options.Flag('r', counterOp{reset: true}),
	options.Required('s', word.Int, func(n int) counterOp { return counterOp{set: &n} }),
	options.Required('a', word.Int, func(n int) counterOp { return counterOp{add: n} }),
)

type counter struct {
	value int
}

// Call prints and increments the value when called without arguments.
// Options only change the value, and only when every option parses.
func (c *counter) Call(args *builtin.Args) error {
	if args.IsEmpty() {
		if _, err := fmt.Fprintln(args.Stdout(), c.value); err != nil {
			return err
		}
		c.value++
		return nil
	}

	value := c.value
	for op, err := range builtin.Options(args, counterSpec) {
		if err != nil {
			return err
		}
		switch {
		case op.reset:
			value = 0
		case op.set != nil:
			value = *op.set
		default:
			value += op.add
		}
	}
	if err := args.Finished(); err != nil {
		return err
	}

	c.value = value
	return nil
}
