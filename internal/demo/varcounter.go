package demo

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

var varcounterMeta = builtin.Metadata{
	Name:     "varcounter",
	ShortDoc: "varcounter [NAME] ...",
	LongDoc: `
		Creates a counter in a dynamic variable.

		For each NAME, a variable $NAME will be incremented each time it is
		read.

		The value in the counter can be modified with NAME=<N>.
	`,
}

// varcounterDefinition reports rejected assignments to errs. Assignments
// happen outside of any call, so the call's error stream is gone by then.
func varcounterDefinition(errs io.Writer) builtin.Definition {
	return builtin.Definition{
		Metadata: varcounterMeta,
		Create: func() builtin.Builtin {
			return builtin.Func(func(args *builtin.Args) error {
				return varcounter(args, errs)
			})
		},
	}
}

func varcounter(args *builtin.Args, errs io.Writer) error {
	if err := args.NoOptions(); err != nil {
		return err
	}
	names, err := args.Strings()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := args.Vars().Bind(name, &dynCounter{errs: errs}); err != nil {
			return err
		}
	}
	return nil
}

// dynCounter is read by the host outside of any builtin call, so it
// guards its own state.
type dynCounter struct {
	mu   sync.Mutex
	n    int64
	errs io.Writer
}

func (c *dynCounter) Get() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := strconv.AppendInt(nil, c.n, 10)
	c.n++
	return v, true
}

// Set keeps the current count when value is not an integer.
func (c *dynCounter) Set(value []byte) {
	n, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		fmt.Fprintf(c.errs, "%s: invalid value: %q\n", varcounterMeta.Name, value)
		return
	}
	c.mu.Lock()
	c.n = n
	c.mu.Unlock()
}
