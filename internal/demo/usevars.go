package demo

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
)

var usevarsDef = builtin.Definition{
	Metadata: builtin.Metadata{
		Name:     "usevars",
		ShortDoc: "usevars [name[=value] ...]",
		LongDoc: `
			Read and write shell variables.

			NAME prints the variable, NAME[KEY] prints one element of an
			array, NAME=VALUE assigns, and NAME= unsets. A numeric KEY
			addresses an indexed array.
		`,
	},
	Create: func() builtin.Builtin { return builtin.Func(usevars) },
}

func usevars(args *builtin.Args) error {
	words, err := args.Strings()
	if err != nil {
		return err
	}

	vars, out := args.Vars(), args.Stdout()
	for _, w := range words {
		ref, value, assign := strings.Cut(w, "=")
		name, key, element := variables.SplitSubscript(ref)
		if strings.ContainsRune(ref, '[') && !element {
			return builtin.ErrUsage
		}

		switch {
		case assign && value == "":
			err = unsetRef(vars, name, key, element)
			if err == nil {
				_, err = fmt.Fprintf(out, "unset: %s\n", ref)
			}
		case assign && element:
			if index, perr := strconv.ParseInt(key, 10, 64); perr == nil {
				err = vars.ArraySet(name, index, []byte(value))
			} else {
				err = vars.AssocSet(name, key, []byte(value))
			}
		case assign:
			err = vars.SetString(name, value)
		case element:
			err = writeElement(out, vars, name, key)
		default:
			err = writeVariable(out, vars, name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func unsetRef(vars *variables.Table, name, key string, element bool) error {
	if element {
		return vars.UnsetElement(name, key)
	}
	return vars.Unset(name)
}

func writeElement(out io.Writer, vars *variables.Table, name, key string) error {
	var (
		value []byte
		ok    bool
		err   error
	)
	if index, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		value, ok, err = vars.ArrayGet(name, index)
	} else {
		value, ok, err = vars.AssocGet(name, key)
	}
	if err != nil {
		return err
	}
	if !ok {
		_, err = fmt.Fprintf(out, "%s[%s] is unset\n", name, key)
		return err
	}
	_, err = fmt.Fprintf(out, "%s[%s] = %q\n", name, key, value)
	return err
}

func writeVariable(out io.Writer, vars *variables.Table, name string) error {
	v, err := vars.Peek(name)
	if err != nil {
		return err
	}
	switch v.Kind {
	case variables.Scalar:
		value, ok, err := vars.Get(name)
		if err != nil || !ok {
			return err
		}
		_, err = fmt.Fprintf(out, "%s = %q\n", name, value)
		return err
	case variables.Indexed, variables.Assoc:
		items, err := vars.Items(name)
		if err != nil {
			return err
		}
		for _, item := range items {
			key := item.Key
			if v.Kind == variables.Assoc {
				key = strconv.Quote(key)
			}
			if _, err := fmt.Fprintf(out, "%s[%s] = %q\n", name, key, item.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
