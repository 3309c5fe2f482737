package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// ErrInvalid is returned when a manifest with validation errors is turned
// into a builtin.
var ErrInvalid = errors.New("invalid manifest")

// Value is one parsed option of a manifest builtin.
type Value struct {
	Option Option
	// Present reports whether an argument was given.
	Present bool
	// Text is the converted argument rendered back to text.
	Text string
}

// Spec builds the runtime option table. Arguments are converted with the
// registered conversion named by each option type.
func (m *Manifest) Spec() (*options.Spec[Value], error) {
	entries := make([]options.Entry[Value], 0, len(m.Options))
	for _, opt := range m.Options {
		if len(opt.Letter) != 1 {
			return nil, errors.Wrapf(ErrInvalid, "option letter %q", opt.Letter)
		}
		kind, err := opt.Kind()
		if err != nil {
			return nil, errors.Wrapf(ErrInvalid, "option '%s': %v", opt.Letter, err)
		}
		conv, ok := word.Lookup(opt.TypeName())
		if !ok {
			return nil, errors.Wrapf(ErrInvalid, "option '%s': unknown type %q", opt.Letter, opt.Type)
		}
		entries = append(entries, options.Custom(opt.Letter[0], kind, build(opt, conv)))
	}
	spec, err := options.NewSpec(entries...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	return spec, nil
}

func build(opt Option, conv word.Dynamic) func(*word.Word) (Value, error) {
	return func(arg *word.Word) (Value, error) {
		if arg == nil {
			return Value{Option: opt}, nil
		}
		v, err := conv(*arg)
		if err != nil {
			return Value{}, err
		}
		return Value{Option: opt, Present: true, Text: render(v)}, nil
	}
}

func render(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Metadata returns the builtin metadata. The help text is the long
// description followed by one line per option.
func (m *Manifest) Metadata() builtin.Metadata {
	return builtin.Metadata{
		Name:     m.Name,
		ShortDoc: m.ShortDoc,
		LongDoc:  m.helpText(),
	}
}

func (m *Manifest) helpText() string {
	lines := builtin.HelpText(m.LongDoc)
	if len(m.Options) == 0 {
		return strings.Join(lines, "\n")
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, "Options:")
	for _, opt := range m.Options {
		usage := "-" + opt.Letter
		switch kind, _ := opt.Kind(); kind {
		case options.RequiredArgument:
			usage += " " + strings.ToUpper(opt.TypeName())
		case options.OptionalArgument:
			usage += " [" + strings.ToUpper(opt.TypeName()) + "]"
		}
		line := fmt.Sprintf("  %-12s", usage)
		if opt.Help != "" {
			line += "  " + opt.Help
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.Join(lines, "\n")
}

// Definition turns a valid manifest into a registrable builtin.
func (m *Manifest) Definition() (builtin.Definition, error) {
	if err := m.Validate().Err(); err != nil {
		return builtin.Definition{}, errors.Wrap(ErrInvalid, err.Error())
	}
	spec, err := m.Spec()
	if err != nil {
		return builtin.Definition{}, err
	}
	h := &handler{store: m.StoreName(), args: m.ArgsName(), spec: spec}
	return builtin.Definition{
		Metadata: m.Metadata(),
		Create:   func() builtin.Builtin { return h },
	}, nil
}

type handler struct {
	store string
	args  string
	spec  *options.Spec[Value]
}

// Call parses the options into the store array and the operands into the
// args array. Flags count their occurrences; the last argument wins for
// options that take one.
func (h *handler) Call(args *builtin.Args) error {
	values := make(map[string]string)
	counts := make(map[string]int)
	for v, err := range builtin.Options(args, h.spec) {
		if err != nil {
			return err
		}
		key := v.Option.Key()
		switch kind, _ := v.Option.Kind(); {
		case kind == options.NoArgument:
			counts[key]++
			values[key] = strconv.Itoa(counts[key])
		case v.Present:
			values[key] = v.Text
		default:
			values[key] = v.Option.Default
		}
	}

	vars := args.Vars()
	if err := vars.Unset(h.store); err != nil {
		return err
	}
	if err := vars.DeclareAssoc(h.store); err != nil {
		return err
	}
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if err := vars.AssocSet(h.store, key, []byte(values[key])); err != nil {
			return err
		}
	}

	if err := vars.Unset(h.args); err != nil {
		return err
	}
	if err := vars.DeclareIndexed(h.args); err != nil {
		return err
	}
	for i, w := range args.Words().Words() {
		if err := vars.ArraySet(h.args, int64(i), w.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
