package manifest

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/bashbuiltins/internal/validator"
	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
	"github.com/thoreinstein/bashbuiltins/pkg/variables"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

// Validate checks m and returns every issue found. Errors make the
// manifest unusable; warnings flag help text that is missing.
func (m *Manifest) Validate() *validator.Result {
	result := &validator.Result{Source: m.Source}

	def := builtin.Definition{Metadata: builtin.Metadata{Name: m.Name}, Create: func() builtin.Builtin { return nil }}
	switch {
	case m.Name == "":
		result.AddError("name", "is required", nil)
	case def.Validate() != nil:
		result.AddError("name", "must be a C identifier", m.Name)
	}

	if m.ShortDoc == "" {
		result.AddWarning("short_doc", "is empty; help shows only the name", nil)
	}

	store, args := m.StoreName(), m.ArgsName()
	if !variables.ValidName(store) {
		result.AddError("store", "must be a shell identifier", store)
	}
	if !variables.ValidName(args) {
		result.AddError("args", "must be a shell identifier", args)
	}
	if store == args {
		result.AddError("args", "must differ from store", args)
	}

	letters := make(map[string]int)
	keys := make(map[string]int)
	for i, opt := range m.Options {
		result.Merge(fmt.Sprintf("options[%d]", i), opt.validate())
		if opt.Letter == "" {
			continue
		}
		if prev, dup := letters[opt.Letter]; dup {
			result.AddError(fmt.Sprintf("options[%d].letter", i), fmt.Sprintf("duplicates options[%d]", prev), opt.Letter)
		} else {
			letters[opt.Letter] = i
		}
		if prev, dup := keys[opt.Key()]; dup {
			result.AddError(fmt.Sprintf("options[%d].name", i), fmt.Sprintf("duplicates the key of options[%d]", prev), opt.Key())
		} else {
			keys[opt.Key()] = i
		}
	}

	return result
}

func (o Option) validate() *validator.Result {
	result := &validator.Result{}

	if len(o.Letter) != 1 || !isOptionLetter(o.Letter[0]) {
		result.AddError("letter", "must be a single ASCII letter or digit", o.Letter)
	}

	kind, err := o.Kind()
	if err != nil {
		result.AddError("arg", "must be one of: none, required, optional", o.Arg)
	}

	if _, ok := word.Lookup(o.TypeName()); !ok {
		result.AddError("type", "must be one of: "+strings.Join(word.Targets(), ", "), o.Type)
	} else if err == nil && kind == options.NoArgument && o.Type != "" {
		result.AddWarning("type", "is ignored for options without an argument", o.Type)
	}

	if o.Default != "" && err == nil && kind != options.OptionalArgument {
		result.AddWarning("default", "only applies to optional arguments", o.Default)
	}
	if o.Default != "" && err == nil && kind == options.OptionalArgument {
		if conv, ok := word.Lookup(o.TypeName()); ok {
			if _, convErr := conv(word.FromString(o.Default)); convErr != nil {
				result.AddError("default", convErr.Error(), o.Default)
			}
		}
	}

	if o.Name != "" && strings.ContainsAny(o.Name, "[]") {
		result.AddError("name", "must not contain brackets", o.Name)
	}

	if o.Help == "" {
		result.AddInfo("help", "is empty", nil)
	}
	return result
}

func isOptionLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
