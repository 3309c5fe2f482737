package config

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/thoreinstein/bashbuiltins/internal/paths"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// ErrInvalidField is wrapped by every field validation failure.
var ErrInvalidField = errors.New("invalid configuration field")

// Validate checks a Config for validity.
// Returns nil if valid, or one error per failed field.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []error{errors.Wrap(err, "validating config")}
		}
		for _, fe := range fieldErrs {
			errs = append(errs, &FieldError{
				Field: fieldPath(fe.Namespace()),
				Value: fe.Value(),
				Rule:  ruleText(fe),
			})
		}
	}

	for i, dir := range cfg.ManifestDirs {
		if err := paths.Validate(dir); err != nil {
			errs = append(errs, &FieldError{Field: "manifest_dirs[" + strconv.Itoa(i) + "]", Value: dir, Rule: err.Error()})
		}
	}
	if err := paths.Validate(cfg.StateFile); err != nil {
		errs = append(errs, &FieldError{Field: "state_file", Value: cfg.StateFile, Rule: err.Error()})
	}

	return errs
}

// FieldError reports one invalid configuration field.
type FieldError struct {
	Field string
	Value any
	Rule  string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Rule
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// fieldPath turns "Config.Log.Level" into "log.level" using the config key
// names.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		name, index, _ := strings.Cut(p, "[")
		key, ok := keyNames[name]
		if !ok {
			key = strings.ToLower(name)
		}
		if index != "" {
			key += "[" + index
		}
		parts[i] = key
	}
	return strings.Join(parts, ".")
}

var keyNames = map[string]string{
	"Version":         "version",
	"ShellName":       "shell_name",
	"NameRefMaxDepth": "nameref_max_depth",
	"ManifestDirs":    "manifest_dirs",
	"StateFile":       "state_file",
	"Log":             "log",
	"Level":           "level",
	"Format":          "format",
	"Color":           "color",
}

func ruleText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eq":
		return "must be " + fe.Param()
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "printascii":
		return "must be printable ASCII"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
