package manifest

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/bashbuiltins/pkg/fileutil"
	"github.com/thoreinstein/bashbuiltins/pkg/frontmatter"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
)

// Default variable names receiving parsed options and operands.
const (
	DefaultStore = "OPTS"
	DefaultArgs  = "ARGS"
)

// Argument kinds as written in manifests.
const (
	ArgNone     = "none"
	ArgRequired = "required"
	ArgOptional = "optional"
)

// Manifest declares a builtin without Go code. Invoking it parses the
// declared options, stores them in an associative array keyed by option
// name, and stores the operands in an indexed array.
type Manifest struct {
	Name     string `toml:"name" yaml:"name"`
	ShortDoc string `toml:"short_doc,omitempty" yaml:"short_doc,omitempty"`
	LongDoc  string `toml:"long_doc,omitempty" yaml:"long_doc,omitempty"`
	// Store names the associative array receiving options. Defaults to
	// DefaultStore.
	Store string `toml:"store,omitempty" yaml:"store,omitempty"`
	// Args names the indexed array receiving operands. Defaults to
	// DefaultArgs.
	Args    string   `toml:"args,omitempty" yaml:"args,omitempty"`
	Options []Option `toml:"options,omitempty" yaml:"options,omitempty"`

	// Source is the file the manifest was read from.
	Source string `toml:"-" yaml:"-"`
}

// Option declares one short option.
type Option struct {
	Letter string `toml:"letter" yaml:"letter"`
	// Name is the key in the store array. Defaults to the letter.
	Name string `toml:"name,omitempty" yaml:"name,omitempty"`
	// Arg is one of "none", "required" or "optional". Defaults to "none".
	Arg string `toml:"arg,omitempty" yaml:"arg,omitempty"`
	// Type is a conversion name from the word registry such as "int" or
	// "path". Defaults to "string".
	Type string `toml:"type,omitempty" yaml:"type,omitempty"`
	// Default is stored when an optional argument is omitted.
	Default string `toml:"default,omitempty" yaml:"default,omitempty"`
	Help    string `toml:"help,omitempty" yaml:"help,omitempty"`
}

// Key returns the store key of the option.
func (o Option) Key() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Letter
}

// Kind returns the parsed argument kind.
func (o Option) Kind() (options.ArgKind, error) {
	switch strings.ToLower(o.Arg) {
	case "", ArgNone:
		return options.NoArgument, nil
	case ArgRequired:
		return options.RequiredArgument, nil
	case ArgOptional:
		return options.OptionalArgument, nil
	default:
		return 0, errors.Newf("unknown argument kind %q", o.Arg)
	}
}

// TypeName returns the conversion name, "string" when unset.
func (o Option) TypeName() string {
	if o.Type == "" {
		return "string"
	}
	return o.Type
}

// StoreName returns the associative array receiving options.
func (m *Manifest) StoreName() string {
	if m.Store == "" {
		return DefaultStore
	}
	return m.Store
}

// ArgsName returns the indexed array receiving operands.
func (m *Manifest) ArgsName() string {
	if m.Args == "" {
		return DefaultArgs
	}
	return m.Args
}

// Format is a manifest encoding.
type Format string

const (
	FormatTOML     Format = "toml"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
)

// ErrUnknownFormat is returned for files whose extension is not a
// manifest format.
var ErrUnknownFormat = errors.New("unknown manifest format")

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// ParseFormat converts a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTOML:
		return FormatTOML, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatMarkdown, "markdown":
		return FormatMarkdown, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// Decode reads a manifest in the given format. Unknown keys are rejected
// so typos do not silently drop options.
func Decode(r io.Reader, format Format) (*Manifest, error) {
	data, err := fileutil.ReadWithLimit(r, fileutil.MaxFileSize)
	if err != nil {
		return nil, err
	}

	var m Manifest
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, tomlError(err)
		}
	case FormatYAML:
		if err := decodeYAML(data, &m); err != nil {
			return nil, err
		}
	case FormatMarkdown:
		body, err := frontmatter.MustParse(bytes.NewReader(data), &m)
		if err != nil {
			return nil, err
		}
		if m.LongDoc == "" {
			m.LongDoc = string(body)
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return &m, nil
}

func decodeYAML(data []byte, m *Manifest) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "YAML error")
	}
	return nil
}

// tomlError adds the position of syntax errors.
func tomlError(err error) error {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return errors.Newf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return errors.Newf("TOML error: %s", strings.TrimSpace(strictErr.String()))
	}
	return errors.Wrap(err, "TOML error")
}

// DecodeFile reads the manifest at path, picking the format from the
// extension.
func DecodeFile(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	m.Source = path
	return m, nil
}

// Encode writes m in the given format. Markdown output moves the long
// description into the body.
func Encode(w io.Writer, m *Manifest, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatTOML:
		data, err = toml.Marshal(m)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(m); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	case FormatMarkdown:
		header := *m
		header.LongDoc = ""
		data, err = frontmatter.Format(&header, m.LongDoc)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "encoding %s manifest", format)
	}
	_, err = w.Write(data)
	return err
}
