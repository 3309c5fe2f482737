package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/bashbuiltins/internal/config"
	"github.com/thoreinstein/bashbuiltins/internal/editor"
	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/internal/validator"
	"github.com/thoreinstein/bashbuiltins/pkg/fileutil"
	"github.com/thoreinstein/bashbuiltins/pkg/manifest"
	"github.com/thoreinstein/bashbuiltins/pkg/word"
)

var (
	manifestJSON  bool
	newFormat     string
	convertFormat string
	manifestOut   string
)

func init() {
	manifestValidateCmd.Flags().BoolVar(&manifestJSON, "json", false, "output results as JSON")
	manifestNewCmd.Flags().StringVarP(&newFormat, "format", "f", "toml", "manifest format: toml, yaml, md")
	manifestNewCmd.Flags().StringVarP(&manifestOut, "output", "o", "", "write to this file instead of stdout")
	manifestConvertCmd.Flags().StringVarP(&convertFormat, "to", "t", "yaml", "target format: toml, yaml, md")
	manifestConvertCmd.Flags().StringVarP(&manifestOut, "output", "o", "", "write to this file instead of stdout")

	manifestCmd.AddCommand(manifestValidateCmd)
	manifestCmd.AddCommand(manifestNewCmd)
	manifestCmd.AddCommand(manifestConvertCmd)
	manifestCmd.AddCommand(manifestTypesCmd)
	manifestCmd.AddCommand(manifestEditCmd)
	rootCmd.AddCommand(manifestCmd)
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with builtin manifests",
	Long: `Manifests declare builtins without Go code. A manifest names the
builtin, its help text and its options; invoking the builtin stores the
parsed options in an associative array (OPTS) and the operands in an
indexed array (ARGS).`,
}

var manifestValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate manifest files",
	Long: `Decode and validate manifest files without registering them.

Exit codes:
  0 - All manifests are valid
  1 - At least one manifest is invalid`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := validator.FormatText
		if manifestJSON {
			format = validator.FormatJSON
		}
		return validateManifests(cmd.OutOrStdout(), args, format)
	},
}

var manifestNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Print a manifest skeleton",
	Example: `  # Start a TOML manifest
  bbhost manifest new greet -o ~/.local/share/bbhost/builtins/greet.toml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := manifest.ParseFormat(newFormat)
		if err != nil {
			return errors.NewUserError(err, "Use --format toml, yaml or md")
		}
		m := skeleton(args[0])
		if err := m.Validate().Err(); err != nil {
			return errors.NewUserError(err, "Builtin names must be shell identifiers")
		}
		return writeManifest(cmd.OutOrStdout(), manifestOut, m, format)
	},
}

var manifestConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a manifest to another format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := manifest.ParseFormat(convertFormat)
		if err != nil {
			return errors.NewUserError(err, "Use --to toml, yaml or md")
		}
		m, err := manifest.DecodeFile(args[0])
		if err != nil {
			return errors.NewUserError(err, "Run 'bbhost manifest validate' for details")
		}
		return writeManifest(cmd.OutOrStdout(), manifestOut, m, format)
	},
}

var manifestTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the option value types",
	Long:  `List the names accepted by the type field of a manifest option.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(word.Targets(), "\n"))
	},
}

var manifestEditCmd = &cobra.Command{
	Use:   "edit <name|file>",
	Short: "Open a manifest in your editor",
	Long: `Open the manifest of a builtin, or a manifest file, in $EDITOR ($VISUAL,
then nano or vi when neither is set). The manifest is validated when the
editor exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.FromContext(cmd.Context())
		path, err := manifestPath(currentConfig(), args[0], logger)
		if err != nil {
			return err
		}
		ed := editor.New()
		ed.Stdout = cmd.OutOrStdout()
		ed.Stderr = cmd.ErrOrStderr()
		if err := ed.Open(cmd.Context(), path); err != nil {
			return errors.NewSystemError(err, "Set EDITOR to the editor command you want")
		}
		return validateManifests(cmd.OutOrStdout(), []string{path}, validator.FormatText)
	},
}

// manifestExts are tried in order when resolving a builtin name to a file.
var manifestExts = []string{".toml", ".yaml", ".yml", ".md"}

// manifestPath resolves arg to a manifest file. A manifest path is used as
// is; a name is looked up as <dir>/<name>.<ext> in the manifest
// directories, then by the name declared inside each manifest, so files
// that no longer parse can still be opened.
func manifestPath(c *config.Config, arg string, logger *slog.Logger) (string, error) {
	if _, err := manifest.FormatOf(arg); err == nil {
		if _, err := os.Stat(arg); err != nil {
			return "", errors.NewUserError(errors.Wrap(err, "opening manifest"), "Create it with 'bbhost manifest new'")
		}
		return arg, nil
	}

	for _, dir := range c.ManifestDirs {
		for _, ext := range manifestExts {
			path := filepath.Join(dir, arg+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	manifests, err := manifest.LoadDirs(c.ManifestDirs...)
	if err != nil {
		logger.Warn("skipping unreadable manifests", "error", err)
	}
	for _, m := range manifests {
		if m.Name == arg && m.Source != "" {
			return m.Source, nil
		}
	}
	return "", errors.NewUserError(errors.Wrap(errors.ErrUnknownBuiltin, arg), "Run 'bbhost list' to see the manifest builtins")
}

// validateManifests reports every file and fails when any has errors.
func validateManifests(w io.Writer, paths []string, format validator.Format) error {
	results := make([]*validator.Result, 0, len(paths))
	failed := 0
	for _, path := range paths {
		result := &validator.Result{Source: path}
		m, err := manifest.DecodeFile(path)
		if err != nil {
			result.AddError("", err.Error(), nil)
		} else {
			result.Merge("", m.Validate())
		}
		if result.HasErrors() {
			failed++
		}
		results = append(results, result)
	}

	if err := validator.NewReporter(w, format).ReportAll(results); err != nil {
		return errors.NewSystemError(err, "")
	}
	if failed > 0 {
		err := errors.Wrapf(errors.ErrInvalidManifest, "%d of %d manifests failed validation", failed, len(paths))
		return errors.NewExitError(err, errors.ExitUser)
	}
	return nil
}

func skeleton(name string) *manifest.Manifest {
	return &manifest.Manifest{
		Name:     name,
		ShortDoc: name + " [-v] [-n NAME] [arg ...]",
		LongDoc:  "Describe what " + name + " does.",
		Options: []manifest.Option{
			{Letter: "v", Name: "verbose", Help: "increase verbosity"},
			{Letter: "n", Name: "name", Arg: manifest.ArgRequired, Type: "string", Help: "a value"},
		},
	}
}

// writeManifest encodes m to path atomically, or to w when path is empty.
func writeManifest(w io.Writer, path string, m *manifest.Manifest, format manifest.Format) error {
	if path == "" {
		return manifest.Encode(w, m, format)
	}
	err := fileutil.AtomicWrite(path, 0o644, func(out io.Writer) error {
		return manifest.Encode(out, m, format)
	})
	if err != nil {
		return errors.NewSystemError(err, "Check that the output directory exists")
	}
	return nil
}
