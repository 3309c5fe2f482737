package commands

import (
	"io"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

var showPick bool

func init() {
	showCmd.Flags().BoolVar(&showPick, "pick", false, "choose the builtin interactively")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the help text of a builtin",
	Long: `Show the help text of a builtin exactly as the bash help command
would print it.

With --pick, choose the builtin from a fuzzy finder with a help preview.`,
	Example: `  # Show help for counter
  bbhost show counter

  # Browse the builtins
  bbhost show --pick

See Also: bbhost list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.FromContext(cmd.Context())
		cat, err := loadCatalog(currentConfig(), cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}

		var name string
		switch {
		case len(args) == 1:
			name = args[0]
		case showPick:
			name, err = pickBuiltin(cat.registry.Definitions())
			if err != nil || name == "" {
				return err
			}
		default:
			return errors.NewUserError(errors.New("missing builtin name"), "Pass a name or use --pick")
		}
		return showBuiltin(cmd.OutOrStdout(), cat, name)
	},
}

func showBuiltin(w io.Writer, cat *catalog, name string) error {
	def, ok := cat.registry.Lookup(name)
	if !ok {
		return errors.NewUserError(errors.Wrap(errors.ErrUnknownBuiltin, name), "Run 'bbhost list' to see the available builtins")
	}
	builtin.WriteHelp(w, def.Metadata)
	return nil
}

// pickBuiltin returns the chosen name, or "" when the finder was aborted.
func pickBuiltin(defs []builtin.Definition) (string, error) {
	if len(defs) == 0 {
		return "", errors.NewUserError(errors.New("no builtins found"), "Add manifests to the configured manifest directories")
	}
	idx, err := fuzzyfinder.Find(
		defs,
		func(i int) string { return defs[i].Name },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			var b strings.Builder
			builtin.WriteHelp(&b, defs[i].Metadata)
			return b.String()
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}
	return defs[idx].Name, nil
}
