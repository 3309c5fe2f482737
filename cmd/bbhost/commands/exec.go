package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/internal/shell"
)

func init() {
	// Everything after the builtin name belongs to the builtin.
	execCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:   "exec <name> [args...]",
	Short: "Run one builtin",
	Long: `Enable a builtin in a fresh shell, run it once with the given
arguments, and exit with its status.

Arguments are passed verbatim: there is no quote removal or expansion. Use
"bbhost run -c" to go through the shell parser.`,
	Example: `  # Run the counter demo
  bbhost exec counter -s 5

  # Keep variables between runs
  bbhost --state=vars.cbor exec usevars x=1
  bbhost --state=vars.cbor exec usevars x

See Also: bbhost run, bbhost list`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		logger := logging.FromContext(cmd.Context())
		cat, err := loadCatalog(c, cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}
		sh, err := newShell(c, cat, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
		if err != nil {
			return err
		}
		defer func() { _ = sh.Close() }()

		status, err := execBuiltin(sh, args[0], args[1:])
		if err != nil {
			return err
		}
		if err := saveShell(c, sh); err != nil {
			return err
		}
		return statusError(status)
	},
}

// execBuiltin enables name in sh and runs it once.
func execBuiltin(sh *shell.Shell, name string, args []string) (int, error) {
	if _, ok := sh.Registry().Lookup(name); !ok {
		return 0, errors.NewUserError(errors.Wrap(errors.ErrUnknownBuiltin, name), "Run 'bbhost list' to see the available builtins")
	}
	if err := sh.Enable(name); err != nil {
		// The loader already reported the failure on stderr.
		return 0, errors.NewStatusError(errors.ExitUser)
	}
	return sh.Call(name, args...), nil
}

// statusError turns a non-zero shell status into a silent exit error.
func statusError(status int) error {
	if status == 0 {
		return nil
	}
	return errors.NewStatusError(status)
}
