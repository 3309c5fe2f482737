package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/internal/shell"
)

var (
	runCommand string
	runEnable  []string
)

func init() {
	runCmd.Flags().StringVarP(&runCommand, "command", "c", "",
		"run this command line instead of a script")
	runCmd.Flags().StringSliceVarP(&runEnable, "enable", "e", nil,
		"builtins to enable before running")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run a script in the in-process shell",
	Long: `Run a script line by line in the in-process shell and exit with the
status of the last command. The script is read from standard input when no
file or "-" is given.

The shell understands quoting, $NAME and ${NAME[sub]} expansion,
assignments, and the commands enable, help, declare, readonly, unset,
echo, exit, true and false. Builtins are enabled with "enable -f FILE
NAME" or with --enable.`,
	Example: `  # Run a script
  bbhost run examples.sh

  # One command line
  bbhost run -e upcase -c 'upcase "hello world"'

  # Pipe a script
  printf 'varcounter N\necho $N $N\n' | bbhost run -e varcounter

See Also: bbhost exec`,
	Args: cobra.MaximumNArgs(1),
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

		if err := sh.Enable(runEnable...); err != nil {
			return errors.NewStatusError(errors.ExitUser)
		}

		var status int
		switch {
		case runCommand != "":
			status = sh.Run(runCommand)
		case len(args) == 0 || args[0] == "-":
			status, err = runScript(sh, cmd.InOrStdin())
		default:
			status, err = runFile(sh, args[0])
		}
		if err != nil {
			return err
		}
		if err := saveShell(c, sh); err != nil {
			return err
		}
		return statusError(status)
	},
}

func runFile(sh *shell.Shell, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.NewUserError(err, "Check the script path")
	}
	defer f.Close()
	return runScript(sh, f)
}

func runScript(sh *shell.Shell, r io.Reader) (int, error) {
	status, err := sh.RunScript(r)
	if err != nil {
		return status, errors.NewSystemError(err, "")
	}
	return status, nil
}
