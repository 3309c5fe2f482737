package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available builtins",
	Long: `List every builtin bbhost can enable: the compiled-in demo builtins
and the manifests found in the configured manifest directories.`,
	Example: `  # List builtins
  bbhost list

  # Machine-readable output
  bbhost list --json

See Also: bbhost show, bbhost exec`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := logging.FromContext(cmd.Context())
		cat, err := loadCatalog(currentConfig(), cmd.OutOrStdout(), logger)
		if err != nil {
			return err
		}
		return listBuiltins(cmd.OutOrStdout(), cat, listJSON)
	},
}

// listEntry is one row of "bbhost list".
type listEntry struct {
	Name   string `json:"name"`
	Usage  string `json:"usage"`
	Source string `json:"source"`
}

func listBuiltins(w io.Writer, cat *catalog, asJSON bool) error {
	defs := cat.registry.Definitions()
	entries := make([]listEntry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, listEntry{
			Name:   def.Name,
			Usage:  def.Usage(),
			Source: cat.source(def.Name),
		})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(entries), "encoding builtin list")
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No builtins found.")
		return nil
	}
	name := color.New(color.Bold).SprintFunc()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tUSAGE\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name(e.Name), e.Usage, e.Source)
	}
	return errors.Wrap(tw.Flush(), "writing builtin list")
}
