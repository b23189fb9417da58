package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/abdul-hamid-achik/echocheck/packages/checks"
	"github.com/spf13/cobra"
)

var listCheckFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in checks",
	Long: `List the checks "echocheck run" executes, in run order.

Examples:
  echocheck list
  echocheck list --check "get-*"`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVarP(&listCheckFlag, "check", "c", "", "Only list checks matching name pattern (comma-separated, * wildcard)")
}

func listCommand(cmd *cobra.Command, args []string) error {
	selected := checks.Filter(checks.Default(), listCheckFlag)
	if len(selected) == 0 {
		return usageError(fmt.Errorf("no checks match %q", listCheckFlag))
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for i, c := range selected {
		fmt.Fprintf(w, "%d.\t%s\t%s\n", i+1, c.Name, c.Description)
	}
	return w.Flush()
}
