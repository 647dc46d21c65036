package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grantchatterton/do-functions-cli/internal/templates"
)

func init() {
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the templates functions can be created from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tRUNTIME\tVERSION\tSOURCE")
		for _, t := range tmplRegistry.List() {
			kind, version := t.Runtime, "-"
			if rt, err := templates.ParseRuntime(t.Runtime); err == nil {
				kind, version = rt.Kind, rt.Version.Original()
			}
			source := "built-in"
			if t.Dir != "" {
				source = t.Dir
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.DirName, t.Name, kind, version, source)
		}
		return w.Flush()
	},
}
