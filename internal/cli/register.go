package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grantchatterton/do-functions-cli/internal/project"
)

var registerLanguage string

func init() {
	registerCmd.Flags().StringVarP(&registerLanguage, "language", "l", "", "Template whose runtime the function uses (default: first registered template)")
	rootCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register <package/name>",
	Short: "Add an existing function to project.yml",
	Long: `Add a function entry to the project config without scaffolding any files.

The package is created when missing. Nothing is written when the function is
already listed.

Examples:
  do-functions-cli register sample/hello
  do-functions-cli register api/users --language typescript --project-file infra/project.yml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		funcPath := args[0]
		if err := validateFunctionPath(funcPath); err != nil {
			return err
		}

		language := registerLanguage
		if language == "" {
			def, err := tmplRegistry.Default()
			if err != nil {
				return err
			}
			language = def.DirName
		}

		return registerFunction(cmd, projectPath(), funcPath, language)
	},
}

// registerFunction merges funcPath into the project config at path and
// prints the outcome.
func registerFunction(cmd *cobra.Command, path, funcPath, language string) error {
	pkg, name := splitFunctionPath(funcPath)
	file := filepath.Base(path)

	merger := project.NewMerger(tmplRegistry)
	res, err := merger.RegisterFunction(cmd.Context(), path, pkg, name, language)
	if err != nil {
		return err
	}

	msg := outcomeMessage(res.Status, file, pkg, funcPath)
	switch {
	case res.Status == project.StatusError:
		return fmt.Errorf("%s: %w", msg, res.Err)
	case res.Status.Changed():
		succeed(cmd.OutOrStdout(), "%s", msg)
	default:
		info(cmd.OutOrStdout(), "%s", msg)
	}
	return nil
}
