package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grantchatterton/do-functions-cli/internal/branding"
	"github.com/grantchatterton/do-functions-cli/internal/config"
	"github.com/grantchatterton/do-functions-cli/internal/ctxlog"
	"github.com/grantchatterton/do-functions-cli/internal/prompt"
	"github.com/grantchatterton/do-functions-cli/internal/templates"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbose     bool
	projectFile string

	// tmplRegistry is built once per invocation from the built-in templates
	// and the ones declared in the user config.
	tmplRegistry *templates.Registry
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds DigitalOcean serverless functions and
registers them in the project.yml of a functions project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()

		logger := ctxlog.New(cmd.ErrOrStderr(), verbose)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

		reg, err := buildRegistry()
		if err != nil {
			return fmt.Errorf("loading templates from %s: %w", config.FilePath(), err)
		}
		tmplRegistry = reg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&projectFile, "project-file", "", "Path to the project config (default: project_file setting or project.yml)")
}

// buildRegistry returns the built-in templates followed by the user's.
func buildRegistry() (*templates.Registry, error) {
	reg := templates.NewDefault()
	user, err := config.Templates()
	if err != nil {
		return nil, err
	}
	for _, t := range user {
		reg.Register(t)
	}
	return reg, nil
}

// projectPath returns the project config path from the flag or the config.
func projectPath() string {
	if projectFile != "" {
		return projectFile
	}
	return config.ProjectFile()
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return execute()
}

// execute runs rootCmd. An aborted prompt ends the run quietly; other errors
// are printed in the failure style.
func execute() error {
	err := rootCmd.Execute()
	if errors.Is(err, prompt.ErrAborted) {
		fmt.Fprintln(rootCmd.OutOrStdout(), "\n👋 until next time!")
		return nil
	}
	if err != nil {
		fail(rootCmd.ErrOrStderr(), "%s", err.Error())
	}
	return err
}
