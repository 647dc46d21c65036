package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grantchatterton/do-functions-cli/internal/config"
	"github.com/grantchatterton/do-functions-cli/internal/ctxlog"
	"github.com/grantchatterton/do-functions-cli/internal/project"
	"github.com/grantchatterton/do-functions-cli/internal/prompt"
	"github.com/grantchatterton/do-functions-cli/internal/scaffold"
)

var (
	createYes         bool
	createPackagesDir string
	createLanguage    string
)

func init() {
	createCmd.Flags().BoolVarP(&createYes, "yes", "y", false, "Skip all optional prompts and use defaults")
	createCmd.Flags().StringVar(&createPackagesDir, "packages-dir", "", "Root packages directory (default: packages_dir setting)")
	createCmd.Flags().StringVarP(&createLanguage, "language", "l", "", "Template to create the function from")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create [package/name]",
	Short: "Create a new serverless function",
	Long: `Scaffold a new function under <packages-dir>/<package>/<name> from a
language template, optionally install its dependencies, and add it to the
project config.

Examples:
  do-functions-cli create
  do-functions-cli create sample/hello --language typescript --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	p := prompt.New(cmd.InOrStdin(), out)

	packagesDir := createPackagesDir
	if packagesDir == "" {
		dir, err := p.Input("Enter the root function packages directory:", config.PackagesDir(), nil)
		if err != nil {
			return err
		}
		packagesDir = dir
	}

	var funcPath string
	if len(args) == 1 {
		if err := validateFunctionPath(args[0]); err != nil {
			return err
		}
		funcPath = args[0]
	} else {
		answer, err := p.Input("Enter the package/function name to create:", defaultFunctionPath, validateFunctionPath)
		if err != nil {
			return err
		}
		funcPath = answer
	}
	pkg, name := splitFunctionPath(funcPath)

	targetDir, err := filepath.Abs(filepath.Join(packagesDir, pkg, name))
	if err != nil {
		return fmt.Errorf("resolving function directory: %w", err)
	}
	if _, err := os.Stat(targetDir); err == nil {
		overwrite, err := p.Confirm(fmt.Sprintf("The directory %q already exists. Do you want to overwrite it?", targetDir), false)
		if err != nil {
			return err
		}
		if !overwrite {
			fail(out, "Operation cancelled. No changes were made.")
			return nil
		}
	}

	language := createLanguage
	if language == "" {
		language, err = selectLanguage(p)
		if err != nil {
			return err
		}
	}
	tmpl, ok := tmplRegistry.Lookup(language)
	if !ok {
		return fmt.Errorf("%w: %s (available: %s)",
			project.ErrUnsupportedLanguage, language, strings.Join(tmplRegistry.IDs(), ", "))
	}

	ctxlog.FromContext(ctx).Debug("creating function", "path", funcPath, "dir", targetDir, "template", tmpl.DirName)
	if _, err := scaffold.Generate(scaffold.Options{TargetDir: targetDir, FuncPath: funcPath, Template: tmpl}); err != nil {
		return fmt.Errorf("creating function %s: %w", funcPath, err)
	}
	succeed(out, "Function %q successfully created at %q", funcPath, targetDir)

	install, err := confirmUnlessYes(p, "Do you want to install dependencies now?")
	if err != nil {
		return err
	}
	if install {
		info(out, "Installing dependencies...")
		var npmOut io.Writer
		if verbose {
			npmOut = cmd.ErrOrStderr()
		}
		warning, err := scaffold.InstallDependencies(ctx, targetDir, npmOut)
		if err != nil {
			return fmt.Errorf("installing dependencies: %w", err)
		}
		if warning != "" {
			warn(out, "%s", warning)
		} else {
			succeed(out, "Dependencies installed successfully")
		}
	}

	path := projectPath()
	file := filepath.Base(path)

	add, err := confirmUnlessYes(p, fmt.Sprintf("Do you want to add this function automatically to the %s config?", file))
	if err != nil || !add {
		return err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		create, err := confirmUnlessYes(p, fmt.Sprintf("A %s file was not found. Would you like to create one?", file))
		if err != nil {
			return err
		}
		if !create {
			info(out, "Skipping creating the %s file...", file)
			return nil
		}
	}

	return registerFunction(cmd, path, funcPath, tmpl.DirName)
}

// selectLanguage offers every registered template, defaulting to the first.
func selectLanguage(p *prompt.Prompter) (string, error) {
	def, err := tmplRegistry.Default()
	if err != nil {
		return "", err
	}
	var choices []prompt.Choice
	for _, t := range tmplRegistry.List() {
		choices = append(choices, prompt.Choice{Label: t.Name, Value: t.DirName})
	}
	return p.Select("Choose a language for the function:", choices, def.DirName)
}

// confirmUnlessYes asks msg with a default of yes, or answers yes without
// asking when --yes was given.
func confirmUnlessYes(p *prompt.Prompter, msg string) (bool, error) {
	if createYes {
		return true, nil
	}
	return p.Confirm(msg, true)
}
