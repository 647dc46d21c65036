// Package branding provides the identity values of the CLI: command name,
// product name, config directory and environment variable prefix. They are
// read once from the embedded branding.yaml.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GitHubRepo  string `yaml:"github_repo"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:     "do-functions-cli",
			DisplayName: "DigitalOcean Functions CLI",
			Description: "CLI tool for managing DigitalOcean serverless functions",
			HomeDir:     ".do-functions-cli",
			EnvPrefix:   "DOFN",
			GitHubRepo:  "grantchatterton/do-functions-cli",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name.
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g. ".do-functions-cli").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g. "DOFN").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GitHubRepo returns the "owner/repo" string.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// EnvVar returns a fully qualified env var name, e.g. EnvVar("project_file")
// returns "DOFN_PROJECT_FILE".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
