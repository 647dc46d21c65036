package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/grantchatterton/do-functions-cli/internal/branding"
	"github.com/grantchatterton/do-functions-cli/internal/project"
	"github.com/grantchatterton/do-functions-cli/internal/templates"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys.
const (
	KeyPackagesDir = "packages_dir"
	KeyProjectFile = "project_file"
	KeyTemplates   = "templates"
)

// DefaultPackagesDir is where functions are created when nothing else is
// configured.
const DefaultPackagesDir = "./packages"

// TemplateConfig is one entry of the "templates" list.
type TemplateConfig struct {
	Name    string `mapstructure:"name"`
	ID      string `mapstructure:"id"`
	Runtime string `mapstructure:"runtime"`
	Dir     string `mapstructure:"dir"`
}

// Dir returns the path to the config directory (~/.do-functions-cli/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyPackagesDir, DefaultPackagesDir)
	viper.SetDefault(KeyProjectFile, project.DefaultFileName)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if key == KeyTemplates {
		return fmt.Errorf("%q is a list; edit %s directly", key, FilePath())
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// PackagesDir returns the configured packages directory.
func PackagesDir() string {
	return viper.GetString(KeyPackagesDir)
}

// ProjectFile returns the configured project file path.
func ProjectFile() string {
	return viper.GetString(KeyProjectFile)
}

// Templates returns the user-defined templates. Unknown keys in an entry are
// rejected. Relative and ~-prefixed
// directories are resolved against the config directory and the home
// directory respectively.
func Templates() ([]templates.Template, error) {
	var entries []TemplateConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &entries,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(viper.Get(KeyTemplates)); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", KeyTemplates, err)
	}

	out := make([]templates.Template, 0, len(entries))
	for i, e := range entries {
		t := templates.Template{
			Name:    e.Name,
			DirName: e.ID,
			Runtime: e.Runtime,
			Dir:     expandDir(e.Dir),
		}
		if t.Dir == "" {
			return nil, fmt.Errorf("%s[%d]: template %q has no dir", KeyTemplates, i, e.ID)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", KeyTemplates, i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func expandDir(dir string) string {
	switch {
	case dir == "":
		return ""
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return dir
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~"))
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(Dir(), dir)
	}
}
