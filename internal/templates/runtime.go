package templates

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Runtime is a parsed runtime tag such as "nodejs:18".
type Runtime struct {
	Kind    string
	Version *semver.Version
}

// ParseRuntime splits a "<kind>:<version>" tag and parses the version.
// Partial versions like "18" or "3.11" are accepted.
func ParseRuntime(tag string) (Runtime, error) {
	kind, version, ok := strings.Cut(tag, ":")
	if !ok || kind == "" || version == "" {
		return Runtime{}, fmt.Errorf("runtime %q must have the form <kind>:<version>", tag)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return Runtime{}, fmt.Errorf("parsing runtime version %q: %w", version, err)
	}
	return Runtime{Kind: kind, Version: v}, nil
}

// Validate checks that a template is complete enough to be registered.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template is missing a name")
	}
	if t.DirName == "" {
		return fmt.Errorf("template %q is missing an identifier", t.Name)
	}
	if _, err := ParseRuntime(t.Runtime); err != nil {
		return fmt.Errorf("template %q: %w", t.DirName, err)
	}
	return nil
}
