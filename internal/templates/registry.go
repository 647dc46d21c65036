package templates

import (
	"errors"
	"slices"
)

// ErrEmptyRegistry is returned by Default when no template has been registered.
var ErrEmptyRegistry = errors.New("template registry is empty")

// Template describes a language a function can be scaffolded in.
type Template struct {
	Name    string // Display name, e.g. "JavaScript"
	DirName string // Identifier and embedded tree name, e.g. "javascript"
	Runtime string // DigitalOcean runtime tag, e.g. "nodejs:18"
	Dir     string // On-disk template tree; empty for built-in templates
}

// Built-in template identifiers.
const (
	JavaScript = "javascript"
	TypeScript = "typescript"
)

// DefaultRuntime is the runtime tag used by the built-in templates.
const DefaultRuntime = "nodejs:18"

// Builtins returns the templates shipped with the CLI, default first.
func Builtins() []Template {
	return []Template{
		{Name: "JavaScript", DirName: JavaScript, Runtime: DefaultRuntime},
		{Name: "TypeScript", DirName: TypeScript, Runtime: DefaultRuntime},
	}
}

// Registry is an ordered, append-only list of templates.
type Registry struct {
	templates []Template
}

// New returns a registry seeded with the given templates in order.
func New(ts ...Template) *Registry {
	return &Registry{templates: slices.Clone(ts)}
}

// NewDefault returns a registry seeded with Builtins.
func NewDefault() *Registry {
	return New(Builtins()...)
}

// List returns every registered template in registration order.
func (r *Registry) List() []Template {
	return slices.Clone(r.templates)
}

// Default returns the first registered template.
func (r *Registry) Default() (Template, error) {
	if len(r.templates) == 0 {
		return Template{}, ErrEmptyRegistry
	}
	return r.templates[0], nil
}

// Lookup returns the first template whose DirName matches id.
func (r *Registry) Lookup(id string) (Template, bool) {
	for _, t := range r.templates {
		if t.DirName == id {
			return t, true
		}
	}
	return Template{}, false
}

// Register appends t. Identifiers are not checked for uniqueness; a later
// template with an existing DirName is never returned by Lookup.
func (r *Registry) Register(t Template) {
	r.templates = append(r.templates, t)
}

// IDs returns the identifiers of every registered template in order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.templates))
	for i, t := range r.templates {
		ids[i] = t.DirName
	}
	return ids
}
