package project

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

var (
	documentKeys = []string{"packages"}
	packageKeys  = []string{"name", "functions"}
	functionKeys = []string{"name", "runtime", "web"}
)

// Document is a parsed project.yml.
type Document struct {
	Packages []Package
	fields

	root *yaml.Node
}

// Package is a named group of functions.
type Package struct {
	Name      string
	Functions []Function
	fields
}

// Function is a single function entry of a package.
type Function struct {
	Name    string
	Runtime string
	Web     bool
	fields
}

// NewFunction returns a web-accessible function entry.
func NewFunction(name, runtime string) Function {
	return Function{Name: name, Runtime: runtime, Web: true}
}

// NewPackage returns a package entry holding fns.
func NewPackage(name string, fns ...Function) Package {
	return Package{Name: name, Functions: fns}
}

// FindPackage returns the first package with the given name, or nil.
func (d *Document) FindPackage(name string) *Package {
	for i := range d.Packages {
		if d.Packages[i].Name == name {
			return &d.Packages[i]
		}
	}
	return nil
}

// AddPackage appends p. It fails if a package with the same name exists.
func (d *Document) AddPackage(p Package) error {
	if d.FindPackage(p.Name) != nil {
		return fmt.Errorf("package %q already exists", p.Name)
	}
	d.Packages = append(d.Packages, p)
	return nil
}

// FindFunction returns the first function with the given name, or nil.
func (p *Package) FindFunction(name string) *Function {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i]
		}
	}
	return nil
}

// AddFunction appends fn. It fails if a function with the same name exists.
func (p *Package) AddFunction(fn Function) error {
	if p.FindFunction(fn.Name) != nil {
		return fmt.Errorf("function %q already exists in package %q", fn.Name, p.Name)
	}
	p.Functions = append(p.Functions, fn)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	*d = Document{}
	return d.fields.decodeMapping(node, "document", func(key string, v *yaml.Node) (bool, error) {
		if key == "packages" {
			return true, v.Decode(&d.Packages)
		}
		return false, nil
	})
}

// MarshalYAML implements yaml.Marshaler.
func (d Document) MarshalYAML() (any, error) {
	return d.node()
}

func (d *Document) node() (*yaml.Node, error) {
	return d.fields.encodeMapping(documentKeys, func(key string, orig *yaml.Node) (*yaml.Node, error) {
		if orig == nil && d.src != nil && len(d.Packages) == 0 {
			return nil, nil
		}
		items := make([]*yaml.Node, 0, len(d.Packages))
		for i := range d.Packages {
			n, err := d.Packages[i].node()
			if err != nil {
				return nil, fmt.Errorf("package %q: %w", d.Packages[i].Name, err)
			}
			items = append(items, n)
		}
		return sequence(orig, items), nil
	})
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Package) UnmarshalYAML(node *yaml.Node) error {
	*p = Package{}
	return p.fields.decodeMapping(node, "package", func(key string, v *yaml.Node) (bool, error) {
		switch key {
		case "name":
			return true, v.Decode(&p.Name)
		case "functions":
			return true, v.Decode(&p.Functions)
		}
		return false, nil
	})
}

// MarshalYAML implements yaml.Marshaler.
func (p Package) MarshalYAML() (any, error) {
	return p.node()
}

func (p *Package) node() (*yaml.Node, error) {
	return p.fields.encodeMapping(packageKeys, func(key string, orig *yaml.Node) (*yaml.Node, error) {
		switch key {
		case "name":
			return scalar(orig, p.Name)
		case "functions":
			if orig == nil && p.src != nil && len(p.Functions) == 0 {
				return nil, nil
			}
			items := make([]*yaml.Node, 0, len(p.Functions))
			for i := range p.Functions {
				n, err := p.Functions[i].node()
				if err != nil {
					return nil, fmt.Errorf("function %q: %w", p.Functions[i].Name, err)
				}
				items = append(items, n)
			}
			return sequence(orig, items), nil
		}
		return nil, nil
	})
}

// UnmarshalYAML implements yaml.Unmarshaler. A missing web key means true.
func (f *Function) UnmarshalYAML(node *yaml.Node) error {
	*f = Function{Web: true}
	return f.fields.decodeMapping(node, "function", func(key string, v *yaml.Node) (bool, error) {
		switch key {
		case "name":
			return true, v.Decode(&f.Name)
		case "runtime":
			return true, v.Decode(&f.Runtime)
		case "web":
			return true, v.Decode(&f.Web)
		}
		return false, nil
	})
}

// MarshalYAML implements yaml.Marshaler.
func (f Function) MarshalYAML() (any, error) {
	return f.node()
}

// node omits defaulted keys the source did not spell out; entries built in
// memory get every key.
func (f *Function) node() (*yaml.Node, error) {
	return f.fields.encodeMapping(functionKeys, func(key string, orig *yaml.Node) (*yaml.Node, error) {
		switch key {
		case "name":
			return scalar(orig, f.Name)
		case "runtime":
			if orig == nil && f.Runtime == "" {
				return nil, nil
			}
			return scalar(orig, f.Runtime)
		case "web":
			// Absent means true, so parsed entries are not given the key.
			if orig == nil && f.src != nil && f.Web {
				return nil, nil
			}
			return scalar(orig, f.Web)
		}
		return nil, nil
	})
}
