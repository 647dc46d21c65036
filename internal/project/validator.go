package project

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/project.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationIssue is a single schema violation.
type ValidationIssue struct {
	Path    string // Instance location, e.g. "/packages/0/functions"
	Message string
}

func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// getSchema compiles the embedded schema once.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("project.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("project.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// validateNode checks a decoded YAML node against the project schema. The
// returned issues are nil when the node is valid; err reports problems that
// stop validation from running at all.
func validateNode(node *yaml.Node) ([]ValidationIssue, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	// The decoder enforces unique keys and alias limits.
	if err := node.Decode(new(any)); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	inst, err := instance(node)
	if err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return leafIssues(ve), nil
}

// instance converts n to the value types the schema validator accepts.
// Mapping keys are taken as written and timestamps stay strings.
func instance(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return instance(n.Alias)
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := instance(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		if err := mergeInto(m, n); err != nil {
			return nil, err
		}
		return m, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
}

// mergeInto fills m from the mapping n. Explicit keys win over keys from a
// "<<" merge, and earlier merge sources win over later ones.
func mergeInto(m map[string]any, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := n.Content[i]; isMergeKey(k) {
			srcs := mergeSources(n.Content[i+1])
			for j := len(srcs) - 1; j >= 0; j-- {
				if err := mergeInto(m, srcs[j]); err != nil {
					return err
				}
			}
		}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if isMergeKey(k) {
			continue
		}
		v, err := instance(n.Content[i+1])
		if err != nil {
			return err
		}
		m[k.Value] = v
	}
	return nil
}

// leafIssues flattens the cause tree to its leaves, dropping repeats.
func leafIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	seen := make(map[ValidationIssue]bool)

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		if e.ErrorKind == nil {
			return
		}
		issue := ValidationIssue{Message: e.ErrorKind.LocalizedString(printer)}
		if len(e.InstanceLocation) > 0 {
			issue.Path = "/" + strings.Join(e.InstanceLocation, "/")
		}
		if !seen[issue] {
			seen[issue] = true
			issues = append(issues, issue)
		}
	}
	walk(ve)

	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return issues
}
