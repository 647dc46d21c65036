package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grantchatterton/do-functions-cli/internal/platform"
	"go.yaml.in/yaml/v3"
)

// DefaultFileName is the conventional name of the project config file.
const DefaultFileName = "project.yml"

var (
	// ErrMalformedDocument reports a project.yml that is not valid YAML.
	ErrMalformedDocument = errors.New("malformed project config")
	// ErrInvalidDocument reports YAML that does not have the project.yml shape.
	ErrInvalidDocument = errors.New("invalid project config")
)

// Parse decodes and validates project.yml content. Only single-document
// files are accepted since anything after the first document would be lost
// on save.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	var next yaml.Node
	if err := dec.Decode(&next); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		return nil, fmt.Errorf("%w: multiple YAML documents are not supported", ErrInvalidDocument)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidDocument)
	}
	body := root.Content[0]

	issues, err := validateNode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	doc := new(Document)
	if err := body.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	doc.root = &root
	return doc, nil
}

// Marshal renders the document as YAML with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	body, err := d.node()
	if err != nil {
		return nil, err
	}

	out := body
	if d.root != nil {
		cp := *d.root
		cp.Content = []*yaml.Node{body}
		out = &cp
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads and parses the project config at path. A missing file yields
// an error matching fs.ErrNotExist.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing project config %s: %w", path, err)
	}
	return doc, nil
}

// Save renders doc and atomically replaces the file at path.
func Save(path string, doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling project config: %w", err)
	}

	if err := platform.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing project config: %w", err)
	}
	return nil
}
