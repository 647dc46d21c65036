package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/grantchatterton/do-functions-cli/internal/ctxlog"
	"github.com/grantchatterton/do-functions-cli/internal/templates"
)

// ErrUnsupportedLanguage is returned when a language has no registered template.
var ErrUnsupportedLanguage = errors.New("unsupported function language")

// Status is the outcome of registering a function.
type Status int

const (
	StatusError Status = iota
	StatusCreatedNewConfig
	StatusAddedPackage
	StatusAddedFunction
	StatusFunctionExists
)

func (s Status) String() string {
	switch s {
	case StatusCreatedNewConfig:
		return "created-new-config"
	case StatusAddedPackage:
		return "added-package"
	case StatusAddedFunction:
		return "added-function"
	case StatusFunctionExists:
		return "function-exists"
	default:
		return "error"
	}
}

// Changed reports whether the status implies the file was written.
func (s Status) Changed() bool {
	return s == StatusCreatedNewConfig || s == StatusAddedPackage || s == StatusAddedFunction
}

// Result describes what RegisterFunction did. Err is set only when Status
// is StatusError and wraps ErrMalformedDocument, ErrInvalidDocument or the
// underlying I/O error.
type Result struct {
	Status Status
	Err    error
}

// Merger registers functions in a project.yml.
type Merger struct {
	templates *templates.Registry
}

// NewMerger returns a Merger resolving runtimes through reg.
func NewMerger(reg *templates.Registry) *Merger {
	return &Merger{templates: reg}
}

// RegisterFunction adds functionName under packageName in the project config
// at path, creating the file when it does not exist. The file is written at
// most once, and only when a package or function was added.
//
// The returned error is non-nil only for ErrUnsupportedLanguage, which is
// checked before the file is touched. Every other failure is reported as
// StatusError in the Result.
func (m *Merger) RegisterFunction(ctx context.Context, path, packageName, functionName, lang string) (Result, error) {
	tmpl, ok := m.templates.Lookup(lang)
	if !ok {
		return Result{Status: StatusError}, fmt.Errorf("%w: %s (available: %s)",
			ErrUnsupportedLanguage, lang, strings.Join(m.templates.IDs(), ", "))
	}

	log := ctxlog.FromContext(ctx).With("path", path, "package", packageName, "function", functionName)

	status, err := merge(path, packageName, NewFunction(functionName, tmpl.Runtime))
	if err != nil {
		log.Error("updating project config failed", "error", err)
		return Result{Status: StatusError, Err: err}, nil
	}

	log.Debug("project config merged", "status", status.String(), "runtime", tmpl.Runtime)
	return Result{Status: status}, nil
}

func merge(path, packageName string, fn Function) (Status, error) {
	doc, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		doc = &Document{Packages: []Package{NewPackage(packageName, fn)}}
		if err := Save(path, doc); err != nil {
			return StatusError, err
		}
		return StatusCreatedNewConfig, nil
	}
	if err != nil {
		return StatusError, err
	}

	pkg := doc.FindPackage(packageName)
	if pkg == nil {
		if err := doc.AddPackage(NewPackage(packageName, fn)); err != nil {
			return StatusError, err
		}
		if err := Save(path, doc); err != nil {
			return StatusError, err
		}
		return StatusAddedPackage, nil
	}

	if pkg.FindFunction(fn.Name) != nil {
		return StatusFunctionExists, nil
	}

	if err := pkg.AddFunction(fn); err != nil {
		return StatusError, err
	}
	if err := Save(path, doc); err != nil {
		return StatusError, err
	}
	return StatusAddedFunction, nil
}
