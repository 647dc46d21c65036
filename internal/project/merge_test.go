package project

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/grantchatterton/do-functions-cli/internal/ctxlog"
	"github.com/grantchatterton/do-functions-cli/internal/templates"
)

func newTestMerger() *Merger {
	return NewMerger(templates.NewDefault())
}

// writeProject writes content to a project.yml in a temp dir and returns its path.
func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing project.yml: %v", err)
	}
	return path
}

func copyTestdata(t *testing.T, name string) string {
	t.Helper()
	return writeProject(t, string(readTestdata(t, name)))
}

func register(t *testing.T, m *Merger, path, pkg, fn, lang string) Result {
	t.Helper()
	res, err := m.RegisterFunction(context.Background(), path, pkg, fn, lang)
	if err != nil {
		t.Fatalf("RegisterFunction(%s, %s, %s) error: %v", pkg, fn, lang, err)
	}
	return res
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return data
}

func TestRegisterFunction_CreatesNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	res := register(t, newTestMerger(), path, "sample", "hello", templates.JavaScript)
	if res.Status != StatusCreatedNewConfig {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusCreatedNewConfig, res.Err)
	}

	js, _ := templates.NewDefault().Lookup(templates.JavaScript)
	want := map[string]any{
		"packages": []any{
			map[string]any{
				"name": "sample",
				"functions": []any{
					map[string]any{"name": "hello", "runtime": js.Runtime, "web": true},
				},
			},
		},
	}
	if diff := cmp.Diff(want, decodeGeneric(t, readFile(t, path))); diff != "" {
		t.Errorf("created document mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterFunction_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	m := newTestMerger()

	first := register(t, m, path, "sample", "hello", templates.TypeScript)
	if first.Status != StatusCreatedNewConfig {
		t.Fatalf("first Status = %v, want %v", first.Status, StatusCreatedNewConfig)
	}
	afterFirst := readFile(t, path)

	second := register(t, m, path, "sample", "hello", templates.TypeScript)
	if second.Status != StatusFunctionExists {
		t.Fatalf("second Status = %v, want %v", second.Status, StatusFunctionExists)
	}
	if second.Err != nil {
		t.Errorf("second Err = %v, want nil", second.Err)
	}
	if !bytes.Equal(afterFirst, readFile(t, path)) {
		t.Error("document changed on duplicate registration")
	}
}

func TestRegisterFunction_AddsPackage(t *testing.T) {
	path := writeProject(t, `packages:
  - name: a
    functions:
      - name: x
        runtime: nodejs:18
        web: true
`)
	before := decodeGeneric(t, readFile(t, path))

	res := register(t, newTestMerger(), path, "b", "x", templates.JavaScript)
	if res.Status != StatusAddedPackage {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedPackage, res.Err)
	}

	after := decodeGeneric(t, readFile(t, path))
	pkgs := after["packages"].([]any)
	if len(pkgs) != 2 {
		t.Fatalf("packages len = %d, want 2", len(pkgs))
	}
	if diff := cmp.Diff(before["packages"].([]any)[0], pkgs[0]); diff != "" {
		t.Errorf("package a changed (-want +got):\n%s", diff)
	}
	wantB := map[string]any{
		"name": "b",
		"functions": []any{
			map[string]any{"name": "x", "runtime": "nodejs:18", "web": true},
		},
	}
	if diff := cmp.Diff(wantB, pkgs[1]); diff != "" {
		t.Errorf("package b mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterFunction_AddsFunctionInOrder(t *testing.T) {
	path := writeProject(t, `packages:
  - name: a
    functions:
      - name: x
        runtime: nodejs:18
        web: true
`)

	res := register(t, newTestMerger(), path, "a", "y", templates.JavaScript)
	if res.Status != StatusAddedFunction {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(doc.Packages) != 1 {
		t.Fatalf("Packages len = %d, want 1", len(doc.Packages))
	}
	fns := doc.Packages[0].Functions
	if len(fns) != 2 {
		t.Fatalf("Functions len = %d, want 2", len(fns))
	}
	if fns[0].Name != "x" || fns[1].Name != "y" {
		t.Errorf("function order = [%s %s], want [x y]", fns[0].Name, fns[1].Name)
	}
	if fns[1].Runtime != "nodejs:18" || !fns[1].Web {
		t.Errorf("new function = %+v", fns[1])
	}
}

func TestRegisterFunction_PreservesPassthroughFields(t *testing.T) {
	path := copyTestdata(t, "extras.yml")
	before := decodeGeneric(t, readFile(t, path))

	m := newTestMerger()
	if res := register(t, m, path, "other", "world", templates.JavaScript); res.Status != StatusAddedPackage {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedPackage, res.Err)
	}
	if res := register(t, m, path, "sample", "again", templates.JavaScript); res.Status != StatusAddedFunction {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
	}

	after := decodeGeneric(t, readFile(t, path))

	for _, key := range []string{"environment", "targetNamespace", "parameters"} {
		if diff := cmp.Diff(before[key], after[key]); diff != "" {
			t.Errorf("top-level %q changed (-want +got):\n%s", key, diff)
		}
	}

	beforePkg := before["packages"].([]any)[0].(map[string]any)
	afterPkg := after["packages"].([]any)[0].(map[string]any)
	if diff := cmp.Diff(beforePkg["environment"], afterPkg["environment"]); diff != "" {
		t.Errorf("package environment changed (-want +got):\n%s", diff)
	}

	beforeFn := beforePkg["functions"].([]any)[0]
	afterFns := afterPkg["functions"].([]any)
	if diff := cmp.Diff(beforeFn, afterFns[0]); diff != "" {
		t.Errorf("existing function changed (-want +got):\n%s", diff)
	}
	if len(afterFns) != 2 {
		t.Errorf("functions len = %d, want 2", len(afterFns))
	}

	text := string(readFile(t, path))
	for _, s := range []string{"# Project-wide settings", "# package comment"} {
		if !strings.Contains(text, s) {
			t.Errorf("comment %q lost:\n%s", s, text)
		}
	}
}

func TestRegisterFunction_UnsupportedLanguage(t *testing.T) {
	t.Run("existing file untouched", func(t *testing.T) {
		path := copyTestdata(t, "extras.yml")
		before := readFile(t, path)

		res, err := newTestMerger().RegisterFunction(context.Background(), path, "sample", "new", "cobol")
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
		}
		if !strings.Contains(err.Error(), "cobol (available: javascript, typescript)") {
			t.Errorf("error = %q, want the registered templates listed", err)
		}
		if res.Status != StatusError {
			t.Errorf("Status = %v, want %v", res.Status, StatusError)
		}
		if !bytes.Equal(before, readFile(t, path)) {
			t.Error("file modified despite unsupported language")
		}
	})

	t.Run("no file created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultFileName)

		_, err := newTestMerger().RegisterFunction(context.Background(), path, "sample", "new", "cobol")
		if !errors.Is(err, ErrUnsupportedLanguage) {
			t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("project.yml should not have been created")
		}
	})
}

func TestRegisterFunction_NoWriteOnDuplicate(t *testing.T) {
	path := copyTestdata(t, "extras.yml")
	before := readFile(t, path)

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	res := register(t, newTestMerger(), path, "sample", "hello", templates.JavaScript)
	if res.Status != StatusFunctionExists {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusFunctionExists, res.Err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), old)
	}
	if !bytes.Equal(before, readFile(t, path)) {
		t.Error("file content changed")
	}
}

func TestRegisterFunction_ErrorOutcomes(t *testing.T) {
	tests := []struct {
		file string
		want error
	}{
		{"malformed.yml", ErrMalformedDocument},
		{"bad-functions.yml", ErrInvalidDocument},
		{"missing-name.yml", ErrInvalidDocument},
		{"bad-web.yml", ErrInvalidDocument},
		{"multi.yml", ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := copyTestdata(t, tt.file)
			before := readFile(t, path)

			res := register(t, newTestMerger(), path, "sample", "new", templates.JavaScript)
			if res.Status != StatusError {
				t.Fatalf("Status = %v, want %v", res.Status, StatusError)
			}
			if !errors.Is(res.Err, tt.want) {
				t.Errorf("Err = %v, want %v", res.Err, tt.want)
			}
			if !bytes.Equal(before, readFile(t, path)) {
				t.Error("file modified on error")
			}
		})
	}
}

func TestRegisterFunction_EmptyFile(t *testing.T) {
	path := writeProject(t, "")

	res := register(t, newTestMerger(), path, "sample", "hello", templates.JavaScript)
	if res.Status != StatusError {
		t.Fatalf("Status = %v, want %v", res.Status, StatusError)
	}
	if !errors.Is(res.Err, ErrInvalidDocument) {
		t.Errorf("Err = %v, want ErrInvalidDocument", res.Err)
	}
	if len(readFile(t, path)) != 0 {
		t.Error("empty file was rewritten")
	}
}

func TestRegisterFunction_IOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", DefaultFileName)

	res := register(t, newTestMerger(), path, "sample", "hello", templates.JavaScript)
	if res.Status != StatusError {
		t.Fatalf("Status = %v, want %v", res.Status, StatusError)
	}
	if res.Err == nil {
		t.Error("Err should describe the write failure")
	}
}

func TestRegisterFunction_PathIsDirectory(t *testing.T) {
	dir := t.TempDir()

	res := register(t, newTestMerger(), dir, "sample", "hello", templates.JavaScript)
	if res.Status != StatusError {
		t.Fatalf("Status = %v, want %v", res.Status, StatusError)
	}
}

func TestRegisterFunction_UsesRegisteredRuntime(t *testing.T) {
	reg := templates.NewDefault()
	reg.Register(templates.Template{Name: "Python", DirName: "python", Runtime: "python:3.11"})
	path := filepath.Join(t.TempDir(), DefaultFileName)

	res := register(t, NewMerger(reg), path, "py", "hello", "python")
	if res.Status != StatusCreatedNewConfig {
		t.Fatalf("Status = %v, want %v", res.Status, StatusCreatedNewConfig)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.FindPackage("py").FindFunction("hello").Runtime; got != "python:3.11" {
		t.Errorf("Runtime = %q, want %q", got, "python:3.11")
	}
}

func TestRegisterFunction_LogsFailure(t *testing.T) {
	path := copyTestdata(t, "malformed.yml")

	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New(&buf, false))

	res, err := newTestMerger().RegisterFunction(ctx, path, "sample", "hello", templates.JavaScript)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusError {
		t.Fatalf("Status = %v, want %v", res.Status, StatusError)
	}
	if !strings.Contains(buf.String(), "updating project config failed") {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status  Status
		want    string
		changed bool
	}{
		{StatusCreatedNewConfig, "created-new-config", true},
		{StatusAddedPackage, "added-package", true},
		{StatusAddedFunction, "added-function", true},
		{StatusFunctionExists, "function-exists", false},
		{StatusError, "error", false},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := tt.status.Changed(); got != tt.changed {
			t.Errorf("%s.Changed() = %v, want %v", tt.want, got, tt.changed)
		}
	}
}

func TestRegisterFunction_LeavesDefaultedKeysAlone(t *testing.T) {
	const existing = `packages:
  - name: bare
  - name: sample
    functions:
      - name: hello
        runtime: nodejs:18
`

	t.Run("added package", func(t *testing.T) {
		path := writeProject(t, existing)

		res := register(t, newTestMerger(), path, "other", "x", templates.JavaScript)
		if res.Status != StatusAddedPackage {
			t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedPackage, res.Err)
		}
		got := string(readFile(t, path))
		if !strings.HasPrefix(got, existing) {
			t.Errorf("existing entries rewritten:\n%s", got)
		}
	})

	t.Run("added function", func(t *testing.T) {
		path := writeProject(t, existing)

		res := register(t, newTestMerger(), path, "sample", "x", templates.JavaScript)
		if res.Status != StatusAddedFunction {
			t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
		}
		want := existing + `      - name: x
        runtime: nodejs:18
        web: true
`
		if diff := cmp.Diff(want, string(readFile(t, path))); diff != "" {
			t.Errorf("document mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRegisterFunction_PackageWithoutFunctions(t *testing.T) {
	path := writeProject(t, "packages:\n  - name: bare\n    environment:\n      LEVEL: debug\n")

	res := register(t, newTestMerger(), path, "bare", "x", templates.JavaScript)
	if res.Status != StatusAddedFunction {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(doc.Packages) != 1 {
		t.Fatalf("Packages len = %d, want 1", len(doc.Packages))
	}
	pkg := doc.Packages[0]
	if fn := pkg.FindFunction("x"); fn == nil || fn.Runtime != "nodejs:18" || !fn.Web {
		t.Errorf("function x = %+v", fn)
	}
	if got := pkg.ExtraKeys(); !cmp.Equal(got, []string{"environment"}) {
		t.Errorf("package ExtraKeys = %v", got)
	}
}

func TestRegisterFunction_KeepsAliasesAndMergeKeys(t *testing.T) {
	const shared = `packages:
  - name: shared
    functions:
      - &base
        name: hello
        runtime: nodejs:18
      - <<: *base
        name: hola
`
	path := writeProject(t, shared+`  - name: mirror
    functions:
      - *base
`)

	res := register(t, newTestMerger(), path, "mirror", "x", templates.JavaScript)
	if res.Status != StatusAddedFunction {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
	}

	got := string(readFile(t, path))
	if !strings.Contains(got, "      - <<: *base\n        name: hola\n") {
		t.Errorf("merge entry rewritten:\n%s", got)
	}
	if n := strings.Count(got, "&base"); n != 1 {
		t.Errorf("anchor defined %d times:\n%s", n, got)
	}
	if strings.Contains(got, "!!merge") {
		t.Errorf("merge key written with explicit tag:\n%s", got)
	}
	if !strings.Contains(got, "      - *base\n      - name: x\n") {
		t.Errorf("alias not kept:\n%s", got)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	hola := doc.FindPackage("shared").FindFunction("hola")
	if hola == nil || hola.Runtime != "nodejs:18" {
		t.Errorf("merged function = %+v", hola)
	}
	if fn := doc.FindPackage("mirror").FindFunction("hello"); fn == nil {
		t.Error("aliased function lost")
	}
}

func TestRegisterFunction_ExtendsMergedFunctions(t *testing.T) {
	path := writeProject(t, `defaults: &defaults
  functions:
    - name: hello
      runtime: nodejs:18
packages:
  - <<: *defaults
    name: sample
`)

	res := register(t, newTestMerger(), path, "sample", "x", templates.JavaScript)
	if res.Status != StatusAddedFunction {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	fns := doc.FindPackage("sample").Functions
	if len(fns) != 2 || fns[0].Name != "hello" || fns[1].Name != "x" {
		t.Errorf("functions = %+v, want [hello x]", fns)
	}
	if n := strings.Count(string(readFile(t, path)), "&defaults"); n != 1 {
		t.Errorf("anchor defined %d times", n)
	}
}

func TestRegisterFunction_SymlinkedConfig(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on Windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "real.yml")
	if err := os.WriteFile(target, []byte("packages:\n  - name: sample\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, DefaultFileName)
	if err := os.Symlink("real.yml", path); err != nil {
		t.Fatal(err)
	}

	res := register(t, newTestMerger(), path, "sample", "hello", templates.JavaScript)
	if res.Status != StatusAddedFunction {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusAddedFunction, res.Err)
	}

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("project.yml symlink replaced by a regular file")
	}
	doc, err := Load(target)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.FindPackage("sample").FindFunction("hello") == nil {
		t.Error("function not written through the symlink")
	}
}
