package scaffold

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/grantchatterton/do-functions-cli/internal/templates"
)

// excludedNames are never copied out of a template tree.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// Options configures a single Generate call.
type Options struct {
	TargetDir string             // Directory that receives the function
	FuncPath  string             // "package/function"
	Template  templates.Template // Template to copy
}

// Data holds the variables available to *.tmpl files.
type Data struct {
	FuncPath string // e.g. "sample/hello"
	Package  string // e.g. "sample"
	Name     string // e.g. "hello"
	Runtime  string // e.g. "nodejs:18"
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir   string
	Files       []string
	PackageName string // name written to package.json, empty if there is none
}

// Generate empties opts.TargetDir and fills it from the template tree.
func Generate(opts Options) (*Result, error) {
	src, err := templateFS(opts.Template)
	if err != nil {
		return nil, err
	}

	pkg, name, _ := strings.Cut(opts.FuncPath, "/")
	data := Data{
		FuncPath: opts.FuncPath,
		Package:  pkg,
		Name:     name,
		Runtime:  opts.Template.Runtime,
	}

	if err := emptyDir(opts.TargetDir); err != nil {
		return nil, fmt.Errorf("preparing %s: %w", opts.TargetDir, err)
	}

	result := &Result{OutputDir: opts.TargetDir}
	if err := copyTree(src, opts.TargetDir, data, result); err != nil {
		return nil, err
	}

	pkgJSON := filepath.Join(opts.TargetDir, "package.json")
	if _, err := os.Stat(pkgJSON); err == nil {
		result.PackageName = "@" + opts.FuncPath
		if err := SetPackageName(pkgJSON, result.PackageName); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// templateFS returns the file tree of t: the embedded tree for built-in
// templates, or t.Dir for templates declared in the user config.
func templateFS(t templates.Template) (fs.FS, error) {
	if t.Dir != "" {
		info, err := os.Stat(t.Dir)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", t.DirName, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template %q: %s is not a directory", t.DirName, t.Dir)
		}
		return os.DirFS(t.Dir), nil
	}

	dir := path.Join(functionsDir, t.DirName)
	if _, err := fs.ReadDir(functionsFS, dir); err != nil {
		return nil, fmt.Errorf("template set %q not found: %w", t.DirName, err)
	}
	return fs.Sub(functionsFS, dir)
}

// emptyDir makes sure dir exists and has no entries.
func emptyDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyTree copies src into dst, rendering *.tmpl files and recording every
// written file in result.
func copyTree(src fs.FS, dst string, data Data, result *Result) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if excludedNames[d.Name()] {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		out := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(out, 0755)
		}
		// Symlinks and other special files are skipped.
		if !d.Type().IsRegular() {
			return nil
		}

		content, err := fs.ReadFile(src, p)
		if err != nil {
			return fmt.Errorf("reading template file %s: %w", p, err)
		}

		rel := p
		if strings.HasSuffix(p, ".tmpl") {
			rel = strings.TrimSuffix(p, ".tmpl")
			out = strings.TrimSuffix(out, ".tmpl")
			if content, err = render(p, content, data); err != nil {
				return err
			}
		}

		if err := os.WriteFile(out, content, fileMode(d)); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		result.Files = append(result.Files, rel)
		return nil
	})
}

func render(name string, content []byte, data Data) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// fileMode keeps the executable bit of on-disk templates. Embedded files
// report 0444 and are written as 0644.
func fileMode(d fs.DirEntry) fs.FileMode {
	info, err := d.Info()
	if err != nil {
		return 0644
	}
	if info.Mode().Perm()&0111 != 0 {
		return 0755
	}
	return 0644
}
