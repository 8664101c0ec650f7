package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"
)

type Engine interface {
	Execute(name string, data any) (string, error)
}

// TextTemplateEngine executes the built-in templates, each of which may be
// replaced by a file of the same relative name in a custom directory.
type TextTemplateEngine struct {
	templates *template.Template
}

func NewEngine(builtin fs.FS, customDir string, funcs template.FuncMap) (*TextTemplateEngine, error) {
	e := &TextTemplateEngine{
		templates: template.New("").Funcs(funcs),
	}

	if err := e.parseFS(builtin, "embedded", false); err != nil {
		return nil, fmt.Errorf("loading embedded templates: %w", err)
	}

	if customDir != "" {
		info, err := os.Stat(customDir)
		if err != nil {
			return nil, fmt.Errorf("loading custom templates: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("loading custom templates: %s is not a directory", customDir)
		}
		if err := e.parseFS(os.DirFS(customDir), "custom", true); err != nil {
			return nil, fmt.Errorf("loading custom templates: %w", err)
		}
	}

	return e, nil
}

// parseFS adds every *.tmpl file of fsys under its slash-separated path.
// Overrides must replace a template that already exists, which catches
// misspelled file names.
func (e *TextTemplateEngine) parseFS(fsys fs.FS, origin string, override bool) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		if override && e.templates.Lookup(path) == nil {
			return fmt.Errorf("%s template %s does not replace a built-in template", origin, path)
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s template %s: %w", origin, path, err)
		}
		if _, err := e.templates.New(path).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s template %s: %w", origin, path, err)
		}
		return nil
	})
}

func (e *TextTemplateEngine) Execute(name string, data any) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}
