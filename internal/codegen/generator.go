package codegen

import (
	"fmt"

	"github.com/kolah/apigen/internal/config"
	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/targets/server"
	"github.com/kolah/apigen/internal/targets/static"
	"github.com/kolah/apigen/internal/targets/types"
	"github.com/kolah/apigen/internal/templates"
	embeddedtmpl "github.com/kolah/apigen/templates"
)

// Document is a served API version, see static.Document.
type Document = static.Document

type Generator struct {
	config *config.Config
	engine templates.Engine
}

// Output is one file to write, relative to the output directory.
type Output struct {
	Filename string
	Content  []byte
}

func New(cfg *config.Config) (*Generator, error) {
	engine, err := templates.NewEngine(embeddedtmpl.FS, cfg.Templates.Dir, golang.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}

	return &Generator{
		config: cfg,
		engine: engine,
	}, nil
}

// Generate renders the configured targets of m. All targets share one
// package, so their top-level names are checked against each other.
func (g *Generator) Generate(m *ir.ApiModel, docs []Document) ([]Output, error) {
	var outputs []Output
	pkg := g.config.Go.Package
	scope := golang.NewScope()

	addGo := func(filename, content string) error {
		formatted, err := golang.Format([]byte(content))
		if err != nil {
			return fmt.Errorf("formatting %s: %w", filename, err)
		}
		outputs = append(outputs, Output{Filename: filename, Content: formatted})
		return nil
	}

	if g.config.HasTarget("server") && !g.config.HasTarget("types") {
		return nil, fmt.Errorf("the server target needs the types target")
	}

	if g.config.HasTarget("types") {
		content, err := types.New().Generate(g.engine, m, pkg, scope)
		if err != nil {
			return nil, fmt.Errorf("generating types: %w", err)
		}
		if err := addGo("types.go", content); err != nil {
			return nil, err
		}
	}

	if g.config.HasTarget("server") {
		target, err := server.New(g.config.Go.ServerFramework)
		if err != nil {
			return nil, err
		}
		out, err := target.Generate(g.engine, m, pkg, scope, g.config.HasTarget("static"))
		if err != nil {
			return nil, fmt.Errorf("generating server: %w", err)
		}
		if err := addGo("service.go", out.Service); err != nil {
			return nil, err
		}
		if err := addGo("router.go", out.Router); err != nil {
			return nil, err
		}
	}

	if g.config.HasTarget("static") {
		out, err := static.New().Generate(g.engine, m, pkg, docs)
		if err != nil {
			return nil, fmt.Errorf("generating static routes: %w", err)
		}
		if out.Source != "" {
			if err := addGo("static.go", out.Source); err != nil {
				return nil, err
			}
		}
		for _, f := range out.Files {
			outputs = append(outputs, Output{Filename: f.Path, Content: f.Content})
		}
	}

	return outputs, nil
}
