package static

import (
	"fmt"
	"strconv"

	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/staticroutes"
	"github.com/kolah/apigen/internal/templates"
)

type Target struct{}

func New() *Target {
	return &Target{}
}

// Document is one API version whose files are served statically.
type Document struct {
	staticroutes.Asset
	Title string
	// Raw is the document as it was read.
	Raw []byte
}

// File is an asset written next to the generated code.
type File struct {
	Path    string
	Content []byte
}

type Output struct {
	Source string
	Files  []File
}

type templateData struct {
	Package  string
	Assets   []assetData
	Handlers []handlerData
}

type assetData struct {
	Var  string
	Path string
}

type handlerData struct {
	Var  string
	Expr string
}

type docsData struct {
	Title    string
	Version  string
	SpecFile string
}

// HandlerName is the variable holding the handler of a static route
// definition.
func HandlerName(definition string) string {
	return "static" + definition
}

func assetVar(definition string) string {
	return "asset" + definition
}

// Generate renders the embedded assets and their handlers. Every
// StaticAsset of m must be backed by a document file.
func (t *Target) Generate(engine templates.Engine, m *ir.ApiModel, pkg string, docs []Document) (*Output, error) {
	contents := make(map[string][]byte, 2*len(docs))
	for _, d := range docs {
		page, err := engine.Execute("static/docs.html.tmpl", docsData{
			Title:    d.Title,
			Version:  d.Version,
			SpecFile: staticroutes.SpecFile,
		})
		if err != nil {
			return nil, fmt.Errorf("rendering docs page of %s: %w", d.Version, err)
		}
		contents[d.Spec] = d.Raw
		contents[d.Docs] = []byte(page)
	}

	data := templateData{Package: pkg}
	out := &Output{}
	for _, def := range m.Definitions {
		switch kind := def.Kind.(type) {
		case *ir.StaticAsset:
			content, ok := contents[kind.Path]
			if !ok {
				return nil, fmt.Errorf("static asset %s: no content for %s", def.Name, kind.Path)
			}
			data.Assets = append(data.Assets, assetData{Var: assetVar(def.Name), Path: kind.Path})
			out.Files = append(out.Files, File{Path: kind.Path, Content: content})
		case *ir.StaticTextRoute:
			data.Handlers = append(data.Handlers, handlerData{
				Var:  HandlerName(def.Name),
				Expr: "serveText(" + assetVar(kind.Asset) + ")",
			})
		case *ir.StaticHTMLRoute:
			data.Handlers = append(data.Handlers, handlerData{
				Var:  HandlerName(def.Name),
				Expr: "serveHTML(" + assetVar(kind.Asset) + ")",
			})
		case *ir.Redirect:
			data.Handlers = append(data.Handlers, handlerData{
				Var:  HandlerName(def.Name),
				Expr: "redirectTo(" + strconv.Quote(kind.Target) + ")",
			})
		}
	}
	if len(data.Assets) == 0 && len(data.Handlers) == 0 {
		return out, nil
	}

	src, err := engine.Execute("go/static.tmpl", data)
	if err != nil {
		return nil, err
	}
	out.Source = src
	return out, nil
}
