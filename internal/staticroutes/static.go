// Package staticroutes declares the documentation routes served next to the
// API: the raw OpenAPI document and a docs page per version, plus redirects.
package staticroutes

import (
	"path"

	"github.com/kolah/apigen/internal/golang"
	"github.com/kolah/apigen/internal/ir"
)

const (
	// SpecFile and DocsFile are the asset file names inside a version directory.
	SpecFile = "openapi.yaml"
	DocsFile = "docs.html"

	redirectToDocs = "ToDocs"
)

// Asset locates the files of one version below the static directory.
type Asset struct {
	Version string
	Spec    string
	Docs    string
}

// Assets returns where the files of each version live.
func Assets(staticDir string, versions []string) []Asset {
	out := make([]Asset, len(versions))
	for i, v := range versions {
		out[i] = Asset{
			Version: v,
			Spec:    path.Join(staticDir, v, SpecFile),
			Docs:    path.Join(staticDir, v, DocsFile),
		}
	}
	return out
}

// Synthesize returns the static definitions and routes for the ordered
// versions. The unprefixed routes serve the last version.
func Synthesize(staticDir string, versions []string) ([]ir.Definition, []ir.StaticRouteBinding) {
	if len(versions) == 0 {
		return nil, nil
	}

	var defs []ir.Definition
	var routes []ir.StaticRouteBinding
	add := func(name string, kind ir.DefinitionKind) {
		defs = append(defs, ir.Definition{Name: name, Kind: kind})
	}
	bind := func(p, def string) {
		routes = append(routes, ir.StaticRouteBinding{Method: ir.MethodGet, Path: p, Definition: def})
	}

	add(redirectToDocs, &ir.Redirect{Target: "docs"})

	type names struct{ spec, docs, redirect string }
	perVersion := make([]names, len(versions))
	for i, a := range Assets(staticDir, versions) {
		suffix := golang.Sanitize(a.Version)
		n := names{
			spec:     "Openapi" + suffix,
			docs:     "Docs" + suffix,
			redirect: "To" + suffix + "Docs",
		}
		perVersion[i] = n

		add("OpenapiYaml"+suffix, &ir.StaticAsset{Path: a.Spec})
		add("DocsHtml"+suffix, &ir.StaticAsset{Path: a.Docs})
		add(n.spec, &ir.StaticTextRoute{Asset: "OpenapiYaml" + suffix})
		add(n.docs, &ir.StaticHTMLRoute{Asset: "DocsHtml" + suffix})
		add(n.redirect, &ir.Redirect{Target: a.Version + "/docs"})
	}

	latest := perVersion[len(perVersion)-1]
	bind("/", redirectToDocs)
	bind("/docs", latest.docs)
	bind("/"+SpecFile, latest.spec)
	for i, v := range versions {
		n := perVersion[i]
		bind("/"+v, n.redirect)
		bind("/"+v+"/", redirectToDocs)
		bind("/"+v+"/docs", n.docs)
		bind("/"+v+"/"+SpecFile, n.spec)
	}
	return defs, routes
}
