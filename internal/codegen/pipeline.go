package codegen

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/loader"
	"github.com/kolah/apigen/internal/merge"
	"github.com/kolah/apigen/internal/opbuilder"
	"github.com/kolah/apigen/internal/specerr"
	"github.com/kolah/apigen/internal/staticroutes"
)

// BuildModel turns loaded documents, ordered oldest first, into one model.
// Versions are modeled concurrently and merged in order. Any error discards
// the whole run.
func BuildModel(ctx context.Context, results []*loader.Result, staticDir string, logger *slog.Logger) (*ir.ApiModel, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no documents to build")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	versions := make([]*ir.VersionModel, len(results))
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			spec, err := loader.Transform(r)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Path, err)
			}
			v, err := opbuilder.Build(spec, r.Label, r.Path)
			if err != nil {
				return specerr.WithDocument(err, r.Path)
			}
			logger.Debug("version modeled", "version", r.Label,
				"definitions", len(v.Definitions), "operations", len(v.Operations))
			versions[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	engine := merge.New(logger)
	for _, v := range versions {
		if err := engine.Merge(v); err != nil {
			return nil, err
		}
	}

	labels := engine.Versions()
	defs, routes := staticroutes.Synthesize(staticDir, labels)
	m, err := engine.Finish(defs, routes)
	if err != nil {
		return nil, err
	}
	logger.Info("model built", "versions", len(labels),
		"definitions", len(m.Definitions), "operations", len(m.Operations), "routes", len(m.Routes))
	return m, nil
}

// Documents pairs every loaded version with the files served for it.
func Documents(results []*loader.Result, staticDir string) []Document {
	labels := make([]string, len(results))
	for i, r := range results {
		labels[i] = r.Label
	}
	docs := make([]Document, len(results))
	for i, a := range staticroutes.Assets(staticDir, labels) {
		r := results[i]
		title := r.Label
		if r.Document != nil && r.Document.Model.Info != nil && r.Document.Model.Info.Title != "" {
			title = r.Document.Model.Info.Title
		}
		docs[i] = Document{Asset: a, Title: title, Raw: r.RawData}
	}
	return docs
}
