package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	semver "github.com/hashicorp/go-version"
	"golang.org/x/sync/errgroup"

	"github.com/kolah/apigen/internal/golang"
)

var specExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Source is one versioned document found on disk.
type Source struct {
	Path  string
	Label string

	version *semver.Version
}

// Discover lists the versioned documents in dir, oldest first. Each file is
// named after its version: v1.yaml, v2.json, v2.1.yml. A single file path
// yields one source labeled by its name, or "v1" when the name is not a
// version.
func Discover(dir string) ([]Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading specs: %w", err)
	}
	if !info.IsDir() {
		label, _, ok := versionLabel(filepath.Base(dir))
		if !ok {
			label = "v1"
		}
		return []Source{{Path: dir, Label: label}}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading specs directory: %w", err)
	}

	var sources []Source
	seen := make(map[string]string)
	idents := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !specExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		label, v, ok := versionLabel(e.Name())
		if !ok {
			return nil, fmt.Errorf("spec file %s: name must be a version such as v1.yaml", e.Name())
		}
		if prev, dup := seen[v.String()]; dup {
			return nil, fmt.Errorf("spec files %s and %s declare the same version", prev, e.Name())
		}
		seen[v.String()] = e.Name()
		// Generated names carry the label without its dots.
		ident := golang.Sanitize(label)
		if prev, dup := idents[ident]; dup {
			return nil, fmt.Errorf("spec files %s and %s both map to the name %s", prev, e.Name(), ident)
		}
		idents[ident] = e.Name()
		sources = append(sources, Source{
			Path:    filepath.Join(dir, e.Name()),
			Label:   label,
			version: v,
		})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no spec files found in %s", dir)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].version.LessThan(sources[j].version)
	})
	return sources, nil
}

func versionLabel(file string) (string, *semver.Version, bool) {
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	raw := strings.TrimPrefix(strings.TrimPrefix(stem, "v"), "V")
	if raw == "" {
		return "", nil, false
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", nil, false
	}
	return "v" + raw, v, true
}

// LoadDir discovers and loads every versioned document below dir. Documents
// are loaded concurrently; the result keeps version order.
func LoadDir(ctx context.Context, dir string, opts Options) ([]*Result, error) {
	sources, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	log := opts.logger()
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := LoadFile(src.Path, opts)
			if err != nil {
				return err
			}
			r.Label = src.Label
			for _, w := range r.Warnings {
				log.Warn(w, "file", src.Path, "version", src.Label)
			}
			log.Debug("loaded spec", "file", src.Path, "version", src.Label, "openapi", r.Version)
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
