// Package merge folds per-version models into one ApiModel.
//
// Versions are merged in order. The first version that introduces a route
// slot (method plus normalized path) also binds it without a prefix, and that
// unprefixed binding never changes afterwards. Every version binds each of its
// routes under its own prefix, reusing an already registered operation when
// the signature is identical.
package merge

import (
	"log/slog"

	"github.com/kolah/apigen/internal/ir"
	"github.com/kolah/apigen/internal/specerr"
)

// Engine owns the global naming context. It is not safe for concurrent use.
type Engine struct {
	logger     *slog.Logger
	reg        *ir.Registry
	operations []*ir.Operation
	opIndex    map[string]*ir.Operation
	slots      map[string]string
	unprefixed []ir.RouteBinding
	prefixed   []ir.RouteBinding
	versions   []string
	finished   bool
}

// New creates an empty Engine. A nil logger discards output.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		logger:  logger,
		reg:     ir.NewRegistry(),
		opIndex: make(map[string]*ir.Operation),
		slots:   make(map[string]string),
	}
}

// Merge adds one version. Versions must be merged in ascending order. On
// error the engine must be discarded: nothing of the run may be used.
func (e *Engine) Merge(v *ir.VersionModel) error {
	for _, def := range v.Definitions {
		if _, err := e.reg.Register(def); err != nil {
			return specerr.WithDocument(err, v.Source)
		}
	}

	for _, b := range v.Bindings {
		op, ok := v.Operation(b.OperationID)
		if !ok {
			return specerr.WithDocument(specerr.New(specerr.CodeRouteConflict, specerr.Pointer("paths", b.Path),
				"route %s %s is bound to unknown operation %q", b.Method, b.Path, b.OperationID), v.Source)
		}

		if existing, ok := e.opIndex[op.ID]; ok {
			if !existing.Equal(op) {
				return specerr.WithDocument(specerr.New(specerr.CodeDefinitionConflict, specerr.Pointer("paths", b.Path),
					"operation %q changes its signature; a breaking change needs a new operationId", op.ID), v.Source)
			}
		} else {
			e.opIndex[op.ID] = op
			e.operations = append(e.operations, op)
		}

		e.prefixed = append(e.prefixed, ir.RouteBinding{OperationID: op.ID, Path: "/" + v.Prefix + b.Path, Method: b.Method})

		key := ir.RouteKey(b.Method, b.Path)
		owner, seen := e.slots[key]
		switch {
		case !seen:
			e.slots[key] = op.ID
			e.unprefixed = append(e.unprefixed, ir.RouteBinding{OperationID: op.ID, Path: b.Path, Method: b.Method})
			e.logger.Debug("route introduced", "version", v.Prefix, "method", b.Method, "path", b.Path, "operation", op.ID)
		case owner == op.ID:
			e.logger.Debug("route inherited", "version", v.Prefix, "method", b.Method, "path", b.Path, "operation", op.ID)
		default:
			e.logger.Debug("route redefined", "version", v.Prefix, "method", b.Method, "path", b.Path,
				"operation", op.ID, "unprefixed", owner)
		}
	}

	e.versions = append(e.versions, v.Prefix)
	return nil
}

// Versions lists the merged version prefixes in merge order.
func (e *Engine) Versions() []string {
	return append([]string(nil), e.versions...)
}

// Finish registers the static definitions and routes and returns the
// finished model. The engine cannot be used afterwards.
func (e *Engine) Finish(staticDefs []ir.Definition, staticRoutes []ir.StaticRouteBinding) (*ir.ApiModel, error) {
	if e.finished {
		return nil, specerr.New(specerr.CodeDefinitionConflict, "", "model already finished")
	}
	e.finished = true

	for _, def := range staticDefs {
		if _, err := e.reg.Register(def); err != nil {
			return nil, err
		}
	}

	routes := append(append([]ir.RouteBinding(nil), e.unprefixed...), e.prefixed...)
	apiSlots := make(map[string]string, len(routes))
	for _, r := range routes {
		apiSlots[ir.RouteKey(r.Method, r.Path)] = r.OperationID
	}
	for _, s := range staticRoutes {
		if owner, taken := apiSlots[ir.RouteKey(s.Method, s.Path)]; taken {
			return nil, specerr.New(specerr.CodeRouteConflict, specerr.Pointer("paths", s.Path),
				"%s %s of operation %q collides with the static route %s", s.Method, s.Path, owner, s.Definition)
		}
		if _, ok := e.reg.Lookup(s.Definition); !ok {
			return nil, specerr.New(specerr.CodeRouteConflict, "", "static route %s refers to unknown definition %s", s.Path, s.Definition)
		}
	}

	return &ir.ApiModel{
		Definitions:  e.reg.Definitions(),
		Operations:   append([]*ir.Operation(nil), e.operations...),
		Routes:       routes,
		StaticRoutes: append([]ir.StaticRouteBinding(nil), staticRoutes...),
	}, nil
}
