package ir

import (
	"github.com/kolah/apigen/internal/specerr"
)

// Registry is a naming context: the set of used definition names and the
// definition registered under each. Registration order is preserved so that
// output is deterministic.
//
// A Registry is not safe for concurrent use. The operation builder gives
// each document its own; the merge engine owns the global one.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds def. Registering a structurally identical definition again
// is a no-op and reports false; a different definition under a used name
// fails with a DefinitionConflictError.
func (r *Registry) Register(def Definition) (bool, error) {
	if i, taken := r.index[def.Name]; taken {
		existing := r.defs[i]
		if existing.Equal(def) {
			return false, nil
		}
		return false, specerr.New(specerr.CodeDefinitionConflict, "",
			"definition %q is already registered as a different %s", def.Name, existing.Kind.KindName())
	}
	r.index[def.Name] = len(r.defs)
	r.defs = append(r.defs, def)
	return true, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.index[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Has reports whether name is in use.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Definitions returns the registered definitions in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int { return len(r.defs) }
