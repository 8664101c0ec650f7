// Package resolver follows local component references in a parsed document.
package resolver

import (
	"strings"

	"github.com/kolah/apigen/internal/model"
	"github.com/kolah/apigen/internal/specerr"
)

const (
	schemasNamespace    = "schemas"
	parametersNamespace = "parameters"
)

// Resolved is a schema with every leading reference followed. Name and
// Pointer are set when the schema came from a named component.
type Resolved struct {
	Schema  *model.Schema
	Name    string
	Pointer string
}

// Resolver inlines references into a single document. It keeps an explicit
// stack of the pointers being resolved or modeled, so a cycle is reported the
// same way no matter how deep it is.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	spec     *model.Spec
	stack    []string
	visiting map[string]bool
}

// New creates a Resolver for spec.
func New(spec *model.Spec) *Resolver {
	return &Resolver{spec: spec, visiting: make(map[string]bool)}
}

// Schema follows s through as many references as it takes to reach a
// schema without Ref. A pointer that is already on the stack, either in this
// chain or entered by an enclosing modeling step, is a cycle.
func (r *Resolver) Schema(s *model.Schema) (Resolved, error) {
	if s == nil {
		return Resolved{}, specerr.Reference("", "schema is missing")
	}
	var res Resolved
	depth := 0
	defer func() { r.popN(depth) }()
	for s.Ref != "" {
		name, pointer, err := parse(s.Ref, schemasNamespace)
		if err != nil {
			return Resolved{}, err
		}
		if err := r.push(pointer); err != nil {
			return Resolved{}, err
		}
		depth++
		target, ok := r.spec.Components.Schema(name)
		if !ok || target == nil {
			return Resolved{}, specerr.Reference(pointer, "schema component %q not found", name)
		}
		res.Name, res.Pointer = name, pointer
		s = target
	}
	res.Schema = s
	return res, nil
}

// Parameter follows a parameter reference into components/parameters.
func (r *Resolver) Parameter(p *model.Parameter) (*model.Parameter, error) {
	depth := 0
	defer func() { r.popN(depth) }()
	for p.Ref != "" {
		name, pointer, err := parse(p.Ref, parametersNamespace)
		if err != nil {
			return nil, err
		}
		if err := r.push(pointer); err != nil {
			return nil, err
		}
		depth++
		target, ok := r.spec.Components.Parameter(name)
		if !ok || target == nil {
			return nil, specerr.Reference(pointer, "parameter component %q not found", name)
		}
		p = target
	}
	return p, nil
}

// Enter marks pointer as being modeled until the matching Leave. Entering a
// pointer that is already on the stack is a cycle.
func (r *Resolver) Enter(pointer string) error {
	return r.push(pointer)
}

// Leave pops pointer, which must be the most recently entered one.
func (r *Resolver) Leave(pointer string) {
	if n := len(r.stack); n > 0 && r.stack[n-1] == pointer {
		r.popN(1)
	}
}

// Depth returns the number of pointers on the stack.
func (r *Resolver) Depth() int { return len(r.stack) }

func (r *Resolver) push(pointer string) error {
	if r.visiting[pointer] {
		chain := append(append([]string{}, r.stack...), pointer)
		return &specerr.Error{
			Code:     specerr.CodeReference,
			Pointer:  pointer,
			Message:  "circular reference: " + strings.Join(chain, " -> "),
			Circular: true,
		}
	}
	r.visiting[pointer] = true
	r.stack = append(r.stack, pointer)
	return nil
}

func (r *Resolver) popN(n int) {
	for ; n > 0 && len(r.stack) > 0; n-- {
		top := r.stack[len(r.stack)-1]
		delete(r.visiting, top)
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// parse validates ref as "#/components/<namespace>/<name>" (the leading "#/"
// is optional) and returns the unescaped name and the canonical pointer.
func parse(ref, namespace string) (string, string, error) {
	local, ok := strings.CutPrefix(ref, "#")
	if !ok && strings.Contains(ref, "#") {
		return "", "", specerr.Reference(ref, "cross-document reference %q is not supported", ref)
	}
	local = strings.TrimPrefix(local, "/")

	tokens := strings.Split(local, "/")
	if len(tokens) != 3 || tokens[0] != "components" || tokens[2] == "" {
		if !ok && (strings.Contains(ref, ".") || strings.Contains(ref, ":")) {
			return "", "", specerr.Reference(ref, "cross-document reference %q is not supported", ref)
		}
		return "", "", specerr.Reference(ref, "reference %q does not name a component", ref)
	}
	if tokens[1] != namespace {
		return "", "", specerr.Reference(ref, "reference %q points into components/%s, expected components/%s", ref, tokens[1], namespace)
	}
	name := specerr.UnescapeToken(tokens[2])
	return name, specerr.Pointer("components", namespace, name), nil
}
