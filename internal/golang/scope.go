package golang

import "fmt"

// Scope tracks the package-level identifiers of one generated package.
type Scope struct {
	owners map[string]string
}

func NewScope(reserved ...string) *Scope {
	s := &Scope{owners: make(map[string]string)}
	for _, name := range reserved {
		s.owners[name] = "generated runtime"
	}
	return s
}

// Declare records name as declared by owner. Declaring the same name twice
// is an error naming both owners.
func (s *Scope) Declare(name, owner string) error {
	if prev, ok := s.owners[name]; ok {
		return fmt.Errorf("identifier %s of %s is already declared by %s", name, owner, prev)
	}
	s.owners[name] = owner
	return nil
}

func (s *Scope) Declared(name string) bool {
	_, ok := s.owners[name]
	return ok
}
