package evaluator

// Environment is an immutable linked scope: Eval never mutates an
// Environment in place (spec §4.3 "Pure: does not mutate env"). Extending
// a scope allocates a new Environment whose parent is the old one, mirror
// of the teacher's NewEnclosedEnvironment (pkg/parsley/evaluator/
// evaluator.go), generalized from a mutable map to a copy-on-extend map so
// sibling extensions of the same base never see each other's bindings.
type Environment struct {
	vars   map[string]*Thunk
	parent *Environment
}

// NewEnvironment returns an empty root scope.
func NewEnvironment() *Environment {
	return &Environment{vars: map[string]*Thunk{}}
}

// Get resolves name, searching outward through enclosing scopes.
func (e *Environment) Get(name string) (*Thunk, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Bind returns a new child Environment with name bound to t, leaving e and
// every other Environment derived from e untouched.
func (e *Environment) Bind(name string, t *Thunk) *Environment {
	return &Environment{vars: map[string]*Thunk{name: t}, parent: e}
}

// BindAll returns a new child Environment with every pair in bindings
// bound simultaneously (used for multi-field pattern matches, where
// clauses, and comprehension clause variables).
func (e *Environment) BindAll(bindings map[string]*Thunk) *Environment {
	if len(bindings) == 0 {
		return e
	}
	m := make(map[string]*Thunk, len(bindings))
	for k, v := range bindings {
		m[k] = v
	}
	return &Environment{vars: m, parent: e}
}
