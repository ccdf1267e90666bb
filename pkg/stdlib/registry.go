// Package stdlib provides the registry of native functions that can be
// installed into an interpreter's global frame.
package stdlib

import (
	"sort"

	"github.com/thomasrohde/lox/pkg/interpreter"
)

// Registry holds registered native functions by name.
type Registry struct {
	fns map[string]*interpreter.NativeFn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*interpreter.NativeFn),
	}
}

// Register adds a native function, replacing any with the same name.
func (r *Registry) Register(fn *interpreter.NativeFn) {
	r.fns[fn.Name()] = fn
}

// Get retrieves a native function by name.
func (r *Registry) Get(name string) *interpreter.NativeFn {
	return r.fns[name]
}

// All returns all registered native functions.
func (r *Registry) All() map[string]*interpreter.NativeFn {
	return r.fns
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the natives permitted by allow and deny, sorted by name.
// An empty allow list permits everything; deny always wins.
func (r *Registry) Select(allow, deny []string) []*interpreter.NativeFn {
	allowed := toSet(allow)
	denied := toSet(deny)

	var out []*interpreter.NativeFn
	for _, name := range r.Names() {
		if denied[name] {
			continue
		}
		if len(allowed) > 0 && !allowed[name] {
			continue
		}
		out = append(out, r.fns[name])
	}
	return out
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
