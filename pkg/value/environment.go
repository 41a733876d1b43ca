package value

import (
	"sort"
	"strings"

	"github.com/tjweir/quickstrom/pkg/ir"
)

// Binding is what a name maps to in an Environment: either an unevaluated
// module-level expression, or an already-computed Value.
type Binding struct {
	Expr    ir.Expr // set when this is a module-level definition
	Value   Value   // set otherwise (locals, let-bound and recursive-group Defers)
	isValue bool
}

func ExprBinding(e ir.Expr) Binding { return Binding{Expr: e} }
func ValueBinding(v Value) Binding  { return Binding{Value: v, isValue: true} }

func (b Binding) IsValue() bool { return b.isValue }

// Environment is a mapping from qualified name to Binding. It composes by
// right-biased union: a later Bind or Union shadows an earlier one under
// the same name, and nothing is ever removed by binding — shadowing is
// purely a lookup-order effect.
//
// Internally this is a small persistent structure: each Bind/Union
// allocates a new frame layered in front of its parent, so a Value that
// has already captured an Environment (a Function's Closure, a Defer's
// Env) is unaffected by anything bound afterwards in a different branch.
type Environment struct {
	frame  map[string]Binding
	parent *Environment
}

// NewEnvironment returns an empty root environment.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Bind returns a new Environment extending e with name -> binding,
// shadowing any prior binding for name.
func (e *Environment) Bind(name string, b Binding) *Environment {
	return &Environment{frame: map[string]Binding{name: b}, parent: e}
}

// BindAll returns a new Environment extending e with every (name,
// binding) pair, later entries shadowing earlier ones within the same
// call exactly as a sequence of Bind calls would.
func (e *Environment) BindAll(pairs map[string]Binding) *Environment {
	if len(pairs) == 0 {
		return e
	}
	frame := make(map[string]Binding, len(pairs))
	for k, v := range pairs {
		frame[k] = v
	}
	return &Environment{frame: frame, parent: e}
}

// Lookup searches e, then its ancestors, returning the first binding
// found for name.
func (e *Environment) Lookup(name string) (Binding, bool) {
	for env := e; env != nil; env = env.parent {
		if env.frame == nil {
			continue
		}
		if b, ok := env.frame[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Union returns a new Environment whose bindings are e's, overlaid with
// other's (other wins on conflicting names).
func (e *Environment) Union(other *Environment) *Environment {
	merged := e.flatten()
	for k, v := range other.flatten() {
		merged[k] = v
	}
	return &Environment{frame: merged}
}

// WithoutLocals returns a new Environment keeping only qualified names
// (those containing a "."), used when re-entering a module-level
// expression so it cannot see the caller's locals.
func (e *Environment) WithoutLocals() *Environment {
	filtered := make(map[string]Binding)
	for k, v := range e.flatten() {
		if strings.Contains(k, ".") {
			filtered[k] = v
		}
	}
	return &Environment{frame: filtered}
}

// flatten collapses the parent chain into a single map, most specific
// (closest to e) winning.
func (e *Environment) flatten() map[string]Binding {
	out := make(map[string]Binding)
	var chain []*Environment
	for env := e; env != nil; env = env.parent {
		chain = append(chain, env)
	}
	// Walk furthest ancestor first so nearer frames overwrite it.
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].frame {
			out[k] = v
		}
	}
	return out
}

// BindRecursiveDefers extends e with one Defer per (name, expr) pair,
// where every Defer's captured environment is the finished frame itself.
// This ties the knot for letrec groups: the frame pointer is allocated
// before its map is populated, so each Defer closes over the same
// *Environment that will end up holding it; nothing reads the frame
// until BindRecursiveDefers returns, so the brief mutation window is not
// observable.
func (e *Environment) BindRecursiveDefers(exprs map[string]ir.Expr) *Environment {
	env := &Environment{parent: e}
	frame := make(map[string]Binding, len(exprs))
	for name, expr := range exprs {
		frame[name] = ValueBinding(&Defer{Env: env, Expr: expr})
	}
	env.frame = frame
	return env
}

// Names returns every bound name in sorted order, for deterministic
// diagnostics and tests.
func (e *Environment) Names() []string {
	flat := e.flatten()
	names := make([]string, 0, len(flat))
	for k := range flat {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
