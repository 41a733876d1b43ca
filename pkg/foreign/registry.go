// Package foreign implements a closed registry of native primitives,
// each arity-checked and marshalled against the value universe. The
// individual primitive bodies (arithmetic, string, array, ordering,
// record-access, DOM actions) are host-library concerns; this package
// only owns the dispatch and marshalling machinery.
package foreign

import (
	"sort"

	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Primitive is one native implementation, addressed by its qualified
// name. Arity is stored explicitly rather than derived from Impl's Go
// signature.
type Primitive struct {
	Name  string
	Arity int
	Impl  func(caller *Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError)
}

// Caller lets a Primitive invoke a Function value it received as an
// argument, going back through the evaluator to push arguments, evaluate,
// and demarshal.
type Caller struct {
	ev  *eval.Evaluator
	ctx eval.Context
}

func (c *Caller) Apply(span *ir.SourceSpan, fn, arg value.Value) (value.Value, *eval.EvalError) {
	return c.ev.Apply(c.ctx, span, fn, arg)
}

// Registry is the read-only, once-built table of native primitives,
// built once during environment initialization and thereafter read-only.
// It implements eval.ForeignDispatcher.
type Registry struct {
	primitives map[string]Primitive
	ev         *eval.Evaluator
}

// NewRegistry builds a Registry from a fixed primitive set. The Evaluator
// reference is filled in by BindEvaluator once the evaluator exists,
// breaking the otherwise-circular construction order (the evaluator needs
// a dispatcher, the dispatcher needs the evaluator to invoke callbacks).
func NewRegistry(primitives ...Primitive) *Registry {
	r := &Registry{primitives: make(map[string]Primitive, len(primitives))}
	for _, p := range primitives {
		r.primitives[p.Name] = p
	}
	return r
}

// BindEvaluator installs the evaluator a Caller will delegate to for
// callable-value arguments.
func (r *Registry) BindEvaluator(ev *eval.Evaluator) {
	r.ev = ev
}

// Names returns every registered qualified name, sorted, mainly for
// diagnostics and tests.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.primitives))
	for k := range r.primitives {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name backs a registered primitive. pkg/program uses
// this to fail a load early when a compiled module's foreign stub names a
// primitive this registry doesn't carry.
func (r *Registry) Has(name string) bool {
	_, ok := r.primitives[name]
	return ok
}

// Dispatch implements eval.ForeignDispatcher. ctx is the caller's own
// Context, forwarded into the Caller so a primitive that applies a
// Function argument (arrayMap, arrayFilter, arrayBind, ...) evaluates that
// callback under the same trace and foreign dispatcher, rather than a
// zero-value Context that would reject any foreign call the callback body
// itself makes.
func (r *Registry) Dispatch(ctx eval.Context, span *ir.SourceSpan, qualifiedName string, args []value.Value) (value.Value, *eval.EvalError) {
	prim, ok := r.primitives[qualifiedName]
	if !ok {
		return nil, eval.NewForeignFunctionNotSupported(span, qualifiedName)
	}
	if len(args) != prim.Arity {
		return nil, eval.NewForeignFunctionError(span, "arity mismatch calling "+qualifiedName)
	}
	caller := &Caller{ev: r.ev, ctx: ctx}
	return prim.Impl(caller, span, args)
}
