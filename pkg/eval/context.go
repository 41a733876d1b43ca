package eval

import (
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/trace"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Diagnostic is one `trace(label, p)` emission.
type Diagnostic struct {
	Index int
	Span  ir.SourceSpan
	Label string
}

// ForeignDispatcher resolves and invokes a registered foreign primitive.
// pkg/foreign implements this; pkg/eval only depends on the interface, so
// the two packages don't import each other. ctx is the same Context the
// call site is evaluating under, so a primitive that calls back into a
// Function argument (arrayMap, arrayFilter, ...) can thread Trace and
// Foreign into that nested evaluation instead of losing them.
type ForeignDispatcher interface {
	Dispatch(ctx Context, span *ir.SourceSpan, qualifiedName string, args []value.Value) (value.Value, *EvalError)
}

// TemporalHook intercepts *ir.TemporalForm nodes ahead of the ordinary
// node switch, so the driver dispatches before ordinary evaluation.
// pkg/temporal implements this; it is handed the Evaluator itself so it
// can recurse back into ordinary evaluation for operands.
type TemporalHook interface {
	EvalTemporal(ev *Evaluator, ctx Context, env *value.Environment, node *ir.TemporalForm) (value.Value, *EvalError)
}

// Context carries the parts of evaluation state that are threaded through
// recursive Eval calls but are not part of the environment: the remaining
// trace tail and the diagnostic sink trace(...) writes to.
type Context struct {
	Trace        trace.Trace
	OnDiagnostic func(Diagnostic)
	Foreign      ForeignDispatcher
}

// WithTrace returns a copy of ctx with a different trace tail, used by the
// temporal driver to advance/shorten the trace across next/always.
func (c Context) WithTrace(t trace.Trace) Context {
	c.Trace = t
	return c
}

// Emit reports a trace(...) diagnostic if a sink is installed; it is a
// no-op otherwise.
func (c Context) Emit(d Diagnostic) {
	if c.OnDiagnostic != nil {
		c.OnDiagnostic(d)
	}
}
