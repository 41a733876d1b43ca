// Package temporal implements the driver that intercepts the six built-in
// temporal forms ahead of ordinary evaluation: always, next, trace,
// _property, _attribute, _queryAll.
package temporal

import (
	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/query"
	"github.com/tjweir/quickstrom/pkg/trace"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Driver implements eval.TemporalHook. It has no state of its own; every
// call carries its own trace tail via eval.Context.
type Driver struct{}

func New() *Driver { return &Driver{} }

// EvalTemporal dispatches on node.Kind. All other expressions fall
// through to the core evaluator one level up, in Evaluator.Eval's type
// switch, since only *ir.TemporalForm nodes ever reach this method.
func (d *Driver) EvalTemporal(ev *eval.Evaluator, ctx eval.Context, env *value.Environment, node *ir.TemporalForm) (value.Value, *eval.EvalError) {
	switch node.Kind {
	case ir.TemporalAlways:
		return d.evalAlways(ev, ctx, env, node)
	case ir.TemporalNext:
		return d.evalNext(ev, ctx, env, node)
	case ir.TemporalTrace:
		return d.evalTrace(ev, ctx, env, node)
	case ir.TemporalProperty:
		return d.evalElementState(ev, ctx, env, node, value.ElementProperty)
	case ir.TemporalAttribute:
		return d.evalElementState(ev, ctx, env, node, value.ElementAttribute)
	case ir.TemporalQueryAll:
		return d.evalQueryAll(ev, ctx, env, node)
	default:
		return nil, eval.NewUnexpectedError(spanOf(node), "unrecognised temporal form")
	}
}

func spanOf(n ir.Node) *ir.SourceSpan {
	s := n.Ann().Span
	return &s
}

//-----------------------------------------------------------------------------
// always / next
//-----------------------------------------------------------------------------

// evalAlways evaluates node against the current head, catching
// Undetermined as true, then conjoins with the same form evaluated
// against the tail. Empty trace is vacuously true; the asymmetric catch
// relative to next is a deliberate design choice, not an oversight.
func (d *Driver) evalAlways(ev *eval.Evaluator, ctx eval.Context, env *value.Environment, node *ir.TemporalForm) (value.Value, *eval.EvalError) {
	if ctx.Trace.IsEmpty() {
		return value.Bool{Val: true}, nil
	}

	headVal, err := ev.Eval(ctx, env, node.Operand)
	if err != nil {
		if eval.IsUndetermined(err) {
			headVal = value.Bool{Val: true}
		} else {
			return nil, err
		}
	}
	headBool, ok := headVal.(value.Bool)
	if !ok {
		return nil, eval.NewUnexpectedType(spanOf(node), value.KindBool.String(), headVal)
	}
	if !headBool.Val {
		return value.Bool{Val: false}, nil
	}

	_, tail := ctx.Trace.Head()
	tailVal, err := d.evalAlways(ev, ctx.WithTrace(tail), env, node)
	if err != nil {
		return nil, err
	}
	tailBool, ok := tailVal.(value.Bool)
	if !ok {
		return nil, eval.NewUnexpectedType(spanOf(node), value.KindBool.String(), tailVal)
	}
	return value.Bool{Val: headBool.Val && tailBool.Val}, nil
}

// evalNext drops the trace head and evaluates the operand under the
// shortened trace. When that leaves the trace empty, the result is
// Undetermined unless the operand is itself an `always` form, which is
// still evaluated so evalAlways can resolve it vacuously true; next
// (always p) therefore reaches that branch rather than being pre-empted
// here. Undetermined is NOT caught by next itself: it propagates rather
// than defaulting to true.
func (d *Driver) evalNext(ev *eval.Evaluator, ctx eval.Context, env *value.Environment, node *ir.TemporalForm) (value.Value, *eval.EvalError) {
	if ctx.Trace.IsEmpty() {
		return nil, eval.NewUndetermined()
	}
	_, tail := ctx.Trace.Head()
	if tail.IsEmpty() {
		if op, ok := node.Operand.(*ir.TemporalForm); !ok || op.Kind != ir.TemporalAlways {
			return nil, eval.NewUndetermined()
		}
	}
	return ev.Eval(ctx.WithTrace(tail), env, node.Operand)
}

//-----------------------------------------------------------------------------
// trace
//-----------------------------------------------------------------------------

func (d *Driver) evalTrace(ev *eval.Evaluator, ctx eval.Context, env *value.Environment, node *ir.TemporalForm) (value.Value, *eval.EvalError) {
	labelVal, err := ev.Eval(ctx, env, node.Label)
	if err != nil {
		return nil, err
	}
	label, ok := labelVal.(value.String)
	if !ok {
		return nil, eval.NewUnexpectedType(spanOf(node), value.KindString.String(), labelVal)
	}
	index := 0
	if !ctx.Trace.IsEmpty() {
		// Index is the number of states left in the tail, the current
		// state included, not a position counted from the trace start: a
		// Context only ever carries the remaining tail.
		index = len(ctx.Trace)
	}
	ctx.Emit(eval.Diagnostic{Index: index, Span: node.Ann().Span, Label: label.Val})
	return ev.Eval(ctx, env, node.Body)
}

//-----------------------------------------------------------------------------
// _property / _attribute
//-----------------------------------------------------------------------------

func (d *Driver) evalElementState(ev *eval.Evaluator, ctx eval.Context, env *value.Environment, node *ir.TemporalForm, kind value.ElementStateKind) (value.Value, *eval.EvalError) {
	nameVal, err := ev.Eval(ctx, env, node.Name)
	if err != nil {
		return nil, err
	}
	name, ok := nameVal.(value.String)
	if !ok {
		return nil, eval.NewUnexpectedType(spanOf(node), value.KindString.String(), nameVal)
	}
	return value.ElementState{StateKind: kind, Name: name.Val}, nil
}

//-----------------------------------------------------------------------------
// _queryAll
//-----------------------------------------------------------------------------

func (d *Driver) evalQueryAll(ev *eval.Evaluator, ctx eval.Context, env *value.Environment, node *ir.TemporalForm) (value.Value, *eval.EvalError) {
	selectorVal, err := ev.Eval(ctx, env, node.Selector)
	if err != nil {
		return nil, err
	}
	selector, ok := selectorVal.(value.String)
	if !ok {
		return nil, eval.NewUnexpectedType(spanOf(node), value.KindString.String(), selectorVal)
	}

	wantedVal, err := ev.Eval(ctx, env, node.WantedStates)
	if err != nil {
		return nil, err
	}
	wantedObj, ok := wantedVal.(*value.Object)
	if !ok {
		return nil, eval.NewUnexpectedType(spanOf(node), value.KindObject.String(), wantedVal)
	}
	wanted := make(map[string]value.ElementState, len(wantedObj.Keys()))
	for _, k := range wantedObj.Keys() {
		fv, _ := wantedObj.Get(k)
		es, ok := fv.(value.ElementState)
		if !ok {
			return nil, eval.NewUnexpectedType(spanOf(node), value.KindElementState.String(), fv)
		}
		wanted[k] = es
	}

	var observed trace.ObservedState
	if !ctx.Trace.IsEmpty() {
		observed, _ = ctx.Trace.Head()
	}

	result, qerr := query.Resolve(selector.Val, wanted, observed)
	if qerr != nil {
		return nil, eval.NewForeignFunctionError(spanOf(node), qerr.Error())
	}
	return result, nil
}
