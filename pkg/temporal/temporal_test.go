package temporal

import (
	"testing"

	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/trace"
	"github.com/tjweir/quickstrom/pkg/value"
)

func boolLit(b bool) *ir.Literal {
	lit := ir.NewLiteral(ir.Annotation{}, ir.LitBool)
	lit.BoolVal = b
	return lit
}

func alwaysOf(operand ir.Expr) *ir.TemporalForm {
	f := ir.NewTemporalForm(ir.Annotation{}, ir.TemporalAlways)
	f.Operand = operand
	return f
}

func nextOf(operand ir.Expr) *ir.TemporalForm {
	f := ir.NewTemporalForm(ir.Annotation{}, ir.TemporalNext)
	f.Operand = operand
	return f
}

func newEvaluator() *eval.Evaluator {
	return eval.New(New())
}

func TestAlwaysVacuouslyTrueOnEmptyTrace(t *testing.T) {
	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: trace.Trace{}}, value.NewEnvironment(), alwaysOf(boolLit(false)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.(value.Bool).Val {
		t.Fatal("expected always over an empty trace to be vacuously true")
	}
}

func TestNextConsumesOneState(t *testing.T) {
	// next true, over a two-state trace: drops head, evaluates true against
	// the tail (still non-empty), so it succeeds.
	tr := trace.Trace{trace.ObservedState{}, trace.ObservedState{}}
	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), nextOf(boolLit(true)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.(value.Bool).Val {
		t.Fatal("expected next true to hold over the shortened trace")
	}
}

func TestNextOnSingleStateTraceIsUndetermined(t *testing.T) {
	tr := trace.Trace{trace.ObservedState{}}
	ev := newEvaluator()
	_, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), nextOf(boolLit(true)))
	if err == nil || !eval.IsUndetermined(err) {
		t.Fatalf("expected Undetermined, got %v", err)
	}
}

func TestNextDoesNotCatchUndetermined(t *testing.T) {
	// next (next true) over a two-state trace: the inner next has nothing
	// left after dropping one more state, and next must NOT catch that
	// Undetermined the way always does.
	tr := trace.Trace{trace.ObservedState{}, trace.ObservedState{}}
	ev := newEvaluator()
	_, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), nextOf(nextOf(boolLit(true))))
	if err == nil || !eval.IsUndetermined(err) {
		t.Fatalf("expected Undetermined to propagate through next, got %v", err)
	}
}

func TestAlwaysCatchesUndeterminedFromNext(t *testing.T) {
	// always (next true) over a single-state trace: the head evaluation of
	// `next true` is Undetermined (no more states); always must catch it
	// as true rather than failing, per the asymmetric catch design.
	tr := trace.Trace{trace.ObservedState{}}
	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), alwaysOf(nextOf(boolLit(true))))
	if err != nil {
		t.Fatalf("expected always to catch Undetermined, got error: %v", err)
	}
	if !got.(value.Bool).Val {
		t.Fatal("expected always to treat a caught Undetermined as true")
	}
}

func TestNextOfVacuouslyTrueAlwaysIsAccepted(t *testing.T) {
	// next (always q) over a single-state trace: dropping the head leaves
	// an empty tail, but the operand is `always q`, which is vacuously
	// true over an empty trace. next must still hand that tail to
	// evalAlways rather than reporting Undetermined before evaluating the
	// operand at all.
	tr := trace.Trace{trace.ObservedState{}}
	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), nextOf(alwaysOf(boolLit(false))))
	if err != nil {
		t.Fatalf("expected next(always(...)) over an empty tail to resolve, got error: %v", err)
	}
	if !got.(value.Bool).Val {
		t.Fatal("expected next(always(...)) to be true via always's vacuous truth over the empty tail")
	}
}

func TestAlwaysConjoinsAcrossTrace(t *testing.T) {
	tr := trace.Trace{trace.ObservedState{}, trace.ObservedState{}, trace.ObservedState{}}
	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), alwaysOf(boolLit(true)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.(value.Bool).Val {
		t.Fatal("expected always true across every state to hold")
	}
}

func TestAlwaysShortCircuitsOnFalseHead(t *testing.T) {
	tr := trace.Trace{trace.ObservedState{}, trace.ObservedState{}}
	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), alwaysOf(boolLit(false)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.(value.Bool).Val {
		t.Fatal("expected always false at head to fail immediately")
	}
}

func TestQueryAllResolvesAgainstTraceHead(t *testing.T) {
	tr := trace.Trace{
		trace.ObservedState{
			"#btn": []trace.ElementRecord{
				{{Kind: "property", Name: "textContent"}: "click me"},
			},
		},
	}

	selectorExpr := ir.NewLiteral(ir.Annotation{}, ir.LitString)
	selectorExpr.StringVal = "#btn"

	textNameExpr := ir.NewLiteral(ir.Annotation{}, ir.LitString)
	textNameExpr.StringVal = "textContent"
	textStateForm := ir.NewTemporalForm(ir.Annotation{}, ir.TemporalProperty)
	textStateForm.Name = textNameExpr

	wantedObj := ir.NewLiteral(ir.Annotation{}, ir.LitObject)
	wantedObj.Fields = []ir.ObjectLitField{{Key: "label", Value: textStateForm}}

	queryAll := ir.NewTemporalForm(ir.Annotation{}, ir.TemporalQueryAll)
	queryAll.Selector = selectorExpr
	queryAll.WantedStates = wantedObj

	ev := newEvaluator()
	got, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), queryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := got.(*value.Array)
	if len(arr.Elements) != 1 {
		t.Fatalf("expected one matched element, got %d", len(arr.Elements))
	}
	obj := arr.Elements[0].(*value.Object)
	label, _ := obj.Get("label")
	if label.(value.String).Val != "click me" {
		t.Fatalf("expected label resolved from the textContent property, got %+v", label)
	}
}

func TestQueryAllUnknownSelectorFails(t *testing.T) {
	tr := trace.Trace{trace.ObservedState{}}
	selectorExpr := ir.NewLiteral(ir.Annotation{}, ir.LitString)
	selectorExpr.StringVal = "#missing"
	wantedObj := ir.NewLiteral(ir.Annotation{}, ir.LitObject)

	queryAll := ir.NewTemporalForm(ir.Annotation{}, ir.TemporalQueryAll)
	queryAll.Selector = selectorExpr
	queryAll.WantedStates = wantedObj

	ev := newEvaluator()
	_, err := ev.Eval(eval.Context{Trace: tr}, value.NewEnvironment(), queryAll)
	if err == nil {
		t.Fatal("expected unresolved selector to fail")
	}
	if err.Kind != eval.ForeignFunctionError {
		t.Fatalf("expected ForeignFunctionError, got %v", err.Kind)
	}
}

func TestTraceEmitsDiagnosticAndReturnsBody(t *testing.T) {
	labelExpr := ir.NewLiteral(ir.Annotation{}, ir.LitString)
	labelExpr.StringVal = "checkpoint"
	body := boolLit(true)

	form := ir.NewTemporalForm(ir.Annotation{}, ir.TemporalTrace)
	form.Label = labelExpr
	form.Body = body

	var emitted []eval.Diagnostic
	ctx := eval.Context{
		Trace:        trace.Trace{trace.ObservedState{}},
		OnDiagnostic: func(d eval.Diagnostic) { emitted = append(emitted, d) },
	}

	ev := newEvaluator()
	got, err := ev.Eval(ctx, value.NewEnvironment(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.(value.Bool).Val {
		t.Fatal("expected trace to return its body's value")
	}
	if len(emitted) != 1 || emitted[0].Label != "checkpoint" {
		t.Fatalf("expected one diagnostic labelled checkpoint, got %+v", emitted)
	}
}
