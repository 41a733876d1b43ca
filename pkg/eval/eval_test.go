package eval

import (
	"testing"

	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

func ann() ir.Annotation { return ir.Annotation{} }

func newtypeAnn() ir.Annotation {
	return ir.Annotation{Meta: &ir.Meta{IsNewtype: true}}
}

func evalExpr(t *testing.T, env *value.Environment, expr ir.Expr) value.Value {
	t.Helper()
	ev := New(nil)
	v, err := ev.Eval(Context{}, env, expr)
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	return v
}

func TestLambdaClosureCapturesDefiningEnvironment(t *testing.T) {
	// let x = 1 in let f = \_ -> x in let x = 2 in f 0
	// f must see x = 1, not the later shadowing x = 2.
	inner := ir.NewVariable(ann(), "x")
	lambda := ir.NewLambda(ann(), "_", inner)

	env := value.NewEnvironment().Bind("x", value.ValueBinding(value.Int{Val: 1}))
	fnVal := evalExpr(t, env, lambda)

	// Shadow x in a derived environment; the closure must be unaffected
	// since it captured `env`, not this derived one.
	shadowed := env.Bind("x", value.ValueBinding(value.Int{Val: 2}))
	_ = shadowed

	ev := New(nil)
	result, err := ev.Apply(Context{}, nil, fnVal, value.Int{Val: 0})
	if err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}
	if got := result.(value.Int).Val; got != 1 {
		t.Fatalf("expected closure to see captured x=1, got %d", got)
	}
}

func TestLetrecTerminatesForValueBindings(t *testing.T) {
	// letrec a = b, b = 5 in a
	group := ir.BindingGroup{
		Recursive: true,
		Bindings: []ir.NamedBinding{
			{Name: "a", Expr: ir.NewVariable(ann(), "b")},
			{Name: "b", Expr: ir.NewLiteral(ann(), ir.LitInt)},
		},
	}
	group.Bindings[1].Expr.(*ir.Literal).IntVal = 5

	let := ir.NewLet(ann(), []ir.BindingGroup{group}, ir.NewVariable(ann(), "a"))
	env := value.NewEnvironment()
	got := evalExpr(t, env, let)
	if got.(value.Int).Val != 5 {
		t.Fatalf("expected letrec lookup to terminate at 5, got %+v", got)
	}
}

func TestNewtypeConstructorIsIdentity(t *testing.T) {
	ctor := ir.NewConstructor(newtypeAnn(), "UserId", "UserId", []string{"raw"})
	ev := New(nil)
	fnVal, err := ev.Eval(Context{}, value.NewEnvironment(), ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, aerr := ev.Apply(Context{}, nil, fnVal, value.Int{Val: 42})
	if aerr != nil {
		t.Fatalf("unexpected apply error: %v", aerr)
	}
	if result.(value.Int).Val != 42 {
		t.Fatalf("expected newtype constructor to be identity, got %+v", result)
	}
}

func TestNonNewtypeConstructorCurries(t *testing.T) {
	ctor := ir.NewConstructor(ann(), "Pair", "Pair", []string{"fst", "snd"})
	ev := New(nil)
	fnVal, err := ev.Eval(Context{}, value.NewEnvironment(), ctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	partial, aerr := ev.Apply(Context{}, nil, fnVal, value.Int{Val: 1})
	if aerr != nil {
		t.Fatalf("unexpected apply error: %v", aerr)
	}
	full, aerr := ev.Apply(Context{}, nil, partial, value.Int{Val: 2})
	if aerr != nil {
		t.Fatalf("unexpected apply error: %v", aerr)
	}
	obj, ok := full.(*value.Object)
	if !ok {
		t.Fatalf("expected constructed Object, got %T", full)
	}
	ctorName, _ := obj.Get("constructor")
	if ctorName.(value.String).Val != "Pair" {
		t.Fatalf("expected constructor name Pair, got %+v", ctorName)
	}
	fields, _ := obj.Get("fields")
	arr := fields.(*value.Array)
	if len(arr.Elements) != 2 || arr.Elements[0].(value.Int).Val != 1 || arr.Elements[1].(value.Int).Val != 2 {
		t.Fatalf("expected fields [1, 2], got %+v", arr.Elements)
	}
}

func TestCaseTriesAlternativesInOrder(t *testing.T) {
	// case 1 of _ -> "first"; _ -> "second"  =>  "first"
	scrutinee := ir.NewLiteral(ann(), ir.LitInt)
	scrutinee.IntVal = 1

	first := ir.NewLiteral(ann(), ir.LitString)
	first.StringVal = "first"
	second := ir.NewLiteral(ann(), ir.LitString)
	second.StringVal = "second"

	c := ir.NewCase(ann(), []ir.Expr{scrutinee}, []ir.Alternative{
		{Binders: []ir.Pattern{ir.NewWildcardPattern(ann())}, Results: []ir.GuardedResult{{Result: first}}},
		{Binders: []ir.Pattern{ir.NewWildcardPattern(ann())}, Results: []ir.GuardedResult{{Result: second}}},
	})

	got := evalExpr(t, value.NewEnvironment(), c)
	if got.(value.String).Val != "first" {
		t.Fatalf("expected first matching alternative to win, got %+v", got)
	}
}

func TestCaseNonExhaustiveFails(t *testing.T) {
	scrutinee := ir.NewLiteral(ann(), ir.LitBool)
	scrutinee.BoolVal = true
	lit := ir.NewLiteral(ann(), ir.LitBool)
	lit.BoolVal = false

	c := ir.NewCase(ann(), []ir.Expr{scrutinee}, []ir.Alternative{
		{Binders: []ir.Pattern{ir.NewLiteralPattern(ann(), lit)}, Results: []ir.GuardedResult{{Result: lit}}},
	})

	ev := New(nil)
	_, err := ev.Eval(Context{}, value.NewEnvironment(), c)
	if err == nil {
		t.Fatal("expected non-exhaustive case to fail")
	}
	if err.Kind != UnexpectedError {
		t.Fatalf("expected UnexpectedError, got %v", err.Kind)
	}
}

func TestObjectUpdatePreservesOrderAndAddsNewKeys(t *testing.T) {
	target := ir.NewLiteral(ann(), ir.LitObject)
	xVal := ir.NewLiteral(ann(), ir.LitInt)
	xVal.IntVal = 1
	target.Fields = []ir.ObjectLitField{{Key: "x", Value: xVal}}

	yVal := ir.NewLiteral(ann(), ir.LitInt)
	yVal.IntVal = 2
	upd := ir.NewObjectUpdate(ann(), target, []ir.UpdateField{{Field: "y", Value: yVal}})

	got := evalExpr(t, value.NewEnvironment(), upd)
	obj := got.(*value.Object)
	keys := obj.Keys()
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Fatalf("expected keys [x y] in insertion order, got %v", keys)
	}
}

func TestAccessorOnMissingFieldFails(t *testing.T) {
	target := ir.NewLiteral(ann(), ir.LitObject)
	acc := ir.NewAccessor(ann(), "missing", target)

	ev := New(nil)
	_, err := ev.Eval(Context{}, value.NewEnvironment(), acc)
	if err == nil {
		t.Fatal("expected accessor on missing field to fail")
	}
	if err.Kind != UnexpectedError {
		t.Fatalf("expected UnexpectedError, got %v", err.Kind)
	}
}

func TestVariableNotInScope(t *testing.T) {
	v := ir.NewVariable(ann(), "ghost")
	ev := New(nil)
	_, err := ev.Eval(Context{}, value.NewEnvironment(), v)
	if err == nil || err.Kind != NotInScope {
		t.Fatalf("expected NotInScope, got %v", err)
	}
	if err.QName != "ghost" {
		t.Fatalf("expected QName ghost, got %q", err.QName)
	}
}
