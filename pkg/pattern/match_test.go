package pattern

import (
	"testing"

	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

func TestWildcardAlwaysMatches(t *testing.T) {
	_, ok := Match(ir.NewWildcardPattern(ir.Annotation{}), value.Int{Val: 42})
	if !ok {
		t.Error("expected wildcard to match anything")
	}
}

func TestVariableBindsWholeValue(t *testing.T) {
	b, ok := Match(ir.NewVariablePattern(ir.Annotation{}, "x"), value.Int{Val: 7})
	if !ok || b["x"].(value.Int).Val != 7 {
		t.Fatalf("expected x bound to 7, got %+v", b)
	}
}

func TestNamedPatternBindsBothNames(t *testing.T) {
	inner := ir.NewVariablePattern(ir.Annotation{}, "y")
	named := ir.NewNamedPattern(ir.Annotation{}, "whole", inner)
	b, ok := Match(named, value.Int{Val: 3})
	if !ok || b["whole"].(value.Int).Val != 3 || b["y"].(value.Int).Val != 3 {
		t.Fatalf("expected both names bound, got %+v", b)
	}
}

func TestLiteralPatternMatchesEqualValue(t *testing.T) {
	lit := ir.NewLiteral(ir.Annotation{}, ir.LitInt)
	lit.IntVal = 5
	if _, ok := Match(ir.NewLiteralPattern(ir.Annotation{}, lit), value.Int{Val: 5}); !ok {
		t.Error("expected literal pattern to match equal int")
	}
	if _, ok := Match(ir.NewLiteralPattern(ir.Annotation{}, lit), value.Int{Val: 6}); ok {
		t.Error("expected literal pattern to reject unequal int")
	}
}

func TestArrayPatternIgnoresExcessElements(t *testing.T) {
	arrPat := ir.NewArrayPattern(ir.Annotation{}, []ir.Pattern{
		ir.NewVariablePattern(ir.Annotation{}, "a"),
	})
	v := value.NewArray(value.Int{Val: 1}, value.Int{Val: 2}, value.Int{Val: 3})
	b, ok := Match(arrPat, v)
	if !ok || b["a"].(value.Int).Val != 1 {
		t.Fatalf("expected a bound to first element, got %+v ok=%v", b, ok)
	}
}

func TestArrayPatternFailsWhenTooFewElements(t *testing.T) {
	arrPat := ir.NewArrayPattern(ir.Annotation{}, []ir.Pattern{
		ir.NewVariablePattern(ir.Annotation{}, "a"),
		ir.NewVariablePattern(ir.Annotation{}, "b"),
	})
	v := value.NewArray(value.Int{Val: 1})
	if _, ok := Match(arrPat, v); ok {
		t.Error("expected match to fail when array too short")
	}
}

func TestObjectPatternRequiresAllKeys(t *testing.T) {
	objPat := ir.NewObjectPattern(ir.Annotation{}, []ir.ObjectPatternField{
		{Key: "a", Inner: ir.NewVariablePattern(ir.Annotation{}, "a")},
		{Key: "missing", Inner: ir.NewWildcardPattern(ir.Annotation{})},
	})
	v := value.NewObject(value.ObjectField{Key: "a", Value: value.Int{Val: 1}})
	if _, ok := Match(objPat, v); ok {
		t.Error("expected match to fail when a required key is missing")
	}
}

func TestConstructorPatternNonNewtype(t *testing.T) {
	ctorObj := value.EmptyObject()
	ctorObj.Set("constructor", value.String{Val: "Some"})
	ctorObj.Set("fields", value.NewArray(value.Int{Val: 9}))

	ctorPat := ir.NewConstructorPattern(ir.Annotation{}, "Maybe", "Some", []ir.Pattern{
		ir.NewVariablePattern(ir.Annotation{}, "inner"),
	})
	b, ok := Match(ctorPat, ctorObj)
	if !ok || b["inner"].(value.Int).Val != 9 {
		t.Fatalf("expected inner bound to 9, got %+v ok=%v", b, ok)
	}
}

func TestConstructorPatternRejectsWrongCtorName(t *testing.T) {
	ctorObj := value.EmptyObject()
	ctorObj.Set("constructor", value.String{Val: "None"})
	ctorObj.Set("fields", value.NewArray())

	ctorPat := ir.NewConstructorPattern(ir.Annotation{}, "Maybe", "Some", nil)
	if _, ok := Match(ctorPat, ctorObj); ok {
		t.Error("expected mismatched constructor name to fail")
	}
}

func TestNewtypePatternUnwraps(t *testing.T) {
	inner := ir.NewVariablePattern(ir.Annotation{}, "x")
	newtype := ir.NewNewtypePattern(ir.Annotation{}, "UserId", inner)
	b, ok := Match(newtype, value.Int{Val: 42})
	if !ok || b["x"].(value.Int).Val != 42 {
		t.Fatalf("expected newtype pattern to match the raw value directly, got %+v", b)
	}
}
