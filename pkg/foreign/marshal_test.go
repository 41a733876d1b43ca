package foreign

import (
	"testing"

	"github.com/tjweir/quickstrom/pkg/value"
)

func TestAsIntRejectsNonInt(t *testing.T) {
	if _, err := AsInt(nil, value.String{Val: "x"}); err == nil {
		t.Fatal("expected AsInt to reject a String")
	}
}

func TestAsNumberAcceptsIntAsNumber(t *testing.T) {
	n, err := AsNumber(nil, value.Int{Val: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %v", n)
	}
}

func TestAsActionDecodesClickWithNoArgs(t *testing.T) {
	obj := value.EmptyObject()
	obj.Set("constructor", value.String{Val: "Click"})
	obj.Set("fields", value.NewArray())

	action, err := AsAction(nil, obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != ActionClick {
		t.Fatalf("expected ActionClick, got %v", action.Kind)
	}
	if len(action.Args) != 0 {
		t.Fatalf("expected no args, got %v", action.Args)
	}
}

func TestAsActionDecodesKeyPressWithArg(t *testing.T) {
	obj := value.EmptyObject()
	obj.Set("constructor", value.String{Val: "KeyPress"})
	obj.Set("fields", value.NewArray(value.Char{Val: 'a'}))

	action, err := AsAction(nil, obj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.Kind != ActionKeyPress {
		t.Fatalf("expected ActionKeyPress, got %v", action.Kind)
	}
	if len(action.Args) != 1 || action.Args[0].(value.Char).Val != 'a' {
		t.Fatalf("expected one Char('a') arg, got %v", action.Args)
	}
}

func TestAsActionRejectsUnknownConstructor(t *testing.T) {
	obj := value.EmptyObject()
	obj.Set("constructor", value.String{Val: "Scroll"})
	obj.Set("fields", value.NewArray())

	if _, err := AsAction(nil, obj); err == nil {
		t.Fatal("expected unrecognised constructor name to fail")
	}
}

func TestAsActionRejectsNonObject(t *testing.T) {
	if _, err := AsAction(nil, value.Int{Val: 1}); err == nil {
		t.Fatal("expected non-Object value to fail")
	}
}
