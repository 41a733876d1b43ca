package query

import (
	"testing"

	"github.com/tjweir/quickstrom/pkg/trace"
	"github.com/tjweir/quickstrom/pkg/value"
)

func TestResolveMissingSelectorFails(t *testing.T) {
	observed := trace.ObservedState{}
	_, err := Resolve("#missing", nil, observed)
	if err == nil {
		t.Fatal("expected missing selector to fail")
	}
}

func TestResolveRoundTripsLiftedFields(t *testing.T) {
	observed := trace.ObservedState{
		"#count": []trace.ElementRecord{
			{
				{Kind: "property", Name: "value"}: float64(3),
				{Kind: "attribute", Name: "class"}: "active",
				{Kind: "text", Name: ""}:           "hello",
			},
		},
	}
	wanted := map[string]value.ElementState{
		"value": {StateKind: value.ElementProperty, Name: "value"},
		"class": {StateKind: value.ElementAttribute, Name: "class"},
		"text":  {StateKind: value.ElementText},
	}

	arr, err := Resolve("#count", wanted, observed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arr.Elements) != 1 {
		t.Fatalf("expected one matched element, got %d", len(arr.Elements))
	}
	obj := arr.Elements[0].(*value.Object)

	v, _ := obj.Get("value")
	if v.(value.Int).Val != 3 {
		t.Errorf("expected integral property lifted to Int(3), got %+v", v)
	}
	c, _ := obj.Get("class")
	if c.(value.String).Val != "active" {
		t.Errorf("expected class lifted to String(active), got %+v", c)
	}
	txt, _ := obj.Get("text")
	if txt.(value.String).Val != "hello" {
		t.Errorf("expected text lifted to String(hello), got %+v", txt)
	}
}

func TestResolveMissingElementStateFails(t *testing.T) {
	observed := trace.ObservedState{
		"#count": []trace.ElementRecord{{}},
	}
	wanted := map[string]value.ElementState{
		"value": {StateKind: value.ElementProperty, Name: "value"},
	}
	if _, err := Resolve("#count", wanted, observed); err == nil {
		t.Fatal("expected missing recorded fact to fail")
	}
}

func TestLiftNull(t *testing.T) {
	v, err := Lift(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(*value.Object)
	if !ok || len(obj.Keys()) != 0 {
		t.Fatalf("expected null to lift to empty Object, got %+v", v)
	}
}

func TestLiftIntegralFloatBecomesInt(t *testing.T) {
	v, err := Lift(float64(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(value.Int); !ok {
		t.Fatalf("expected integral float64 to lift to Int, got %T", v)
	}
}

func TestLiftFractionalFloatBecomesNumber(t *testing.T) {
	v, err := Lift(4.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(value.Number); !ok {
		t.Fatalf("expected fractional float64 to lift to Number, got %T", v)
	}
}

func TestLiftArrayAndObjectRecurse(t *testing.T) {
	v, err := Lift(map[string]any{
		"items": []any{float64(1), "two", nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(*value.Object)
	items, _ := obj.Get("items")
	arr := items.(*value.Array)
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 items, got %d", len(arr.Elements))
	}
	if _, ok := arr.Elements[0].(value.Int); !ok {
		t.Errorf("expected first item to lift to Int, got %T", arr.Elements[0])
	}
	if _, ok := arr.Elements[1].(value.String); !ok {
		t.Errorf("expected second item to lift to String, got %T", arr.Elements[1])
	}
}

func TestExtractQueriesReturnsNil(t *testing.T) {
	if got := ExtractQueries(); got != nil {
		t.Errorf("expected the deferred static-analysis hook to stay empty, got %+v", got)
	}
}
