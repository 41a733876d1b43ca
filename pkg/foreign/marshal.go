package foreign

import (
	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

// The As* helpers are the marshalling layer: type-checking a Value
// against the primitive shape a native implementation declares it needs.
// Every Primitive.Impl in pkg/foreign/stdlib goes through these instead
// of asserting on the Value union itself, so the UnexpectedType a spec
// author sees always names the same kind strings and carries the same
// span (arity itself is enforced by Registry.Dispatch before Impl ever
// runs).

func AsBool(span *ir.SourceSpan, v value.Value) (bool, *eval.EvalError) {
	b, ok := v.(value.Bool)
	if !ok {
		return false, eval.NewUnexpectedType(span, value.KindBool.String(), v)
	}
	return b.Val, nil
}

func AsInt(span *ir.SourceSpan, v value.Value) (int64, *eval.EvalError) {
	i, ok := v.(value.Int)
	if !ok {
		return 0, eval.NewUnexpectedType(span, value.KindInt.String(), v)
	}
	return i.Val, nil
}

func AsNumber(span *ir.SourceSpan, v value.Value) (float64, *eval.EvalError) {
	switch n := v.(type) {
	case value.Number:
		return n.Val, nil
	case value.Int:
		return float64(n.Val), nil
	default:
		return 0, eval.NewUnexpectedType(span, value.KindNumber.String(), v)
	}
}

func AsChar(span *ir.SourceSpan, v value.Value) (rune, *eval.EvalError) {
	c, ok := v.(value.Char)
	if !ok {
		return 0, eval.NewUnexpectedType(span, value.KindChar.String(), v)
	}
	return c.Val, nil
}

func AsString(span *ir.SourceSpan, v value.Value) (string, *eval.EvalError) {
	s, ok := v.(value.String)
	if !ok {
		return "", eval.NewUnexpectedType(span, value.KindString.String(), v)
	}
	return s.Val, nil
}

func AsArray(span *ir.SourceSpan, v value.Value) ([]value.Value, *eval.EvalError) {
	a, ok := v.(*value.Array)
	if !ok {
		return nil, eval.NewUnexpectedType(span, value.KindArray.String(), v)
	}
	return a.Elements, nil
}

func AsObject(span *ir.SourceSpan, v value.Value) (*value.Object, *eval.EvalError) {
	o, ok := v.(*value.Object)
	if !ok {
		return nil, eval.NewUnexpectedType(span, value.KindObject.String(), v)
	}
	return o, nil
}

func AsCallable(span *ir.SourceSpan, v value.Value) (value.Value, *eval.EvalError) {
	if v.Kind() != value.KindFunction {
		return nil, eval.NewUnexpectedType(span, value.KindFunction.String(), v)
	}
	return v, nil
}

func notA(span *ir.SourceSpan, expected string, actual value.Value) error {
	return errUnexpectedType{span: span, expected: expected, actual: actual}
}

type errUnexpectedType struct {
	span     *ir.SourceSpan
	expected string
	actual   value.Value
}

func (e errUnexpectedType) Error() string {
	return "expected " + e.expected + ", got " + value.Pretty(e.actual)
}

// ActionKind names the closed set of DOM actions the marshalling layer
// recognises.
type ActionKind int

const (
	ActionFocus ActionKind = iota
	ActionKeyPress
	ActionClick
	ActionNavigate
)

func (k ActionKind) String() string {
	switch k {
	case ActionFocus:
		return "Focus"
	case ActionKeyPress:
		return "KeyPress"
	case ActionClick:
		return "Click"
	case ActionNavigate:
		return "Navigate"
	default:
		return "Unknown"
	}
}

// Action is the demarshalled form of a `{constructor: "Focus"|..., fields:
// [...]}` tagged object produced by the Constructor evaluation rule.
type Action struct {
	Kind ActionKind
	Args []value.Value
}

// AsAction demarshals a constructed action object into an Action.
func AsAction(span *ir.SourceSpan, v value.Value) (Action, error) {
	obj, ok := v.(*value.Object)
	if !ok {
		return Action{}, notA(span, "Object", v)
	}
	ctorVal, present := obj.Get("constructor")
	if !present {
		return Action{}, notA(span, "action object", v)
	}
	ctorName, ok := ctorVal.(value.String)
	if !ok {
		return Action{}, notA(span, "action object", v)
	}
	var kind ActionKind
	switch ctorName.Val {
	case "Focus":
		kind = ActionFocus
	case "KeyPress":
		kind = ActionKeyPress
	case "Click":
		kind = ActionClick
	case "Navigate":
		kind = ActionNavigate
	default:
		return Action{}, notA(span, "Focus|KeyPress|Click|Navigate", v)
	}
	fieldsVal, present := obj.Get("fields")
	if !present {
		return Action{}, notA(span, "action object", v)
	}
	fields, ok := fieldsVal.(*value.Array)
	if !ok {
		return Action{}, notA(span, "action object", v)
	}
	return Action{Kind: kind, Args: fields.Elements}, nil
}
