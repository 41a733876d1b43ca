// Package pattern implements the pure, total pattern matcher: matching a
// Pattern against a Value either succeeds with a set of bindings or
// fails, and never raises an EvalError itself. The evaluator is
// responsible for turning match exhaustion into UnexpectedError.
package pattern

import (
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Bindings maps a pattern-introduced local name to the Value it captured.
type Bindings map[string]value.Value

// Match tries to match p against v, returning the bindings introduced and
// whether the match succeeded. On failure the returned Bindings is nil.
func Match(p ir.Pattern, v value.Value) (Bindings, bool) {
	b := Bindings{}
	if matchInto(p, v, b) {
		return b, true
	}
	return nil, false
}

func matchInto(p ir.Pattern, v value.Value, b Bindings) bool {
	switch pt := p.(type) {
	case *ir.WildcardPattern:
		return true

	case *ir.VariablePattern:
		b[pt.Name] = v
		return true

	case *ir.NamedPattern:
		if !matchInto(pt.Inner, v, b) {
			return false
		}
		b[pt.Name] = v
		return true

	case *ir.LiteralPattern:
		return matchLiteral(pt.Value, v)

	case *ir.ArrayPattern:
		av, ok := v.(*value.Array)
		if !ok || len(av.Elements) < len(pt.Elements) {
			return false
		}
		for i, sub := range pt.Elements {
			if !matchInto(sub, av.Elements[i], b) {
				return false
			}
		}
		return true

	case *ir.ObjectPattern:
		ov, ok := v.(*value.Object)
		if !ok {
			return false
		}
		for _, f := range pt.Fields {
			field, present := ov.Get(f.Key)
			if !present {
				return false
			}
			if !matchInto(f.Inner, field, b) {
				return false
			}
		}
		return true

	case *ir.NewtypePattern:
		return matchInto(pt.Inner, v, b)

	case *ir.ConstructorPattern:
		return matchConstructor(pt, v, b)

	default:
		return false
	}
}

// matchLiteral compares a literal pattern's payload against v structurally,
// without going through the evaluator (patterns never allocate a Function
// or Defer, so this only needs the scalar shapes).
func matchLiteral(lit *ir.Literal, v value.Value) bool {
	switch lit.Kind {
	case ir.LitBool:
		bv, ok := v.(value.Bool)
		return ok && bv.Val == lit.BoolVal
	case ir.LitInt:
		iv, ok := v.(value.Int)
		return ok && iv.Val == lit.IntVal
	case ir.LitNumber:
		nv, ok := v.(value.Number)
		return ok && nv.Val == lit.NumberVal
	case ir.LitChar:
		cv, ok := v.(value.Char)
		return ok && cv.Val == lit.CharVal
	case ir.LitString:
		sv, ok := v.(value.String)
		return ok && sv.Val == lit.StringVal
	default:
		// Array/Object literal patterns are not part of the closed pattern
		// set; a compiler emitting one is a bug upstream of this matcher.
		return false
	}
}

// matchConstructor matches the canonical {constructor, fields} envelope a
// non-newtype Constructor node builds.
func matchConstructor(pt *ir.ConstructorPattern, v value.Value, b Bindings) bool {
	ov, ok := v.(*value.Object)
	if !ok {
		return false
	}
	ctorField, present := ov.Get("constructor")
	if !present {
		return false
	}
	ctorName, ok := ctorField.(value.String)
	if !ok || ctorName.Val != pt.CtorName {
		return false
	}
	fieldsField, present := ov.Get("fields")
	if !present {
		return false
	}
	fields, ok := fieldsField.(*value.Array)
	if !ok || len(fields.Elements) != len(pt.Binders) {
		return false
	}
	for i, sub := range pt.Binders {
		if !matchInto(sub, fields.Elements[i], b) {
			return false
		}
	}
	return true
}
