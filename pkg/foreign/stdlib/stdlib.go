// Package stdlib is the reference primitive library the dispatcher in
// pkg/foreign resolves qualified names against: arithmetic, comparison,
// equality, boolean, string, and array operations, adapted to the tagged
// Value universe and EvalError taxonomy of this module.
package stdlib

import (
	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/foreign"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Primitives returns the full reference set, ready to hand to
// foreign.NewRegistry.
func Primitives() []foreign.Primitive {
	return []foreign.Primitive{
		arith("Stdlib.add", func(a, b float64) float64 { return a + b }),
		arith("Stdlib.sub", func(a, b float64) float64 { return a - b }),
		arith("Stdlib.mul", func(a, b float64) float64 { return a * b }),
		arith("Stdlib.div", func(a, b float64) float64 { return a / b }),

		cmp("Stdlib.lt", func(c int) bool { return c < 0 }),
		cmp("Stdlib.lte", func(c int) bool { return c <= 0 }),
		cmp("Stdlib.gt", func(c int) bool { return c > 0 }),
		cmp("Stdlib.gte", func(c int) bool { return c >= 0 }),

		{
			Name:  "Stdlib.eq",
			Arity: 2,
			Impl: func(_ *foreign.Caller, _ *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				return value.Bool{Val: value.Equal(args[0], args[1])}, nil
			},
		},
		{
			Name:  "Stdlib.neq",
			Arity: 2,
			Impl: func(_ *foreign.Caller, _ *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				return value.Bool{Val: !value.Equal(args[0], args[1])}, nil
			},
		},
		{
			Name:  "Stdlib.not",
			Arity: 1,
			Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				b, err := foreign.AsBool(span, args[0])
				if err != nil {
					return nil, err
				}
				return value.Bool{Val: !b}, nil
			},
		},
		{
			Name:  "Stdlib.and",
			Arity: 2,
			Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				a, err := foreign.AsBool(span, args[0])
				if err != nil {
					return nil, err
				}
				b, err := foreign.AsBool(span, args[1])
				if err != nil {
					return nil, err
				}
				return value.Bool{Val: a && b}, nil
			},
		},
		{
			Name:  "Stdlib.or",
			Arity: 2,
			Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				a, err := foreign.AsBool(span, args[0])
				if err != nil {
					return nil, err
				}
				b, err := foreign.AsBool(span, args[1])
				if err != nil {
					return nil, err
				}
				return value.Bool{Val: a || b}, nil
			},
		},

		{
			Name:  "Stdlib.concat",
			Arity: 2,
			Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				a, err := foreign.AsString(span, args[0])
				if err != nil {
					return nil, err
				}
				b, err := foreign.AsString(span, args[1])
				if err != nil {
					return nil, err
				}
				return value.String{Val: a + b}, nil
			},
		},

		{
			Name:  "Stdlib.arrayLength",
			Arity: 1,
			Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				elems, err := foreign.AsArray(span, args[0])
				if err != nil {
					return nil, err
				}
				return value.Int{Val: int64(len(elems))}, nil
			},
		},
		{
			// arrayMap(f, xs): apply f to every element of xs.
			Name:  "Stdlib.arrayMap",
			Arity: 2,
			Impl: func(c *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				fn := args[0]
				elems, err := foreign.AsArray(span, args[1])
				if err != nil {
					return nil, err
				}
				out := make([]value.Value, len(elems))
				for i, el := range elems {
					v, err := c.Apply(span, fn, el)
					if err != nil {
						return nil, err
					}
					out[i] = v
				}
				return value.NewArray(out...), nil
			},
		},
		{
			// arrayBind(xs, f): flat-map f (Value -> Array) over xs.
			// The array is the FIRST argument, so a non-array there names
			// VArray.
			Name:  "Stdlib.arrayBind",
			Arity: 2,
			Impl: func(c *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				elems, err := foreign.AsArray(span, args[0])
				if err != nil {
					return nil, err
				}
				fn := args[1]
				var out []value.Value
				for _, el := range elems {
					v, err := c.Apply(span, fn, el)
					if err != nil {
						return nil, err
					}
					sub, err := foreign.AsArray(span, v)
					if err != nil {
						return nil, err
					}
					out = append(out, sub...)
				}
				return value.NewArray(out...), nil
			},
		},
		{
			Name:  "Stdlib.arrayFilter",
			Arity: 2,
			Impl: func(c *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
				fn := args[0]
				elems, err := foreign.AsArray(span, args[1])
				if err != nil {
					return nil, err
				}
				var out []value.Value
				for _, el := range elems {
					v, err := c.Apply(span, fn, el)
					if err != nil {
						return nil, err
					}
					keep, err := foreign.AsBool(span, v)
					if err != nil {
						return nil, err
					}
					if keep {
						out = append(out, el)
					}
				}
				return value.NewArray(out...), nil
			},
		},
	}
}

func arith(name string, op func(a, b float64) float64) foreign.Primitive {
	return foreign.Primitive{
		Name:  name,
		Arity: 2,
		Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
			a, aInt, err := numeric(span, args[0])
			if err != nil {
				return nil, err
			}
			b, bInt, err := numeric(span, args[1])
			if err != nil {
				return nil, err
			}
			result := op(a, b)
			if aInt && bInt && result == float64(int64(result)) {
				return value.Int{Val: int64(result)}, nil
			}
			return value.Number{Val: result}, nil
		},
	}
}

func cmp(name string, accept func(c int) bool) foreign.Primitive {
	return foreign.Primitive{
		Name:  name,
		Arity: 2,
		Impl: func(_ *foreign.Caller, span *ir.SourceSpan, args []value.Value) (value.Value, *eval.EvalError) {
			a, _, err := numeric(span, args[0])
			if err != nil {
				return nil, err
			}
			b, _, err := numeric(span, args[1])
			if err != nil {
				return nil, err
			}
			switch {
			case a < b:
				return value.Bool{Val: accept(-1)}, nil
			case a > b:
				return value.Bool{Val: accept(1)}, nil
			default:
				return value.Bool{Val: accept(0)}, nil
			}
		},
	}
}

// numeric marshals v as a Number, additionally reporting whether v was
// an Int so arith can round-trip an Int+Int result back to Int instead
// of always widening to Number.
func numeric(span *ir.SourceSpan, v value.Value) (float64, bool, *eval.EvalError) {
	if i, err := foreign.AsInt(span, v); err == nil {
		return float64(i), true, nil
	}
	n, err := foreign.AsNumber(span, v)
	if err != nil {
		return 0, false, err
	}
	return n, false, nil
}
