package eval

import (
	"unicode/utf8"

	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/pattern"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Evaluator is the core tree-walker. It is deterministic and strict: no
// node reorders its subexpressions.
type Evaluator struct {
	Temporal TemporalHook
}

// New returns an Evaluator wired to the given temporal driver. Foreign
// dispatch is supplied per call via Context, since it doesn't need to
// close over evaluator state.
func New(temporal TemporalHook) *Evaluator {
	return &Evaluator{Temporal: temporal}
}

// Eval evaluates expr under env, threading ctx (trace tail, diagnostic
// sink, foreign registry) through every recursive call.
func (ev *Evaluator) Eval(ctx Context, env *value.Environment, expr ir.Expr) (value.Value, *EvalError) {
	switch node := expr.(type) {
	case *ir.TemporalForm:
		if ev.Temporal == nil {
			return nil, NewUnexpectedError(spanOf(node), "no temporal driver installed")
		}
		return ev.Temporal.EvalTemporal(ev, ctx, env, node)

	case *ir.Literal:
		return ev.evalLiteral(ctx, env, node)

	case *ir.Variable:
		return ev.evalVariable(ctx, env, node)

	case *ir.Lambda:
		return &value.Function{Closure: env, Param: node.Param, Body: node.Body}, nil

	case *ir.Application:
		return ev.evalApplication(ctx, env, node)

	case *ir.Case:
		return ev.evalCase(ctx, env, node)

	case *ir.Let:
		return ev.evalLet(ctx, env, node)

	case *ir.Accessor:
		return ev.evalAccessor(ctx, env, node)

	case *ir.ObjectUpdate:
		return ev.evalObjectUpdate(ctx, env, node)

	case *ir.Constructor:
		return ev.evalConstructor(node), nil

	default:
		return nil, NewUnexpectedError(nil, "unrecognised IR node")
	}
}

func spanOf(n ir.Node) *ir.SourceSpan {
	if n == nil {
		return nil
	}
	s := n.Ann().Span
	return &s
}

//-----------------------------------------------------------------------------
// Literal
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalLiteral(ctx Context, env *value.Environment, lit *ir.Literal) (value.Value, *EvalError) {
	switch lit.Kind {
	case ir.LitBool:
		return value.Bool{Val: lit.BoolVal}, nil
	case ir.LitInt:
		return value.Int{Val: lit.IntVal}, nil
	case ir.LitNumber:
		return value.Number{Val: lit.NumberVal}, nil
	case ir.LitChar:
		return value.Char{Val: lit.CharVal}, nil
	case ir.LitString:
		if !utf8.ValidString(lit.StringVal) {
			return nil, NewInvalidString(spanOf(lit))
		}
		return value.String{Val: lit.StringVal}, nil
	case ir.LitArray:
		elems := make([]value.Value, len(lit.Elements))
		for i, e := range lit.Elements {
			v, err := ev.Eval(ctx, env, e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.NewArray(elems...), nil
	case ir.LitObject:
		obj := value.EmptyObject()
		for _, f := range lit.Fields {
			v, err := ev.Eval(ctx, env, f.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(f.Key, v)
		}
		return obj, nil
	default:
		return nil, NewUnexpectedError(spanOf(lit), "unrecognised literal kind")
	}
}

//-----------------------------------------------------------------------------
// Variable
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalVariable(ctx Context, env *value.Environment, v *ir.Variable) (value.Value, *EvalError) {
	ann := v.Ann()
	if ann.Foreign != nil {
		return ev.evalForeignApply(ctx, env, v, ann.Foreign)
	}

	b, ok := env.Lookup(v.Name)
	if !ok {
		return nil, NewNotInScope(spanOf(v), v.Name)
	}
	if !b.IsValue() {
		// Bound to an unevaluated module-level expression: re-evaluate in
		// an environment stripped of locals so it can't see the call
		// site's bindings.
		return ev.Eval(ctx, env.WithoutLocals(), b.Expr)
	}
	if d, ok := b.Value.(*value.Defer); ok {
		return ev.Eval(ctx, d.Env, d.Expr)
	}
	return b.Value, nil
}

func (ev *Evaluator) evalForeignApply(ctx Context, env *value.Environment, v *ir.Variable, fa *ir.ForeignApply) (value.Value, *EvalError) {
	if ctx.Foreign == nil {
		return nil, NewForeignFunctionNotSupported(spanOf(v), fa.QualifiedName)
	}
	args := make([]value.Value, len(fa.Params))
	for i, p := range fa.Params {
		b, ok := env.Lookup(p)
		if !ok {
			return nil, NewNotInScope(spanOf(v), p)
		}
		if !b.IsValue() {
			val, err := ev.Eval(ctx, env.WithoutLocals(), b.Expr)
			if err != nil {
				return nil, err
			}
			args[i] = val
			continue
		}
		if d, ok := b.Value.(*value.Defer); ok {
			val, err := ev.Eval(ctx, d.Env, d.Expr)
			if err != nil {
				return nil, err
			}
			args[i] = val
			continue
		}
		args[i] = b.Value
	}
	return ctx.Foreign.Dispatch(ctx, spanOf(v), fa.QualifiedName, args)
}

//-----------------------------------------------------------------------------
// Application
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalApplication(ctx Context, env *value.Environment, app *ir.Application) (value.Value, *EvalError) {
	calleeVal, err := ev.Eval(ctx, env, app.Callee)
	if err != nil {
		return nil, err
	}
	argVal, err := ev.Eval(ctx, env, app.Argument)
	if err != nil {
		return nil, err
	}
	return ev.apply(ctx, spanOf(app), calleeVal, argVal)
}

// Apply invokes a callable Value with a single already-evaluated argument.
// Exported for the foreign dispatcher, where Function values appear on
// the native side as invocable closures.
func (ev *Evaluator) Apply(ctx Context, span *ir.SourceSpan, callee, arg value.Value) (value.Value, *EvalError) {
	return ev.apply(ctx, span, callee, arg)
}

// apply invokes a callable Value with a single already-evaluated argument.
// Besides ordinary *value.Function closures, a constructor mid-curry
// (*nativeCurry) is callable but has no IR body to evaluate.
func (ev *Evaluator) apply(ctx Context, span *ir.SourceSpan, callee, arg value.Value) (value.Value, *EvalError) {
	switch fn := callee.(type) {
	case *value.Function:
		callEnv := fn.Closure.Bind(fn.Param, value.ValueBinding(arg))
		return ev.Eval(ctx, callEnv, fn.Body)
	case *nativeCurry:
		return curriedConstructor(fn.ctor, append(append([]value.Value{}, fn.collected...), arg)), nil
	default:
		return nil, NewUnexpectedType(span, value.KindFunction.String(), callee)
	}
}

//-----------------------------------------------------------------------------
// Case
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalCase(ctx Context, env *value.Environment, c *ir.Case) (value.Value, *EvalError) {
	scrutinees := make([]value.Value, len(c.Scrutinees))
	for i, s := range c.Scrutinees {
		v, err := ev.Eval(ctx, env, s)
		if err != nil {
			return nil, err
		}
		scrutinees[i] = v
	}

	for _, alt := range c.Alternatives {
		if len(alt.Binders) != len(scrutinees) {
			continue
		}
		bindings := pattern.Bindings{}
		matched := true
		for i, binder := range alt.Binders {
			bs, ok := pattern.Match(binder, scrutinees[i])
			if !ok {
				matched = false
				break
			}
			for k, v := range bs {
				bindings[k] = v
			}
		}
		if !matched {
			continue
		}
		altEnv := bindEach(env, bindings)
		for _, gr := range alt.Results {
			if gr.Guard == nil {
				return ev.Eval(ctx, altEnv, gr.Result)
			}
			guardVal, err := ev.Eval(ctx, altEnv, gr.Guard)
			if err != nil {
				return nil, err
			}
			b, ok := guardVal.(value.Bool)
			if ok && b.Val {
				return ev.Eval(ctx, altEnv, gr.Result)
			}
		}
	}
	return nil, NewUnexpectedError(spanOf(c), "Non-exhaustive case")
}

func bindEach(env *value.Environment, bindings pattern.Bindings) *value.Environment {
	out := env
	for k, v := range bindings {
		out = out.Bind(k, value.ValueBinding(v))
	}
	return out
}

//-----------------------------------------------------------------------------
// Let / letrec
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalLet(ctx Context, env *value.Environment, let *ir.Let) (value.Value, *EvalError) {
	current := env
	for _, group := range let.Groups {
		if !group.Recursive {
			for _, b := range group.Bindings {
				current = current.Bind(b.Name, value.ValueBinding(&value.Defer{Env: current, Expr: b.Expr}))
			}
			continue
		}
		// Recursive group: every binding's Defer must capture the group's
		// own completed environment.
		exprs := make(map[string]ir.Expr, len(group.Bindings))
		for _, b := range group.Bindings {
			exprs[b.Name] = b.Expr
		}
		current = current.BindRecursiveDefers(exprs)
	}
	return ev.Eval(ctx, current, let.Body)
}

//-----------------------------------------------------------------------------
// Accessor / ObjectUpdate
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalAccessor(ctx Context, env *value.Environment, acc *ir.Accessor) (value.Value, *EvalError) {
	target, err := ev.Eval(ctx, env, acc.Target)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(*value.Object)
	if !ok {
		return nil, NewUnexpectedType(spanOf(acc), value.KindObject.String(), target)
	}
	v, present := obj.Get(acc.Field)
	if !present {
		return nil, NewUnexpectedError(spanOf(acc), "Key not present")
	}
	return v, nil
}

func (ev *Evaluator) evalObjectUpdate(ctx Context, env *value.Environment, upd *ir.ObjectUpdate) (value.Value, *EvalError) {
	target, err := ev.Eval(ctx, env, upd.Target)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(*value.Object)
	if !ok {
		return nil, NewUnexpectedType(spanOf(upd), value.KindObject.String(), target)
	}
	fields := make([]value.ObjectField, len(upd.Updates))
	for i, u := range upd.Updates {
		v, err := ev.Eval(ctx, env, u.Value)
		if err != nil {
			return nil, err
		}
		fields[i] = value.ObjectField{Key: u.Field, Value: v}
	}
	return obj.Update(fields...), nil
}

//-----------------------------------------------------------------------------
// Constructor
//-----------------------------------------------------------------------------

func (ev *Evaluator) evalConstructor(c *ir.Constructor) value.Value {
	ann := c.Ann()
	isNewtype := ann.Meta != nil && ann.Meta.IsNewtype
	if isNewtype {
		return identityLambda(c)
	}
	return curriedConstructor(c, nil)
}

// identityLambda returns \x -> x, the newtype constructor's evaluation.
func identityLambda(c *ir.Constructor) value.Value {
	const param = "x"
	body := ir.NewVariable(ir.Annotation{}, param)
	return &value.Function{Closure: value.NewEnvironment(), Param: param, Body: body}
}

// curriedConstructor builds the chain of len(FieldNames)-len(collected)
// native closures that accumulate arguments before building the
// {constructor, fields} object, without going through the IR/evaluator
// for the accumulation step itself (there's no surface expression for it).
func curriedConstructor(c *ir.Constructor, collected []value.Value) value.Value {
	if len(collected) == len(c.FieldNames) {
		return buildConstructedObject(c, collected)
	}
	return &nativeCurry{ctor: c, collected: collected}
}

func buildConstructedObject(c *ir.Constructor, fields []value.Value) *value.Object {
	obj := value.EmptyObject()
	obj.Set("constructor", value.String{Val: c.CtorName})
	obj.Set("fields", value.NewArray(fields...))
	return obj
}

// nativeCurry is a Function-shaped value with no IR body: applying it
// accumulates one more constructor argument. The evaluator's Application
// case special-cases this type since it isn't backed by an ir.Expr body.
type nativeCurry struct {
	ctor      *ir.Constructor
	collected []value.Value
}

func (*nativeCurry) Kind() value.Kind { return value.KindFunction }
