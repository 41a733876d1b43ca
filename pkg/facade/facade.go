// Package facade is the only component a host embeds directly. It
// resolves the named entry points (origin, readyWhen, actions, queries,
// proposition), maps a verify() call to Accepted/Rejected/Undetermined,
// and is the sole place errors are rendered with source spans.
package facade

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"

	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/trace"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Verdict is the outcome of Verify.
type Verdict int

const (
	Accepted Verdict = iota
	Rejected
	VerdictUndetermined
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case VerdictUndetermined:
		return "Undetermined"
	default:
		return "Unknown"
	}
}

const (
	entryOrigin      = "origin"
	entryReadyWhen   = "readyWhen"
	entryActions     = "actions"
	entryQueries     = "queries"
	entryProposition = "proposition"
)

// Facade exposes the well-known entry points against one loaded module,
// under one qualified-name environment. Foreign is installed into every
// Context this façade builds, so arithmetic, comparison, and array
// combinators compiled to foreign stubs resolve during resolve/Verify
// instead of failing ForeignFunctionNotSupported.
type Facade struct {
	Eval       *eval.Evaluator
	Env        *value.Environment
	MainModule string
	Foreign    eval.ForeignDispatcher
}

func New(ev *eval.Evaluator, env *value.Environment, mainModule string, foreign eval.ForeignDispatcher) *Facade {
	return &Facade{Eval: ev, Env: env, MainModule: mainModule, Foreign: foreign}
}

// resolve looks up qname under a single-element pseudo-trace: non-temporal
// entries are expected to be pure values, so one empty state is enough to
// satisfy the evaluator's trace-shaped Context.
func (f *Facade) resolve(name string) (value.Value, *eval.EvalError) {
	qname := f.MainModule + "." + name
	b, ok := f.Env.Lookup(qname)
	if !ok {
		return nil, eval.NewEntryPointNotDefined(qname)
	}
	ctx := eval.Context{Trace: trace.Trace{trace.ObservedState{}}, Foreign: f.Foreign}
	if !b.IsValue() {
		return f.Eval.Eval(ctx, f.Env.WithoutLocals(), b.Expr)
	}
	if d, ok := b.Value.(*value.Defer); ok {
		return f.Eval.Eval(ctx, d.Env, d.Expr)
	}
	return b.Value, nil
}

// Origin resolves the `origin` entry point.
func (f *Facade) Origin() (string, *eval.EvalError) {
	v, err := f.resolve(entryOrigin)
	if err != nil {
		return "", err
	}
	s, ok := v.(value.String)
	if !ok {
		return "", eval.NewUnexpectedType(nil, value.KindString.String(), v)
	}
	return s.Val, nil
}

// ReadyWhen resolves the `readyWhen` entry point.
func (f *Facade) ReadyWhen() (string, *eval.EvalError) {
	v, err := f.resolve(entryReadyWhen)
	if err != nil {
		return "", err
	}
	s, ok := v.(value.String)
	if !ok {
		return "", eval.NewUnexpectedType(nil, value.KindString.String(), v)
	}
	return s.Val, nil
}

// Actions resolves the `actions` entry point to its raw Array value; the
// façade does not itself demarshal action objects, leaving that to
// pkg/foreign.AsAction for whichever host consumes the array.
func (f *Facade) Actions() (*value.Array, *eval.EvalError) {
	v, err := f.resolve(entryActions)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, eval.NewUnexpectedType(nil, value.KindArray.String(), v)
	}
	return arr, nil
}

// Queries resolves the `queries` entry point to its raw Array value, the
// same way Actions resolves `actions`.
func (f *Facade) Queries() (*value.Array, *eval.EvalError) {
	v, err := f.resolve(entryQueries)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*value.Array)
	if !ok {
		return nil, eval.NewUnexpectedType(nil, value.KindArray.String(), v)
	}
	return arr, nil
}

// Verify resolves `proposition` against t and maps the result to a
// Verdict: true -> Accepted, false -> Rejected, Undetermined ->
// VerdictUndetermined, any other error is surfaced.
func (f *Facade) Verify(t trace.Trace) (Verdict, *eval.EvalError) {
	qname := f.MainModule + "." + entryProposition
	b, ok := f.Env.Lookup(qname)
	if !ok {
		return VerdictUndetermined, eval.NewEntryPointNotDefined(qname)
	}

	ctx := eval.Context{Trace: t, Foreign: f.Foreign}
	var result value.Value
	var err *eval.EvalError
	if !b.IsValue() {
		result, err = f.Eval.Eval(ctx, f.Env.WithoutLocals(), b.Expr)
	} else if d, isDefer := b.Value.(*value.Defer); isDefer {
		result, err = f.Eval.Eval(ctx, d.Env, d.Expr)
	} else {
		result = b.Value
	}

	if err != nil {
		if eval.IsUndetermined(err) {
			return VerdictUndetermined, nil
		}
		return VerdictUndetermined, err
	}
	b2, ok := result.(value.Bool)
	if !ok {
		return VerdictUndetermined, eval.NewUnexpectedType(nil, value.KindBool.String(), result)
	}
	if b2.Val {
		return Accepted, nil
	}
	return Rejected, nil
}

// PrettyPrint renders an EvalError in the `<file>:<line>:<col>-<line>:<col>:
// \nerror: <message>` format, omitting the span when unavailable.
func PrettyPrint(file string, err *eval.EvalError) string {
	if err.Span == nil {
		return fmt.Sprintf("error: %s", err.Error())
	}
	s := err.Span
	return fmt.Sprintf("%s:%d:%d-%d:%d:\nerror: %s", file, s.StartLine, s.StartCol, s.EndLine, s.EndCol, err.Error())
}

// Describe runs every resolvable entry point and aggregates every failure
// into one error, rather than stopping at the first. It is the facade's
// "tell me everything that's wrong" mode, distinct from Verify's
// fail-fast single answer.
func (f *Facade) Describe(t trace.Trace) error {
	var result *multierror.Error

	if _, err := f.Origin(); err != nil {
		result = multierror.Append(result, pkgerrors.Wrap(err, "origin"))
	}
	if _, err := f.ReadyWhen(); err != nil {
		result = multierror.Append(result, pkgerrors.Wrap(err, "readyWhen"))
	}
	if _, err := f.Actions(); err != nil {
		result = multierror.Append(result, pkgerrors.Wrap(err, "actions"))
	}
	if _, err := f.Queries(); err != nil {
		result = multierror.Append(result, pkgerrors.Wrap(err, "queries"))
	}
	if _, err := f.Verify(t); err != nil {
		result = multierror.Append(result, pkgerrors.Wrap(err, "proposition"))
	}

	if result == nil {
		return nil
	}
	return result.ErrorOrNil()
}
