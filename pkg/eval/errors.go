// Package eval implements the core tree-walking evaluator and the closed
// EvalError taxonomy every other component in this module surfaces
// failures through.
package eval

import (
	"fmt"

	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

// ErrorKind is the exhaustive, closed set of ways evaluation can fail.
type ErrorKind int

const (
	UnexpectedError ErrorKind = iota
	UnexpectedType
	EntryPointNotDefined
	NotInScope
	ForeignFunctionNotSupported
	InvalidString
	InvalidBuiltInFunctionApplication
	ForeignFunctionError
	Undetermined
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedError:
		return "UnexpectedError"
	case UnexpectedType:
		return "UnexpectedType"
	case EntryPointNotDefined:
		return "EntryPointNotDefined"
	case NotInScope:
		return "NotInScope"
	case ForeignFunctionNotSupported:
		return "ForeignFunctionNotSupported"
	case InvalidString:
		return "InvalidString"
	case InvalidBuiltInFunctionApplication:
		return "InvalidBuiltInFunctionApplication"
	case ForeignFunctionError:
		return "ForeignFunctionError"
	case Undetermined:
		return "Undetermined"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// EvalError is the single error type produced anywhere in this module's
// evaluation path. It implements error so it composes with ordinary Go
// error handling at package boundaries (e.g. pkg/facade wrapping it with
// github.com/pkg/errors for host-side context).
type EvalError struct {
	Kind ErrorKind

	Span    *ir.SourceSpan
	Message string

	// NotInScope, ForeignFunctionNotSupported
	QName string

	// UnexpectedType
	Expected string
	Actual   value.Value

	// InvalidBuiltInFunctionApplication
	FnName string
	Arg    value.Value
}

func (e *EvalError) Error() string {
	switch e.Kind {
	case UnexpectedType:
		return fmt.Sprintf("expected %s, got %s", e.Expected, value.Pretty(e.Actual))
	case EntryPointNotDefined:
		return fmt.Sprintf("entry point %q is not defined", e.QName)
	case NotInScope:
		return fmt.Sprintf("%q is not in scope", e.QName)
	case ForeignFunctionNotSupported:
		return fmt.Sprintf("no foreign function registered for %q", e.QName)
	case InvalidString:
		return "invalid string literal"
	case InvalidBuiltInFunctionApplication:
		return fmt.Sprintf("%s applied to malformed argument %s", e.FnName, value.Pretty(e.Arg))
	case ForeignFunctionError:
		return e.Message
	case Undetermined:
		return "undetermined"
	default:
		return e.Message
	}
}

func NewUnexpectedError(span *ir.SourceSpan, message string) *EvalError {
	return &EvalError{Kind: UnexpectedError, Span: span, Message: message}
}

func NewUnexpectedType(span *ir.SourceSpan, expected string, actual value.Value) *EvalError {
	return &EvalError{Kind: UnexpectedType, Span: span, Expected: expected, Actual: actual}
}

func NewEntryPointNotDefined(qname string) *EvalError {
	return &EvalError{Kind: EntryPointNotDefined, QName: qname}
}

func NewNotInScope(span *ir.SourceSpan, qname string) *EvalError {
	return &EvalError{Kind: NotInScope, Span: span, QName: qname}
}

func NewForeignFunctionNotSupported(span *ir.SourceSpan, qname string) *EvalError {
	return &EvalError{Kind: ForeignFunctionNotSupported, Span: span, QName: qname}
}

func NewInvalidString(span *ir.SourceSpan) *EvalError {
	return &EvalError{Kind: InvalidString, Span: span}
}

func NewInvalidBuiltInFunctionApplication(span *ir.SourceSpan, fnName string, arg value.Value) *EvalError {
	return &EvalError{Kind: InvalidBuiltInFunctionApplication, Span: span, FnName: fnName, Arg: arg}
}

func NewForeignFunctionError(span *ir.SourceSpan, message string) *EvalError {
	return &EvalError{Kind: ForeignFunctionError, Span: span, Message: message}
}

func NewUndetermined() *EvalError {
	return &EvalError{Kind: Undetermined}
}

// IsUndetermined reports whether err is an *EvalError carrying
// Undetermined, the one kind callers are ever expected to catch.
func IsUndetermined(err error) bool {
	ee, ok := err.(*EvalError)
	return ok && ee.Kind == Undetermined
}
