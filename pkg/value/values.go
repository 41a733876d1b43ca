// Package value implements the tagged value universe and the layered
// binding environment the evaluator runs over.
package value

import (
	"fmt"

	"github.com/tjweir/quickstrom/pkg/ir"
)

// Kind identifies which of the closed set of Value shapes a Value is.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindNumber
	KindChar
	KindString
	KindArray
	KindObject
	KindFunction
	KindDefer
	KindElementState
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "VBool"
	case KindInt:
		return "VInt"
	case KindNumber:
		return "VNumber"
	case KindChar:
		return "VChar"
	case KindString:
		return "VString"
	case KindArray:
		return "VArray"
	case KindObject:
		return "VObject"
	case KindFunction:
		return "VFunction"
	case KindDefer:
		return "VDefer"
	case KindElementState:
		return "VElementState"
	default:
		return fmt.Sprintf("VUnknown(%d)", int(k))
	}
}

// Value is the shared behaviour of every runtime value shape.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type Bool struct{ Val bool }

func (Bool) Kind() Kind { return KindBool }

type Int struct{ Val int64 }

func (Int) Kind() Kind { return KindInt }

type Number struct{ Val float64 }

func (Number) Kind() Kind { return KindNumber }

type Char struct{ Val rune }

func (Char) Kind() Kind { return KindChar }

type String struct{ Val string }

func (String) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// Array is an ordered, immutable sequence. Operations that "modify" an
// array (foreign primitives) always return a new Array.
type Array struct {
	Elements []Value
}

func (*Array) Kind() Kind { return KindArray }

func NewArray(elems ...Value) *Array {
	return &Array{Elements: elems}
}

// Object is a text-keyed mapping. Keys are unique; iteration order is
// insignificant except that record update (ObjectUpdate) preserves
// existing key order and appends new keys, which Keys() below reflects.
type Object struct {
	keys   []string
	values map[string]Value
}

func (*Object) Kind() Kind { return KindObject }

// NewObject builds an Object from field/value pairs, preserving the order
// they are given in.
func NewObject(fields ...ObjectField) *Object {
	o := &Object{values: make(map[string]Value, len(fields))}
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

type ObjectField struct {
	Key   string
	Value Value
}

func EmptyObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or overwrites key, appending it to Keys() only if new.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Keys returns field names in first-inserted order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Update returns a new Object holding o's fields overlaid with updates:
// existing keys keep their position, new keys are appended.
func (o *Object) Update(updates ...ObjectField) *Object {
	result := &Object{values: make(map[string]Value, len(o.values)+len(updates))}
	for _, k := range o.keys {
		result.Set(k, o.values[k])
	}
	for _, f := range updates {
		result.Set(f.Key, f.Value)
	}
	return result
}

//-----------------------------------------------------------------------------
// Functions & thunks
//-----------------------------------------------------------------------------

// Function is a closure: exactly the environment visible at its
// definition site, plus a parameter name and an unevaluated body.
type Function struct {
	Closure *Environment
	Param   string
	Body    ir.Expr
}

func (*Function) Kind() Kind { return KindFunction }

// Defer is a thunk: an expression paired with the environment it should
// be evaluated in, used to implement let/letrec and cross-module
// bindings. Evaluating a Defer is not memoized across distinct lookups.
type Defer struct {
	Env  *Environment
	Expr ir.Expr
}

func (*Defer) Kind() Kind { return KindDefer }

//-----------------------------------------------------------------------------
// DOM element state selectors
//-----------------------------------------------------------------------------

// ElementStateKind names the family of queryable DOM facts _property /
// _attribute (and, for a driver that supports them, css value / text /
// enabled) resolve to.
type ElementStateKind int

const (
	ElementProperty ElementStateKind = iota
	ElementAttribute
	ElementCssValue
	ElementText
	ElementEnabled
)

func (k ElementStateKind) String() string {
	switch k {
	case ElementProperty:
		return "property"
	case ElementAttribute:
		return "attribute"
	case ElementCssValue:
		return "cssValue"
	case ElementText:
		return "text"
	case ElementEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// ElementState is an opaque selector produced by _property/_attribute and
// consumed by the query resolver (pkg/query) to look a fact up on a
// matched element.
type ElementState struct {
	StateKind ElementStateKind
	Name      string // empty for Text/Enabled, which name nothing
}

func (ElementState) Kind() Kind { return KindElementState }
