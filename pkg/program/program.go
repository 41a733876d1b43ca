// Package program is the external loader boundary: it turns a set of
// compiled IR modules (as would be read from on-disk JSON artifacts, one
// file per module) into the initial Environment the evaluator runs entry
// points against. Parsing surface syntax into IR is out of scope here;
// this package only wires already-compiled modules together.
package program

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/tjweir/quickstrom/pkg/foreign"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Program is a loaded module set plus the name of the module whose entry
// points the façade resolves, looked up by name in the user's main
// module.
type Program struct {
	Modules []*ir.Module
	Main    string
}

// LoadJSON decodes one compiled-module JSON artifact. The wire shape
// mirrors ir.Module directly; a real compiler's loader would additionally
// resolve extern metadata, which is opaque to the evaluator and not
// modelled here.
func LoadJSON(data []byte) (*ir.Module, error) {
	var mod ir.Module
	if err := json.Unmarshal(data, &mod); err != nil {
		return nil, fmt.Errorf("decoding compiled module: %w", err)
	}
	return &mod, nil
}

// Environment builds the initial, immutable Environment for this program:
// every module-level binding installed under its qualified name as an
// unevaluated expression. A foreign stub is never installed as a separate
// binding here; the compiler is expected to have already emitted it as an
// ir.ForeignApply-annotated Variable wherever the qualified name is used,
// and that Variable drives dispatch directly through the evaluator's
// Context at call time (pkg/eval.evalForeignApply), not through a lookup
// in this Environment. registry is instead used to validate every foreign
// stub reachable from a binding names a primitive that actually exists,
// so a module compiled against a primitive this build doesn't carry fails
// at load time instead of the first time evaluation reaches it.
func (p *Program) Environment(registry *foreign.Registry) (*value.Environment, error) {
	env := value.NewEnvironment()
	var unresolved *multierror.Error

	checkForeign := func(qname string, e ir.Expr) {
		walkExpr(e, func(v *ir.Variable) {
			fa := v.Ann().Foreign
			if !registry.Has(fa.QualifiedName) {
				unresolved = multierror.Append(unresolved, fmt.Errorf("%s: foreign function %q is not registered", qname, fa.QualifiedName))
			}
		})
	}

	for _, mod := range p.Modules {
		for _, group := range mod.Groups {
			if !group.Recursive {
				for _, b := range group.Bindings {
					qname := mod.Name + "." + b.Name
					checkForeign(qname, b.Expr)
					env = env.Bind(qname, value.ExprBinding(b.Expr))
				}
				continue
			}
			exprs := make(map[string]ir.Expr, len(group.Bindings))
			for _, b := range group.Bindings {
				qname := mod.Name + "." + b.Name
				checkForeign(qname, b.Expr)
				exprs[qname] = b.Expr
			}
			env = env.BindRecursiveDefers(exprs)
		}
	}
	return env, unresolved.ErrorOrNil()
}

// walkExpr calls visit on every Variable node in e's tree whose annotation
// carries a Foreign marker, recursing through every nested Expr position.
func walkExpr(e ir.Expr, visit func(*ir.Variable)) {
	if e == nil {
		return
	}
	switch node := e.(type) {
	case *ir.Variable:
		if node.Ann().Foreign != nil {
			visit(node)
		}
	case *ir.Literal:
		for _, el := range node.Elements {
			walkExpr(el, visit)
		}
		for _, f := range node.Fields {
			walkExpr(f.Value, visit)
		}
	case *ir.Lambda:
		walkExpr(node.Body, visit)
	case *ir.Application:
		walkExpr(node.Callee, visit)
		walkExpr(node.Argument, visit)
	case *ir.Case:
		for _, s := range node.Scrutinees {
			walkExpr(s, visit)
		}
		for _, alt := range node.Alternatives {
			for _, gr := range alt.Results {
				walkExpr(gr.Guard, visit)
				walkExpr(gr.Result, visit)
			}
		}
	case *ir.Let:
		for _, group := range node.Groups {
			for _, b := range group.Bindings {
				walkExpr(b.Expr, visit)
			}
		}
		walkExpr(node.Body, visit)
	case *ir.Accessor:
		walkExpr(node.Target, visit)
	case *ir.ObjectUpdate:
		walkExpr(node.Target, visit)
		for _, u := range node.Updates {
			walkExpr(u.Value, visit)
		}
	case *ir.TemporalForm:
		walkExpr(node.Operand, visit)
		walkExpr(node.Label, visit)
		walkExpr(node.Body, visit)
		walkExpr(node.Name, visit)
		walkExpr(node.Selector, visit)
		walkExpr(node.WantedStates, visit)
	}
}

// Find returns the module named name, if loaded.
func (p *Program) Find(name string) (*ir.Module, bool) {
	for _, m := range p.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
