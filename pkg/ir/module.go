package ir

import "encoding/json"

// Binding is one top-level definition inside a Module. Module-level
// bindings are stored as an unevaluated IR expression; the evaluator
// re-evaluates them on lookup under an environment stripped of locals.
type Binding struct {
	Name string `json:"name"`
	Expr Expr   `json:"expr"`
}

// ModuleBindingGroup mirrors ir.BindingGroup at module scope: a module can
// declare its own top-level bindings as mutually recursive sets, exactly
// like a Let group, since module scope is itself just the outermost
// letrec.
type ModuleBindingGroup struct {
	Recursive bool      `json:"recursive"`
	Bindings  []Binding `json:"bindings"`
}

// Module is one compiled IR module: a name, its source span, and its
// top-level binding groups. A full Program is a set of Modules produced by
// an external compiler and loaded from disk (pkg/program), never
// constructed by parsing surface syntax in this repository.
type Module struct {
	Name   string               `json:"name"`
	Span   SourceSpan           `json:"span"`
	Groups []ModuleBindingGroup `json:"groups"`
}

// QualifiedNames returns every name this module defines, prefixed with
// "ModuleName.", i.e. the qualified form the environment keys bindings
// under.
func (m *Module) QualifiedNames() []string {
	var out []string
	for _, g := range m.Groups {
		for _, b := range g.Bindings {
			out = append(out, m.Name+"."+b.Name)
		}
	}
	return out
}

// UnmarshalJSON decodes a module, resolving each binding's Expr through
// DecodeExpr since encoding/json cannot pick a concrete Expr type for an
// interface field on its own.
func (m *Module) UnmarshalJSON(data []byte) error {
	var w struct {
		Name   string     `json:"name"`
		Span   SourceSpan `json:"span"`
		Groups []struct {
			Recursive bool `json:"recursive"`
			Bindings  []struct {
				Name string          `json:"name"`
				Expr json.RawMessage `json:"expr"`
			} `json:"bindings"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Name = w.Name
	m.Span = w.Span
	m.Groups = make([]ModuleBindingGroup, len(w.Groups))
	for i, g := range w.Groups {
		bindings := make([]Binding, len(g.Bindings))
		for j, b := range g.Bindings {
			e, err := DecodeExpr(b.Expr)
			if err != nil {
				return err
			}
			bindings[j] = Binding{Name: b.Name, Expr: e}
		}
		m.Groups[i] = ModuleBindingGroup{Recursive: g.Recursive, Bindings: bindings}
	}
	return nil
}
