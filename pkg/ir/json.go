package ir

// The compiled-module wire format, loaded from an on-disk JSON artifact by
// an external loader, discriminates each Expr/Pattern node on a "node"
// field, since encoding/json cannot pick a concrete type for an
// interface-typed field on its own. Every concrete node type below gets a
// MarshalJSON that stamps its node tag, and a matching case in
// DecodeExpr/DecodePattern that reads it back.

import (
	"encoding/json"
	"fmt"
)

type discriminator struct {
	Node string `json:"node"`
}

//-----------------------------------------------------------------------------
// Expr
//-----------------------------------------------------------------------------

func DecodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d discriminator
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding expr node: %w", err)
	}
	switch d.Node {
	case "literal":
		var w struct {
			Annotation
			Kind      LiteralKind       `json:"kind"`
			BoolVal   bool              `json:"boolVal,omitempty"`
			IntVal    int64             `json:"intVal,omitempty"`
			NumberVal float64           `json:"numberVal,omitempty"`
			CharVal   rune              `json:"charVal,omitempty"`
			StringVal string            `json:"stringVal,omitempty"`
			Elements  []json.RawMessage `json:"elements,omitempty"`
			Fields    []struct {
				Key   string          `json:"key"`
				Value json.RawMessage `json:"value"`
			} `json:"fields,omitempty"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		lit := &Literal{
			nodeImpl:  nodeImpl{w.Annotation},
			Kind:      w.Kind,
			BoolVal:   w.BoolVal,
			IntVal:    w.IntVal,
			NumberVal: w.NumberVal,
			CharVal:   w.CharVal,
			StringVal: w.StringVal,
		}
		for _, e := range w.Elements {
			el, err := DecodeExpr(e)
			if err != nil {
				return nil, err
			}
			lit.Elements = append(lit.Elements, el)
		}
		for _, f := range w.Fields {
			v, err := DecodeExpr(f.Value)
			if err != nil {
				return nil, err
			}
			lit.Fields = append(lit.Fields, ObjectLitField{Key: f.Key, Value: v})
		}
		return lit, nil

	case "variable":
		var v Variable
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &v, nil

	case "lambda":
		var w struct {
			Annotation
			Param string          `json:"param"`
			Body  json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := DecodeExpr(w.Body)
		if err != nil {
			return nil, err
		}
		return &Lambda{nodeImpl: nodeImpl{w.Annotation}, Param: w.Param, Body: body}, nil

	case "application":
		var w struct {
			Annotation
			Callee   json.RawMessage `json:"callee"`
			Argument json.RawMessage `json:"argument"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		callee, err := DecodeExpr(w.Callee)
		if err != nil {
			return nil, err
		}
		arg, err := DecodeExpr(w.Argument)
		if err != nil {
			return nil, err
		}
		return &Application{nodeImpl: nodeImpl{w.Annotation}, Callee: callee, Argument: arg}, nil

	case "case":
		var w struct {
			Annotation
			Scrutinees   []json.RawMessage `json:"scrutinees"`
			Alternatives []struct {
				Binders []json.RawMessage `json:"binders"`
				Results []struct {
					Guard  json.RawMessage `json:"guard,omitempty"`
					Result json.RawMessage `json:"result"`
				} `json:"results"`
			} `json:"alternatives"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		scrutinees, err := decodeExprSlice(w.Scrutinees)
		if err != nil {
			return nil, err
		}
		alts := make([]Alternative, len(w.Alternatives))
		for i, a := range w.Alternatives {
			binders, err := decodePatternSlice(a.Binders)
			if err != nil {
				return nil, err
			}
			results := make([]GuardedResult, len(a.Results))
			for j, r := range a.Results {
				guard, err := DecodeExpr(r.Guard)
				if err != nil {
					return nil, err
				}
				result, err := DecodeExpr(r.Result)
				if err != nil {
					return nil, err
				}
				results[j] = GuardedResult{Guard: guard, Result: result}
			}
			alts[i] = Alternative{Binders: binders, Results: results}
		}
		return &Case{nodeImpl: nodeImpl{w.Annotation}, Scrutinees: scrutinees, Alternatives: alts}, nil

	case "let":
		var w struct {
			Annotation
			Groups []struct {
				Recursive bool `json:"recursive"`
				Bindings  []struct {
					Name string          `json:"name"`
					Expr json.RawMessage `json:"expr"`
				} `json:"bindings"`
			} `json:"groups"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		groups := make([]BindingGroup, len(w.Groups))
		for i, g := range w.Groups {
			bindings := make([]NamedBinding, len(g.Bindings))
			for j, b := range g.Bindings {
				e, err := DecodeExpr(b.Expr)
				if err != nil {
					return nil, err
				}
				bindings[j] = NamedBinding{Name: b.Name, Expr: e}
			}
			groups[i] = BindingGroup{Recursive: g.Recursive, Bindings: bindings}
		}
		body, err := DecodeExpr(w.Body)
		if err != nil {
			return nil, err
		}
		return &Let{nodeImpl: nodeImpl{w.Annotation}, Groups: groups, Body: body}, nil

	case "constructor":
		var c Constructor
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return &c, nil

	case "accessor":
		var w struct {
			Annotation
			Field  string          `json:"field"`
			Target json.RawMessage `json:"target"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := DecodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		return &Accessor{nodeImpl: nodeImpl{w.Annotation}, Field: w.Field, Target: target}, nil

	case "objectUpdate":
		var w struct {
			Annotation
			Target  json.RawMessage `json:"target"`
			Updates []struct {
				Field string          `json:"field"`
				Value json.RawMessage `json:"value"`
			} `json:"updates"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := DecodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		updates := make([]UpdateField, len(w.Updates))
		for i, u := range w.Updates {
			v, err := DecodeExpr(u.Value)
			if err != nil {
				return nil, err
			}
			updates[i] = UpdateField{Field: u.Field, Value: v}
		}
		return &ObjectUpdate{nodeImpl: nodeImpl{w.Annotation}, Target: target, Updates: updates}, nil

	case "temporal":
		var w struct {
			Annotation
			Kind         TemporalKind    `json:"kind"`
			Operand      json.RawMessage `json:"operand,omitempty"`
			Label        json.RawMessage `json:"label,omitempty"`
			Body         json.RawMessage `json:"body,omitempty"`
			Name         json.RawMessage `json:"name,omitempty"`
			Selector     json.RawMessage `json:"selector,omitempty"`
			WantedStates json.RawMessage `json:"wantedStates,omitempty"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		t := &TemporalForm{nodeImpl: nodeImpl{w.Annotation}, Kind: w.Kind}
		var err error
		if t.Operand, err = DecodeExpr(w.Operand); err != nil {
			return nil, err
		}
		if t.Label, err = DecodeExpr(w.Label); err != nil {
			return nil, err
		}
		if t.Body, err = DecodeExpr(w.Body); err != nil {
			return nil, err
		}
		if t.Name, err = DecodeExpr(w.Name); err != nil {
			return nil, err
		}
		if t.Selector, err = DecodeExpr(w.Selector); err != nil {
			return nil, err
		}
		if t.WantedStates, err = DecodeExpr(w.WantedStates); err != nil {
			return nil, err
		}
		return t, nil

	default:
		return nil, fmt.Errorf("unrecognised expr node %q", d.Node)
	}
}

func decodeExprSlice(raws []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, len(raws))
	for i, r := range raws {
		e, err := DecodeExpr(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

//-----------------------------------------------------------------------------
// Pattern
//-----------------------------------------------------------------------------

func DecodePattern(raw json.RawMessage) (Pattern, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var d discriminator
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding pattern node: %w", err)
	}
	switch d.Node {
	case "wildcardPattern":
		var p WildcardPattern
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil

	case "literalPattern":
		var w struct {
			Annotation
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		lit, err := DecodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		litNode, _ := lit.(*Literal)
		return &LiteralPattern{nodeImpl: nodeImpl{w.Annotation}, Value: litNode}, nil

	case "variablePattern":
		var p VariablePattern
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil

	case "namedPattern":
		var w struct {
			Annotation
			Name  string          `json:"name"`
			Inner json.RawMessage `json:"inner"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		inner, err := DecodePattern(w.Inner)
		if err != nil {
			return nil, err
		}
		return &NamedPattern{nodeImpl: nodeImpl{w.Annotation}, Name: w.Name, Inner: inner}, nil

	case "arrayPattern":
		var w struct {
			Annotation
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elems, err := decodePatternSlice(w.Elements)
		if err != nil {
			return nil, err
		}
		return &ArrayPattern{nodeImpl: nodeImpl{w.Annotation}, Elements: elems}, nil

	case "objectPattern":
		var w struct {
			Annotation
			Fields []struct {
				Key   string          `json:"key"`
				Inner json.RawMessage `json:"inner"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fields := make([]ObjectPatternField, len(w.Fields))
		for i, f := range w.Fields {
			inner, err := DecodePattern(f.Inner)
			if err != nil {
				return nil, err
			}
			fields[i] = ObjectPatternField{Key: f.Key, Inner: inner}
		}
		return &ObjectPattern{nodeImpl: nodeImpl{w.Annotation}, Fields: fields}, nil

	case "constructorPattern":
		var w struct {
			Annotation
			TypeName string            `json:"typeName"`
			CtorName string            `json:"ctorName"`
			Binders  []json.RawMessage `json:"binders"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		binders, err := decodePatternSlice(w.Binders)
		if err != nil {
			return nil, err
		}
		return &ConstructorPattern{nodeImpl: nodeImpl{w.Annotation}, TypeName: w.TypeName, CtorName: w.CtorName, Binders: binders}, nil

	case "newtypePattern":
		var w struct {
			Annotation
			TypeName string          `json:"typeName"`
			Inner    json.RawMessage `json:"inner"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		inner, err := DecodePattern(w.Inner)
		if err != nil {
			return nil, err
		}
		return &NewtypePattern{nodeImpl: nodeImpl{w.Annotation}, TypeName: w.TypeName, Inner: inner}, nil

	default:
		return nil, fmt.Errorf("unrecognised pattern node %q", d.Node)
	}
}

func decodePatternSlice(raws []json.RawMessage) ([]Pattern, error) {
	out := make([]Pattern, len(raws))
	for i, r := range raws {
		p, err := DecodePattern(r)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

//-----------------------------------------------------------------------------
// Marshalling: stamp the "node" discriminator each DecodeExpr/DecodePattern
// case above reads back.
//-----------------------------------------------------------------------------

func (l *Literal) MarshalJSON() ([]byte, error) {
	type alias Literal
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"literal", (*alias)(l)})
}

func (v *Variable) MarshalJSON() ([]byte, error) {
	type alias Variable
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"variable", (*alias)(v)})
}

func (l *Lambda) MarshalJSON() ([]byte, error) {
	type alias Lambda
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"lambda", (*alias)(l)})
}

func (a *Application) MarshalJSON() ([]byte, error) {
	type alias Application
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"application", (*alias)(a)})
}

func (c *Case) MarshalJSON() ([]byte, error) {
	type alias Case
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"case", (*alias)(c)})
}

func (l *Let) MarshalJSON() ([]byte, error) {
	type alias Let
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"let", (*alias)(l)})
}

func (c *Constructor) MarshalJSON() ([]byte, error) {
	type alias Constructor
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"constructor", (*alias)(c)})
}

func (a *Accessor) MarshalJSON() ([]byte, error) {
	type alias Accessor
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"accessor", (*alias)(a)})
}

func (u *ObjectUpdate) MarshalJSON() ([]byte, error) {
	type alias ObjectUpdate
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"objectUpdate", (*alias)(u)})
}

func (t *TemporalForm) MarshalJSON() ([]byte, error) {
	type alias TemporalForm
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"temporal", (*alias)(t)})
}

func (p *WildcardPattern) MarshalJSON() ([]byte, error) {
	type alias WildcardPattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"wildcardPattern", (*alias)(p)})
}

func (p *LiteralPattern) MarshalJSON() ([]byte, error) {
	type alias LiteralPattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"literalPattern", (*alias)(p)})
}

func (p *VariablePattern) MarshalJSON() ([]byte, error) {
	type alias VariablePattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"variablePattern", (*alias)(p)})
}

func (p *NamedPattern) MarshalJSON() ([]byte, error) {
	type alias NamedPattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"namedPattern", (*alias)(p)})
}

func (p *ArrayPattern) MarshalJSON() ([]byte, error) {
	type alias ArrayPattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"arrayPattern", (*alias)(p)})
}

func (p *ObjectPattern) MarshalJSON() ([]byte, error) {
	type alias ObjectPattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"objectPattern", (*alias)(p)})
}

func (p *ConstructorPattern) MarshalJSON() ([]byte, error) {
	type alias ConstructorPattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"constructorPattern", (*alias)(p)})
}

func (p *NewtypePattern) MarshalJSON() ([]byte, error) {
	type alias NewtypePattern
	return json.Marshal(struct {
		Node string `json:"node"`
		*alias
	}{"newtypePattern", (*alias)(p)})
}
