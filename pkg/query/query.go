// Package query resolves a selector and a set of wanted element-states
// against an observed trace state, and lifts the recorded JSON-shaped
// facts into the evaluator's value universe.
package query

import (
	"fmt"
	"sort"

	"github.com/tjweir/quickstrom/pkg/trace"
	"github.com/tjweir/quickstrom/pkg/value"
)

// Resolve looks up selector in observed and fills one result object per
// matched element. wanted maps a result key to the ElementState selector
// it should be filled from; observed may be nil (the empty-trace case),
// in which case every selector is treated as absent.
func Resolve(selector string, wanted map[string]value.ElementState, observed trace.ObservedState) (*value.Array, error) {
	elements, ok := observed[selector]
	if !ok {
		return nil, fmt.Errorf("Selector not in observed state: %q", selector)
	}

	keys := make([]string, 0, len(wanted))
	for k := range wanted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]value.Value, len(elements))
	for i, elem := range elements {
		obj := value.EmptyObject()
		for _, key := range keys {
			es := wanted[key]
			raw, present := elem[stateKey(es)]
			if !present {
				return nil, fmt.Errorf("no recorded %s for key %q on selector %q", es.StateKind, key, selector)
			}
			lifted, err := Lift(raw)
			if err != nil {
				return nil, err
			}
			obj.Set(key, lifted)
		}
		results[i] = obj
	}
	return value.NewArray(results...), nil
}

func stateKey(es value.ElementState) trace.ElementStateKey {
	return trace.ElementStateKey{Kind: es.StateKind.String(), Name: es.Name}
}

// Lift converts one JSON-shaped recorded value into the value universe:
// null -> Object{}, bool -> Bool, string -> String, number -> Int when
// integral else Number, array -> Array, object -> Object (recursive).
func Lift(raw any) (value.Value, error) {
	switch v := raw.(type) {
	case nil:
		return value.EmptyObject(), nil
	case bool:
		return value.Bool{Val: v}, nil
	case string:
		return value.String{Val: v}, nil
	case float64:
		if v == float64(int64(v)) {
			return value.Int{Val: int64(v)}, nil
		}
		return value.Number{Val: v}, nil
	case int:
		return value.Int{Val: int64(v)}, nil
	case int64:
		return value.Int{Val: v}, nil
	case []any:
		elems := make([]value.Value, len(v))
		for i, el := range v {
			lv, err := Lift(el)
			if err != nil {
				return nil, err
			}
			elems[i] = lv
		}
		return value.NewArray(elems...), nil
	case map[string]any:
		obj := value.EmptyObject()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lv, err := Lift(v[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, lv)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("cannot lift value of type %T into the value universe", raw)
	}
}

// ExtractQueries would statically pre-compute the set of (selector,
// element-state) pairs referenced by every _queryAll form in a module, to
// brief a DOM driver ahead of running it. No caller needs the pre-fetch
// yet, so it stays a documented no-op rather than a guess at unneeded
// static-analysis behavior.
func ExtractQueries() []Query {
	return nil
}

// Query names one selector/element-state pair a module might reference.
// Populating this is the deferred half of ExtractQueries.
type Query struct {
	Selector string
	State    value.ElementState
}
