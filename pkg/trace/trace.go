// Package trace defines the observed-state trace the temporal driver and
// query resolver run against. It carries plain JSON-shaped data, not
// evaluator Values: the lifting into the value universe happens in
// pkg/query.
package trace

// ElementStateKey names one queryable fact about a matched element, e.g.
// {Kind: "attribute", Name: "display"}. Text and Enabled carry no Name.
type ElementStateKey struct {
	Kind string
	Name string
}

// ElementRecord is everything recorded about one matched DOM element.
type ElementRecord map[ElementStateKey]any

// ObservedState maps a CSS selector to the elements it matched, in
// document order, at one point in the trace.
type ObservedState map[string][]ElementRecord

// Trace is an ordered, finite sequence of observed states.
type Trace []ObservedState

// Head returns the first state and the remaining tail. Calling Head on an
// empty Trace panics; callers must check IsEmpty first, matching the
// evaluator's own explicit empty-trace branches.
func (t Trace) Head() (ObservedState, Trace) {
	return t[0], t[1:]
}

func (t Trace) IsEmpty() bool { return len(t) == 0 }
