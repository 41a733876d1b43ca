package program

import (
	"encoding/json"
	"fmt"

	"github.com/tjweir/quickstrom/pkg/trace"
)

// wireElement is the on-disk shape of one matched element's recorded
// facts: one JSON object per ElementStateKind actually observed.
type wireElement struct {
	Property  map[string]any `json:"property,omitempty"`
	Attribute map[string]any `json:"attribute,omitempty"`
	CSSValue  map[string]any `json:"cssValue,omitempty"`
	Text      *string        `json:"text,omitempty"`
	Enabled   *bool          `json:"enabled,omitempty"`
}

func (w wireElement) toRecord() trace.ElementRecord {
	rec := trace.ElementRecord{}
	for name, v := range w.Property {
		rec[trace.ElementStateKey{Kind: "property", Name: name}] = v
	}
	for name, v := range w.Attribute {
		rec[trace.ElementStateKey{Kind: "attribute", Name: name}] = v
	}
	for name, v := range w.CSSValue {
		rec[trace.ElementStateKey{Kind: "cssValue", Name: name}] = v
	}
	if w.Text != nil {
		rec[trace.ElementStateKey{Kind: "text"}] = *w.Text
	}
	if w.Enabled != nil {
		rec[trace.ElementStateKey{Kind: "enabled"}] = *w.Enabled
	}
	return rec
}

// wireState maps a selector to its matched elements, in document order.
type wireState map[string][]wireElement

// LoadTraceJSON decodes an observed-state trace fixture: a JSON array of
// selector-to-elements maps, one per trace index.
func LoadTraceJSON(data []byte) (trace.Trace, error) {
	var wire []wireState
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding trace fixture: %w", err)
	}
	out := make(trace.Trace, len(wire))
	for i, state := range wire {
		observed := trace.ObservedState{}
		for selector, elements := range state {
			records := make([]trace.ElementRecord, len(elements))
			for j, el := range elements {
				records[j] = el.toRecord()
			}
			observed[selector] = records
		}
		out[i] = observed
	}
	return out, nil
}
