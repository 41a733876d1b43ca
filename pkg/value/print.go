package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Pretty deterministically renders a Value for use in error messages.
// Object fields render in insertion order so output is reproducible
// across runs.
func Pretty(v Value) string {
	var b strings.Builder
	writePretty(&b, v)
	return b.String()
}

func writePretty(b *strings.Builder, v Value) {
	switch tv := v.(type) {
	case Bool:
		if tv.Val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Int:
		b.WriteString(strconv.FormatInt(tv.Val, 10))
	case Number:
		b.WriteString(strconv.FormatFloat(tv.Val, 'g', -1, 64))
	case Char:
		fmt.Fprintf(b, "%q", tv.Val)
	case String:
		fmt.Fprintf(b, "%q", tv.Val)
	case *Array:
		b.WriteByte('[')
		for i, el := range tv.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writePretty(b, el)
		}
		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')
		for i, k := range tv.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s: ", k)
			writePretty(b, tv.values[k])
		}
		b.WriteByte('}')
	case *Function:
		b.WriteString("<function>")
	case *Defer:
		b.WriteString("<deferred>")
	case ElementState:
		if tv.Name != "" {
			fmt.Fprintf(b, "<%s %q>", tv.StateKind, tv.Name)
		} else {
			fmt.Fprintf(b, "<%s>", tv.StateKind)
		}
	default:
		b.WriteString("<unknown>")
	}
}
