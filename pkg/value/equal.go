package value

// Equal implements structural equality over Bool/Int/Number/Char/
// String/Array/Object. Function, Defer, and ElementState have no
// user-visible equality and always compare unequal, matching their
// "appear only transiently" status in the source language.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Val == bv.Val
	case Int:
		bv, ok := b.(Int)
		return ok && av.Val == bv.Val
	case Number:
		bv, ok := b.(Number)
		return ok && av.Val == bv.Val
	case Char:
		bv, ok := b.(Char)
		return ok && av.Val == bv.Val
	case String:
		bv, ok := b.(String)
		return ok && av.Val == bv.Val
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || len(av.keys) != len(bv.keys) {
			return false
		}
		for _, k := range av.keys {
			bval, present := bv.Get(k)
			if !present {
				return false
			}
			if !Equal(av.values[k], bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
