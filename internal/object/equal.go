package object

// Eq implements the deep structural equality relation of spec.md §4.E:
// same variant with equal payloads; Cons compares car and cdr recursively.
// The Nil/True/False singletons trivially compare equal to themselves by
// this same structural walk, since there is exactly one instance of each.
func Eq(a, b Value) bool {
	if a == b {
		return true
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch x := a.(type) {
	case *NilType:
		return true
	case *Bool:
		return x.Val == b.(*Bool).Val
	case *Int:
		return x.Val == b.(*Int).Val
	case *Float:
		return x.Val == b.(*Float).Val
	case *String:
		y := b.(*String)
		return string(x.Buf) == string(y.Buf)
	case *Symbol:
		return x.Name == b.(*Symbol).Name
	case *Keyword:
		return x.Name == b.(*Keyword).Name
	case *Cons:
		y := b.(*Cons)
		return Eq(x.Car, y.Car) && Eq(x.Cdr, y.Cdr)
	case *Ptr:
		return x.Val == b.(*Ptr).Val
	default:
		// Env, Closure, Primitive, Foreign have no value-equality contract
		// in spec.md; fall back to identity, already checked above.
		return false
	}
}
