package object

import (
	"fmt"
	"reflect"
)

// Foreign wraps a native function bridged in from Go, standing in for the
// source's "C function pointer plus prepared call descriptor" (spec.md
// §4.D, §8 of SPEC_FULL.md). Native is the zero reflect.Value when the
// foreign value is a stub - calling it is an error, not a crash (invariant
// 5 of spec.md §3).
// A type-tag is either a bare *Symbol (int, float, string, bool, void) or a
// *Cons of the shape (ptr T) for opaque pointer arguments/returns - the
// marshalling table of spec.md §4.D needs both shapes, so type tags are
// Value, not narrowed to *Symbol as the prose summary of §3 suggests.
type Foreign struct {
	Name       string
	Native     reflect.Value // zero Value means "stub"
	ArgTypes   []Value
	ReturnType Value
}

func (f *Foreign) Tag() Tag { return TagForeign }
func (f *Foreign) String() string {
	return fmt.Sprintf("<foreign %s>", f.Name)
}

// IsStub reports whether the foreign value has no native pointer bound.
func (f *Foreign) IsStub() bool {
	return !f.Native.IsValid()
}
