package object

import "testing"

func TestEq(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil equals nil", Nil, Nil, true},
		{"equal ints", NewInt(3), NewInt(3), true},
		{"unequal ints", NewInt(3), NewInt(4), false},
		{"equal strings by content", NewString("abc"), NewString("abc"), true},
		{"unequal strings", NewString("abc"), NewString("abd"), false},
		{"equal symbols by name", InternSymbol("foo"), InternSymbol("foo"), true},
		{"equal lists", List(NewInt(1), NewInt(2)), List(NewInt(1), NewInt(2)), true},
		{"unequal lists, different length", List(NewInt(1)), List(NewInt(1), NewInt(2)), false},
		{"different tags", NewInt(1), NewString("1"), false},
		{"identity fallback for env", NewEnv(nil), NewEnv(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eq(tt.a, tt.b); got != tt.want {
				t.Errorf("Eq(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEqIdentity(t *testing.T) {
	e := NewEnv(nil)
	if !Eq(e, e) {
		t.Error("Eq should be true for identical Env pointers")
	}
}
