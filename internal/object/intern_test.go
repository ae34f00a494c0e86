package object

import "testing"

func TestInternSymbolReturnsSameInstance(t *testing.T) {
	a := InternSymbol("foo")
	b := InternSymbol("foo")
	if a != b {
		t.Error("InternSymbol should return the same pointer for the same name")
	}
	if InternSymbol("foo") == InternSymbol("bar") {
		t.Error("InternSymbol should return distinct pointers for distinct names")
	}
}

func TestInternKeywordReturnsSameInstance(t *testing.T) {
	a := InternKeyword("foo")
	b := InternKeyword("foo")
	if a != b {
		t.Error("InternKeyword should return the same pointer for the same name")
	}
}
