package eval

import (
	"testing"

	"github.com/tinylisp/tinylisp/internal/object"
)

func TestApplyClosure(t *testing.T) {
	interp, env := newTestInterp()
	closure := &object.Closure{
		Params:   object.List(sym("a"), sym("b")),
		Body:     sym("a"),
		Captured: env,
	}
	result, err := Apply(interp, closure, []object.Value{i(1), i(2)})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if result.(*object.Int).Val != 1 {
		t.Errorf("result = %v, want 1", result)
	}
}

func TestApplyMacroIsRejected(t *testing.T) {
	interp, env := newTestInterp()
	macro := &object.Closure{Params: object.Nil, Body: object.Nil, Captured: env, IsMacro: true}
	if _, err := Apply(interp, macro, nil); err == nil {
		t.Error("Apply should reject macros - they go through two-phase expansion in evalCall instead")
	}
}

func TestApplyPrimitive(t *testing.T) {
	interp, _ := newTestInterp()
	prim := &object.Primitive{Name: "add1", Fn: func(args []object.Value, n int) (object.Value, error) {
		return object.NewInt(args[0].(*object.Int).Val + 1), nil
	}}
	result, err := Apply(interp, prim, []object.Value{i(41)})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if result.(*object.Int).Val != 42 {
		t.Errorf("result = %v, want 42", result)
	}
}

func TestApplyKeywordLookup(t *testing.T) {
	interp, _ := newTestInterp()
	env := object.NewEnv(nil)
	env.Extend(sym("name"), object.NewString("ok"))
	kw := object.InternKeyword("name")
	result, err := Apply(interp, kw, []object.Value{env})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if result.(*object.String).String() != "ok" {
		t.Errorf("result = %v, want ok", result)
	}
}

func TestApplyKeywordLookupMissingIsError(t *testing.T) {
	interp, _ := newTestInterp()
	env := object.NewEnv(nil)
	kw := object.InternKeyword("missing")
	if _, err := Apply(interp, kw, []object.Value{env}); err == nil {
		t.Error("expected an error looking up a keyword absent from the environment")
	}
}

func TestApplyNonCallableIsError(t *testing.T) {
	interp, _ := newTestInterp()
	if _, err := Apply(interp, i(5), nil); err == nil {
		t.Error("expected an error calling a non-callable value")
	}
}
