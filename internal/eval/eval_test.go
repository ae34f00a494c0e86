package eval

import (
	"bytes"
	"testing"

	"github.com/tinylisp/tinylisp/internal/object"
)

func sym(name string) *object.Symbol { return object.InternSymbol(name) }
func i(n int64) *object.Int          { return object.NewInt(n) }

func newTestInterp() (*Interpreter, *object.Env) {
	interp := New()
	return interp, interp.Global
}

func TestEvalSelfEvaluatingAtoms(t *testing.T) {
	interp, env := newTestInterp()
	atoms := []object.Value{object.Nil, object.True, object.False, i(42), object.NewFloat(1.5), object.NewString("hi")}
	for _, a := range atoms {
		got, err := interp.Eval(env, a)
		if err != nil {
			t.Fatalf("Eval(%v) returned error: %v", a, err)
		}
		if got != a {
			t.Errorf("Eval(%v) = %v, want the same instance", a, got)
		}
	}
}

func TestEvalStackBalanceAfterTopLevelCall(t *testing.T) {
	interp, env := newTestInterp()
	form := object.List(sym("quote"), i(1))
	if _, err := interp.Eval(env, form); err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if interp.Stack.Len() != 0 {
		t.Errorf("Stack.Len() after Eval = %d, want 0", interp.Stack.Len())
	}
}

func TestEvalUnboundSymbolError(t *testing.T) {
	interp, env := newTestInterp()
	_, err := interp.Eval(env, sym("undefined-thing"))
	if err == nil {
		t.Fatal("expected an error for an unbound symbol")
	}
}

func TestEvalQuoteReturnsUnevaluated(t *testing.T) {
	interp, env := newTestInterp()
	inner := object.List(sym("will-not-be-looked-up"))
	got, err := interp.Eval(env, object.List(sym("quote"), inner))
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !object.Eq(got, inner) {
		t.Errorf("quote result = %v, want %v", got, inner)
	}
}

func TestEvalDoReturnsLastForm(t *testing.T) {
	interp, env := newTestInterp()
	form := object.List(sym("do"), i(1), i(2), i(3))
	got, err := interp.Eval(env, form)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got.(*object.Int).Val != 3 {
		t.Errorf("do result = %v, want 3", got)
	}
}

func TestEvalEmptyDoIsNil(t *testing.T) {
	interp, env := newTestInterp()
	got, err := interp.Eval(env, object.List(sym("do")))
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !object.IsNil(got) {
		t.Errorf("empty do = %v, want nil", got)
	}
}

func TestEvalIfBranches(t *testing.T) {
	interp, env := newTestInterp()
	truthy := object.List(sym("if"), object.True, i(1), i(2))
	got, err := interp.Eval(env, truthy)
	if err != nil || got.(*object.Int).Val != 1 {
		t.Errorf("if true -> %v, %v; want 1", got, err)
	}
	falsy := object.List(sym("if"), object.False, i(1), i(2))
	got, err = interp.Eval(env, falsy)
	if err != nil || got.(*object.Int).Val != 2 {
		t.Errorf("if false -> %v, %v; want 2", got, err)
	}
}

func TestEvalIfMissingElseIsNil(t *testing.T) {
	interp, env := newTestInterp()
	form := object.List(sym("if"), object.False, i(1))
	got, err := interp.Eval(env, form)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !object.IsNil(got) {
		t.Errorf("if with no else branch = %v, want nil", got)
	}
}

func TestEvalNot(t *testing.T) {
	interp, env := newTestInterp()
	got, err := interp.Eval(env, object.List(sym("not"), object.False))
	if err != nil || got != object.True {
		t.Errorf("(not false) = %v, %v; want true", got, err)
	}
	got, err = interp.Eval(env, object.List(sym("not")))
	if err != nil || got != object.True {
		t.Errorf("(not) = %v, %v; want true", got, err)
	}
}

func TestEvalLetSequentialBindingsAndScope(t *testing.T) {
	interp, env := newTestInterp()
	// y's binding expression references x, checking sequential visibility.
	bindings := object.List(sym("x"), i(1), sym("y"), sym("x"))
	form := object.List(sym("let"), bindings, sym("y"))
	got, err := interp.Eval(env, form)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got.(*object.Int).Val != 1 {
		t.Errorf("let result = %v, want 1 (y bound from already-visible x)", got)
	}
	if env.Has("x") {
		t.Error("let bindings must not leak into the enclosing environment")
	}
}

func TestEvalWhileLoopsUntilFalsy(t *testing.T) {
	interp, env := newTestInterp()
	interp.Global.Extend(sym("counter"), i(0))
	interp.Global.Extend(sym("inc!"), &object.Primitive{Name: "inc!", Fn: func(args []object.Value, n int) (object.Value, error) {
		cur, _ := interp.Global.Lookup("counter")
		next := object.NewInt(cur.(*object.Int).Val + 1)
		interp.Global.Extend(sym("counter"), next)
		return next, nil
	}})
	interp.Global.Extend(sym("below-three?"), &object.Primitive{Name: "below-three?", Fn: func(args []object.Value, n int) (object.Value, error) {
		cur, _ := interp.Global.Lookup("counter")
		return object.Of(cur.(*object.Int).Val < 3), nil
	}})
	form := object.List(sym("while"), object.List(sym("below-three?")), object.List(sym("inc!")))
	_, err := interp.Eval(env, form)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	final, _ := interp.Global.Lookup("counter")
	if final.(*object.Int).Val != 3 {
		t.Errorf("counter after while = %v, want 3", final)
	}
}

func TestEvalDefAndDefP(t *testing.T) {
	interp, env := newTestInterp()
	if _, err := interp.Eval(env, object.List(sym("def"), sym("x"), i(10))); err != nil {
		t.Fatalf("def returned error: %v", err)
	}
	got, err := interp.Eval(env, object.List(sym("def?"), sym("x")))
	if err != nil || got != object.True {
		t.Errorf("(def? x) = %v, %v; want true", got, err)
	}
	got, err = interp.Eval(env, object.List(sym("def?"), sym("never-defined")))
	if err != nil || got != object.False {
		t.Errorf("(def? never-defined) = %v, %v; want false", got, err)
	}
}

func TestEvalDefAlwaysBindsGlobally(t *testing.T) {
	interp, env := newTestInterp()
	child := object.NewEnv(env)
	if _, err := interp.Eval(child, object.List(sym("def"), sym("g"), i(5))); err != nil {
		t.Fatalf("def returned error: %v", err)
	}
	if !interp.Global.Has("g") {
		t.Error("def should bind in the global environment even when evaluated in a child env")
	}
}

func TestEvalResetRebindsExistingBinding(t *testing.T) {
	interp, env := newTestInterp()
	interp.Global.Extend(sym("x"), i(1))
	got, err := interp.Eval(env, object.List(sym("reset!"), sym("x"), i(2)))
	if err != nil {
		t.Fatalf("reset! returned error: %v", err)
	}
	if got.(*object.Int).Val != 2 {
		t.Errorf("reset! result = %v, want 2", got)
	}
	v, _ := interp.Global.Lookup("x")
	if v.(*object.Int).Val != 2 {
		t.Errorf("x after reset! = %v, want 2", v)
	}
}

func TestEvalResetUnboundSymbolPrintsDiagnosticAndReturnsNil(t *testing.T) {
	var buf bytes.Buffer
	interp := New(WithOutput(&buf))
	got, err := interp.Eval(interp.Global, object.List(sym("reset!"), sym("never-bound"), i(1)))
	if err != nil {
		t.Fatalf("expected no error resetting an unbound symbol, got %v", err)
	}
	if !object.IsNil(got) {
		t.Errorf("result = %v, want nil", got)
	}
	if buf.Len() == 0 {
		t.Error("expected a diagnostic to be printed")
	}
}

func TestEvalResetNonSymbolTargetPrintsDiagnosticAndReturnsNil(t *testing.T) {
	var buf bytes.Buffer
	interp := New(WithOutput(&buf))
	got, err := interp.Eval(interp.Global, object.List(sym("reset!"), i(1), i(2)))
	if err != nil {
		t.Fatalf("expected no error for the quirky non-symbol case, got %v", err)
	}
	if !object.IsNil(got) {
		t.Errorf("result = %v, want nil", got)
	}
	if buf.Len() == 0 {
		t.Error("expected a diagnostic to be printed")
	}
}

func TestEvalMatchEvaluatesFirstMatchingClause(t *testing.T) {
	interp, env := newTestInterp()
	form := object.List(sym("match"), i(2),
		object.List(sym("quote"), i(1)), object.List(sym("quote"), sym("one")),
		object.List(sym("quote"), i(2)), object.List(sym("quote"), sym("two")),
	)
	got, err := interp.Eval(env, form)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got.(*object.Symbol).Name != "two" {
		t.Errorf("match result = %v, want two", got)
	}
}

func TestEvalMatchNoClauseMatchesIsError(t *testing.T) {
	interp, env := newTestInterp()
	form := object.List(sym("match"), i(99),
		object.List(sym("quote"), i(1)), object.List(sym("quote"), sym("one")),
	)
	_, err := interp.Eval(env, form)
	if err == nil {
		t.Fatal("expected an error when no match clause matches")
	}
}

func TestEvalFnClosureCapturesLexicalScope(t *testing.T) {
	interp, env := newTestInterp()
	letForm := object.List(sym("let"),
		object.List(sym("captured"), i(100)),
		object.List(sym("fn"), object.List(sym("x")), object.List(sym("quote"), sym("captured"))),
	)
	closure, err := interp.Eval(env, letForm)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	cl, ok := closure.(*object.Closure)
	if !ok {
		t.Fatalf("expected a Closure, got %T", closure)
	}
	if _, ok := cl.Captured.Lookup("captured"); !ok {
		t.Error("closure should have captured the let-bound environment")
	}
}

func TestEvalCallOrderOfEvaluation(t *testing.T) {
	interp, env := newTestInterp()
	var order []string
	interp.Global.Extend(sym("side"), &object.Primitive{Name: "side", Fn: func(args []object.Value, n int) (object.Value, error) {
		label := args[0].(*object.String).String()
		order = append(order, label)
		return object.Nil, nil
	}})
	interp.Global.Extend(sym("ignore-args"), &object.Primitive{Name: "ignore-args", Fn: func(args []object.Value, n int) (object.Value, error) {
		return object.Nil, nil
	}})
	form := object.List(sym("ignore-args"),
		object.List(sym("side"), object.NewString("first")),
		object.List(sym("side"), object.NewString("second")),
	)
	if _, err := interp.Eval(env, form); err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("evaluation order = %v, want [first second]", order)
	}
}

func TestEvalMacroTwoPhaseExpansion(t *testing.T) {
	interp, env := newTestInterp()
	// (macro (a) (list (quote quote) a)) - a macro that just quotes its
	// single unevaluated argument form back out, verifying the expansion is
	// re-evaluated in the caller's environment rather than the macro's.
	interp.Global.Extend(sym("list"), &object.Primitive{Name: "list", Fn: func(args []object.Value, n int) (object.Value, error) {
		return object.List(args...), nil
	}})
	defMacro := object.List(sym("def"), sym("id-quote"),
		object.List(sym("macro"), object.List(sym("a")),
			object.List(sym("list"), object.List(sym("quote"), sym("quote")), sym("a")),
		),
	)
	if _, err := interp.Eval(env, defMacro); err != nil {
		t.Fatalf("defining macro failed: %v", err)
	}

	interp.Global.Extend(sym("unreachable"), i(-1))
	callForm := object.List(sym("id-quote"), sym("unreachable"))
	got, err := interp.Eval(env, callForm)
	if err != nil {
		t.Fatalf("macro call returned error: %v", err)
	}
	if sym, ok := got.(*object.Symbol); !ok || sym.Name != "unreachable" {
		t.Errorf("expansion result = %v, want the unevaluated symbol 'unreachable'", got)
	}
}

func TestEvalTextRecoversFromErrorsBetweenForms(t *testing.T) {
	var buf bytes.Buffer
	interp := New(WithOutput(&buf))
	forms := []object.Value{
		sym("never-bound-thing"),
		i(42),
	}
	r := fakeReader{forms: forms}
	err := interp.EvalText(interp.Global, r, "irrelevant, fakeReader ignores text", true)
	if err != nil {
		t.Fatalf("EvalText returned error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected an error diagnostic to be printed for the first form")
	}
}

type fakeReader struct{ forms []object.Value }

func (f fakeReader) ReadString(string) ([]object.Value, error) { return f.forms, nil }
