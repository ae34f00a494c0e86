package eval

import (
	"fmt"

	"github.com/tinylisp/tinylisp/internal/ierrors"
	"github.com/tinylisp/tinylisp/internal/match"
	"github.com/tinylisp/tinylisp/internal/object"
)

// specialFormFn handles one reserved-symbol form. list is the whole call
// form, including the leading symbol (list.Cdr is the argument list).
type specialFormFn func(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error)

// specialForms is the dispatch table of spec.md §4.E's reserved forms. Each
// handler owns its own evaluation order - none of these go through the
// general call path's argument-stacking. It is filled in init() because the
// handlers refer back to evalForm, which reads this table.
var specialForms map[string]specialFormFn

func init() {
	specialForms = map[string]specialFormFn{
		"do":     evalDo,
		"let":    evalLet,
		"not":    evalNot,
		"quote":  evalQuote,
		"while":  evalWhile,
		"if":     evalIf,
		"match":  evalMatch,
		"reset!": evalReset,
		"fn":     evalFn,
		"macro":  evalMacro,
		"def":    evalDef,
		"def?":   evalDefP,
	}
}

// args returns list.Cdr as a slice, per spec.md's convention that a special
// form's operands are whatever follows the leading reserved symbol.
func args(list *object.Cons) []object.Value {
	return object.ToSlice(list.Cdr)
}

// evalDo evaluates each sub-form in order, discarding all but the last.
// An empty body evaluates to Nil.
func evalDo(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	forms := args(list)
	if len(forms) == 0 {
		return object.Nil, nil
	}
	var result object.Value = object.Nil
	for _, form := range forms {
		var err error
		result, err = i.evalForm(env, form)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// evalLet evaluates a flat list of alternating symbol/expression pairs
// left-to-right in a growing child environment - each binding is visible to
// the expressions that follow it - then evaluates the body in that
// environment.
func evalLet(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) < 2 {
		return nil, ierrors.New(ierrors.CategoryCall, "let requires a binding list and a body")
	}
	bindings := object.ToSlice(a[0])
	if len(bindings)%2 != 0 {
		return nil, ierrors.New(ierrors.CategoryMatch, "let binding list must alternate symbol and expression")
	}

	child := object.NewEnv(env)
	for b := 0; b < len(bindings); b += 2 {
		sym, ok := bindings[b].(*object.Symbol)
		if !ok {
			return nil, ierrors.New(ierrors.CategoryType, "let: binding name must be a symbol, got %s", bindings[b].String())
		}
		val, err := i.evalForm(child, bindings[b+1])
		if err != nil {
			return nil, err
		}
		child.Extend(sym, val)
	}

	var result object.Value = object.Nil
	for _, form := range a[1:] {
		var err error
		result, err = i.evalForm(child, form)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// evalNot evaluates its arguments left to right, short-circuiting to False
// on the first truthy result; True if every argument evaluates falsy
// (including zero arguments).
func evalNot(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	for _, form := range args(list) {
		v, err := i.evalForm(env, form)
		if err != nil {
			return nil, err
		}
		if object.Truthy(v) {
			return object.False, nil
		}
	}
	return object.True, nil
}

// evalQuote returns its single argument unevaluated. (quote) with no
// argument yields Nil.
func evalQuote(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) == 0 {
		return object.Nil, nil
	}
	return a[0], nil
}

// evalWhile repeatedly evaluates the body for as long as the condition
// evaluates truthy. The overall result is always Nil.
func evalWhile(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) == 0 {
		return nil, ierrors.New(ierrors.CategoryCall, "while requires a condition")
	}
	cond, body := a[0], a[1:]
	for {
		c, err := i.evalForm(env, cond)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(c) {
			return object.Nil, nil
		}
		for _, form := range body {
			if _, err := i.evalForm(env, form); err != nil {
				return nil, err
			}
		}
	}
}

// evalIf evaluates the condition, then the then-branch if truthy, else the
// else-branch. A missing else-branch evaluates to Nil.
func evalIf(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) < 2 {
		return nil, ierrors.New(ierrors.CategoryCall, "if requires a condition and a then-branch")
	}
	c, err := i.evalForm(env, a[0])
	if err != nil {
		return nil, err
	}
	if object.Truthy(c) {
		return i.evalForm(env, a[1])
	}
	if len(a) >= 3 {
		return i.evalForm(env, a[2])
	}
	return object.Nil, nil
}

// evalMatch evaluates the subject expression once, then tries each
// (pattern result) clause in order against it in a fresh child environment,
// evaluating and returning the first clause whose pattern matches.
func evalMatch(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) == 0 {
		return nil, ierrors.New(ierrors.CategoryCall, "match requires a subject expression")
	}
	if (len(a)-1)%2 != 0 {
		return nil, ierrors.New(ierrors.CategoryMatch, "match clauses must be (pattern result) pairs")
	}

	subject, err := i.evalForm(env, a[0])
	if err != nil {
		return nil, err
	}

	clauses := a[1:]
	for c := 0; c < len(clauses); c += 2 {
		pattern, result := clauses[c], clauses[c+1]
		clauseEnv := object.NewEnv(env)
		if match.Match(pattern, subject, clauseEnv) {
			return i.evalForm(clauseEnv, result)
		}
	}
	return nil, ierrors.New(ierrors.CategoryMatch, "no matching clause for %s", subject.String())
}

// evalReset evaluates its expression and rebinds an already-bound symbol in
// place, wherever in the environment chain it is actually bound. If the
// first operand is not a Symbol, or if the symbol has no existing binding,
// a diagnostic is printed and Nil is pushed without raising an error - the
// source's quirk (eval.c's env_lookup_binding returns its nil sentinel for
// both cases, so the same "not a (symbol . value) pair" check fires),
// preserved per SPEC_FULL.md §13.
func evalReset(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) < 2 {
		return nil, ierrors.New(ierrors.CategoryCall, "reset! requires a target and an expression")
	}
	sym, ok := a[0].(*object.Symbol)
	if !ok {
		fmt.Fprintf(i.Output, "reset!: target is not a symbol: %s\n", a[0].String())
		return object.Nil, nil
	}

	owner := env.Owner(sym.Name)
	if owner == nil {
		fmt.Fprintf(i.Output, "reset!: '%s' has no existing binding\n", sym.Name)
		return object.Nil, nil
	}

	val, err := i.evalForm(env, a[1])
	if err != nil {
		return nil, err
	}
	owner.SetAt(sym.Name, val)
	return val, nil
}

// evalFn and evalMacro both build a Closure from (params body); macro
// additionally flags the closure so the general call path performs two-phase
// expansion instead of ordinary application.
func evalFn(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	return buildClosure(env, list, false)
}

func evalMacro(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	return buildClosure(env, list, true)
}

func buildClosure(env *object.Env, list *object.Cons, isMacro bool) (object.Value, error) {
	a := args(list)
	if len(a) != 2 {
		return nil, ierrors.New(ierrors.CategoryCall, "fn/macro requires exactly a parameter list and a body")
	}
	return &object.Closure{
		Params:   a[0],
		Body:     a[1],
		Captured: env,
		Source:   list,
		IsMacro:  isMacro,
	}, nil
}

// evalDef evaluates its expression and binds the result in the global
// environment - definitions are never local to the environment def was
// evaluated in.
func evalDef(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) != 2 {
		return nil, ierrors.New(ierrors.CategoryCall, "def requires a symbol and an expression")
	}
	sym, ok := a[0].(*object.Symbol)
	if !ok {
		return nil, ierrors.New(ierrors.CategoryType, "def: target must be a symbol, got %s", a[0].String())
	}
	val, err := i.evalForm(env, a[1])
	if err != nil {
		return nil, err
	}
	i.Global.Extend(sym, val)
	return val, nil
}

// evalDefP reports whether a symbol is bound anywhere in env's chain.
func evalDefP(i *Interpreter, env *object.Env, list *object.Cons) (object.Value, error) {
	a := args(list)
	if len(a) != 1 {
		return nil, ierrors.New(ierrors.CategoryCall, "def? requires exactly one symbol")
	}
	sym, ok := a[0].(*object.Symbol)
	if !ok {
		return nil, ierrors.New(ierrors.CategoryType, "def?: target must be a symbol, got %s", a[0].String())
	}
	return object.Of(env.Has(sym.Name)), nil
}
