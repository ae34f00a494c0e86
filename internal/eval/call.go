package eval

import (
	"github.com/tinylisp/tinylisp/internal/object"
)

// evalCall evaluates a general (non-special-form) call: the head is
// evaluated to produce a callable, then either the arguments are evaluated
// and applied (ordinary closures, primitives, foreign functions, keyword
// lookups), or, for a macro, the raw unevaluated argument forms are bound
// and the macro body is evaluated to produce an expansion form, which is
// then evaluated again in the caller's environment (spec.md §4.D's
// two-phase macro expansion).
func (i *Interpreter) evalCall(env *object.Env, list *object.Cons) (object.Value, error) {
	callable, err := i.evalForm(env, list.Car)
	if err != nil {
		return nil, err
	}

	argForms := object.ToSlice(list.Cdr)

	if closure, ok := callable.(*object.Closure); ok && closure.IsMacro {
		child := object.NewEnv(closure.Captured)
		if err := child.ExtendWithArgs(closure.Params, argForms); err != nil {
			return nil, err
		}
		expansion, err := i.evalForm(child, closure.Body)
		if err != nil {
			return nil, err
		}
		return i.evalForm(env, expansion)
	}

	for _, form := range argForms {
		v, err := i.evalForm(env, form)
		if err != nil {
			return nil, err
		}
		i.Stack.Push(v)
	}
	arguments := i.Stack.PopN(len(argForms))

	i.Trace.Push(list.String(), i.Stack.String())
	result, err := Apply(i, callable, arguments)
	if err != nil {
		// Leave the frame on the trace: the top-level driver renders it as
		// part of the error diagnostic.
		return nil, err
	}
	i.Trace.Pop()
	return result, nil
}
