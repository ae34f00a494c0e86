package eval

import (
	"github.com/tinylisp/tinylisp/internal/ffi"
	"github.com/tinylisp/tinylisp/internal/ierrors"
	"github.com/tinylisp/tinylisp/internal/object"
)

// Apply implements the Applicator of spec.md §4.D: given an already-evaluated
// callable and an already-evaluated argument list, dispatch on the
// callable's concrete type and produce a result.
func Apply(i *Interpreter, callable object.Value, arguments []object.Value) (object.Value, error) {
	switch fn := callable.(type) {
	case *object.Closure:
		if fn.IsMacro {
			return nil, ierrors.New(ierrors.CategoryCall, "can't apply a macro as a function")
		}
		child := object.NewEnv(fn.Captured)
		if err := child.ExtendWithArgs(fn.Params, arguments); err != nil {
			return nil, err
		}
		return i.evalForm(child, fn.Body)

	case *object.Primitive:
		return fn.Fn(arguments, len(arguments))

	case *object.Foreign:
		return ffi.Call(fn, arguments)

	case *object.Keyword:
		if len(arguments) != 1 {
			return nil, ierrors.New(ierrors.CategoryArity, "keyword lookup takes exactly one argument")
		}
		env, ok := arguments[0].(*object.Env)
		if !ok {
			return nil, ierrors.New(ierrors.CategoryType, "keyword lookup requires an environment argument, got %s", arguments[0].String())
		}
		val, found := env.Lookup(fn.Name)
		if !found {
			return nil, ierrors.New(ierrors.CategoryKeyword, "Failed to lookup keyword '%s' in environment.", fn.Name)
		}
		return val, nil

	default:
		return nil, ierrors.WithValue(ierrors.CategoryCall, "Can't call non-function", callable)
	}
}
