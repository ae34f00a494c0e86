// Package eval implements the Evaluator and Applicator of spec.md §4.D-§4.E:
// recursive dispatch over value tags, special forms, and general call
// application, driving the Value Stack, Call Trace, and Pattern Matcher
// components. Grounded on internal/interp.Interpreter's single mutable
// struct (env/output/callstack/exception) from the teacher repository.
package eval

import (
	"fmt"
	"io"

	"github.com/tinylisp/tinylisp/internal/calltrace"
	"github.com/tinylisp/tinylisp/internal/ierrors"
	"github.com/tinylisp/tinylisp/internal/object"
	"github.com/tinylisp/tinylisp/internal/vstack"
)

// Interpreter owns the whole of the evaluator's mutable state: the global
// environment, the value stack, the call trace, and the output stream
// built-ins print to. It is single-threaded and non-reentrant with respect
// to a given instance (spec.md §5) - embedding multiple isolated
// interpreters means constructing multiple *Interpreter values.
type Interpreter struct {
	Global *object.Env
	Stack  *vstack.Stack
	Trace  *calltrace.Trace
	Output io.Writer

	lastErr ierrors.LatchedError
	gcHook  func()
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithOutput sets the writer built-ins like print use.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) { i.Output = w }
}

// WithStackDepth overrides the value stack's capacity.
func WithStackDepth(n int) Option {
	return func(i *Interpreter) { i.Stack = vstack.New(n) }
}

// WithTraceDepth overrides the call trace's max depth.
func WithTraceDepth(n int) Option {
	return func(i *Interpreter) { i.Trace = calltrace.New(n) }
}

// WithGCHook installs a callback invoked between top-level forms in
// EvalText, standing in for the external collector's collection pass
// (spec.md §5 GC integration). Defaults to a no-op - Go's own GC already
// reclaims everything this interpreter allocates.
func WithGCHook(fn func()) Option {
	return func(i *Interpreter) { i.gcHook = fn }
}

// New creates an Interpreter with a fresh global environment.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		Global: object.NewEnv(nil),
		Stack:  vstack.New(vstack.DefaultCapacity),
		Trace:  calltrace.New(calltrace.DefaultMaxDepth),
		Output: io.Discard,
		gcHook: func() {},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// LastError returns the most recently latched error, or nil if the last
// Eval call succeeded. EvalText clears the latched error after reporting
// each failing form, so it is nil after EvalText returns. Mirrors spec.md
// §7's latched-error cell for external inspection; Eval itself returns the
// error directly.
func (i *Interpreter) LastError() *ierrors.InterpreterError {
	return i.lastErr.Get()
}

// Eval is the top-level driver entry point of spec.md §6: resets the
// latched error, stack pointer, and trace pointer, evaluates form in env,
// and returns the single result. On error, the stack is left empty, the
// trace keeps the frames of the calls that were in progress when the error
// occurred (for the caller's diagnostic), and the error is both returned and
// latched for LastError.
func (i *Interpreter) Eval(env *object.Env, form object.Value) (object.Value, error) {
	i.Stack.Reset()
	i.Trace.Reset()
	i.lastErr.Clear()

	result, err := i.evalForm(env, form)
	if err != nil {
		ie := asInterpreterError(err)
		i.lastErr.Set(ie)
		i.Stack.Reset()
		return object.Nil, err
	}
	i.Stack.Push(result)
	return i.Stack.Pop(), nil
}

// EvalText reads a sequence of forms from text via r, evaluates each in
// turn, optionally printing each result on its own line, and on error
// prints the message plus the full call trace to i.Output, clears state,
// invokes the GC hook, and continues - spec.md §6's eval_text contract.
func (i *Interpreter) EvalText(env *object.Env, r Reader, text string, printResults bool) error {
	forms, err := r.ReadString(text)
	if err != nil {
		return err
	}
	for _, form := range forms {
		result, evalErr := i.Eval(env, form)
		if evalErr != nil {
			fmt.Fprintln(i.Output, "\x1b[31m"+i.Trace.FormatError(evalErr.Error())+"\x1b[0m")
			i.lastErr.Clear()
			i.gcHook()
			continue
		}
		if printResults {
			fmt.Fprintln(i.Output, result.String())
		}
		i.gcHook()
	}
	return nil
}

// Reader is the external reader collaborator consumed by EvalText, per
// spec.md §6 (read_string(env, text) -> list-of-forms). The source's env
// parameter is dropped: this module's reader does no env-dependent reading
// (e.g. reader macros keyed on bindings), so ReadString takes only the text.
type Reader interface {
	ReadString(text string) ([]object.Value, error)
}

func asInterpreterError(err error) *ierrors.InterpreterError {
	if ie, ok := err.(*ierrors.InterpreterError); ok {
		return ie
	}
	return ierrors.New(ierrors.CategoryInternal, "%s", err.Error())
}

// evalForm is the recursive dispatch of spec.md §4.E over an input's Tag.
func (i *Interpreter) evalForm(env *object.Env, form object.Value) (object.Value, error) {
	switch v := form.(type) {
	case *object.NilType, *object.Bool, *object.Int, *object.Float,
		*object.String, *object.Keyword, *object.Ptr:
		// Self-evaluating atoms.
		return form, nil

	case *object.Symbol:
		val, ok := env.Lookup(v.Name)
		if !ok {
			return nil, ierrors.New(ierrors.CategoryUnbound, "Can't find '%s' in environment.", v.Name)
		}
		return val, nil

	case *object.Env:
		return i.evalEnvLiteral(env, v)

	case *object.Cons:
		return i.evalList(env, v)

	default:
		return nil, ierrors.New(ierrors.CategoryInternal, "unknown value tag for %s", form.String())
	}
}

// evalEnvLiteral implements the Environment-as-Value evaluation rule of
// spec.md §4.E: copy the environment, and for each binding, evaluate its
// (unevaluated) value in the enclosing environment, replacing the binding's
// value in the copy.
func (i *Interpreter) evalEnvLiteral(enclosing *object.Env, lit *object.Env) (object.Value, error) {
	out := lit.Copy()
	for _, b := range lit.Bindings() {
		val, err := i.evalForm(enclosing, b.Val)
		if err != nil {
			return nil, err
		}
		out.Extend(b.Key, val)
	}
	return out, nil
}

// evalList dispatches a Cons form: the empty list self-evaluates, a
// reserved-symbol head invokes a special form, and anything else is a
// general call.
func (i *Interpreter) evalList(env *object.Env, list *object.Cons) (object.Value, error) {
	// spec.md §4.E's "if the list is empty, push the original list" case is
	// handled by evalForm's Nil self-evaluation branch: the empty list
	// *is* object.Nil, never a *object.Cons (invariant 2 of spec.md §3
	// guarantees a Cons's car is never absent).
	if sym, ok := list.Car.(*object.Symbol); ok {
		if handler, ok := specialForms[sym.Name]; ok {
			return handler(i, env, list)
		}
	}

	return i.evalCall(env, list)
}
