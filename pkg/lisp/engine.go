// Package lisp is the public embedding API: construct an Engine, evaluate
// source text against it, register Go functions as callables, and read back
// results. Grounded on pkg/dwscript's New/Option/Eval/RegisterForeign
// shape (github.com/cwbudde/go-dws/pkg/dwscript), reconstructed from that
// package's test suite since its own source files were not present in the
// retrieved reference pack - see DESIGN.md.
package lisp

import (
	"bytes"
	"io"

	"github.com/tinylisp/tinylisp/internal/eval"
	"github.com/tinylisp/tinylisp/internal/ffi"
	"github.com/tinylisp/tinylisp/internal/object"
	"github.com/tinylisp/tinylisp/internal/reader"
)

// Engine is a single, independent interpreter instance with its own global
// environment. It is not safe for concurrent use (spec.md §5).
type Engine struct {
	interp *eval.Interpreter
	reader *reader.Reader
	output *bytes.Buffer
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithOutput directs built-in output to w instead of the Engine's internal
// buffer. When set, Result.Output is always empty; read from w directly.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		eval.WithOutput(w)(e.interp)
		e.output = nil
	}
}

// WithStackDepth overrides the value stack's capacity.
func WithStackDepth(n int) Option {
	return func(e *Engine) { eval.WithStackDepth(n)(e.interp) }
}

// WithTraceDepth overrides the call trace's maximum depth.
func WithTraceDepth(n int) Option {
	return func(e *Engine) { eval.WithTraceDepth(n)(e.interp) }
}

// New constructs an Engine with a fresh global environment and internal
// output buffer.
func New(opts ...Option) (*Engine, error) {
	buf := &bytes.Buffer{}
	e := &Engine{
		interp: eval.New(eval.WithOutput(buf)),
		reader: reader.New(),
		output: buf,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Result is the outcome of a single Eval call.
type Result struct {
	Value   object.Value
	Success bool
	Output  string
}

// Eval reads src as a sequence of forms, evaluates each in the Engine's
// global environment, and returns the last form's result.
func (e *Engine) Eval(src string) (*Result, error) {
	forms, err := e.reader.ReadString(src)
	if err != nil {
		return &Result{Success: false}, err
	}

	var result object.Value = object.Nil
	for _, form := range forms {
		var evalErr error
		result, evalErr = e.interp.Eval(e.interp.Global, form)
		if evalErr != nil {
			return &Result{Success: false, Output: e.drainOutput()}, evalErr
		}
	}
	return &Result{Value: result, Success: true, Output: e.drainOutput()}, nil
}

// EvalText reads text as a sequence of forms and evaluates each in turn via
// the driver's own error-recovery loop (internal/eval.Interpreter.EvalText):
// a failing form prints its diagnostic to the Engine's output and
// evaluation continues with the next form, rather than aborting the whole
// batch. Intended for REPL-style interactive use.
func (e *Engine) EvalText(text string, printResults bool) error {
	return e.interp.EvalText(e.interp.Global, e.reader, text, printResults)
}

func (e *Engine) drainOutput() string {
	if e.output == nil {
		return ""
	}
	s := e.output.String()
	e.output.Reset()
	return s
}

// SetOutput redirects built-in output to w.
func (e *Engine) SetOutput(w io.Writer) {
	e.interp.Output = w
	e.output = nil
}

// Define binds name to v in the global environment, for host values the
// embedder wants visible to scripts without going through a function call.
func (e *Engine) Define(name string, v object.Value) {
	e.interp.Global.Extend(object.InternSymbol(name), v)
}

// RegisterForeign binds a Go function as a callable global, bridged
// through the foreign-function interface (internal/ffi). argTypes and
// returnType are textual type tags (see ffi.ParseTypeTag): "int", "float",
// "string", "bool", "void", or "(ptr tag)".
func (e *Engine) RegisterForeign(name string, fn any, argTypes []string, returnType string) error {
	tags := make([]object.Value, len(argTypes))
	for i, t := range argTypes {
		tags[i] = ffi.ParseTypeTag(t)
	}
	foreign, err := ffi.Bind(name, fn, tags, ffi.ParseTypeTag(returnType))
	if err != nil {
		return err
	}
	e.Define(name, foreign)
	return nil
}

// LastError returns the error latched by the most recent form evaluation if
// that evaluation failed, or nil. Each new evaluation clears it, and EvalText
// clears it after reporting a failing form.
func (e *Engine) LastError() error {
	if ie := e.interp.LastError(); ie != nil {
		return ie
	}
	return nil
}
