package object

import (
	"fmt"

	"github.com/tinylisp/tinylisp/internal/ierrors"
)

// binding is a single (Symbol -> Value) entry. Kept in an ordered slice,
// not a bare map, because spec.md §3 requires "an ordered sequence of
// bindings" - the Environment-literal evaluation rule in spec.md §4.E walks
// bindings in declaration order to rebuild a copy.
type binding struct {
	Key *Symbol
	Val Value
}

// Env is the Environment value variant: an ordered chain of bindings with
// an optional parent, used both as the lexical scope the evaluator resolves
// symbols against and as a first-class Value (environment literals).
// Grounded on internal/interp/runtime/environment.go's chained Get/Set/
// Define shape.
type Env struct {
	order  []binding
	index  map[string]int // name -> position in order, for O(1) lookup
	Parent *Env
}

func (e *Env) Tag() Tag { return TagEnv }
func (e *Env) String() string {
	return fmt.Sprintf("<environment %d bindings>", len(e.order))
}

// NewEnv creates a new environment whose parent is parent (nil for a root
// environment, e.g. the global environment).
func NewEnv(parent *Env) *Env {
	return &Env{index: make(map[string]int), Parent: parent}
}

// Lookup walks the parent chain (leaf first, invariant 4 of spec.md §3) and
// returns the value bound to key, or (nil, false) if unbound anywhere in
// the chain.
func (e *Env) Lookup(key string) (Value, bool) {
	for env := e; env != nil; env = env.Parent {
		if i, ok := env.index[key]; ok {
			return env.order[i].Val, true
		}
	}
	return nil, false
}

// LookupBinding returns the (Symbol, Value) pair for key, searching the
// full parent chain, or (nil, nil, false) if unbound.
func (e *Env) LookupBinding(key string) (*Symbol, Value, bool) {
	for env := e; env != nil; env = env.Parent {
		if i, ok := env.index[key]; ok {
			b := env.order[i]
			return b.Key, b.Val, true
		}
	}
	return nil, nil, false
}

// Extend binds sym to val in this environment specifically (not the parent
// chain): prepend/append semantics per spec.md §6 - later lookups of sym in
// e find val. If sym is already bound in e, its value is replaced in place
// (order position preserved).
func (e *Env) Extend(sym *Symbol, val Value) {
	if i, ok := e.index[sym.Name]; ok {
		e.order[i].Val = val
		return
	}
	e.index[sym.Name] = len(e.order)
	e.order = append(e.order, binding{Key: sym, Val: val})
}

// Has reports whether key resolves anywhere in the chain (def?).
func (e *Env) Has(key string) bool {
	_, ok := e.Lookup(key)
	return ok
}

// ExtendWithArgs binds params positionally against args in e. If a
// parameter's name begins with "&", the remainder of args (from that
// position onward) is collected into a proper list and bound to the name
// with the "&" stripped off - the &rest-name convention of spec.md §6.
func (e *Env) ExtendWithArgs(params Value, args []Value) error {
	ps := ToSlice(params)
	pi := 0
	ai := 0
	for pi < len(ps) {
		sym, ok := ps[pi].(*Symbol)
		if !ok {
			return ierrors.New(ierrors.CategoryType, "non-symbol in parameter list: %s", ps[pi].String())
		}
		if len(sym.Name) > 0 && sym.Name[0] == '&' {
			rest := InternSymbol(sym.Name[1:])
			var tail []Value
			if ai < len(args) {
				tail = args[ai:]
			}
			e.Extend(rest, List(tail...))
			ai = len(args)
			pi++
			continue
		}
		if ai >= len(args) {
			return ierrors.New(ierrors.CategoryArity, "too few arguments: missing value for parameter %s", sym.Name)
		}
		e.Extend(sym, args[ai])
		ai++
		pi++
	}
	if ai < len(args) {
		return ierrors.New(ierrors.CategoryArity, "too many arguments: %d unconsumed", len(args)-ai)
	}
	return nil
}

// Copy returns a shallow clone of e: a new binding slice with the same
// (Symbol, Value) entries and the same parent, but independent storage -
// mutating the copy's bindings does not affect e. This is obj_copy's
// behavior for Environment values (spec.md §6, SPEC_FULL.md §11): the
// binding *list spine* is duplicated, the bound values are shared.
func (e *Env) Copy() *Env {
	c := &Env{
		order:  make([]binding, len(e.order)),
		index:  make(map[string]int, len(e.index)),
		Parent: e.Parent,
	}
	copy(c.order, e.order)
	for k, v := range e.index {
		c.index[k] = v
	}
	return c
}

// Bindings returns the ordered (Symbol, Value) pairs of this environment
// only (not the parent chain), for the Environment-literal evaluation rule.
func (e *Env) Bindings() []struct {
	Key *Symbol
	Val Value
} {
	out := make([]struct {
		Key *Symbol
		Val Value
	}, len(e.order))
	for i, b := range e.order {
		out[i] = struct {
			Key *Symbol
			Val Value
		}{Key: b.Key, Val: b.Val}
	}
	return out
}

// Owner returns the environment in the chain (starting at e) that directly
// holds a binding for key, or nil if key is unbound anywhere in the chain.
func (e *Env) Owner(key string) *Env {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.index[key]; ok {
			return env
		}
	}
	return nil
}

// SetAt replaces the value bound to key within this specific environment
// (not the parent chain). Used by `reset!`, which rebinds in place at
// whichever environment in the chain actually owns the binding. Returns
// false if key is not bound in e directly.
func (e *Env) SetAt(key string, val Value) bool {
	if i, ok := e.index[key]; ok {
		e.order[i].Val = val
		return true
	}
	return false
}
