// Package match implements the Pattern Matcher of spec.md §4.C: structural
// unification of a template pattern against a subject value, extending a
// fresh environment with any bindings the pattern introduces.
package match

import (
	"github.com/tinylisp/tinylisp/internal/object"
)

var quoteSymbol = object.InternSymbol("quote")
var restSymbol = object.InternSymbol("&")

// Match attempts to unify pattern against subject, extending env with any
// bindings the pattern introduces. It returns whether the match succeeded.
// Priority order exactly follows spec.md §4.C.
func Match(pattern, subject object.Value, env *object.Env) bool {
	// 1. (quote X) matches only if subject is structurally equal to X.
	if cell, ok := pattern.(*object.Cons); ok {
		if sym, ok := cell.Car.(*object.Symbol); ok && sym.Name == quoteSymbol.Name {
			var quoted object.Value = object.Nil
			if rest, ok := cell.Cdr.(*object.Cons); ok {
				quoted = rest.Car
			}
			return object.Eq(quoted, subject)
		}
	}

	// 2. A bare Symbol binds unconditionally.
	if sym, ok := pattern.(*object.Symbol); ok {
		env.Extend(sym, subject)
		return true
	}

	// 3. Both Cons: list-match.
	patCell, patIsCons := pattern.(*object.Cons)
	if patIsCons {
		return listMatch(patCell, subject, env)
	}

	// 4. Otherwise, structural equality.
	return object.Eq(pattern, subject)
}

// listMatch walks the pattern and subject spines in parallel, recognizing
// the "&" rest-pattern marker.
func listMatch(pattern *object.Cons, subject object.Value, env *object.Env) bool {
	for {
		if sym, ok := pattern.Car.(*object.Symbol); ok && sym.Name == restSymbol.Name {
			restCell, ok := pattern.Cdr.(*object.Cons)
			if !ok {
				// "&" with no following pattern element: malformed pattern,
				// never matches.
				return false
			}
			return Match(restCell.Car, subject, env)
		}

		subjCell, subjIsCons := subject.(*object.Cons)
		if !subjIsCons {
			return false
		}
		if !Match(pattern.Car, subjCell.Car, env) {
			return false
		}

		switch cdr := pattern.Cdr.(type) {
		case *object.Cons:
			pattern = cdr
			subject = subjCell.Cdr
			continue
		default:
			// Pattern spine exhausted: success iff subject is too.
			return object.IsNil(pattern.Cdr) && object.IsNil(subjCell.Cdr)
		}
	}
}
