package object

import "sync"

// internTable shares Symbol/Keyword allocations by name so that repeated
// occurrences of the same identifier in a program don't each allocate a new
// struct. Equality does not depend on this sharing (Eq compares by Name),
// it only reduces churn - the same role the teacher's case-insensitive
// ident.Map plays for its own identifiers, minus the case folding this
// language does not need.
type internTable struct {
	mu       sync.Mutex
	symbols  map[string]*Symbol
	keywords map[string]*Keyword
}

var interned = &internTable{
	symbols:  make(map[string]*Symbol),
	keywords: make(map[string]*Keyword),
}

// InternSymbol returns the canonical *Symbol for name, creating it on first
// use.
func InternSymbol(name string) *Symbol {
	interned.mu.Lock()
	defer interned.mu.Unlock()
	if s, ok := interned.symbols[name]; ok {
		return s
	}
	s := &Symbol{Name: name}
	interned.symbols[name] = s
	return s
}

// InternKeyword returns the canonical *Keyword for name, creating it on
// first use.
func InternKeyword(name string) *Keyword {
	interned.mu.Lock()
	defer interned.mu.Unlock()
	if k, ok := interned.keywords[name]; ok {
		return k
	}
	k := &Keyword{Name: name}
	interned.keywords[name] = k
	return k
}
