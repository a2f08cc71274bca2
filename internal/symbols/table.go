package symbols

import (
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes, Symbols uint32 }

// Table is the scope tree of one session: scopes, symbols and the builtin
// prelude installed in the global scope.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	Strings  *source.Interner
	Types    *types.Interner
	Global   ScopeID
	Builtins Builtins
}

func NewTable(h Hints, strs *source.Interner, typesIn *types.Interner) *Table {
	if strs == nil {
		strs = source.NewInterner()
	}
	if typesIn == nil {
		typesIn = types.NewInterner()
	}
	t := &Table{
		Scopes:  NewScopes(h.Scopes),
		Symbols: NewSymbols(h.Symbols),
		Strings: strs,
		Types:   typesIn,
	}
	t.Global = t.Scopes.New(ScopeGlobal, NoScopeID, NoSymbolID, source.NoSpan)
	t.installPrelude()
	return t
}

// Sym is a shortcut for Symbols.Get.
func (t *Table) Sym(id SymbolID) *Symbol {
	return t.Symbols.Get(id)
}

// Name returns the text of a symbol name.
func (t *Table) Name(id SymbolID) string {
	sym := t.Sym(id)
	if sym == nil {
		return "<invalid>"
	}
	return t.Strings.MustLookup(sym.Name)
}

// NewScope creates a child scope of parent.
func (t *Table) NewScope(kind ScopeKind, parent ScopeID, owner SymbolID, span source.Span) ScopeID {
	return t.Scopes.New(kind, parent, owner, span)
}

// NewFunctionScope creates a function scope with its body scope.
func (t *Table) NewFunctionScope(parent ScopeID, owner SymbolID, span source.Span) ScopeID {
	fn := t.Scopes.New(ScopeFunction, parent, owner, span)
	body := t.Scopes.New(ScopeLocal, fn, owner, span)
	t.Scopes.Get(fn).Body = body
	return fn
}

// Within reports whether scope is inner or a descendant of inner via the
// parent chain.
func (t *Table) Within(scope, ancestor ScopeID) bool {
	for s := scope; s.IsValid(); s = t.Scopes.Get(s).Parent {
		if s == ancestor {
			return true
		}
	}
	return false
}

// EnclosingFunction returns the nearest function scope at or above scope.
func (t *Table) EnclosingFunction(scope ScopeID) ScopeID {
	for s := scope; s.IsValid(); s = t.Scopes.Get(s).Parent {
		if t.Scopes.Get(s).Kind == ScopeFunction {
			return s
		}
	}
	return NoScopeID
}

// EnclosingClass returns the class symbol whose scope contains scope.
func (t *Table) EnclosingClass(scope ScopeID) SymbolID {
	for s := scope; s.IsValid(); s = t.Scopes.Get(s).Parent {
		sc := t.Scopes.Get(s)
		if sc.Kind == ScopeClass {
			return sc.Owner
		}
	}
	return NoSymbolID
}
