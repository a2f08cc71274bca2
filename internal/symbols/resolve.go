package symbols

import (
	"slices"

	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Define installs sym into scope. Functions may share a name when their
// parameter lists differ; any other same-scope name clash is a DuplicateError.
func (t *Table) Define(scope ScopeID, sym *Symbol) (SymbolID, error) {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		panic("symbols.Define: invalid scope")
	}
	for _, prev := range sc.NameIndex[sym.Name] {
		p := t.Sym(prev)
		if p.Kind == SymbolFunc && sym.Kind == SymbolFunc && !t.sameParams(p, sym) {
			continue
		}
		return NoSymbolID, &DuplicateError{
			Name:     t.Strings.MustLookup(sym.Name),
			Prev:     prev,
			PrevSpan: p.Span,
		}
	}
	sym.Scope = scope
	id := t.Symbols.New(sym)
	sc = t.Scopes.Get(scope)
	sc.Symbols = append(sc.Symbols, id)
	sc.NameIndex[sym.Name] = append(sc.NameIndex[sym.Name], id)
	return id, nil
}

func (t *Table) sameParams(a, b *Symbol) bool {
	if a.Func == nil || b.Func == nil || len(a.Func.ParamTypes) != len(b.Func.ParamTypes) {
		return false
	}
	for i, pa := range a.Func.ParamTypes {
		pb := b.Func.ParamTypes[i]
		if pa == pb {
			continue
		}
		if t.Types.Kind(pa) == types.KindPlaceholder && t.Types.Kind(pb) == types.KindPlaceholder {
			continue
		}
		return false
	}
	return true
}

// Shadowed returns the variable that a new variable name in scope would
// shadow. The search starts at the parent and stops before the global scope.
func (t *Table) Shadowed(scope ScopeID, name source.StringID) (SymbolID, bool) {
	sc := t.Scopes.Get(scope)
	for s := sc.Parent; s.IsValid() && s != t.Global; s = t.Scopes.Get(s).Parent {
		for _, id := range t.Scopes.Get(s).NameIndex[name] {
			if t.Sym(id).Kind.IsValue() && t.Sym(id).Kind != SymbolReceiver {
				return id, true
			}
		}
	}
	return NoSymbolID, false
}

// ResolveVar walks the enclosing chain and returns the first symbol named
// name. Class scopes are skipped: instance variables are reached through a
// receiver. Sibling and child scopes are never searched.
func (t *Table) ResolveVar(scope ScopeID, name source.StringID) (SymbolID, error) {
	for s := scope; s.IsValid(); s = t.Scopes.Get(s).Parent {
		sc := t.Scopes.Get(s)
		if sc.Kind == ScopeClass {
			continue
		}
		if ids := sc.NameIndex[name]; len(ids) > 0 {
			return ids[0], nil
		}
	}
	return NoSymbolID, ErrNotFound
}

// ResolveClass finds a class or builtin type name.
func (t *Table) ResolveClass(scope ScopeID, name source.StringID) (SymbolID, error) {
	id, err := t.ResolveVar(scope, name)
	if err != nil {
		return NoSymbolID, err
	}
	if k := t.Sym(id).Kind; k != SymbolClass && k != SymbolBuiltinType {
		return NoSymbolID, ErrNotFound
	}
	return id, nil
}

// ResolveMember returns every member of a class named name.
func (t *Table) ResolveMember(class SymbolID, name source.StringID) []SymbolID {
	cls := t.Sym(class)
	if cls == nil || cls.Class == nil {
		return nil
	}
	return slices.Clone(t.Scopes.Get(cls.Class.Scope).NameIndex[name])
}

// VisibleFuncs gathers every function named name on the enclosing chain.
func (t *Table) VisibleFuncs(scope ScopeID, name source.StringID) []SymbolID {
	var out []SymbolID
	for s := scope; s.IsValid(); s = t.Scopes.Get(s).Parent {
		sc := t.Scopes.Get(s)
		if sc.Kind == ScopeClass {
			continue
		}
		for _, id := range sc.NameIndex[name] {
			if t.Sym(id).Kind == SymbolFunc {
				out = append(out, id)
			}
		}
	}
	return out
}

// ResolveFunc selects the best overload of name visible from scope for the
// argument types.
func (t *Table) ResolveFunc(scope ScopeID, name source.StringID, args []types.TypeID) (SymbolID, error) {
	return t.SelectOverload(t.Strings.MustLookup(name), t.VisibleFuncs(scope, name), args)
}

// SelectOverload scores candidates and returns the unique best one. Each
// argument scores 3 on exact match, 2 when it matches a parameter type that
// contains placeholders or a dynamic array parameter with the same element
// type, 1 when the parameter is a bare placeholder. The candidate score is the
// product; one failing argument rejects it.
func (t *Table) SelectOverload(name string, candidates []SymbolID, args []types.TypeID) (SymbolID, error) {
	if len(candidates) == 0 {
		return NoSymbolID, ErrNotFound
	}
	best := 0
	var winners []SymbolID
	for _, cand := range candidates {
		score := t.Score(cand, args)
		switch {
		case score == 0:
		case score > best:
			best = score
			winners = append(winners[:0], cand)
		case score == best:
			winners = append(winners, cand)
		}
	}
	switch len(winners) {
	case 0:
		return NoSymbolID, &NoMatchError{Name: name, Candidates: candidates}
	case 1:
		return winners[0], nil
	default:
		return NoSymbolID, &AmbiguousError{Name: name, Candidates: winners}
	}
}

// Score rates how well fn admits args; 0 means not callable.
func (t *Table) Score(fn SymbolID, args []types.TypeID) int {
	sym := t.Sym(fn)
	if sym == nil || sym.Func == nil || len(sym.Func.ParamTypes) != len(args) {
		return 0
	}
	bind := map[types.TypeID]types.TypeID{}
	score := 1
	for i, param := range sym.Func.ParamTypes {
		arg := args[i]
		switch {
		case param == arg:
			score *= 3
		case t.Types.Kind(param) == types.KindPlaceholder:
			if !t.Types.Unify(param, arg, bind) {
				return 0
			}
			score *= 1
		case t.Types.Unify(param, arg, bind):
			score *= 2
		default:
			return 0
		}
	}
	return score
}
