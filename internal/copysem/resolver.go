// Package copysem finds the user-defined copier of every type that is copied
// by value.
package copysem

import (
	"context"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/trace"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Row is one line of the copier table.
type Row struct {
	Type   types.TypeID
	Copier symbols.SymbolID
}

// Resolver memoizes copier lookups per concrete type.
type Resolver struct {
	table *symbols.Table
	inst  *mono.Instantiator
	memo  map[types.TypeID]symbols.SymbolID
	order []types.TypeID
}

func New(table *symbols.Table, inst *mono.Instantiator) *Resolver {
	return &Resolver{
		table: table,
		inst:  inst,
		memo:  make(map[types.TypeID]symbols.SymbolID),
	}
}

// Lookup reads a memoized result without resolving.
func (r *Resolver) Lookup(t types.TypeID) (symbols.SymbolID, bool) {
	id, ok := r.memo[t]
	return id, ok && id.IsValid()
}

// CopierOf returns the copier of t. Scalars and unit never have one. For
// aggregates the element and instance variable types are resolved as well,
// so every copier a deep copy of t needs is in the table afterwards. from is
// the scope of the copy site, used for the privacy check.
func (r *Resolver) CopierOf(ctx context.Context, t types.TypeID, from symbols.ScopeID) (symbols.SymbolID, bool, error) {
	in := r.table.Types
	switch in.Kind(t) {
	case types.KindInvalid, types.KindUnit, types.KindBool, types.KindChar,
		types.KindInt, types.KindUint, types.KindFloat, types.KindFunc, types.KindGenericFunc:
		return symbols.NoSymbolID, false, nil
	case types.KindPlaceholder:
		diag.Internal("copysem: copier of placeholder %s requested", types.Label(in, r.table.Strings, t))
	}
	if id, ok := r.memo[t]; ok {
		return id, id.IsValid(), nil
	}
	// Recorded before recursing so cyclic class graphs terminate.
	r.memo[t] = symbols.NoSymbolID

	var copier symbols.SymbolID
	if in.Kind(t) == types.KindClass {
		var err error
		copier, err = r.classCopier(ctx, t, from)
		if err != nil {
			delete(r.memo, t)
			return symbols.NoSymbolID, false, err
		}
		r.memo[t] = copier
		r.order = append(r.order, t)
		info, _ := in.ClassInfo(t)
		for _, f := range info.Fields {
			if _, _, err := r.CopierOf(ctx, f.Type, from); err != nil {
				return copier, copier.IsValid(), err
			}
		}
		return copier, copier.IsValid(), nil
	}

	r.order = append(r.order, t)
	for _, c := range in.Children(t) {
		if _, _, err := r.CopierOf(ctx, c, from); err != nil {
			return symbols.NoSymbolID, false, err
		}
	}
	return symbols.NoSymbolID, false, nil
}

func (r *Resolver) classCopier(ctx context.Context, t types.TypeID, from symbols.ScopeID) (symbols.SymbolID, error) {
	in := r.table.Types
	info, _ := in.ClassInfo(t)
	class := symbols.SymbolID(info.Decl)
	name := types.Label(in, r.table.Strings, t)

	var candidates []symbols.SymbolID
	for _, m := range r.table.ResolveMember(class, r.table.Strings.Intern(symbols.CopierName)) {
		if r.table.Sym(m).Kind != symbols.SymbolFunc {
			continue
		}
		if r.table.Score(m, []types.TypeID{t}) > 0 {
			candidates = append(candidates, m)
		}
	}
	switch len(candidates) {
	case 0:
		return symbols.NoSymbolID, nil
	case 1:
	default:
		return symbols.NoSymbolID, &AmbiguousCopierError{Type: name, Candidates: candidates}
	}

	copier := candidates[0]
	sym := r.table.Sym(copier)
	if !sym.Flags.Has(symbols.FlagPublic) && !r.insideClass(class, from) {
		return symbols.NoSymbolID, &PrivateCopierError{Type: name, Copier: copier}
	}
	if sym.IsTemplate() {
		if r.inst == nil {
			diag.Internal("copysem: template copier of %s without instantiator", name)
		}
		inst, err := r.inst.Instantiate(ctx, copier, []types.TypeID{t})
		if err != nil {
			return symbols.NoSymbolID, err
		}
		copier = inst
	}
	trace.Point(trace.FromContext(ctx), trace.ScopeNode, "copier", name, trace.CurrentSpan(ctx))
	return copier, nil
}

func (r *Resolver) insideClass(class symbols.SymbolID, from symbols.ScopeID) bool {
	cls := r.table.Sym(class)
	if cls == nil || cls.Class == nil || !from.IsValid() {
		return false
	}
	return r.table.Within(from, cls.Class.Scope)
}

// Table exports every type with a copier in resolution order.
func (r *Resolver) Table() []Row {
	var rows []Row
	for _, t := range r.order {
		if c := r.memo[t]; c.IsValid() {
			rows = append(rows, Row{Type: t, Copier: c})
		}
	}
	return rows
}
