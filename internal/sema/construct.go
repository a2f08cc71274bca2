package sema

import (
	"slices"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// checkNew types `new C(args)`. Values are given positionally for every
// instance variable. Template arguments of a class template are written
// explicitly or inferred from the values.
func (tc *typeChecker) checkNew(id ast.ExprID) types.TypeID {
	n, _ := tc.builder.Exprs.New(id)
	classExpr, args := n.Class, slices.Clone(n.Args)
	sp := tc.span(id)
	argTypes, ok := tc.checkExprs(args)

	te := tc.builder.Types.Get(classExpr)
	if te == nil || te.Kind != ast.TypeNamed {
		tc.report(diag.SemaInvalidType, sp, "Only a class can be constructed with 'new'")
		return types.NoTypeID
	}
	name, explicit := te.Name, len(te.Elems) > 0
	cls, err := tc.table.ResolveClass(tc.scope, name)
	if err != nil {
		tc.report(diag.SemaUnresolvedSymbol, te.Span, "Unknown type '%s'", tc.name(name))
		return types.NoTypeID
	}
	if tc.table.Sym(cls).Kind != symbols.SymbolClass {
		tc.report(diag.SemaInvalidType, te.Span, "Only a class can be constructed with 'new' but got '%s'", tc.name(name))
		return types.NoTypeID
	}
	if !ok {
		return types.NoTypeID
	}
	tc.ensureFields(cls)
	data := tc.table.Sym(cls).Class
	tmpl, _ := tc.types.ClassInfo(data.Type)
	if len(args) != len(tmpl.Fields) {
		tc.report(diag.SemaTypeMismatch, sp, "Class '%s' has %d instance variables but %d values were given",
			tc.name(name), len(tmpl.Fields), len(args))
		return types.NoTypeID
	}

	var t types.TypeID
	switch {
	case explicit:
		if t = tc.resolveNamedType(te); t == types.NoTypeID {
			return t
		}
	case len(data.Params) == 0:
		t = data.Type
	default:
		if t = tc.inferClass(cls, args, argTypes); t == types.NoTypeID {
			return t
		}
	}
	if tc.types.ContainsPlaceholder(t) {
		tc.report(diag.SemaInvalidType, te.Span, "Cannot construct template class '%s'", tc.label(t))
		return types.NoTypeID
	}

	info, _ := tc.types.ClassInfo(t)
	for i, f := range info.Fields {
		if !tc.assignable(f.Type, argTypes[i]) {
			tc.report(diag.SemaTypeMismatch, tc.span(args[i]), "Instance variable '%s' of class '%s' expects '%s' but got '%s'",
				tc.name(f.Name), tc.label(t), tc.label(f.Type), tc.label(argTypes[i]))
			return types.NoTypeID
		}
		tc.requestCopier(argTypes[i], tc.span(args[i]))
	}
	return t
}

// inferClass deduces the template arguments of a class from the values
// given for its instance variables.
func (tc *typeChecker) inferClass(cls symbols.SymbolID, args []ast.ExprID, argTypes []types.TypeID) types.TypeID {
	data := tc.table.Sym(cls).Class
	tmpl, _ := tc.types.ClassInfo(data.Type)
	bind := make(map[types.TypeID]types.TypeID, len(data.Params))
	for i, f := range tmpl.Fields {
		if !tc.types.Unify(f.Type, argTypes[i], bind) {
			tc.report(diag.SemaTypeMismatch, tc.span(args[i]), "Instance variable '%s' of class '%s' expects '%s' but got '%s'",
				tc.name(f.Name), tc.table.Name(cls), tc.label(f.Type), tc.label(argTypes[i]))
			return types.NoTypeID
		}
	}
	targs := make([]types.TypeID, len(data.Params))
	for i, p := range data.Params {
		a, ok := bind[p]
		if !ok {
			ph, _ := tc.types.PlaceholderInfo(p)
			tc.report(diag.SemaInvalidType, tc.table.Sym(cls).Span, "Cannot infer template argument '%s' of class '%s'",
				tc.name(ph.Name), tc.table.Name(cls))
			return types.NoTypeID
		}
		targs[i] = a
	}
	return tc.classInstance(cls, targs, tc.table.Sym(cls).Span)
}
