package sema

import (
	"errors"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// resolveType turns type syntax into an interned type. NoTypeID means an
// error was reported.
func (tc *typeChecker) resolveType(id ast.TypeExprID) types.TypeID {
	te := tc.builder.Types.Get(id)
	if te == nil {
		return types.NoTypeID
	}
	switch te.Kind {
	case ast.TypeNamed:
		return tc.resolveNamedType(te)
	case ast.TypeTuple:
		elems, ok := tc.resolveTypes(te.Elems)
		if !ok {
			return types.NoTypeID
		}
		return tc.types.InternTuple(elems)
	case ast.TypeFunc:
		params, ok := tc.resolveTypes(te.Elems)
		if !ok {
			return types.NoTypeID
		}
		result := tc.types.Builtins().Unit
		if te.Result.IsValid() {
			if result = tc.resolveType(te.Result); result == types.NoTypeID {
				return types.NoTypeID
			}
		}
		return tc.types.InternFunc(params, result)
	}

	elems, ok := tc.resolveTypes(te.Elems)
	if !ok {
		return types.NoTypeID
	}
	want := 1
	if te.Kind == ast.TypeDict {
		want = 2
	}
	if len(elems) != want {
		diag.Internal("sema: %d element types in type expression of kind %d", len(elems), te.Kind)
	}
	switch te.Kind {
	case ast.TypeArray:
		return tc.types.Intern(types.MakeArray(elems[0], te.Count))
	case ast.TypePointer:
		return tc.types.Intern(types.MakePointer(elems[0]))
	case ast.TypeDict:
		return tc.types.Intern(types.MakeDict(elems[0], elems[1]))
	case ast.TypeRange:
		return tc.types.Intern(types.MakeRange(elems[0]))
	case ast.TypeMaybe:
		return tc.types.Intern(types.MakeMaybe(elems[0]))
	}
	return types.NoTypeID
}

func (tc *typeChecker) resolveTypes(ids []ast.TypeExprID) ([]types.TypeID, bool) {
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = tc.resolveType(id)
		if out[i] == types.NoTypeID {
			return nil, false
		}
	}
	return out, true
}

// resolveNamedType handles scalar names, classes and class templates. A
// class template named without arguments denotes the template itself, so a
// parameter typed with it makes the function a template.
func (tc *typeChecker) resolveNamedType(te *ast.TypeExpr) types.TypeID {
	sp, name, argExprs := te.Span, te.Name, te.Elems
	id, err := tc.table.ResolveClass(tc.scope, name)
	if err != nil {
		tc.report(diag.SemaUnresolvedSymbol, sp, "Unknown type '%s'", tc.name(name))
		return types.NoTypeID
	}
	sym := tc.table.Sym(id)
	if sym.Kind == symbols.SymbolBuiltinType {
		if len(argExprs) > 0 {
			tc.report(diag.SemaInvalidType, sp, "Type '%s' takes no type arguments", tc.name(name))
			return types.NoTypeID
		}
		return sym.Type
	}

	data := sym.Class
	if len(argExprs) == 0 {
		return data.Type
	}
	if len(argExprs) != len(data.Params) {
		tc.report(diag.SemaInvalidType, sp, "Class '%s' expects %d type arguments but got %d",
			tc.name(name), len(data.Params), len(argExprs))
		return types.NoTypeID
	}
	args, ok := tc.resolveTypes(argExprs)
	if !ok {
		return types.NoTypeID
	}
	tc.ensureFields(id)
	for _, a := range args {
		if tc.types.ContainsPlaceholder(a) {
			return tc.inst.ClassType(id, args)
		}
	}
	return tc.classInstance(id, args, sp)
}

// classInstance instantiates a class template for concrete arguments.
func (tc *typeChecker) classInstance(class symbols.SymbolID, args []types.TypeID, sp source.Span) types.TypeID {
	t, err := tc.inst.InstantiateClass(class, args)
	if err != nil {
		var esc *mono.EscapeError
		if errors.As(err, &esc) {
			tc.report(diag.SemaPlaceholderEscape, sp, "%s", esc.Error())
		} else {
			tc.report(diag.SemaInvalidType, sp, "%s", err.Error())
		}
		return types.NoTypeID
	}
	return t
}
