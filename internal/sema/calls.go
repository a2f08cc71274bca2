package sema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// checkCall types f(args), recv.f(args) and calls of callable values.
func (tc *typeChecker) checkCall(id ast.ExprID) types.TypeID {
	c, _ := tc.builder.Exprs.Call(id)
	callee := c.Callee
	args := slices.Clone(c.Args)
	argTypes, ok := tc.checkExprs(args)
	sp := tc.span(id)

	x := tc.builder.Exprs.Get(callee)
	switch x.Kind {
	case ast.ExprIdent:
		ident, _ := tc.builder.Exprs.Ident(callee)
		name := ident.Name
		symID, err := tc.table.ResolveVar(tc.scope, name)
		if err != nil {
			tc.report(diag.SemaUnresolvedSymbol, tc.span(callee), "Function '%s' is not found", tc.name(name))
			return types.NoTypeID
		}
		if !ok {
			return types.NoTypeID
		}
		if tc.table.Sym(symID).Kind == symbols.SymbolFunc {
			return tc.callFuncs(id, callee, name, tc.table.VisibleFuncs(tc.scope, name), args, argTypes, sp)
		}
		ct := tc.checkExpr(callee)
		if ct == types.NoTypeID {
			return ct
		}
		return tc.callValue(id, ct, args, argTypes, sp)

	case ast.ExprMember:
		m, _ := tc.builder.Exprs.Member(callee)
		recv, name, nameSpan := m.Recv, m.Name, m.NameSpan
		rt := tc.checkExpr(recv)
		if rt == types.NoTypeID || !ok {
			return types.NoTypeID
		}
		ft, isField, bad := tc.fieldOf(rt, name, nameSpan)
		if bad {
			return types.NoTypeID
		}
		if isField {
			tc.setType(callee, ft)
			return tc.callValue(id, ft, args, argTypes, sp)
		}
		all := append([]types.TypeID{rt}, argTypes...)
		allExprs := append([]ast.ExprID{recv}, args...)
		t, found := tc.ufcs(id, callee, name, nameSpan, allExprs, all)
		if !found {
			tc.report(diag.SemaUnknownMember, nameSpan, "Unknown member function '%s' for type '%s'", tc.name(name), tc.label(rt))
			return types.NoTypeID
		}
		return t
	}

	ct := tc.checkExpr(callee)
	if ct == types.NoTypeID || !ok {
		return types.NoTypeID
	}
	return tc.callValue(id, ct, args, argTypes, sp)
}

// ufcs resolves recv.f(args) as a member function of the receiver's class
// first and as a free function f(recv, args) second. found is false when no
// function of that name exists at all.
func (tc *typeChecker) ufcs(call, callee ast.ExprID, name source.StringID, sp source.Span, args []ast.ExprID, argTypes []types.TypeID) (types.TypeID, bool) {
	free := tc.table.VisibleFuncs(tc.scope, name)
	if info, ok := tc.types.ClassInfo(argTypes[0]); ok {
		class := symbols.SymbolID(info.Decl)
		var members []symbols.SymbolID
		for _, m := range tc.table.ResolveMember(class, name) {
			if tc.table.Sym(m).Kind == symbols.SymbolFunc {
				members = append(members, m)
			}
		}
		if len(members) > 0 {
			fn, err := tc.table.SelectOverload(tc.name(name), members, argTypes)
			if err == nil {
				if sym := tc.table.Sym(fn); !sym.Flags.Has(symbols.FlagPublic) && !tc.insideClass(class) {
					tc.report(diag.SemaPrivateMember, sp, "Member function '%s' of class '%s' is private",
						tc.name(name), tc.label(argTypes[0]))
					return types.NoTypeID, true
				}
				return tc.finishCall(call, callee, fn, args, argTypes, sp), true
			}
			var noMatch *symbols.NoMatchError
			if !errors.As(err, &noMatch) || len(free) == 0 {
				tc.overloadError(err, sp, name, argTypes)
				return types.NoTypeID, true
			}
		}
	}
	if len(free) == 0 {
		return types.NoTypeID, false
	}
	return tc.callFuncs(call, callee, name, free, args, argTypes, sp), true
}

func (tc *typeChecker) callFuncs(call, callee ast.ExprID, name source.StringID, cands []symbols.SymbolID, args []ast.ExprID, argTypes []types.TypeID, sp source.Span) types.TypeID {
	fn, err := tc.table.SelectOverload(tc.name(name), cands, argTypes)
	if err != nil {
		tc.overloadError(err, sp, name, argTypes)
		return types.NoTypeID
	}
	return tc.finishCall(call, callee, fn, args, argTypes, sp)
}

// finishCall instantiates a selected template, fetches the result type and
// triggers copier resolution for aggregate arguments and the result.
func (tc *typeChecker) finishCall(call, callee ast.ExprID, fn symbols.SymbolID, args []ast.ExprID, argTypes []types.TypeID, sp source.Span) types.TypeID {
	sym := tc.table.Sym(fn)
	if sym.IsBuiltin() && sym.IsTemplate() {
		return tc.callBuiltin(call, callee, fn, argTypes, sp)
	}
	if sym.IsTemplate() {
		inst := tc.instantiate(fn, argTypes, sp)
		if !inst.IsValid() {
			return types.NoTypeID
		}
		fn = inst
	}
	result := tc.resultOf(fn, sp)
	if result == types.NoTypeID {
		return result
	}
	tc.calls[call] = fn
	tc.bindCallee(call, callee, fn)
	for i, t := range argTypes {
		tc.requestCopier(t, tc.span(args[i]))
	}
	tc.requestCopier(result, sp)
	return result
}

func (tc *typeChecker) bindCallee(call, callee ast.ExprID, fn symbols.SymbolID) {
	if !callee.IsValid() || callee == call {
		return
	}
	if x := tc.builder.Exprs.Get(callee); x.Kind == ast.ExprIdent {
		tc.binds.Bind(callee, fn)
	}
	tc.setType(callee, tc.table.Sym(fn).Type)
}

// callBuiltin types print, println and size. They accept any argument
// type and are never instantiated.
func (tc *typeChecker) callBuiltin(call, callee ast.ExprID, fn symbols.SymbolID, argTypes []types.TypeID, sp source.Span) types.TypeID {
	b := tc.table.Builtins
	result := tc.table.Sym(fn).Func.Result
	if fn == b.Size {
		t := argTypes[0]
		switch tc.types.Kind(t) {
		case types.KindArray, types.KindDict:
		default:
			if t != b.StringType {
				tc.report(diag.SemaInvalidOperand, sp, "Builtin function 'size' expects an array, a dictionary or a string but got '%s'",
					tc.label(t))
				return types.NoTypeID
			}
		}
	}
	tc.calls[call] = fn
	tc.bindCallee(call, callee, fn)
	return result
}

// callValue calls a closure, a function value or a template function value.
func (tc *typeChecker) callValue(call ast.ExprID, ct types.TypeID, args []ast.ExprID, argTypes []types.TypeID, sp source.Span) types.TypeID {
	fnType := ct
	switch tc.types.Kind(ct) {
	case types.KindClosure:
		info, _ := tc.types.ClosureInfo(ct)
		fnType = info.Fn
	case types.KindFunc:
	case types.KindGenericFunc:
		owner, _ := tc.types.GenericFuncOwner(ct)
		fn := symbols.SymbolID(owner)
		return tc.callFuncs(call, ast.NoExprID, tc.table.Sym(fn).Name, []symbols.SymbolID{fn}, args, argTypes, sp)
	default:
		tc.report(diag.SemaNotCallable, sp, "Expression of type '%s' is not callable", tc.label(ct))
		return types.NoTypeID
	}
	info, _ := tc.types.FuncInfo(fnType)
	if len(info.Params) != len(argTypes) {
		tc.report(diag.SemaTypeMismatch, sp, "Callee of type '%s' expects %d arguments but got %d",
			tc.label(ct), len(info.Params), len(argTypes))
		return types.NoTypeID
	}
	for i, p := range info.Params {
		if !tc.assignable(p, argTypes[i]) {
			tc.report(diag.SemaTypeMismatch, tc.span(args[i]), "Argument %d expects '%s' but got '%s'",
				i+1, tc.label(p), tc.label(argTypes[i]))
			return types.NoTypeID
		}
		tc.requestCopier(argTypes[i], tc.span(args[i]))
	}
	return info.Result
}

// instantiate wraps the instantiator. A recursive instantiation is fatal and
// reported once, where it was detected.
func (tc *typeChecker) instantiate(generic symbols.SymbolID, args []types.TypeID, sp source.Span) symbols.SymbolID {
	inst, err := tc.inst.Instantiate(tc.ctx, generic, args)
	if err == nil {
		return inst
	}
	if tc.fatal != nil {
		return symbols.NoSymbolID
	}
	var rec *mono.RecursiveError
	var esc *mono.EscapeError
	switch {
	case errors.As(err, &rec):
		tc.report(diag.SemaRecursiveInstantiation, sp, "%s", rec.Error())
		tc.fatal = rec
	case errors.As(err, &esc):
		tc.report(diag.SemaPlaceholderEscape, esc.Span, "%s", esc.Error())
	default:
		tc.report(diag.SemaInvalidType, sp, "%s", err.Error())
	}
	return symbols.NoSymbolID
}

func (tc *typeChecker) overloadError(err error, sp source.Span, name source.StringID, argTypes []types.TypeID) {
	call := tc.name(name) + "(" + tc.labels(argTypes) + ")"
	var amb *symbols.AmbiguousError
	var noMatch *symbols.NoMatchError
	switch {
	case errors.As(err, &amb):
		tc.reportWith(diag.SemaAmbiguousOverload, sp, fmt.Sprintf("Ambiguous function call to '%s'", call), tc.candidateNotes(amb.Candidates))
	case errors.As(err, &noMatch):
		tc.reportWith(diag.SemaNoOverload, sp, fmt.Sprintf("No matching function for call to '%s'", call), tc.candidateNotes(noMatch.Candidates))
	default:
		tc.report(diag.SemaUnresolvedSymbol, sp, "Function '%s' is not found", tc.name(name))
	}
}

func (tc *typeChecker) candidateNotes(cands []symbols.SymbolID) func(*diag.ReportBuilder) {
	return func(b *diag.ReportBuilder) {
		for _, c := range cands {
			b.WithNote(tc.table.Sym(c).Span, "Candidate: "+tc.signature(c))
		}
	}
}

// signature renders name(params) of a function symbol.
func (tc *typeChecker) signature(fn symbols.SymbolID) string {
	sym := tc.table.Sym(fn)
	if sym.Func == nil {
		return tc.table.Name(fn)
	}
	return tc.table.Name(fn) + "(" + tc.labels(sym.Func.ParamTypes) + ")"
}

func (tc *typeChecker) labels(ts []types.TypeID) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = tc.label(t)
	}
	return strings.Join(parts, ", ")
}
