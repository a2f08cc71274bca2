package sema

import (
	"strconv"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// checkExpr types an expression and fills its slot. NoTypeID means an error
// was reported for it or for one of its operands; callers stay silent then.
func (tc *typeChecker) checkExpr(id ast.ExprID) types.TypeID {
	x := tc.builder.Exprs.Get(id)
	if x == nil || tc.fatal != nil {
		return types.NoTypeID
	}
	if x.Type != types.NoTypeID {
		return x.Type
	}
	var t types.TypeID
	switch x.Kind {
	case ast.ExprLit:
		t = tc.checkLit(id)
	case ast.ExprIdent:
		t = tc.checkIdent(id)
	case ast.ExprTuple:
		t = tc.checkTuple(id)
	case ast.ExprArray:
		t = tc.checkArray(id)
	case ast.ExprDict:
		t = tc.checkDict(id)
	case ast.ExprRange:
		t = tc.checkRange(id)
	case ast.ExprBinary:
		t = tc.checkBinary(id)
	case ast.ExprUnary:
		t = tc.checkUnary(id)
	case ast.ExprCall:
		t = tc.checkCall(id)
	case ast.ExprMember:
		t = tc.checkMember(id)
	case ast.ExprIndex:
		t = tc.checkIndex(id)
	case ast.ExprNew:
		t = tc.checkNew(id)
	case ast.ExprLambda:
		t = tc.checkLambda(id)
	case ast.ExprEnvField:
		diag.Internal("sema: environment field %d typed before capture analysis", id)
	}
	return tc.setType(id, t)
}

// checkExprs types a list; ok is false when any element failed.
func (tc *typeChecker) checkExprs(ids []ast.ExprID) ([]types.TypeID, bool) {
	out := make([]types.TypeID, len(ids))
	ok := true
	for i, id := range ids {
		out[i] = tc.checkExpr(id)
		ok = ok && out[i] != types.NoTypeID
	}
	return out, ok
}

func (tc *typeChecker) checkLit(id ast.ExprID) types.TypeID {
	lit, _ := tc.builder.Exprs.Lit(id)
	b := tc.types.Builtins()
	var err error
	var t types.TypeID
	switch lit.Kind {
	case ast.LitInt:
		_, err = strconv.ParseInt(lit.Text, 0, 64)
		t = b.Int
	case ast.LitUint:
		_, err = strconv.ParseUint(strings.TrimSuffix(lit.Text, "u"), 0, 64)
		t = b.Uint
	case ast.LitFloat:
		_, err = strconv.ParseFloat(lit.Text, 64)
		t = b.Float
	case ast.LitBool:
		_, err = strconv.ParseBool(lit.Text)
		t = b.Bool
	case ast.LitChar:
		t = b.Char
	case ast.LitString:
		t = tc.table.Builtins.StringType
	case ast.LitUnit:
		t = b.Unit
	}
	if err != nil {
		tc.report(diag.SemaInvalidOperand, tc.span(id), "Invalid literal '%s'", lit.Text)
		return types.NoTypeID
	}
	return t
}

// checkIdent resolves a name used as a value. A function name yields its
// function type, or the template function type for templates.
func (tc *typeChecker) checkIdent(id ast.ExprID) types.TypeID {
	ident, _ := tc.builder.Exprs.Ident(id)
	name := ident.Name
	sp := tc.span(id)
	symID, err := tc.table.ResolveVar(tc.scope, name)
	if err != nil {
		tc.report(diag.SemaUnresolvedSymbol, sp, "Symbol '%s' is not found", tc.name(name))
		return types.NoTypeID
	}
	sym := tc.table.Sym(symID)
	switch {
	case sym.Kind.IsValue():
		tc.binds.Bind(id, symID)
		return sym.Type
	case sym.Kind == symbols.SymbolConst:
		tc.binds.Bind(id, symID)
		return tc.ensureConst(symID)
	case sym.Kind == symbols.SymbolFunc:
		return tc.funcValue(id, name)
	}
	tc.report(diag.SemaInvalidOperand, sp, "%s '%s' cannot be used as a value", capitalize(sym.Kind.String()), tc.name(name))
	return types.NoTypeID
}

// funcValue types a reference to a named function. It must not be
// overloaded.
func (tc *typeChecker) funcValue(id ast.ExprID, name source.StringID) types.TypeID {
	sp := tc.span(id)
	cands := tc.table.VisibleFuncs(tc.scope, name)
	if len(cands) != 1 {
		tc.reportWith(diag.SemaAmbiguousOverload, sp,
			"Ambiguous reference to overloaded function '"+tc.name(name)+"'", tc.candidateNotes(cands))
		return types.NoTypeID
	}
	fn := cands[0]
	tc.binds.Bind(id, fn)
	sym := tc.table.Sym(fn)
	if sym.IsTemplate() {
		return sym.Type
	}
	if tc.resultOf(fn, sp) == types.NoTypeID {
		return types.NoTypeID
	}
	return tc.table.Sym(fn).Type
}

func (tc *typeChecker) checkTuple(id ast.ExprID) types.TypeID {
	l, _ := tc.builder.Exprs.List(id)
	elems, ok := tc.checkExprs(append([]ast.ExprID(nil), l.Elems...))
	if !ok {
		return types.NoTypeID
	}
	return tc.types.InternTuple(elems)
}

// checkArray types an array literal as a fixed length array.
func (tc *typeChecker) checkArray(id ast.ExprID) types.TypeID {
	l, _ := tc.builder.Exprs.List(id)
	elems := append([]ast.ExprID(nil), l.Elems...)
	if len(elems) == 0 {
		tc.report(diag.SemaInvalidType, tc.span(id), "Cannot deduce the element type of an empty array")
		return types.NoTypeID
	}
	ts, ok := tc.checkExprs(elems)
	if !ok {
		return types.NoTypeID
	}
	if !tc.sameTypes(ts, elems, "Array elements") {
		return types.NoTypeID
	}
	return tc.types.Intern(types.MakeArray(ts[0], uint32(len(ts))))
}

func (tc *typeChecker) checkDict(id ast.ExprID) types.TypeID {
	d, _ := tc.builder.Exprs.Dict(id)
	keys := append([]ast.ExprID(nil), d.Keys...)
	values := append([]ast.ExprID(nil), d.Values...)
	if len(keys) == 0 {
		tc.report(diag.SemaInvalidType, tc.span(id), "Cannot deduce the key and value types of an empty dictionary")
		return types.NoTypeID
	}
	kts, kok := tc.checkExprs(keys)
	vts, vok := tc.checkExprs(values)
	if !kok || !vok {
		return types.NoTypeID
	}
	if !tc.sameTypes(kts, keys, "Dictionary keys") || !tc.sameTypes(vts, values, "Dictionary values") {
		return types.NoTypeID
	}
	return tc.types.Intern(types.MakeDict(kts[0], vts[0]))
}

func (tc *typeChecker) sameTypes(ts []types.TypeID, exprs []ast.ExprID, what string) bool {
	for i, t := range ts[1:] {
		if t != ts[0] {
			tc.report(diag.SemaTypeMismatch, tc.span(exprs[i+1]), "%s must have the same type: expected '%s' but got '%s'",
				what, tc.label(ts[0]), tc.label(t))
			return false
		}
	}
	return true
}

func (tc *typeChecker) checkRange(id ast.ExprID) types.TypeID {
	r, _ := tc.builder.Exprs.Range(id)
	lo, hi := r.Lo, r.Hi
	lt, ht := tc.checkExpr(lo), tc.checkExpr(hi)
	if lt == types.NoTypeID || ht == types.NoTypeID {
		return types.NoTypeID
	}
	if lt != ht {
		tc.report(diag.SemaTypeMismatch, tc.span(hi), "Range bounds must have the same type: expected '%s' but got '%s'",
			tc.label(lt), tc.label(ht))
		return types.NoTypeID
	}
	switch tc.types.Kind(lt) {
	case types.KindInt, types.KindUint, types.KindChar:
	default:
		tc.report(diag.SemaInvalidOperand, tc.span(lo), "Range bounds must be integers or characters but got '%s'", tc.label(lt))
		return types.NoTypeID
	}
	return tc.types.Intern(types.MakeRange(lt))
}

func (tc *typeChecker) checkBinary(id ast.ExprID) types.TypeID {
	bin, _ := tc.builder.Exprs.Binary(id)
	op, left, right := bin.Op, bin.Left, bin.Right
	lt, rt := tc.checkExpr(left), tc.checkExpr(right)
	if lt == types.NoTypeID || rt == types.NoTypeID {
		return types.NoTypeID
	}
	sp := tc.span(id)
	if lt != rt {
		tc.report(diag.SemaTypeMismatch, sp, "Operands of '%s' must have the same type: '%s' and '%s'",
			op, tc.label(lt), tc.label(rt))
		return types.NoTypeID
	}
	b := tc.types.Builtins()
	switch {
	case op.IsLogical():
		if lt != b.Bool {
			break
		}
		return b.Bool
	case op == ast.OpEq || op == ast.OpNe:
		return b.Bool
	case op.IsComparison():
		if !tc.types.IsNumeric(lt) && lt != b.Char {
			break
		}
		return b.Bool
	case op == ast.OpMod:
		if k := tc.types.Kind(lt); k != types.KindInt && k != types.KindUint {
			break
		}
		return lt
	default:
		if !tc.types.IsNumeric(lt) {
			break
		}
		return lt
	}
	tc.report(diag.SemaInvalidOperand, sp, "Invalid operand type '%s' for operator '%s'", tc.label(lt), op)
	return types.NoTypeID
}

func (tc *typeChecker) checkUnary(id ast.ExprID) types.TypeID {
	u, _ := tc.builder.Exprs.Unary(id)
	op := u.Op
	t := tc.checkExpr(u.X)
	if t == types.NoTypeID {
		return t
	}
	b := tc.types.Builtins()
	switch op {
	case ast.OpNeg:
		if k := tc.types.Kind(t); k == types.KindInt || k == types.KindFloat {
			return t
		}
		tc.report(diag.SemaInvalidOperand, tc.span(id), "Invalid operand type '%s' for unary '-'", tc.label(t))
	case ast.OpNot:
		if t == b.Bool {
			return t
		}
		tc.report(diag.SemaInvalidOperand, tc.span(id), "Invalid operand type '%s' for '!'", tc.label(t))
	}
	return types.NoTypeID
}

// checkMember reads an instance variable. A name that is not an instance
// variable is a UFCS call without arguments: x.size is size(x).
func (tc *typeChecker) checkMember(id ast.ExprID) types.TypeID {
	m, _ := tc.builder.Exprs.Member(id)
	recv, name, nameSpan := m.Recv, m.Name, m.NameSpan
	rt := tc.checkExpr(recv)
	if rt == types.NoTypeID {
		return rt
	}
	if ft, ok, bad := tc.fieldOf(rt, name, nameSpan); ok || bad {
		return ft
	}
	if t, ok := tc.ufcs(id, id, name, nameSpan, []ast.ExprID{recv}, []types.TypeID{rt}); ok {
		return t
	}
	tc.report(diag.SemaUnknownMember, nameSpan, "Unknown member '%s' in type '%s'", tc.name(name), tc.label(rt))
	return types.NoTypeID
}

// fieldOf looks up an instance variable of a class value. bad is set when
// the variable exists but is not accessible here.
func (tc *typeChecker) fieldOf(rt types.TypeID, name source.StringID, sp source.Span) (t types.TypeID, ok, bad bool) {
	info, isClass := tc.types.ClassInfo(rt)
	if !isClass {
		return types.NoTypeID, false, false
	}
	idx, found := tc.types.FieldIndex(rt, name)
	if !found {
		return types.NoTypeID, false, false
	}
	class := symbols.SymbolID(info.Decl)
	for _, f := range tc.table.ResolveMember(class, name) {
		sym := tc.table.Sym(f)
		if sym.Kind == symbols.SymbolField && !sym.Flags.Has(symbols.FlagPublic) && !tc.insideClass(class) {
			tc.report(diag.SemaPrivateMember, sp, "Instance variable '%s' of class '%s' is private", tc.name(name), tc.label(rt))
			return types.NoTypeID, false, true
		}
	}
	return info.Fields[idx].Type, true, false
}

func (tc *typeChecker) insideClass(class symbols.SymbolID) bool {
	cls := tc.table.Sym(class)
	return cls != nil && cls.Class != nil && tc.table.Within(tc.scope, cls.Class.Scope)
}

func (tc *typeChecker) checkIndex(id ast.ExprID) types.TypeID {
	ix, _ := tc.builder.Exprs.Index(id)
	x, index := ix.X, ix.Index
	xt, it := tc.checkExpr(x), tc.checkExpr(index)
	if xt == types.NoTypeID || it == types.NoTypeID {
		return types.NoTypeID
	}
	tt := tc.types.MustLookup(xt)
	switch tt.Kind {
	case types.KindArray:
		if k := tc.types.Kind(it); k != types.KindInt && k != types.KindUint {
			tc.report(diag.SemaTypeMismatch, tc.span(index), "Array index must be an integer but got '%s'", tc.label(it))
			return types.NoTypeID
		}
		return tt.Elem
	case types.KindDict:
		if !tc.assignable(tt.Key, it) {
			tc.report(diag.SemaTypeMismatch, tc.span(index), "Dictionary key must be '%s' but got '%s'", tc.label(tt.Key), tc.label(it))
			return types.NoTypeID
		}
		return tt.Elem
	case types.KindTuple:
		return tc.tupleElem(xt, index)
	}
	tc.report(diag.SemaInvalidOperand, tc.span(id), "Cannot index a value of type '%s'", tc.label(xt))
	return types.NoTypeID
}

// tupleElem requires a constant integer index within the tuple.
func (tc *typeChecker) tupleElem(xt types.TypeID, index ast.ExprID) types.TypeID {
	info, _ := tc.types.TupleInfo(xt)
	lit, ok := tc.builder.Exprs.Lit(index)
	if !ok || (lit.Kind != ast.LitInt && lit.Kind != ast.LitUint) {
		tc.report(diag.SemaInvalidOperand, tc.span(index), "Tuple index must be an integer literal")
		return types.NoTypeID
	}
	n, err := strconv.ParseUint(strings.TrimSuffix(lit.Text, "u"), 0, 32)
	if err != nil || int(n) >= len(info.Elems) {
		tc.report(diag.SemaInvalidOperand, tc.span(index), "Tuple index %s is out of range for '%s'", lit.Text, tc.label(xt))
		return types.NoTypeID
	}
	return info.Elems[n]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
