package sema

import (
	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// checkStmts types a block in the current scope. Function bodies use it
// directly on their body scope.
func (tc *typeChecker) checkStmts(id ast.StmtID) {
	blk, ok := tc.builder.Stmts.Block(id)
	if !ok {
		tc.checkStmt(id)
		return
	}
	for _, s := range blk.Stmts {
		if tc.fatal != nil {
			return
		}
		tc.checkStmt(s)
	}
}

// checkScoped types a nested statement in a fresh local scope.
func (tc *typeChecker) checkScoped(id ast.StmtID) {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	leave := tc.enter(symbols.ScopeLocal, symbols.NoSymbolID, st.Span)
	defer leave()
	tc.checkStmts(id)
}

func (tc *typeChecker) checkStmt(id ast.StmtID) {
	st := tc.builder.Stmts.Get(id)
	if st == nil {
		return
	}
	s := tc.builder.Stmts
	switch st.Kind {
	case ast.StmtBlock:
		tc.checkScoped(id)
	case ast.StmtLet:
		let, _ := s.Let(id)
		tc.checkLet(*let)
	case ast.StmtAssign:
		as, _ := s.Assign(id)
		tc.checkAssign(as.Target, as.Value)
	case ast.StmtExpr:
		es, _ := s.Expr(id)
		tc.checkExpr(es.Expr)
	case ast.StmtReturn:
		ret, _ := s.Return(id)
		tc.checkReturn(st.Span, ret.Value)
	case ast.StmtIf:
		ifs, _ := s.If(id)
		cond, then, els := ifs.Cond, ifs.Then, ifs.Else
		tc.checkCond(cond)
		tc.checkScoped(then)
		if els.IsValid() {
			tc.checkScoped(els)
		}
	case ast.StmtWhile:
		wh, _ := s.While(id)
		body := wh.Body
		tc.checkCond(wh.Cond)
		tc.checkScoped(body)
	case ast.StmtFor:
		fs, _ := s.For(id)
		tc.checkFor(st.Span, *fs)
	}
}

func (tc *typeChecker) checkLet(let ast.LetStmt) {
	var declared types.TypeID
	if let.Type.IsValid() {
		if declared = tc.resolveType(let.Type); declared == types.NoTypeID {
			return
		}
	}
	if !let.Value.IsValid() && declared == types.NoTypeID {
		tc.report(diag.SemaInvalidType, let.NameSpan, "Variable '%s' needs a type or an initializer", tc.name(let.Name))
		return
	}

	t := declared
	if let.Value.IsValid() {
		vt := tc.checkExpr(let.Value)
		if vt == types.NoTypeID {
			return
		}
		switch {
		case declared == types.NoTypeID:
			t = vt
		case !tc.assignable(declared, vt):
			tc.report(diag.SemaTypeMismatch, tc.span(let.Value), "Type mismatch in initialization of '%s': expected '%s' but got '%s'",
				tc.name(let.Name), tc.label(declared), tc.label(vt))
			return
		case tc.types.ContainsPlaceholder(declared):
			t = vt
		}
		tc.requestCopier(vt, tc.span(let.Value))
	}
	if tc.types.ContainsPlaceholder(t) {
		tc.report(diag.SemaInvalidType, let.NameSpan, "Cannot deduce the type of variable '%s' from '%s'",
			tc.name(let.Name), tc.label(t))
		return
	}

	var flags symbols.SymbolFlags
	if let.Mutable {
		flags |= symbols.FlagMutable
	}
	tc.defineVar(&symbols.Symbol{
		Name:  let.Name,
		Kind:  symbols.SymbolVar,
		Type:  t,
		Span:  let.NameSpan,
		Flags: flags,
	})
}

func (tc *typeChecker) checkAssign(target, value ast.ExprID) {
	lt := tc.checkAssignTarget(target)
	vt := tc.checkExpr(value)
	if lt == types.NoTypeID || vt == types.NoTypeID {
		return
	}
	if !tc.assignable(lt, vt) {
		tc.report(diag.SemaTypeMismatch, tc.span(value), "Type mismatch in assignment: expected '%s' but got '%s'",
			tc.label(lt), tc.label(vt))
		return
	}
	tc.requestCopier(vt, tc.span(value))
}

// checkAssignTarget types the left hand side. Variables must be declared
// with var; instance variables and elements are always assignable.
func (tc *typeChecker) checkAssignTarget(target ast.ExprID) types.TypeID {
	x := tc.builder.Exprs.Get(target)
	if x == nil {
		return types.NoTypeID
	}
	switch x.Kind {
	case ast.ExprIdent:
		ident, _ := tc.builder.Exprs.Ident(target)
		name := ident.Name
		t := tc.checkExpr(target)
		if t == types.NoTypeID {
			return t
		}
		sym := tc.table.Sym(tc.binds.SymbolOf(target))
		switch {
		case sym == nil:
			return types.NoTypeID
		case sym.Kind == symbols.SymbolConst:
			tc.report(diag.SemaImmutableAssign, x.Span, "Cannot assign to constant '%s'", tc.name(name))
			return types.NoTypeID
		case !sym.Kind.IsValue():
			tc.report(diag.SemaInvalidOperand, x.Span, "Cannot assign to %s '%s'", sym.Kind, tc.name(name))
			return types.NoTypeID
		case !sym.IsMutable():
			tc.report(diag.SemaImmutableAssign, x.Span, "Cannot assign to immutable variable '%s'", tc.name(name))
			return types.NoTypeID
		}
		return t
	case ast.ExprMember, ast.ExprIndex:
		t := tc.checkExpr(target)
		if _, isCall := tc.calls[target]; isCall && t != types.NoTypeID {
			tc.report(diag.SemaInvalidOperand, x.Span, "Left hand side of assignment is not assignable")
			return types.NoTypeID
		}
		return t
	}
	tc.checkExpr(target)
	tc.report(diag.SemaInvalidOperand, x.Span, "Left hand side of assignment is not assignable")
	return types.NoTypeID
}

func (tc *typeChecker) checkReturn(sp source.Span, value ast.ExprID) {
	if tc.fn == nil {
		tc.report(diag.SemaInvalidOperand, sp, "Return statement outside of a function")
		return
	}
	vt := tc.types.Builtins().Unit
	if value.IsValid() {
		if vt = tc.checkExpr(value); vt == types.NoTypeID {
			return
		}
		sp = tc.span(value)
	}
	data := tc.fn.data
	if data.Result == types.NoTypeID {
		data.Result = vt
		tc.requestCopier(vt, sp)
		return
	}
	if !tc.assignable(data.Result, vt) {
		tc.report(diag.SemaTypeMismatch, sp, "Return type mismatch in function '%s': expected '%s' but got '%s'",
			tc.table.Name(tc.fn.sym), tc.label(data.Result), tc.label(vt))
		return
	}
	tc.requestCopier(vt, sp)
}

func (tc *typeChecker) checkCond(cond ast.ExprID) {
	t := tc.checkExpr(cond)
	if t != types.NoTypeID && t != tc.types.Builtins().Bool {
		tc.report(diag.SemaTypeMismatch, tc.span(cond), "Condition must be 'bool' but got '%s'", tc.label(t))
	}
}

// checkFor binds the loop variable in a scope of its own: the element type
// of an array or a range, or a (key, value) tuple of a dictionary.
func (tc *typeChecker) checkFor(sp source.Span, fs ast.ForStmt) {
	it := tc.checkExpr(fs.Iter)
	if it == types.NoTypeID {
		return
	}
	tt := tc.types.MustLookup(it)
	var elem types.TypeID
	switch tt.Kind {
	case types.KindArray, types.KindRange:
		elem = tt.Elem
	case types.KindDict:
		elem = tc.types.InternTuple([]types.TypeID{tt.Key, tt.Elem})
	default:
		tc.report(diag.SemaInvalidOperand, tc.span(fs.Iter), "Cannot iterate over a value of type '%s'", tc.label(it))
		return
	}
	leave := tc.enter(symbols.ScopeLocal, symbols.NoSymbolID, sp)
	defer leave()
	tc.defineVar(&symbols.Symbol{
		Name: fs.Var,
		Kind: symbols.SymbolVar,
		Type: elem,
		Span: fs.VarSpan,
	})
	tc.checkStmts(fs.Body)
}
