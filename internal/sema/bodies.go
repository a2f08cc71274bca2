package sema

import (
	"context"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/trace"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// checkBodies is the body pass. It stops after the first top-level
// declaration that recorded an error, and at once on a fatal error.
func (tc *typeChecker) checkBodies(items []ast.ItemID) {
	for _, item := range items {
		before := tc.errors
		tc.checkItem(item)
		if tc.fatal != nil || tc.errors > before {
			tc.halted = true
			tc.haltedAt = item
			return
		}
	}
}

func (tc *typeChecker) checkItem(item ast.ItemID) {
	id, ok := tc.items[item]
	if !ok {
		return
	}
	it := tc.builder.Items.Get(item)
	span := trace.Begin(trace.FromContext(tc.ctx), trace.ScopeDecl, it.Kind.String(), trace.CurrentSpan(tc.ctx)).
		WithExtra("name", tc.name(it.Name))
	parent := tc.ctx
	tc.ctx = trace.WithSpan(parent, span)
	defer func() {
		tc.ctx = parent
		span.End("")
	}()

	sym := tc.table.Sym(id)
	switch sym.Kind {
	case symbols.SymbolFunc:
		if !sym.IsTemplate() {
			tc.ensureBody(id)
		}
	case symbols.SymbolClass:
		for _, m := range sym.Class.Methods {
			if tc.fatal != nil {
				return
			}
			if !tc.table.Sym(m).IsTemplate() {
				tc.ensureBody(m)
			}
		}
	case symbols.SymbolConst:
		tc.ensureConst(id)
	}
}

// ensureBody resolves a function body unless it is done or in progress.
func (tc *typeChecker) ensureBody(fn symbols.SymbolID) {
	data := tc.table.Sym(fn).Func
	if data.State != symbols.BodyPending || !data.Item.IsValid() {
		return
	}
	tc.resolveBody(fn)
}

// ResolveInstance resolves the cloned body of a fresh template instance.
func (tc *typeChecker) ResolveInstance(ctx context.Context, inst symbols.SymbolID) error {
	if tc.fatal != nil {
		return tc.fatal
	}
	prev := tc.ctx
	tc.ctx = ctx
	defer func() { tc.ctx = prev }()
	tc.ensureBody(inst)
	return tc.fatal
}

// resolveBody declares the parameters in a fresh function scope and types
// the body. The result type is deduced from return statements when it was
// not written; the first return fixes it so recursive calls see it.
func (tc *typeChecker) resolveBody(fn symbols.SymbolID) {
	sym := tc.table.Sym(fn)
	data := sym.Func
	data.State = symbols.BodyInProgress
	item, _ := tc.builder.Items.Func(data.Item)
	body := item.Body

	prevScope, prevFn := tc.scope, tc.fn
	defer func() { tc.scope, tc.fn = prevScope, prevFn }()

	fnScope := tc.table.NewFunctionScope(sym.Scope, fn, sym.Span)
	data.Scope = fnScope
	tc.scope = fnScope
	tc.declareParams(data, item, sym.Span)
	tc.scope = tc.table.Scopes.Get(fnScope).Body
	tc.fn = &funcContext{sym: fn, data: data}

	tc.checkStmts(body)

	if data.Result == types.NoTypeID {
		data.Result = tc.types.Builtins().Unit
	}
	sym = tc.table.Sym(fn)
	if sym.Type == types.NoTypeID || tc.types.Kind(sym.Type) != types.KindFunc {
		sym.Type = tc.types.InternFunc(data.ParamTypes, data.Result)
	}
	data.State = symbols.BodyDone
}

func (tc *typeChecker) declareParams(data *symbols.FuncData, item *ast.FuncItem, sp source.Span) {
	params := make([]symbols.SymbolID, 0, len(data.ParamTypes))
	i := 0
	if data.Class.IsValid() {
		self := tc.define(tc.scope, &symbols.Symbol{
			Name: tc.strs.Intern("self"),
			Kind: symbols.SymbolParam,
			Type: data.ParamTypes[0],
			Span: sp,
		})
		params = append(params, self)
		i = 1
	}
	for _, p := range item.Params {
		var flags symbols.SymbolFlags
		if p.Mutable {
			flags |= symbols.FlagMutable
		}
		params = append(params, tc.define(tc.scope, &symbols.Symbol{
			Name:  p.Name,
			Kind:  symbols.SymbolParam,
			Type:  data.ParamTypes[i],
			Span:  p.Span,
			Flags: flags,
		}))
		i++
	}
	data.Params = params
}

// resultOf returns the result type of a concrete function, resolving its
// body on demand. A function whose body is being resolved and whose result
// is still unknown cannot be used yet.
func (tc *typeChecker) resultOf(fn symbols.SymbolID, sp source.Span) types.TypeID {
	data := tc.table.Sym(fn).Func
	if data.Result != types.NoTypeID {
		return data.Result
	}
	if data.State == symbols.BodyPending {
		tc.resolveBody(fn)
		if data.Result != types.NoTypeID {
			return data.Result
		}
	}
	if tc.fatal == nil && data.State != symbols.BodyFailed {
		tc.report(diag.SemaCannotDeduceReturn, sp, "Cannot deduce the return type of function '%s'", tc.table.Name(fn))
	}
	return types.NoTypeID
}

// ensureConst types the initializer of a constant in the global scope.
func (tc *typeChecker) ensureConst(id symbols.SymbolID) types.TypeID {
	sym := tc.table.Sym(id)
	switch tc.constState[id] {
	case declDone:
		return sym.Type
	case declInProgress:
		tc.report(diag.SemaInvalidType, sym.Span, "Constant '%s' depends on itself", tc.table.Name(id))
		return types.NoTypeID
	}
	tc.constState[id] = declInProgress
	defer func() { tc.constState[id] = declDone }()

	c, ok := tc.builder.Items.Const(ast.ItemID(sym.Decl.ID))
	if !ok {
		return sym.Type
	}
	declared, sp := sym.Type, sym.Span

	prevScope, prevFn := tc.scope, tc.fn
	tc.scope, tc.fn = tc.table.Global, nil
	defer func() { tc.scope, tc.fn = prevScope, prevFn }()

	vt := tc.checkExpr(c.Value)
	if vt == types.NoTypeID {
		return declared
	}
	if declared == types.NoTypeID {
		tc.table.Sym(id).Type = vt
		return vt
	}
	if !tc.assignable(declared, vt) {
		tc.report(diag.SemaTypeMismatch, sp, "Type mismatch in constant '%s': expected '%s' but got '%s'",
			tc.table.Name(id), tc.label(declared), tc.label(vt))
	}
	return declared
}
