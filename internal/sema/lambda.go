package sema

import (
	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/capture"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// envName names the implicit environment parameter of every lambda. It is
// not a valid identifier, so source code can never refer to it.
const envName = "<env>"

// checkLambda types a lambda body in a function scope nested in the current
// scope, then runs capture analysis on it. The value of a lambda expression
// is a closure: its function type plus the environment record.
func (tc *typeChecker) checkLambda(id ast.ExprID) types.TypeID {
	l, _ := tc.builder.Exprs.Lambda(id)
	item := l.Func
	fn, _ := tc.builder.Items.Func(item)
	sp := tc.span(id)

	params := make([]types.TypeID, 0, len(fn.Params))
	for _, p := range fn.Params {
		if !p.Type.IsValid() {
			tc.report(diag.SemaInvalidType, p.Span, "Parameter '%s' of a lambda needs a type", tc.name(p.Name))
			return types.NoTypeID
		}
		t := tc.resolveType(p.Type)
		if t == types.NoTypeID {
			return t
		}
		params = append(params, t)
	}
	var result types.TypeID
	declared := fn.Result.IsValid()
	if declared {
		if result = tc.resolveType(fn.Result); result == types.NoTypeID {
			return result
		}
	}

	// Lambdas are anonymous: they live in the arena but in no name index.
	lambda := tc.table.Symbols.New(&symbols.Symbol{
		Name:  tc.strs.Intern("lambda"),
		Kind:  symbols.SymbolFunc,
		Scope: tc.scope,
		Span:  sp,
		Flags: symbols.FlagLambda,
		Decl:  tc.builder.RefItem(item),
		Func: &symbols.FuncData{
			Item:       item,
			ParamTypes: params,
			Result:     result,
			Declared:   declared,
			State:      symbols.BodyInProgress,
		},
	})
	data := tc.table.Sym(lambda).Func
	fnScope := tc.table.NewFunctionScope(tc.scope, lambda, sp)
	data.Scope = fnScope

	prevScope, prevFn := tc.scope, tc.fn
	tc.scope = fnScope
	data.Receiver = tc.define(fnScope, &symbols.Symbol{
		Name: tc.strs.Intern(envName),
		Kind: symbols.SymbolReceiver,
		Type: tc.types.Builtins().Unit,
		Span: sp,
	})
	for i, p := range fn.Params {
		var flags symbols.SymbolFlags
		if p.Mutable {
			flags |= symbols.FlagMutable
		}
		data.Params = append(data.Params, tc.defineVar(&symbols.Symbol{
			Name:  p.Name,
			Kind:  symbols.SymbolParam,
			Type:  params[i],
			Span:  p.Span,
			Flags: flags,
		}))
	}
	tc.scope = tc.table.Scopes.Get(fnScope).Body
	tc.fn = &funcContext{sym: lambda, data: data}
	tc.checkStmts(fn.Body)
	tc.scope, tc.fn = prevScope, prevFn

	if tc.fatal != nil {
		return types.NoTypeID
	}
	if data.Result == types.NoTypeID {
		data.Result = tc.types.Builtins().Unit
	}
	fnType := tc.types.InternFunc(params, data.Result)
	tc.table.Sym(lambda).Type = fnType
	data.State = symbols.BodyDone

	m := tc.captures.Resolve(tc.ctx, capture.Closure{
		Lambda:   lambda,
		Expr:     id,
		Scope:    fnScope,
		Body:     fn.Body,
		Receiver: data.Receiver,
	})
	tc.lambdas = append(tc.lambdas, Lambda{Expr: id, Symbol: lambda, Scope: fnScope, Map: m})
	tc.requestCopier(m.Env, sp)
	return tc.types.InternClosure(uint32(lambda), fnType, m.Env)
}
