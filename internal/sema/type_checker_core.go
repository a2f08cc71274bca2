package sema

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/capture"
	"github.com/rhysd/Dachs-sub001/internal/copysem"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/observ"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

type typeChecker struct {
	// ctx несёт трассировщик и текущий span
	ctx      context.Context
	builder  *ast.Builder
	table    *symbols.Table
	types    *types.Interner
	strs     *source.Interner
	reporter diag.Reporter
	timer    *observ.Timer

	inst     *mono.Instantiator
	copiers  *copysem.Resolver
	captures *capture.Analyzer

	binds   Bindings
	calls   map[ast.ExprID]symbols.SymbolID
	items   map[ast.ItemID]symbols.SymbolID
	lambdas []Lambda

	classes    []symbols.SymbolID
	fieldState map[symbols.SymbolID]declState
	constState map[symbols.SymbolID]declState

	scope symbols.ScopeID
	fn    *funcContext

	errors   int
	halted   bool
	haltedAt ast.ItemID
	fatal    error
}

type declState uint8

const (
	declPending declState = iota
	declInProgress
	declDone
)

// funcContext is the function whose body is being typed.
type funcContext struct {
	sym  symbols.SymbolID
	data *symbols.FuncData
}

func newTypeChecker(ctx context.Context, builder *ast.Builder, table *symbols.Table, opts Options) *typeChecker {
	tc := &typeChecker{
		ctx:        ctx,
		builder:    builder,
		table:      table,
		types:      table.Types,
		strs:       table.Strings,
		reporter:   opts.Reporter,
		binds:      make(Bindings),
		calls:      make(map[ast.ExprID]symbols.SymbolID),
		items:      make(map[ast.ItemID]symbols.SymbolID),
		fieldState: make(map[symbols.SymbolID]declState),
		constState: make(map[symbols.SymbolID]declState),
		scope:      table.Global,
	}
	tc.inst = mono.New(table, builder, opts.MaxInstantiationDepth)
	tc.inst.SetResolver(tc)
	tc.copiers = copysem.New(table, tc.inst)
	tc.captures = capture.New(table, builder, tc.binds)
	return tc
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...interface{}) {
	tc.errors++
	if tc.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportError(tc.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

// reportWith emits an error with notes already attached by fill.
func (tc *typeChecker) reportWith(code diag.Code, span source.Span, msg string, fill func(*diag.ReportBuilder)) {
	tc.errors++
	if tc.reporter == nil {
		return
	}
	b := diag.ReportError(tc.reporter, code, span, msg)
	if fill != nil {
		fill(b)
	}
	b.Emit()
}

func (tc *typeChecker) warn(code diag.Code, span source.Span, format string, args ...interface{}) {
	if tc.reporter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if b := diag.ReportWarning(tc.reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

func (tc *typeChecker) name(id source.StringID) string {
	return tc.strs.MustLookup(id)
}

func (tc *typeChecker) label(t types.TypeID) string {
	return types.Label(tc.types, tc.strs, t)
}

// setType fills an expression slot. A slot is written once; refilling it
// with a different type is a bug in the pass.
func (tc *typeChecker) setType(id ast.ExprID, t types.TypeID) types.TypeID {
	if t == types.NoTypeID {
		return t
	}
	if !tc.builder.Exprs.SetType(id, t) {
		diag.Internal("sema: type slot of expression %d already holds %s, refilled with %s",
			id, tc.label(tc.builder.Exprs.TypeOf(id)), tc.label(t))
	}
	return t
}

func (tc *typeChecker) span(id ast.ExprID) source.Span {
	if x := tc.builder.Exprs.Get(id); x != nil {
		return x.Span
	}
	return source.NoSpan
}

// enter opens a local scope under the current one and returns a function
// restoring the previous scope.
func (tc *typeChecker) enter(kind symbols.ScopeKind, owner symbols.SymbolID, sp source.Span) func() {
	prev := tc.scope
	tc.scope = tc.table.NewScope(kind, prev, owner, sp)
	return func() { tc.scope = prev }
}

// define installs a symbol and reports duplicates.
func (tc *typeChecker) define(scope symbols.ScopeID, sym *symbols.Symbol) symbols.SymbolID {
	id, err := tc.table.Define(scope, sym)
	if err != nil {
		tc.report(diag.SemaDuplicateSymbol, sym.Span, "%s", err.Error())
		return symbols.NoSymbolID
	}
	return id
}

// defineVar defines a local value and warns when it shadows an outer one.
func (tc *typeChecker) defineVar(sym *symbols.Symbol) symbols.SymbolID {
	id := tc.define(tc.scope, sym)
	if !id.IsValid() {
		return id
	}
	if prev, ok := tc.table.Shadowed(tc.scope, sym.Name); ok {
		p := tc.table.Sym(prev)
		tc.warn(diag.SemaShadowSymbol, sym.Span, "Shadowing variable '%s'. It shadows a variable at line:%d, col:%d",
			tc.name(sym.Name), p.Span.Line, p.Span.Col)
	}
	return id
}

// assignable reports whether a value of type src can initialise a slot of
// type dst. Besides equality this admits a fixed array for a dynamic array of
// the same element type and a concrete type for a template pattern.
func (tc *typeChecker) assignable(dst, src types.TypeID) bool {
	if dst == src {
		return true
	}
	return tc.types.Unify(dst, src, make(map[types.TypeID]types.TypeID))
}

func itoa(n int) string { return strconv.Itoa(n) }
