// Package sema drives the two-pass semantic analysis of a Dachs unit: the
// forward pass registers every declaration, the body pass types expressions,
// selects overloads, instantiates templates, resolves copiers and analyses
// closure captures.
package sema

import (
	"context"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/capture"
	"github.com/rhysd/Dachs-sub001/internal/copysem"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/mono"
	"github.com/rhysd/Dachs-sub001/internal/observ"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/trace"
)

// Options configures one analysis run.
type Options struct {
	Reporter diag.Reporter
	// Table is the symbol table to populate. When nil a fresh one is created
	// over Strings.
	Table   *symbols.Table
	Strings *source.Interner
	// MaxInstantiationDepth bounds nested template instantiations
	// (mono.DefaultMaxDepth when zero).
	MaxInstantiationDepth int
	// Timer, when set, records the forward and body passes.
	Timer *observ.Timer
}

// Lambda records one resolved lambda expression.
type Lambda struct {
	Expr   ast.ExprID
	Symbol symbols.SymbolID
	Scope  symbols.ScopeID
	Map    *capture.Map
}

// Result holds everything the analysis resolved.
type Result struct {
	Table     *symbols.Table
	Instances *mono.Instantiator
	Copiers   *copysem.Resolver
	Captures  *capture.Analyzer
	Bindings  Bindings
	// Calls maps call expressions (and member reads resolved as calls) to the
	// concrete callee.
	Calls   map[ast.ExprID]symbols.SymbolID
	Items   map[ast.ItemID]symbols.SymbolID
	Lambdas []Lambda
	Errors  int
	// Halted is set when the body pass stopped early. HaltedAt names the
	// top-level declaration that produced the first error; it is invalid when
	// the forward pass already failed.
	Halted   bool
	HaltedAt ast.ItemID
	// Fatal is the recursive instantiation that aborted the analysis.
	Fatal error
}

// Check analyses the given files of builder.
func Check(ctx context.Context, builder *ast.Builder, files []ast.FileID, opts Options) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	table := opts.Table
	if table == nil {
		table = symbols.NewTable(symbols.Hints{}, opts.Strings, nil)
	}
	tc := newTypeChecker(ctx, builder, table, opts)
	tc.timer = opts.Timer
	tc.run(files)
	return tc.result()
}

func (tc *typeChecker) run(files []ast.FileID) {
	items := tc.collectItems(files)

	span := trace.Begin(trace.FromContext(tc.ctx), trace.ScopePass, "forward", trace.CurrentSpan(tc.ctx))
	phase := tc.beginPhase("forward")
	tc.declareItems(items)
	tc.endPhase(phase, itoa(len(items))+" items")
	span.WithExtra("items", itoa(len(items))).End("")
	if tc.errors > 0 {
		tc.halted = true
		return
	}

	span = trace.Begin(trace.FromContext(tc.ctx), trace.ScopePass, "bodies", trace.CurrentSpan(tc.ctx))
	parent := tc.ctx
	tc.ctx = trace.WithSpan(parent, span)
	phase = tc.beginPhase("bodies")
	tc.checkBodies(items)
	tc.endPhase(phase, itoa(tc.inst.Len())+" instances")
	tc.ctx = parent
	span.WithExtra("instances", itoa(tc.inst.Len())).End("")
}

func (tc *typeChecker) beginPhase(name string) int {
	if tc.timer == nil {
		return -1
	}
	return tc.timer.Begin(name)
}

func (tc *typeChecker) endPhase(idx int, note string) {
	if tc.timer != nil {
		tc.timer.End(idx, note)
	}
}

func (tc *typeChecker) collectItems(files []ast.FileID) []ast.ItemID {
	var items []ast.ItemID
	for _, f := range files {
		file := tc.builder.Files.Get(f)
		if file == nil {
			continue
		}
		items = append(items, file.Items...)
	}
	return items
}

func (tc *typeChecker) result() *Result {
	return &Result{
		Table:     tc.table,
		Instances: tc.inst,
		Copiers:   tc.copiers,
		Captures:  tc.captures,
		Bindings:  tc.binds,
		Calls:     tc.calls,
		Items:     tc.items,
		Lambdas:   tc.lambdas,
		Errors:    tc.errors,
		Halted:    tc.halted,
		HaltedAt:  tc.haltedAt,
		Fatal:     tc.fatal,
	}
}
