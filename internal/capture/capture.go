// Package capture computes which outer variables a lambda uses and rewrites
// those references into reads of the closure environment.
package capture

import (
	"context"
	"slices"
	"strconv"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/trace"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Bindings maps identifier expressions to the symbols they resolved to.
type Bindings interface {
	SymbolOf(ast.ExprID) symbols.SymbolID
	Bind(ast.ExprID, symbols.SymbolID)
}

// Closure describes one lambda to analyse. Its body must be typed.
type Closure struct {
	Lambda   symbols.SymbolID // lambda function symbol
	Expr     ast.ExprID       // lambda expression in the enclosing body
	Scope    symbols.ScopeID  // lambda function scope
	Body     ast.StmtID
	Receiver symbols.SymbolID // environment parameter
}

// Entry is one rewritten reference.
type Entry struct {
	Ref    ast.ExprID
	Offset uint32
	Symbol symbols.SymbolID
}

// Map is the capture result of one closure. It is immutable once built.
type Map struct {
	Lambda  symbols.SymbolID
	Entries []Entry
	Fields  []symbols.SymbolID // captured symbols in offset order
	Env     types.TypeID       // unit when nothing is captured
}

// Offset returns the environment slot of a captured symbol.
func (m *Map) Offset(sym symbols.SymbolID) (uint32, bool) {
	i := slices.Index(m.Fields, sym)
	if i < 0 {
		return 0, false
	}
	return uint32(i), true
}

func (m *Map) Len() int { return len(m.Fields) }

// Analyzer builds capture maps for the lambdas of a session.
type Analyzer struct {
	table *symbols.Table
	tree  *ast.Builder
	binds Bindings
	maps  map[symbols.SymbolID]*Map
	order []symbols.SymbolID
}

func New(table *symbols.Table, tree *ast.Builder, binds Bindings) *Analyzer {
	return &Analyzer{
		table: table,
		tree:  tree,
		binds: binds,
		maps:  make(map[symbols.SymbolID]*Map),
	}
}

// Map returns the capture map of a resolved lambda.
func (a *Analyzer) Map(lambda symbols.SymbolID) (*Map, bool) {
	m, ok := a.maps[lambda]
	return m, ok
}

// All returns every capture map in resolution order.
func (a *Analyzer) All() []*Map {
	out := make([]*Map, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.maps[id])
	}
	return out
}

// Resolve analyses a closure once. Outer references are numbered in
// first-use order and rewritten in place to environment field reads; one
// capture initializer per field is attached to the lambda expression so an
// enclosing lambda captures through it. Nested lambdas must be resolved
// before their parent.
func (a *Analyzer) Resolve(ctx context.Context, c Closure) *Map {
	if m, ok := a.maps[c.Lambda]; ok {
		return m
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeNode, "capture", trace.CurrentSpan(ctx))

	m := &Map{Lambda: c.Lambda}
	a.tree.Inspect(c.Body, func(e ast.ExprID) bool {
		if a.tree.Exprs.Get(e).Kind != ast.ExprIdent {
			return true
		}
		sym := a.binds.SymbolOf(e)
		if !a.captured(sym, c.Scope) {
			return true
		}
		off, ok := m.Offset(sym)
		if !ok {
			off = uint32(len(m.Fields))
			m.Fields = append(m.Fields, sym)
		}
		m.Entries = append(m.Entries, Entry{Ref: e, Offset: off, Symbol: sym})
		return true
	})

	m.Env = a.envType(c.Lambda, m.Fields)
	a.rewrite(c, m)
	a.initializers(c, m)

	a.maps[c.Lambda] = m
	a.order = append(a.order, c.Lambda)
	span.WithExtra("fields", strconv.Itoa(len(m.Fields))).End("")
	return m
}

// captured reports whether sym is a value owned by a scope enclosing the
// closure. Globals, constants, functions and classes are never captured.
func (a *Analyzer) captured(sym symbols.SymbolID, closure symbols.ScopeID) bool {
	s := a.table.Sym(sym)
	if s == nil || !s.Kind.IsValue() || s.Scope == a.table.Global {
		return false
	}
	return !a.table.Within(s.Scope, closure)
}

func (a *Analyzer) envType(lambda symbols.SymbolID, fields []symbols.SymbolID) types.TypeID {
	if len(fields) == 0 {
		return a.table.Types.Builtins().Unit
	}
	ts := make([]types.TypeID, len(fields))
	for i, f := range fields {
		ts[i] = a.table.Sym(f).Type
	}
	return a.table.Types.InternEnv(uint32(lambda), ts)
}

func (a *Analyzer) rewrite(c Closure, m *Map) {
	exprs := a.tree.Exprs
	recv := a.table.Sym(c.Receiver)
	if recv == nil {
		return
	}
	recv.Type = m.Env
	recvName := recv.Name
	for _, e := range m.Entries {
		sp := exprs.Get(e.Ref).Span
		r := exprs.NewIdent(sp, recvName)
		exprs.SetType(r, m.Env)
		a.binds.Bind(r, c.Receiver)
		exprs.RewriteEnvField(e.Ref, r, e.Offset, a.table.Sym(e.Symbol).Name)
	}
}

func (a *Analyzer) initializers(c Closure, m *Map) {
	if !c.Expr.IsValid() || len(m.Fields) == 0 {
		return
	}
	exprs := a.tree.Exprs
	sp := exprs.Get(c.Expr).Span
	inits := make([]ast.ExprID, len(m.Fields))
	for i, f := range m.Fields {
		sym := a.table.Sym(f)
		id := exprs.NewIdent(sp, sym.Name)
		exprs.SetType(id, sym.Type)
		a.binds.Bind(id, f)
		inits[i] = id
	}
	if l, ok := exprs.Lambda(c.Expr); ok {
		l.Captures = inits
	}
}
