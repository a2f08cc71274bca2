package mono

import (
	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// CheckInstance verifies that no placeholder remains in the signature of
// inst, in the symbols of its scopes or in any type slot of its body,
// nested lambda bodies included.
func (m *Instantiator) CheckInstance(inst symbols.SymbolID) error {
	sym := m.table.Sym(inst)
	if sym == nil || sym.Func == nil {
		return nil
	}
	fn := sym.Func
	c := escapeChecker{m: m, inst: inst}
	for _, p := range fn.ParamTypes {
		c.check(p, sym.Span)
	}
	c.check(fn.Result, sym.Span)
	c.check(sym.Type, sym.Span)
	if fn.Scope.IsValid() {
		c.scope(fn.Scope)
	}
	if fn.Item.IsValid() {
		c.item(fn.Item)
	}
	return c.err
}

type escapeChecker struct {
	m    *Instantiator
	inst symbols.SymbolID
	err  error
}

func (c *escapeChecker) check(t types.TypeID, sp source.Span) {
	if c.err != nil || !c.m.table.Types.ContainsPlaceholder(t) {
		return
	}
	sym := c.m.table.Sym(c.inst)
	c.err = &EscapeError{
		Instance: c.m.Label(sym.Func.Template, sym.Func.ParamTypes),
		Type:     types.Label(c.m.table.Types, c.m.table.Strings, t),
		Span:     sp,
	}
}

func (c *escapeChecker) scope(id symbols.ScopeID) {
	sc := c.m.table.Scopes.Get(id)
	for _, s := range sc.Symbols {
		sym := c.m.table.Sym(s)
		c.check(sym.Type, sym.Span)
	}
	for _, child := range sc.Children {
		c.scope(child)
	}
}

func (c *escapeChecker) item(id ast.ItemID) {
	fn, ok := c.m.tree.Items.Func(id)
	if !ok {
		return
	}
	exprs := c.m.tree.Exprs
	var lambdas []ast.ItemID
	c.m.tree.Inspect(fn.Body, func(e ast.ExprID) bool {
		x := exprs.Get(e)
		c.check(x.Type, x.Span)
		if l, ok := exprs.Lambda(e); ok {
			lambdas = append(lambdas, l.Func)
		}
		return c.err == nil
	})
	for _, l := range lambdas {
		c.item(l)
	}
}
