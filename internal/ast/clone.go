package ast

import "slices"

// CloneFunc deep-copies a function item and its body with fresh node ids and
// empty type slots. Nested lambdas are cloned too. Type syntax is immutable
// and shared.
func (b *Builder) CloneFunc(id ItemID) ItemID {
	item := b.Items.Get(id)
	fn, ok := b.Items.Func(id)
	if !ok {
		return NoItemID
	}
	c := cloner{b: b}
	cp := *fn
	cp.Params = slices.Clone(fn.Params)
	cp.Body = c.stmt(fn.Body)
	return b.Items.NewFunc(item.Span, cp)
}

type cloner struct {
	b *Builder
}

func (c *cloner) stmts(ids []StmtID) []StmtID {
	out := make([]StmtID, len(ids))
	for i, id := range ids {
		out[i] = c.stmt(id)
	}
	return out
}

func (c *cloner) stmt(id StmtID) StmtID {
	st := c.b.Stmts.Get(id)
	if st == nil {
		return NoStmtID
	}
	s := c.b.Stmts
	sp := st.Span
	switch st.Kind {
	case StmtBlock:
		blk, _ := s.Block(id)
		return s.NewBlock(sp, c.stmts(blk.Stmts))
	case StmtLet:
		let, _ := s.Let(id)
		cp := *let
		cp.Value = c.expr(let.Value)
		return s.NewLet(sp, cp)
	case StmtAssign:
		as, _ := s.Assign(id)
		return s.NewAssign(sp, c.expr(as.Target), c.expr(as.Value))
	case StmtExpr:
		es, _ := s.Expr(id)
		return s.NewExpr(sp, c.expr(es.Expr))
	case StmtReturn:
		ret, _ := s.Return(id)
		return s.NewReturn(sp, c.expr(ret.Value))
	case StmtIf:
		ifs, _ := s.If(id)
		return s.NewIf(sp, c.expr(ifs.Cond), c.stmt(ifs.Then), c.stmt(ifs.Else))
	case StmtWhile:
		wh, _ := s.While(id)
		return s.NewWhile(sp, c.expr(wh.Cond), c.stmt(wh.Body))
	case StmtFor:
		fs, _ := s.For(id)
		cp := *fs
		cp.Iter = c.expr(fs.Iter)
		cp.Body = c.stmt(fs.Body)
		return s.NewFor(sp, cp)
	}
	return NoStmtID
}

func (c *cloner) exprs(ids []ExprID) []ExprID {
	out := make([]ExprID, len(ids))
	for i, id := range ids {
		out[i] = c.expr(id)
	}
	return out
}

func (c *cloner) expr(id ExprID) ExprID {
	x := c.b.Exprs.Get(id)
	if x == nil {
		return NoExprID
	}
	e := c.b.Exprs
	sp := x.Span
	switch x.Kind {
	case ExprIdent:
		ident, _ := e.Ident(id)
		return e.NewIdent(sp, ident.Name)
	case ExprLit:
		lit, _ := e.Lit(id)
		return e.NewLit(sp, lit.Kind, lit.Text)
	case ExprTuple:
		l, _ := e.List(id)
		return e.NewTuple(sp, c.exprs(l.Elems))
	case ExprArray:
		l, _ := e.List(id)
		return e.NewArray(sp, c.exprs(l.Elems))
	case ExprDict:
		d, _ := e.Dict(id)
		return e.NewDict(sp, c.exprs(d.Keys), c.exprs(d.Values))
	case ExprRange:
		r, _ := e.Range(id)
		return e.NewRange(sp, c.expr(r.Lo), c.expr(r.Hi))
	case ExprBinary:
		bin, _ := e.Binary(id)
		return e.NewBinary(sp, bin.Op, c.expr(bin.Left), c.expr(bin.Right))
	case ExprUnary:
		u, _ := e.Unary(id)
		return e.NewUnary(sp, u.Op, c.expr(u.X))
	case ExprCall:
		call, _ := e.Call(id)
		return e.NewCall(sp, c.expr(call.Callee), c.exprs(call.Args))
	case ExprMember:
		m, _ := e.Member(id)
		return e.NewMember(sp, c.expr(m.Recv), m.Name, m.NameSpan)
	case ExprIndex:
		ix, _ := e.Index(id)
		return e.NewIndex(sp, c.expr(ix.X), c.expr(ix.Index))
	case ExprNew:
		n, _ := e.New(id)
		return e.NewNew(sp, n.Class, c.exprs(n.Args))
	case ExprLambda:
		l, _ := e.Lambda(id)
		return e.NewLambda(sp, c.b.CloneFunc(l.Func))
	case ExprEnvField:
		f, _ := e.EnvField(id)
		out := e.NewIdent(sp, f.Name)
		e.RewriteEnvField(out, c.expr(f.Receiver), f.Offset, f.Name)
		return out
	}
	return NoExprID
}
