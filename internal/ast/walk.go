package ast

// Inspect calls fn for every expression under stmt in depth-first pre-order.
// If fn returns false the children of that expression are skipped. Lambda
// bodies are not entered; their capture initializers are.
func (b *Builder) Inspect(stmt StmtID, fn func(ExprID) bool) {
	w := walker{b: b, fn: fn}
	w.stmt(stmt)
}

// InspectExpr is Inspect for a single expression tree.
func (b *Builder) InspectExpr(expr ExprID, fn func(ExprID) bool) {
	w := walker{b: b, fn: fn}
	w.expr(expr)
}

type walker struct {
	b  *Builder
	fn func(ExprID) bool
}

func (w *walker) stmt(id StmtID) {
	st := w.b.Stmts.Get(id)
	if st == nil {
		return
	}
	s := w.b.Stmts
	switch st.Kind {
	case StmtBlock:
		blk, _ := s.Block(id)
		for _, c := range blk.Stmts {
			w.stmt(c)
		}
	case StmtLet:
		let, _ := s.Let(id)
		w.expr(let.Value)
	case StmtAssign:
		as, _ := s.Assign(id)
		w.expr(as.Target)
		w.expr(as.Value)
	case StmtExpr:
		es, _ := s.Expr(id)
		w.expr(es.Expr)
	case StmtReturn:
		ret, _ := s.Return(id)
		w.expr(ret.Value)
	case StmtIf:
		ifs, _ := s.If(id)
		w.expr(ifs.Cond)
		w.stmt(ifs.Then)
		w.stmt(ifs.Else)
	case StmtWhile:
		wh, _ := s.While(id)
		w.expr(wh.Cond)
		w.stmt(wh.Body)
	case StmtFor:
		fs, _ := s.For(id)
		w.expr(fs.Iter)
		w.stmt(fs.Body)
	}
}

func (w *walker) exprs(ids []ExprID) {
	for _, id := range ids {
		w.expr(id)
	}
}

func (w *walker) expr(id ExprID) {
	if !id.IsValid() || !w.fn(id) {
		return
	}
	e := w.b.Exprs
	switch e.Get(id).Kind {
	case ExprTuple, ExprArray:
		l, _ := e.List(id)
		w.exprs(l.Elems)
	case ExprDict:
		d, _ := e.Dict(id)
		for i := range d.Keys {
			w.expr(d.Keys[i])
			w.expr(d.Values[i])
		}
	case ExprRange:
		r, _ := e.Range(id)
		w.expr(r.Lo)
		w.expr(r.Hi)
	case ExprBinary:
		bin, _ := e.Binary(id)
		w.expr(bin.Left)
		w.expr(bin.Right)
	case ExprUnary:
		u, _ := e.Unary(id)
		w.expr(u.X)
	case ExprCall:
		c, _ := e.Call(id)
		w.expr(c.Callee)
		w.exprs(c.Args)
	case ExprMember:
		m, _ := e.Member(id)
		w.expr(m.Recv)
	case ExprIndex:
		ix, _ := e.Index(id)
		w.expr(ix.X)
		w.expr(ix.Index)
	case ExprNew:
		n, _ := e.New(id)
		w.exprs(n.Args)
	case ExprLambda:
		l, _ := e.Lambda(id)
		w.exprs(l.Captures)
	case ExprEnvField:
		f, _ := e.EnvField(id)
		w.expr(f.Receiver)
	}
}
