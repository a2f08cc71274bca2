package fixture

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

var typeShapes = map[string]ast.TypeExprKind{
	"tuple":   ast.TypeTuple,
	"func":    ast.TypeFunc,
	"array":   ast.TypeArray,
	"pointer": ast.TypePointer,
	"dict":    ast.TypeDict,
	"range":   ast.TypeRange,
	"maybe":   ast.TypeMaybe,
}

// typeExpr reads a type. A scalar is a named type; {name, args} is a named
// type with arguments; the other shapes are single-key mappings.
func (d *decoder) typeExpr(n *yaml.Node) (ast.TypeExprID, error) {
	sp := d.span(n)
	if n.Kind == yaml.ScalarNode {
		name, err := d.name(n)
		if err != nil {
			return ast.NoTypeExprID, err
		}
		return d.b.Types.New(ast.TypeExpr{Kind: ast.TypeNamed, Span: sp, Name: name}), nil
	}
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		return ast.NoTypeExprID, d.errorf(n, "expected a type")
	}
	if nameNode := field(n, "name"); nameNode != nil {
		name, err := d.name(nameNode)
		if err != nil {
			return ast.NoTypeExprID, err
		}
		args, err := d.typeList(field(n, "args"))
		if err != nil {
			return ast.NoTypeExprID, err
		}
		return d.b.Types.New(ast.TypeExpr{Kind: ast.TypeNamed, Span: d.span(nameNode), Name: name, Elems: args}), nil
	}
	key, val := n.Content[0].Value, n.Content[1]
	kind, ok := typeShapes[key]
	if !ok {
		return ast.NoTypeExprID, d.errorf(n, "unknown type shape %q", key)
	}
	te := ast.TypeExpr{Kind: kind, Span: d.span(n.Content[0])}
	var err error
	switch kind {
	case ast.TypeTuple, ast.TypeFunc:
		if te.Elems, err = d.typeList(val); err != nil {
			return ast.NoTypeExprID, err
		}
		if kind == ast.TypeFunc {
			r := field(n, "result")
			if r == nil {
				return ast.NoTypeExprID, d.errorf(n, "function type needs a result")
			}
			if te.Result, err = d.typeExpr(r); err != nil {
				return ast.NoTypeExprID, err
			}
		}
	case ast.TypeDict:
		if te.Elems, err = d.typeList(val); err != nil {
			return ast.NoTypeExprID, err
		}
		if len(te.Elems) != 2 {
			return ast.NoTypeExprID, d.errorf(val, "dictionary type needs a key and a value")
		}
	default:
		elem, err := d.typeExpr(val)
		if err != nil {
			return ast.NoTypeExprID, err
		}
		te.Elems = []ast.TypeExprID{elem}
		if kind == ast.TypeArray {
			te.Count = types.DynamicLength
			if ln := field(n, "len"); ln != nil {
				count, err := strconv.ParseUint(ln.Value, 10, 32)
				if err != nil || uint32(count) == types.DynamicLength {
					return ast.NoTypeExprID, d.errorf(ln, "bad array length %q", ln.Value)
				}
				te.Count = uint32(count)
			}
		}
	}
	return d.b.Types.New(te), nil
}

func (d *decoder) typeList(n *yaml.Node) ([]ast.TypeExprID, error) {
	nodes, err := d.list(n)
	if err != nil {
		return nil, err
	}
	out := make([]ast.TypeExprID, 0, len(nodes))
	for _, tn := range nodes {
		t, err := d.typeExpr(tn)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

var litKinds = map[string]ast.LitKind{
	"int":    ast.LitInt,
	"uint":   ast.LitUint,
	"float":  ast.LitFloat,
	"bool":   ast.LitBool,
	"char":   ast.LitChar,
	"string": ast.LitString,
	"unit":   ast.LitUnit,
}

func (d *decoder) expr(n *yaml.Node) (ast.ExprID, error) {
	key, val, err := d.tagged(n, "expression")
	if err != nil {
		return ast.NoExprID, err
	}
	sp := d.span(n.Content[0])
	if kind, ok := litKinds[key]; ok {
		if kind != ast.LitUnit && val.Kind != yaml.ScalarNode {
			return ast.NoExprID, d.errorf(val, "%s literal must be a scalar", key)
		}
		text := val.Value
		if kind == ast.LitUnit {
			text = ""
		}
		return d.b.Exprs.NewLit(sp, kind, text), nil
	}
	switch key {
	case "ident":
		name, err := d.name(val)
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewIdent(d.span(val), name), nil
	case "tuple", "array":
		elems, err := d.exprList(val)
		if err != nil {
			return ast.NoExprID, err
		}
		if key == "tuple" {
			return d.b.Exprs.NewTuple(sp, elems), nil
		}
		return d.b.Exprs.NewArray(sp, elems), nil
	case "dict":
		entries, err := d.list(val)
		if err != nil {
			return ast.NoExprID, err
		}
		keys := make([]ast.ExprID, 0, len(entries))
		values := make([]ast.ExprID, 0, len(entries))
		for _, en := range entries {
			k, v, err := d.pair(en, "key", "value")
			if err != nil {
				return ast.NoExprID, err
			}
			keys = append(keys, k)
			values = append(values, v)
		}
		return d.b.Exprs.NewDict(sp, keys, values), nil
	case "range":
		bounds, err := d.exprList(val)
		if err != nil {
			return ast.NoExprID, err
		}
		if len(bounds) != 2 {
			return ast.NoExprID, d.errorf(val, "range needs two bounds")
		}
		return d.b.Exprs.NewRange(sp, bounds[0], bounds[1]), nil
	case "binary":
		opNode := field(val, "op")
		if opNode == nil {
			return ast.NoExprID, d.errorf(val, "binary expression needs an op")
		}
		op, ok := ast.ParseBinaryOp(opNode.Value)
		if !ok {
			return ast.NoExprID, d.errorf(opNode, "unknown operator %q", opNode.Value)
		}
		l, r, err := d.pair(val, "left", "right")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewBinary(d.span(opNode), op, l, r), nil
	case "unary":
		opNode := field(val, "op")
		if opNode == nil {
			return ast.NoExprID, d.errorf(val, "unary expression needs an op")
		}
		var op ast.UnaryOp
		switch opNode.Value {
		case "-":
			op = ast.OpNeg
		case "!":
			op = ast.OpNot
		default:
			return ast.NoExprID, d.errorf(opNode, "unknown operator %q", opNode.Value)
		}
		x, err := d.required(val, "x")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewUnary(d.span(opNode), op, x), nil
	case "call":
		callee, err := d.required(val, "callee")
		if err != nil {
			return ast.NoExprID, err
		}
		args, err := d.exprList(field(val, "args"))
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewCall(sp, callee, args), nil
	case "member":
		recv, err := d.required(val, "recv")
		if err != nil {
			return ast.NoExprID, err
		}
		nameNode := field(val, "name")
		if nameNode == nil {
			return ast.NoExprID, d.errorf(val, "member access needs a name")
		}
		name, err := d.name(nameNode)
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewMember(sp, recv, name, d.span(nameNode)), nil
	case "index":
		x, idx, err := d.pair(val, "x", "index")
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewIndex(sp, x, idx), nil
	case "new":
		cn := field(val, "class")
		if cn == nil {
			return ast.NoExprID, d.errorf(val, "'new' needs a class")
		}
		class, err := d.typeExpr(cn)
		if err != nil {
			return ast.NoExprID, err
		}
		args, err := d.exprList(field(val, "args"))
		if err != nil {
			return ast.NoExprID, err
		}
		return d.b.Exprs.NewNew(sp, class, args), nil
	case "lambda":
		fn, err := d.funcItem(val, d.strs.Intern("lambda"), false)
		if err != nil {
			return ast.NoExprID, err
		}
		fn.Lambda = true
		return d.b.Exprs.NewLambda(sp, d.b.Items.NewFunc(sp, fn)), nil
	}
	return ast.NoExprID, d.errorf(n, "unknown expression %q", key)
}

func (d *decoder) required(m *yaml.Node, key string) (ast.ExprID, error) {
	n := field(m, key)
	if n == nil {
		return ast.NoExprID, d.errorf(m, "missing %q", key)
	}
	return d.expr(n)
}

func (d *decoder) pair(m *yaml.Node, a, b string) (ast.ExprID, ast.ExprID, error) {
	x, err := d.required(m, a)
	if err != nil {
		return ast.NoExprID, ast.NoExprID, err
	}
	y, err := d.required(m, b)
	if err != nil {
		return ast.NoExprID, ast.NoExprID, err
	}
	return x, y, nil
}

func (d *decoder) exprList(n *yaml.Node) ([]ast.ExprID, error) {
	nodes, err := d.list(n)
	if err != nil {
		return nil, err
	}
	out := make([]ast.ExprID, 0, len(nodes))
	for _, en := range nodes {
		e, err := d.expr(en)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// block reads a statement list. at positions the block when the list is
// absent.
func (d *decoder) block(at, n *yaml.Node) (ast.StmtID, error) {
	nodes, err := d.list(n)
	if err != nil {
		return ast.NoStmtID, err
	}
	sp := d.span(at)
	if n != nil {
		sp = d.span(n)
	}
	stmts := make([]ast.StmtID, 0, len(nodes))
	for _, sn := range nodes {
		s, err := d.stmt(sn)
		if err != nil {
			return ast.NoStmtID, err
		}
		stmts = append(stmts, s)
	}
	return d.b.Stmts.NewBlock(sp, stmts), nil
}

func (d *decoder) stmt(n *yaml.Node) (ast.StmtID, error) {
	key, val, err := d.tagged(n, "statement")
	if err != nil {
		return ast.NoStmtID, err
	}
	sp := d.span(n.Content[0])
	switch key {
	case "let", "var":
		nameNode := field(val, "name")
		if nameNode == nil {
			return ast.NoStmtID, d.errorf(val, "%s needs a name", key)
		}
		name, err := d.name(nameNode)
		if err != nil {
			return ast.NoStmtID, err
		}
		let := ast.LetStmt{Name: name, NameSpan: d.span(nameNode), Mutable: key == "var"}
		if t := field(val, "type"); t != nil {
			if let.Type, err = d.typeExpr(t); err != nil {
				return ast.NoStmtID, err
			}
		}
		if let.Value, err = d.required(val, "value"); err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewLet(sp, let), nil
	case "assign":
		target, value, err := d.pair(val, "target", "value")
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewAssign(sp, target, value), nil
	case "expr":
		e, err := d.expr(val)
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewExpr(sp, e), nil
	case "return":
		value := ast.NoExprID
		if !isNull(val) {
			if value, err = d.expr(val); err != nil {
				return ast.NoStmtID, err
			}
		}
		return d.b.Stmts.NewReturn(sp, value), nil
	case "if":
		cond, err := d.required(val, "cond")
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := d.block(val, field(val, "then"))
		if err != nil {
			return ast.NoStmtID, err
		}
		els := ast.NoStmtID
		if en := field(val, "else"); en != nil {
			if els, err = d.block(val, en); err != nil {
				return ast.NoStmtID, err
			}
		}
		return d.b.Stmts.NewIf(sp, cond, then, els), nil
	case "while":
		cond, err := d.required(val, "cond")
		if err != nil {
			return ast.NoStmtID, err
		}
		body, err := d.block(val, field(val, "body"))
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewWhile(sp, cond, body), nil
	case "for":
		varNode := field(val, "var")
		if varNode == nil {
			return ast.NoStmtID, d.errorf(val, "for needs a var")
		}
		name, err := d.name(varNode)
		if err != nil {
			return ast.NoStmtID, err
		}
		iter, err := d.required(val, "in")
		if err != nil {
			return ast.NoStmtID, err
		}
		body, err := d.block(val, field(val, "body"))
		if err != nil {
			return ast.NoStmtID, err
		}
		return d.b.Stmts.NewFor(sp, ast.ForStmt{Var: name, VarSpan: d.span(varNode), Iter: iter, Body: body}), nil
	case "block":
		return d.block(n, val)
	}
	return ast.NoStmtID, d.errorf(n, "unknown statement %q", key)
}
