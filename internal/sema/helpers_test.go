package sema

import (
	"context"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// tree builds a syntax tree by hand. Every node gets a span on a line of
// its own so diagnostics can be told apart.
type tree struct {
	t    *testing.T
	b    *ast.Builder
	strs *source.Interner
	file ast.FileID
	line uint32
}

func newTree(t *testing.T) *tree {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	return &tree{t: t, b: b, strs: source.NewInterner(), file: b.NewFile("test.dcs", source.NoSpan)}
}

func (tr *tree) sp() source.Span {
	tr.line++
	return source.Span{Line: tr.line, Col: 1, Len: 1}
}

func (tr *tree) id(s string) source.StringID { return tr.strs.Intern(s) }

func (tr *tree) ty(name string, args ...ast.TypeExprID) ast.TypeExprID {
	return tr.b.Types.New(ast.TypeExpr{Kind: ast.TypeNamed, Span: tr.sp(), Name: tr.id(name), Elems: args})
}

func (tr *tree) arrayTy(elem ast.TypeExprID) ast.TypeExprID {
	return tr.b.Types.New(ast.TypeExpr{Kind: ast.TypeArray, Span: tr.sp(), Elems: []ast.TypeExprID{elem}, Count: types.DynamicLength})
}

func (tr *tree) ident(name string) ast.ExprID { return tr.b.Exprs.NewIdent(tr.sp(), tr.id(name)) }

func (tr *tree) lit(kind ast.LitKind, text string) ast.ExprID {
	return tr.b.Exprs.NewLit(tr.sp(), kind, text)
}

func (tr *tree) num(text string) ast.ExprID { return tr.lit(ast.LitInt, text) }

func (tr *tree) bin(op ast.BinaryOp, l, r ast.ExprID) ast.ExprID {
	return tr.b.Exprs.NewBinary(tr.sp(), op, l, r)
}

func (tr *tree) call(name string, args ...ast.ExprID) ast.ExprID {
	return tr.b.Exprs.NewCall(tr.sp(), tr.ident(name), args)
}

func (tr *tree) member(recv ast.ExprID, name string) ast.ExprID {
	sp := tr.sp()
	return tr.b.Exprs.NewMember(sp, recv, tr.id(name), sp)
}

func (tr *tree) method(recv ast.ExprID, name string, args ...ast.ExprID) ast.ExprID {
	return tr.b.Exprs.NewCall(tr.sp(), tr.member(recv, name), args)
}

func (tr *tree) array(elems ...ast.ExprID) ast.ExprID { return tr.b.Exprs.NewArray(tr.sp(), elems) }

func (tr *tree) newObj(class ast.TypeExprID, args ...ast.ExprID) ast.ExprID {
	return tr.b.Exprs.NewNew(tr.sp(), class, args)
}

func (tr *tree) lambda(params []ast.Param, body ...ast.StmtID) ast.ExprID {
	sp := tr.sp()
	item := tr.b.Items.NewFunc(sp, ast.FuncItem{Name: tr.id("lambda"), Params: params, Body: tr.block(body...), Lambda: true})
	return tr.b.Exprs.NewLambda(sp, item)
}

func (tr *tree) let(name string, value ast.ExprID) ast.StmtID {
	sp := tr.sp()
	return tr.b.Stmts.NewLet(sp, ast.LetStmt{Name: tr.id(name), NameSpan: sp, Value: value})
}

func (tr *tree) varStmt(name string, value ast.ExprID) ast.StmtID {
	sp := tr.sp()
	return tr.b.Stmts.NewLet(sp, ast.LetStmt{Name: tr.id(name), NameSpan: sp, Mutable: true, Value: value})
}

func (tr *tree) assign(target, value ast.ExprID) ast.StmtID {
	return tr.b.Stmts.NewAssign(tr.sp(), target, value)
}

func (tr *tree) ret(value ast.ExprID) ast.StmtID { return tr.b.Stmts.NewReturn(tr.sp(), value) }

func (tr *tree) expr(e ast.ExprID) ast.StmtID { return tr.b.Stmts.NewExpr(tr.sp(), e) }

func (tr *tree) ifStmt(cond ast.ExprID, then ...ast.StmtID) ast.StmtID {
	return tr.b.Stmts.NewIf(tr.sp(), cond, tr.block(then...), ast.NoStmtID)
}

func (tr *tree) block(stmts ...ast.StmtID) ast.StmtID { return tr.b.Stmts.NewBlock(tr.sp(), stmts) }

func (tr *tree) param(name string, ty ast.TypeExprID) ast.Param {
	return ast.Param{Name: tr.id(name), Span: tr.sp(), Type: ty}
}

func (tr *tree) params(ps ...ast.Param) []ast.Param { return ps }

// fn declares a top-level function.
func (tr *tree) fn(name string, params []ast.Param, result ast.TypeExprID, body ...ast.StmtID) ast.ItemID {
	item := tr.b.Items.NewFunc(tr.sp(), ast.FuncItem{Name: tr.id(name), Params: params, Result: result, Body: tr.block(body...), Public: true})
	tr.b.PushItem(tr.file, item)
	return item
}

// memberFn builds a member function to pass to class.
func (tr *tree) memberFn(name string, public bool, params []ast.Param, body ...ast.StmtID) ast.ItemID {
	return tr.b.Items.NewFunc(tr.sp(), ast.FuncItem{Name: tr.id(name), Params: params, Body: tr.block(body...), Public: public, Member: true})
}

func (tr *tree) field(name string, ty ast.TypeExprID, public bool) ast.FieldDecl {
	return ast.FieldDecl{Name: tr.id(name), Span: tr.sp(), Type: ty, Public: public}
}

func (tr *tree) class(name string, fields []ast.FieldDecl, methods ...ast.ItemID) ast.ItemID {
	item := tr.b.Items.NewClass(tr.sp(), ast.ClassItem{Name: tr.id(name), Fields: fields, Methods: methods})
	tr.b.PushItem(tr.file, item)
	return item
}

func (tr *tree) check() (*Result, *diag.Bag) {
	tr.t.Helper()
	return tr.checkWith(Options{})
}

func (tr *tree) checkWith(opts Options) (*Result, *diag.Bag) {
	tr.t.Helper()
	bag := diag.NewBag(100)
	opts.Reporter = diag.BagReporter{Bag: bag}
	opts.Strings = tr.strs
	res := Check(context.Background(), tr.b, []ast.FileID{tr.file}, opts)
	return res, bag
}

// mustClean fails the test when any error was reported.
func mustClean(t *testing.T, res *Result, bag *diag.Bag) {
	t.Helper()
	if res.Errors != 0 || bag.HasErrors() {
		for _, d := range bag.Items() {
			t.Logf("%s", d.Render())
		}
		t.Fatalf("unexpected errors: %d", res.Errors)
	}
}

// only returns the single diagnostic with code.
func only(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	ds := bag.Filter(code)
	if len(ds) != 1 {
		for _, d := range bag.Items() {
			t.Logf("%s", d.Render())
		}
		t.Fatalf("want one %s, got %d", code.ID(), len(ds))
	}
	return ds[0]
}
