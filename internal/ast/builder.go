package ast

import (
	"github.com/rhysd/Dachs-sub001/internal/source"
)

type Hints struct{ Files, Items, Stmts, Exprs, Types uint }

// Builder owns every arena of one syntax tree.
type Builder struct {
	Files *Files
	Items *Items
	Stmts *Stmts
	Exprs *Exprs
	Types *TypeExprs
	gen   Generation
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Items == 0 {
		hints.Items = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 6
	}
	return &Builder{
		Files: NewFiles(hints.Files),
		Items: NewItems(hints.Items),
		Stmts: NewStmts(hints.Stmts),
		Exprs: NewExprs(hints.Exprs),
		Types: NewTypeExprs(hints.Types),
		gen:   1,
	}
}

// File is one compilation unit as handed over by the parser.
type File struct {
	Span  source.Span
	Path  string
	Items []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{Arena: NewArena[File](capHint)}
}

func (f *Files) New(path string, sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{Path: path, Span: sp}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}

func (b *Builder) NewFile(path string, sp source.Span) FileID {
	return b.Files.New(path, sp)
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}

// Generation returns the current tree generation.
func (b *Builder) Generation() Generation {
	return b.gen
}

func (b *Builder) RefItem(id ItemID) Ref { return Ref{Kind: RefItem, ID: uint32(id), Gen: b.gen} }
func (b *Builder) RefStmt(id StmtID) Ref { return Ref{Kind: RefStmt, ID: uint32(id), Gen: b.gen} }
func (b *Builder) RefExpr(id ExprID) Ref { return Ref{Kind: RefExpr, ID: uint32(id), Gen: b.gen} }

// Alive reports whether ref still points into this tree.
func (b *Builder) Alive(ref Ref) bool {
	if ref.Gen != b.gen || ref.ID == 0 {
		return false
	}
	switch ref.Kind {
	case RefItem:
		return ref.ID <= b.Items.Arena.Len()
	case RefStmt:
		return ref.ID <= b.Stmts.Arena.Len()
	case RefExpr:
		return ref.ID <= b.Exprs.Arena.Len()
	}
	return false
}

// RefSpan returns the position of a live reference.
func (b *Builder) RefSpan(ref Ref) (source.Span, bool) {
	if !b.Alive(ref) {
		return source.Span{}, false
	}
	switch ref.Kind {
	case RefItem:
		return b.Items.Get(ItemID(ref.ID)).Span, true
	case RefStmt:
		return b.Stmts.Get(StmtID(ref.ID)).Span, true
	default:
		return b.Exprs.Get(ExprID(ref.ID)).Span, true
	}
}

// Reset discards the tree. References taken before become dead.
func (b *Builder) Reset() {
	b.Files.Arena.reset()
	for _, a := range []interface{ reset() }{
		b.Items.Arena, b.Items.Funcs, b.Items.Classes, b.Items.Consts,
		b.Stmts.Arena, b.Stmts.Blocks, b.Stmts.Lets, b.Stmts.Assigns, b.Stmts.Exprs,
		b.Stmts.Returns, b.Stmts.Ifs, b.Stmts.Whiles, b.Stmts.Fors,
		b.Exprs.Arena, b.Exprs.Idents, b.Exprs.Lits, b.Exprs.Lists, b.Exprs.Dicts,
		b.Exprs.Ranges, b.Exprs.Binaries, b.Exprs.Unaries, b.Exprs.Calls, b.Exprs.Members,
		b.Exprs.Indices, b.Exprs.News, b.Exprs.Lambdas, b.Exprs.EnvFields,
		b.Types.Arena,
	} {
		a.reset()
	}
	b.gen++
}
