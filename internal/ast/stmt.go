package ast

import "github.com/rhysd/Dachs-sub001/internal/source"

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtAssign
	StmtExpr
	StmtReturn
	StmtIf
	StmtWhile
	StmtFor
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type BlockStmt struct {
	Stmts []StmtID
}

// LetStmt declares one variable. "var" sets Mutable.
type LetStmt struct {
	Name     source.StringID
	NameSpan source.Span
	Mutable  bool
	Type     TypeExprID
	Value    ExprID
}

type AssignStmt struct {
	Target ExprID
	Value  ExprID
}

type ExprStmt struct {
	Expr ExprID
}

type ReturnStmt struct {
	Value ExprID
}

type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

// ForStmt iterates over an array or a range binding Var in a fresh scope.
type ForStmt struct {
	Var     source.StringID
	VarSpan source.Span
	Iter    ExprID
	Body    StmtID
}

type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[BlockStmt]
	Lets    *Arena[LetStmt]
	Assigns *Arena[AssignStmt]
	Exprs   *Arena[ExprStmt]
	Returns *Arena[ReturnStmt]
	Ifs     *Arena[IfStmt]
	Whiles  *Arena[WhileStmt]
	Fors    *Arena[ForStmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[BlockStmt](capHint / 2),
		Lets:    NewArena[LetStmt](capHint / 2),
		Assigns: NewArena[AssignStmt](capHint / 4),
		Exprs:   NewArena[ExprStmt](capHint / 2),
		Returns: NewArena[ReturnStmt](capHint / 4),
		Ifs:     NewArena[IfStmt](capHint / 4),
		Whiles:  NewArena[WhileStmt](capHint / 8),
		Fors:    NewArena[ForStmt](capHint / 8),
	}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) new(kind StmtKind, sp source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (s *Stmts) NewBlock(sp source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, sp, s.Blocks.Allocate(BlockStmt{Stmts: stmts}))
}

func (s *Stmts) NewLet(sp source.Span, let LetStmt) StmtID {
	return s.new(StmtLet, sp, s.Lets.Allocate(let))
}

func (s *Stmts) NewAssign(sp source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, sp, s.Assigns.Allocate(AssignStmt{Target: target, Value: value}))
}

func (s *Stmts) NewExpr(sp source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, sp, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) NewReturn(sp source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, sp, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) NewIf(sp source.Span, cond ExprID, then, els StmtID) StmtID {
	return s.new(StmtIf, sp, s.Ifs.Allocate(IfStmt{Cond: cond, Then: then, Else: els}))
}

func (s *Stmts) NewWhile(sp source.Span, cond ExprID, body StmtID) StmtID {
	return s.new(StmtWhile, sp, s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
}

func (s *Stmts) NewFor(sp source.Span, f ForStmt) StmtID {
	return s.new(StmtFor, sp, s.Fors.Allocate(f))
}

func payloadOf[T any](s *Stmts, id StmtID, kind StmtKind, arena *Arena[T]) (*T, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return nil, false
	}
	return arena.Get(uint32(st.Payload)), true
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) { return payloadOf(s, id, StmtBlock, s.Blocks) }
func (s *Stmts) Let(id StmtID) (*LetStmt, bool)     { return payloadOf(s, id, StmtLet, s.Lets) }
func (s *Stmts) Assign(id StmtID) (*AssignStmt, bool) {
	return payloadOf(s, id, StmtAssign, s.Assigns)
}
func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool)     { return payloadOf(s, id, StmtExpr, s.Exprs) }
func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) { return payloadOf(s, id, StmtReturn, s.Returns) }
func (s *Stmts) If(id StmtID) (*IfStmt, bool)         { return payloadOf(s, id, StmtIf, s.Ifs) }
func (s *Stmts) While(id StmtID) (*WhileStmt, bool)   { return payloadOf(s, id, StmtWhile, s.Whiles) }
func (s *Stmts) For(id StmtID) (*ForStmt, bool)       { return payloadOf(s, id, StmtFor, s.Fors) }
