package ast

import (
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprTuple
	ExprArray
	ExprDict
	ExprRange
	ExprBinary
	ExprUnary
	ExprCall
	ExprMember
	ExprIndex
	ExprNew
	ExprLambda
	// ExprEnvField is produced by capture analysis: a former outer reference
	// now reading field Offset of the closure environment.
	ExprEnvField
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "ident"
	case ExprLit:
		return "literal"
	case ExprTuple:
		return "tuple"
	case ExprArray:
		return "array"
	case ExprDict:
		return "dict"
	case ExprRange:
		return "range"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprCall:
		return "call"
	case ExprMember:
		return "member"
	case ExprIndex:
		return "index"
	case ExprNew:
		return "new"
	case ExprLambda:
		return "lambda"
	case ExprEnvField:
		return "env field"
	}
	return "expr"
}

// Expr is a node header. Type is the slot filled by semantic analysis.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Type    types.TypeID
	Payload PayloadID
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitUint
	LitFloat
	LitBool
	LitChar
	LitString
	LitUnit
)

type LitExpr struct {
	Kind LitKind
	Text string
}

type IdentExpr struct {
	Name source.StringID
}

// ListExpr is a tuple or array literal.
type ListExpr struct {
	Elems []ExprID
}

type DictExpr struct {
	Keys   []ExprID
	Values []ExprID
}

type RangeExpr struct {
	Lo, Hi ExprID
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binaryOpText = [...]string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||"}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// ParseBinaryOp maps operator text to BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, t := range binaryOpText {
		if t == s {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

func (op BinaryOp) IsComparison() bool { return op >= OpEq && op <= OpGe }
func (op BinaryOp) IsLogical() bool    { return op == OpAnd || op == OpOr }

type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
)

type BinaryExpr struct {
	Op          BinaryOp
	Left, Right ExprID
}

type UnaryExpr struct {
	Op UnaryOp
	X  ExprID
}

// CallExpr: Callee is an ident (free function or closure variable) or a
// member expression (UFCS call recv.f(args)).
type CallExpr struct {
	Callee ExprID
	Args   []ExprID
}

type MemberExpr struct {
	Recv     ExprID
	Name     source.StringID
	NameSpan source.Span
}

type IndexExpr struct {
	X, Index ExprID
}

// NewExpr constructs a class instance from positional field values.
type NewExpr struct {
	Class TypeExprID
	Args  []ExprID
}

// LambdaExpr refers to the lambda's function item. Captures holds one
// initializer per capture map entry, in offset order, evaluated at the
// lambda site to build the environment.
type LambdaExpr struct {
	Func     ItemID
	Captures []ExprID
}

type EnvFieldExpr struct {
	Receiver ExprID
	Offset   uint32
	Name     source.StringID
}

type Exprs struct {
	Arena     *Arena[Expr]
	Idents    *Arena[IdentExpr]
	Lits      *Arena[LitExpr]
	Lists     *Arena[ListExpr]
	Dicts     *Arena[DictExpr]
	Ranges    *Arena[RangeExpr]
	Binaries  *Arena[BinaryExpr]
	Unaries   *Arena[UnaryExpr]
	Calls     *Arena[CallExpr]
	Members   *Arena[MemberExpr]
	Indices   *Arena[IndexExpr]
	News      *Arena[NewExpr]
	Lambdas   *Arena[LambdaExpr]
	EnvFields *Arena[EnvFieldExpr]
}

func NewExprs(capHint uint) *Exprs {
	return &Exprs{
		Arena:     NewArena[Expr](capHint),
		Idents:    NewArena[IdentExpr](capHint),
		Lits:      NewArena[LitExpr](capHint),
		Lists:     NewArena[ListExpr](capHint / 4),
		Dicts:     NewArena[DictExpr](capHint / 8),
		Ranges:    NewArena[RangeExpr](capHint / 8),
		Binaries:  NewArena[BinaryExpr](capHint / 2),
		Unaries:   NewArena[UnaryExpr](capHint / 8),
		Calls:     NewArena[CallExpr](capHint / 2),
		Members:   NewArena[MemberExpr](capHint / 4),
		Indices:   NewArena[IndexExpr](capHint / 8),
		News:      NewArena[NewExpr](capHint / 8),
		Lambdas:   NewArena[LambdaExpr](capHint / 8),
		EnvFields: NewArena[EnvFieldExpr](capHint / 8),
	}
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) new(kind ExprKind, sp source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (e *Exprs) NewIdent(sp source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, sp, e.Idents.Allocate(IdentExpr{Name: name}))
}

func (e *Exprs) NewLit(sp source.Span, kind LitKind, text string) ExprID {
	return e.new(ExprLit, sp, e.Lits.Allocate(LitExpr{Kind: kind, Text: text}))
}

func (e *Exprs) NewTuple(sp source.Span, elems []ExprID) ExprID {
	return e.new(ExprTuple, sp, e.Lists.Allocate(ListExpr{Elems: elems}))
}

func (e *Exprs) NewArray(sp source.Span, elems []ExprID) ExprID {
	return e.new(ExprArray, sp, e.Lists.Allocate(ListExpr{Elems: elems}))
}

func (e *Exprs) NewDict(sp source.Span, keys, values []ExprID) ExprID {
	return e.new(ExprDict, sp, e.Dicts.Allocate(DictExpr{Keys: keys, Values: values}))
}

func (e *Exprs) NewRange(sp source.Span, lo, hi ExprID) ExprID {
	return e.new(ExprRange, sp, e.Ranges.Allocate(RangeExpr{Lo: lo, Hi: hi}))
}

func (e *Exprs) NewBinary(sp source.Span, op BinaryOp, l, r ExprID) ExprID {
	return e.new(ExprBinary, sp, e.Binaries.Allocate(BinaryExpr{Op: op, Left: l, Right: r}))
}

func (e *Exprs) NewUnary(sp source.Span, op UnaryOp, x ExprID) ExprID {
	return e.new(ExprUnary, sp, e.Unaries.Allocate(UnaryExpr{Op: op, X: x}))
}

func (e *Exprs) NewCall(sp source.Span, callee ExprID, args []ExprID) ExprID {
	return e.new(ExprCall, sp, e.Calls.Allocate(CallExpr{Callee: callee, Args: args}))
}

func (e *Exprs) NewMember(sp source.Span, recv ExprID, name source.StringID, nameSpan source.Span) ExprID {
	return e.new(ExprMember, sp, e.Members.Allocate(MemberExpr{Recv: recv, Name: name, NameSpan: nameSpan}))
}

func (e *Exprs) NewIndex(sp source.Span, x, index ExprID) ExprID {
	return e.new(ExprIndex, sp, e.Indices.Allocate(IndexExpr{X: x, Index: index}))
}

func (e *Exprs) NewNew(sp source.Span, class TypeExprID, args []ExprID) ExprID {
	return e.new(ExprNew, sp, e.News.Allocate(NewExpr{Class: class, Args: args}))
}

func (e *Exprs) NewLambda(sp source.Span, fn ItemID) ExprID {
	return e.new(ExprLambda, sp, e.Lambdas.Allocate(LambdaExpr{Func: fn}))
}

// RewriteEnvField turns a reference into a read of the closure environment,
// keeping its span and type slot.
func (e *Exprs) RewriteEnvField(id, receiver ExprID, offset uint32, name source.StringID) {
	x := e.Get(id)
	if x == nil {
		return
	}
	x.Kind = ExprEnvField
	x.Payload = PayloadID(e.EnvFields.Allocate(EnvFieldExpr{Receiver: receiver, Offset: offset, Name: name}))
}

func exprPayload[T any](e *Exprs, id ExprID, arena *Arena[T], kinds ...ExprKind) (*T, bool) {
	x := e.Get(id)
	if x == nil {
		return nil, false
	}
	for _, k := range kinds {
		if x.Kind == k {
			return arena.Get(uint32(x.Payload)), true
		}
	}
	return nil, false
}

func (e *Exprs) Ident(id ExprID) (*IdentExpr, bool) { return exprPayload(e, id, e.Idents, ExprIdent) }
func (e *Exprs) Lit(id ExprID) (*LitExpr, bool)     { return exprPayload(e, id, e.Lits, ExprLit) }
func (e *Exprs) List(id ExprID) (*ListExpr, bool) {
	return exprPayload(e, id, e.Lists, ExprTuple, ExprArray)
}
func (e *Exprs) Dict(id ExprID) (*DictExpr, bool)     { return exprPayload(e, id, e.Dicts, ExprDict) }
func (e *Exprs) Range(id ExprID) (*RangeExpr, bool)   { return exprPayload(e, id, e.Ranges, ExprRange) }
func (e *Exprs) Binary(id ExprID) (*BinaryExpr, bool) { return exprPayload(e, id, e.Binaries, ExprBinary) }
func (e *Exprs) Unary(id ExprID) (*UnaryExpr, bool)   { return exprPayload(e, id, e.Unaries, ExprUnary) }
func (e *Exprs) Call(id ExprID) (*CallExpr, bool)     { return exprPayload(e, id, e.Calls, ExprCall) }
func (e *Exprs) Member(id ExprID) (*MemberExpr, bool) { return exprPayload(e, id, e.Members, ExprMember) }
func (e *Exprs) Index(id ExprID) (*IndexExpr, bool)   { return exprPayload(e, id, e.Indices, ExprIndex) }
func (e *Exprs) New(id ExprID) (*NewExpr, bool)       { return exprPayload(e, id, e.News, ExprNew) }
func (e *Exprs) Lambda(id ExprID) (*LambdaExpr, bool) { return exprPayload(e, id, e.Lambdas, ExprLambda) }
func (e *Exprs) EnvField(id ExprID) (*EnvFieldExpr, bool) {
	return exprPayload(e, id, e.EnvFields, ExprEnvField)
}

// SetType fills the type slot. It returns false when the slot already holds a
// different type. Arenas may grow during analysis, so callers must not keep
// *Expr pointers across calls that allocate nodes.
func (e *Exprs) SetType(id ExprID, t types.TypeID) bool {
	x := e.Get(id)
	if x == nil {
		return false
	}
	if x.Type != types.NoTypeID && x.Type != t {
		return false
	}
	x.Type = t
	return true
}

// TypeOf returns the type slot of id.
func (e *Exprs) TypeOf(id ExprID) types.TypeID {
	if x := e.Get(id); x != nil {
		return x.Type
	}
	return types.NoTypeID
}
