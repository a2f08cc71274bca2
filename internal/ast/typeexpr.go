package ast

import "github.com/rhysd/Dachs-sub001/internal/source"

type TypeExprKind uint8

const (
	TypeNamed TypeExprKind = iota // int, Pair, Pair(int, float)
	TypeTuple
	TypeFunc
	TypeArray
	TypePointer
	TypeDict
	TypeRange
	TypeMaybe
)

// TypeExpr is type syntax. Elems holds arguments (named), elements (tuple),
// parameters (func), the element (array/pointer/range/maybe) or key and
// value (dict). Count is the array length, types.DynamicLength when unknown.
type TypeExpr struct {
	Kind   TypeExprKind
	Span   source.Span
	Name   source.StringID
	Elems  []TypeExprID
	Result TypeExprID
	Count  uint32
}

type TypeExprs struct {
	Arena *Arena[TypeExpr]
}

func NewTypeExprs(capHint uint) *TypeExprs {
	return &TypeExprs{Arena: NewArena[TypeExpr](capHint)}
}

func (t *TypeExprs) New(te TypeExpr) TypeExprID {
	return TypeExprID(t.Arena.Allocate(te))
}

func (t *TypeExprs) Get(id TypeExprID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}
