package ast

import "github.com/rhysd/Dachs-sub001/internal/source"

type ItemKind uint8

const (
	ItemFunc ItemKind = iota
	ItemClass
	ItemConst
)

func (k ItemKind) String() string {
	switch k {
	case ItemFunc:
		return "func"
	case ItemClass:
		return "class"
	case ItemConst:
		return "const"
	}
	return "item"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Name    source.StringID
	Payload PayloadID
}

// Param is a function parameter. Type is NoTypeExprID for template
// parameters.
type Param struct {
	Name    source.StringID
	Span    source.Span
	Type    TypeExprID
	Mutable bool
}

// FuncItem covers top-level functions, member functions and lambda bodies.
// Result is NoTypeExprID when the result type is deduced from the body.
type FuncItem struct {
	Name   source.StringID
	Params []Param
	Result TypeExprID
	Body   StmtID
	Public bool
	Lambda bool
	Member bool // declared inside a class; receives self as first parameter
}

// FieldDecl is an instance variable. Untyped fields make the class a template.
type FieldDecl struct {
	Name   source.StringID
	Span   source.Span
	Type   TypeExprID
	Public bool
}

type ClassItem struct {
	Name    source.StringID
	Fields  []FieldDecl
	Methods []ItemID
}

type ConstItem struct {
	Name  source.StringID
	Type  TypeExprID
	Value ExprID
}

type Items struct {
	Arena   *Arena[Item]
	Funcs   *Arena[FuncItem]
	Classes *Arena[ClassItem]
	Consts  *Arena[ConstItem]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena:   NewArena[Item](capHint),
		Funcs:   NewArena[FuncItem](capHint),
		Classes: NewArena[ClassItem](capHint / 4),
		Consts:  NewArena[ConstItem](capHint / 4),
	}
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewFunc(sp source.Span, fn FuncItem) ItemID {
	payload := PayloadID(i.Funcs.Allocate(fn))
	return ItemID(i.Arena.Allocate(Item{Kind: ItemFunc, Span: sp, Name: fn.Name, Payload: payload}))
}

func (i *Items) NewClass(sp source.Span, cls ClassItem) ItemID {
	payload := PayloadID(i.Classes.Allocate(cls))
	return ItemID(i.Arena.Allocate(Item{Kind: ItemClass, Span: sp, Name: cls.Name, Payload: payload}))
}

func (i *Items) NewConst(sp source.Span, c ConstItem) ItemID {
	payload := PayloadID(i.Consts.Allocate(c))
	return ItemID(i.Arena.Allocate(Item{Kind: ItemConst, Span: sp, Name: c.Name, Payload: payload}))
}

func (i *Items) Func(id ItemID) (*FuncItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFunc {
		return nil, false
	}
	return i.Funcs.Get(uint32(item.Payload)), true
}

func (i *Items) Class(id ItemID) (*ClassItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemClass {
		return nil, false
	}
	return i.Classes.Get(uint32(item.Payload)), true
}

func (i *Items) Const(id ItemID) (*ConstItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemConst {
		return nil, false
	}
	return i.Consts.Get(uint32(item.Payload)), true
}
