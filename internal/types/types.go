package types

import "fmt"

// TypeID uniquely identifies a type inside the interner. Interning makes
// structural equality and TypeID equality the same thing.
type TypeID uint32

// NoTypeID marks an empty type slot.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindClass
	KindTuple
	KindFunc
	KindGenericFunc
	KindArray
	KindPointer
	KindDict
	KindRange
	KindQualified
	KindClosure
	KindEnv
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindClass:
		return "class"
	case KindTuple:
		return "tuple"
	case KindFunc:
		return "func"
	case KindGenericFunc:
		return "generic func"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindDict:
		return "dict"
	case KindRange:
		return "range"
	case KindQualified:
		return "qualified"
	case KindClosure:
		return "closure"
	case KindEnv:
		return "env"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of numeric scalars in bits.
type Width uint8

const (
	Width8  Width = 8
	Width32 Width = 32
	Width64 Width = 64
)

// Qualifier wraps a type in a qualified type.
type Qualifier uint8

const (
	QualNone Qualifier = iota
	QualMaybe
)

// DynamicLength marks arrays whose length is not known at compile time.
const DynamicLength = ^uint32(0)

// Type is a compact descriptor. Kinds carrying lists (class, tuple, func,
// closure, env, placeholder) keep them in side tables addressed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // array/pointer/range/qualified element, dict value
	Key     TypeID // dict key
	Count   uint32 // array length or DynamicLength
	Width   Width
	Qual    Qualifier
	Payload uint32
}

func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

func MakeDict(key, value TypeID) Type {
	return Type{Kind: KindDict, Key: key, Elem: value}
}

func MakeRange(elem TypeID) Type {
	return Type{Kind: KindRange, Elem: elem}
}

func MakeMaybe(elem TypeID) Type {
	return Type{Kind: KindQualified, Elem: elem, Qual: QualMaybe}
}
