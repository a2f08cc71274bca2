package symbols

import (
	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVar
	SymbolParam
	SymbolConst
	SymbolFunc
	SymbolClass
	SymbolField
	SymbolBuiltinType
	SymbolReceiver // implicit environment parameter of a lambda
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "variable"
	case SymbolParam:
		return "parameter"
	case SymbolConst:
		return "constant"
	case SymbolFunc:
		return "function"
	case SymbolClass:
		return "class"
	case SymbolField:
		return "instance variable"
	case SymbolBuiltinType:
		return "builtin type"
	case SymbolReceiver:
		return "receiver"
	default:
		return "invalid"
	}
}

// IsValue reports kinds that name a runtime value held in a scope.
func (k SymbolKind) IsValue() bool {
	return k == SymbolVar || k == SymbolParam || k == SymbolReceiver
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	FlagPublic SymbolFlags = 1 << iota
	FlagMutable
	FlagBuiltin
	FlagTemplate     // has placeholder parameters, never body-resolved itself
	FlagInstantiated // concrete copy produced by the instantiator
	FlagLambda
	FlagMember
)

func (f SymbolFlags) Has(flag SymbolFlags) bool { return f&flag != 0 }

func (f SymbolFlags) Strings() []string {
	names := []string{"public", "mutable", "builtin", "template", "instantiated", "lambda", "member"}
	var out []string
	for i, n := range names {
		if f&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

// BodyState tracks on-demand body resolution of functions.
type BodyState uint8

const (
	BodyPending BodyState = iota
	BodyInProgress
	BodyDone
	BodyFailed
)

// FuncData is attached to function symbols.
type FuncData struct {
	Item       ast.ItemID
	Scope      ScopeID // function scope holding parameters
	Params     []SymbolID
	ParamTypes []types.TypeID
	Result     types.TypeID // NoTypeID until declared or deduced
	Declared   bool         // result type was written in the source
	Class      SymbolID     // owning class for member functions
	Template   SymbolID     // generic origin of an instance
	TypeArgs   []types.TypeID
	Receiver   SymbolID // lambda environment receiver
	State      BodyState
}

// ClassData is attached to class symbols.
type ClassData struct {
	Item    ast.ItemID
	Scope   ScopeID
	Fields  []SymbolID
	Methods []SymbolID
	Params  []types.TypeID // placeholders of untyped instance variables
	Type    types.TypeID   // class instance with Params as arguments
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Type  types.TypeID
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Decl  ast.Ref
	Func  *FuncData
	Class *ClassData
}

func (s *Symbol) IsMutable() bool { return s.Flags.Has(FlagMutable) }
func (s *Symbol) IsTemplate() bool { return s.Flags.Has(FlagTemplate) }
func (s *Symbol) IsBuiltin() bool  { return s.Flags.Has(FlagBuiltin) }
