package symbols

import (
	"github.com/rhysd/Dachs-sub001/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeGlobal             // functions, constants, classes
	ScopeFunction           // parameters; owns exactly one body scope
	ScopeLocal              // block-nested variables
	ScopeClass              // instance variables and member functions
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeLocal:
		return "local"
	case ScopeClass:
		return "class"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope. Parent is a plain index; scopes live until
// the table is dropped.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     SymbolID // function or class symbol
	Body      ScopeID  // function scope: its local body
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
