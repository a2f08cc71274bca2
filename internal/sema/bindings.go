package sema

import (
	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
)

// Bindings maps identifier expressions to the symbols they name.
type Bindings map[ast.ExprID]symbols.SymbolID

func (b Bindings) SymbolOf(id ast.ExprID) symbols.SymbolID {
	return b[id]
}

func (b Bindings) Bind(id ast.ExprID, sym symbols.SymbolID) {
	b[id] = sym
}
