package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/rhysd/Dachs-sub001/internal/source"
)

// arena is a slice of T addressed by 1-based ids; slot 0 is the sentinel.
type arena[T any] struct {
	what string
	data []T
}

func newArena[T any](what string, capacity uint32) arena[T] {
	return arena[T]{what: what, data: make([]T, 1, capacity+1)}
}

func (a *arena[T]) push(v T) uint32 {
	id, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", a.what, err))
	}
	a.data = append(a.data, v)
	return id
}

func (a *arena[T]) at(id uint32) *T {
	if id == 0 || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

func (a *arena[T]) len() int { return len(a.data) - 1 }

// Scopes stores all allocated scopes.
type Scopes struct{ arena[Scope] }

func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{newArena[Scope]("scopes", capacity)}
}

// New allocates a scope and links it under parent.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, owner SymbolID, span source.Span) ScopeID {
	id := ScopeID(s.push(Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		Span:      span,
		NameIndex: make(map[source.StringID][]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope pointer or nil if ID is invalid.
func (s *Scopes) Get(id ScopeID) *Scope { return s.at(uint32(id)) }

func (s *Scopes) Len() int { return s.len() }

// Symbols stores declared symbols.
type Symbols struct{ arena[Symbol] }

func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{newArena[Symbol]("symbols", capacity)}
}

func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return SymbolID(s.push(*sym))
}

// Get returns a symbol pointer or nil for invalid ID. The pointer is only
// valid until the next New.
func (s *Symbols) Get(id SymbolID) *Symbol { return s.at(uint32(id)) }

func (s *Symbols) Len() int { return s.len() }

// Next returns the id the next New will assign. Declarations use it to own
// their placeholders before they are defined.
func (s *Symbols) Next() SymbolID { return SymbolID(len(s.data)) }
