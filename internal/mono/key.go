package mono

import (
	"slices"
	"strconv"
	"strings"

	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// EntryKind identifies the kind of entity being instantiated.
type EntryKind uint8

const (
	// EntryFunc is a function template instantiation.
	EntryFunc EntryKind = iota
	// EntryClass is a class template instantiation.
	EntryClass
)

func (k EntryKind) String() string {
	if k == EntryClass {
		return "class"
	}
	return "func"
}

// Key is a comparable instantiation key. Go maps cannot use slices as keys,
// so the argument list is stored as a stable ArgsKey string.
type Key struct {
	Kind    EntryKind
	Sym     symbols.SymbolID
	ArgsKey string
}

func makeKey(kind EntryKind, sym symbols.SymbolID, args []types.TypeID) Key {
	return Key{Kind: kind, Sym: sym, ArgsKey: argsKey(args)}
}

func argsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}

// Entry is one row of the instantiation table. Instance is set for
// functions, Type for classes and for function signatures once known.
type Entry struct {
	Kind     EntryKind
	Generic  symbols.SymbolID
	Args     []types.TypeID
	Instance symbols.SymbolID
	Type     types.TypeID
}

// Entries returns the instantiation table in creation order.
func (m *Instantiator) Entries() []Entry {
	out := make([]Entry, len(m.order))
	for i, e := range m.order {
		out[i] = *e
		out[i].Args = slices.Clone(e.Args)
		if e.Kind == EntryFunc {
			out[i].Type = m.table.Sym(e.Instance).Type
		}
	}
	return out
}

// Len reports the number of cached instantiations.
func (m *Instantiator) Len() int { return len(m.order) }
