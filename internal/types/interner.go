package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for scalar types and unit.
type Builtins struct {
	Unit  TypeID
	Bool  TypeID
	Char  TypeID
	Int   TypeID
	Uint  TypeID
	Float TypeID
}

// Interner owns every type of a session.
type Interner struct {
	types []Type
	index map[Type]TypeID   // descriptors without side tables
	lists map[string]TypeID // descriptors with side tables, keyed by content

	classes      []ClassInfo
	tuples       []TupleInfo
	fns          []FuncInfo
	closures     []ClosureInfo
	envs         []EnvInfo
	placeholders []PlaceholderInfo
	generics     []uint32

	placeholderMemo map[TypeID]bool
	builtins        Builtins
}

func NewInterner() *Interner {
	in := &Interner{
		index:           make(map[Type]TypeID, 64),
		lists:           make(map[string]TypeID, 64),
		placeholderMemo: make(map[TypeID]bool),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // NoTypeID
	in.builtins = Builtins{
		Unit:  in.Intern(Type{Kind: KindUnit}),
		Bool:  in.Intern(Type{Kind: KindBool, Width: Width8}),
		Char:  in.Intern(Type{Kind: KindChar, Width: Width8}),
		Int:   in.Intern(Type{Kind: KindInt, Width: Width64}),
		Uint:  in.Intern(Type{Kind: KindUint, Width: Width64}),
		Float: in.Intern(Type{Kind: KindFloat, Width: Width64}),
	}
	return in
}

func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern returns the id of a descriptor that needs no side table.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	id := in.push(t)
	in.index[t] = id
	return id
}

func (in *Interner) push(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	in.types = append(in.types, t)
	return TypeID(n)
}

// internList dedups list-bearing descriptors. mk is called only for new keys
// and must append the side-table entry and return its slot.
func (in *Interner) internList(kind Kind, key string, mk func() uint32) (TypeID, bool) {
	full := kind.String() + "|" + key
	if id, ok := in.lists[full]; ok {
		return id, false
	}
	id := in.push(Type{Kind: kind, Payload: mk()})
	in.lists[full] = id
	return id, true
}

func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID " + strconv.Itoa(int(id)))
	}
	return tt
}

func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

// Len is the number of interned types including the NoTypeID sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

func idsKey(ids []TypeID) string {
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte('#')
		}
		sb.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return sb.String()
}

func slot(n int) uint32 {
	s, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("type side table overflow: %w", err))
	}
	return s
}
