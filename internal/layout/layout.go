package layout

import (
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Repr is the value representation class of a type.
type Repr uint8

const (
	// ReprUnit values occupy nothing.
	ReprUnit Repr = iota
	// ReprScalar values are passed, stored and compared by value.
	ReprScalar
	// ReprAggregate values are a pointer to storage.
	ReprAggregate
)

func (r Repr) String() string {
	switch r {
	case ReprScalar:
		return "scalar"
	case ReprAggregate:
		return "aggregate"
	default:
		return "unit"
	}
}

// TypeLayout is the shape of a type for a specific Target. For aggregates
// Size and Align describe the pointed-to storage and ValueSize is the pointer;
// for scalars all three describe the value itself.
type TypeLayout struct {
	Repr      Repr
	Size      int
	Align     int
	ValueSize int

	// Aggregate-only: storage slots and their offsets.
	Slots        []types.TypeID
	FieldOffsets []int
}

// Target describes the pointer properties of the code generation target.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
}

var knownTargets = map[int]Target{
	4: {Triple: "i686-linux-gnu", PtrSize: 4, PtrAlign: 4},
	8: {Triple: "x86_64-linux-gnu", PtrSize: 8, PtrAlign: 8},
}

func X86_64LinuxGNU() Target { return knownTargets[8] }

// ForPointerSize picks a target by pointer width in bytes; unknown widths
// fall back to 64-bit.
func ForPointerSize(n int) Target {
	if t, ok := knownTargets[n]; ok {
		return t
	}
	return X86_64LinuxGNU()
}

type memoEntry struct {
	layout TypeLayout
	err    *TypeError
}

// LayoutEngine computes memory layout for types. Results, failures included,
// are memoized per type.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	memo map[types.TypeID]memoEntry
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{Target: target, Types: typesIn, memo: make(map[types.TypeID]memoEntry, 64)}
}

// LayoutOf computes the layout of a type. Aggregate slots hold pointers, so
// class graphs that refer to themselves have finite size.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	if e.memo == nil {
		e.memo = make(map[types.TypeID]memoEntry, 64)
	}
	m, ok := e.memo[t]
	if !ok {
		m.layout, m.err = e.computeLayout(t)
		e.memo[t] = m
	}
	if m.err != nil {
		return m.layout, m.err
	}
	return m.layout, nil
}

// ReprOf classifies t without computing storage.
func (e *LayoutEngine) ReprOf(t types.TypeID) Repr {
	switch e.Types.Kind(t) {
	case types.KindUnit, types.KindInvalid:
		return ReprUnit
	case types.KindBool, types.KindChar, types.KindInt, types.KindUint, types.KindFloat,
		types.KindPointer, types.KindFunc:
		return ReprScalar
	}
	return ReprAggregate
}

// SizeOf returns the storage size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a storage slot. For closure
// environments the slot index is the capture offset.
func (e *LayoutEngine) FieldOffset(t types.TypeID, slot int) (int, error) {
	l, err := e.LayoutOf(t)
	if err != nil {
		return 0, err
	}
	if slot < 0 || slot >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[slot], nil
}
