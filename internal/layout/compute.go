package layout

import (
	"fortio.org/safecast"

	"github.com/rhysd/Dachs-sub001/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID) (TypeLayout, *TypeError) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return unitLayout(), typeErr(id, ErrUnresolved)
	}

	switch tt.Kind {
	case types.KindUnit:
		return unitLayout(), nil

	case types.KindBool, types.KindChar, types.KindInt, types.KindUint, types.KindFloat:
		return scalarLayoutBytes(int(tt.Width) / 8), nil

	case types.KindPointer, types.KindFunc:
		l := e.ptrLayout()
		l.Repr = ReprScalar
		return l, nil

	case types.KindPlaceholder:
		return unitLayout(), typeErr(id, ErrPlaceholder)

	case types.KindGenericFunc, types.KindInvalid:
		return unitLayout(), typeErr(id, ErrUnresolved)

	case types.KindArray:
		if tt.Count == types.DynamicLength {
			// Dynamic arrays are a {data, size} header shared by reference.
			b := e.Types.Builtins()
			return e.slotsLayout([]types.TypeID{e.Types.Intern(types.MakePointer(tt.Elem)), b.Uint}), nil
		}
		n, err := safecast.Conv[int](tt.Count)
		if err != nil {
			return unitLayout(), typeErr(id, ErrLength, err)
		}
		slots := make([]types.TypeID, n)
		for i := range slots {
			slots[i] = tt.Elem
		}
		return e.slotsLayout(slots), nil

	case types.KindDict:
		// Opaque runtime handle.
		l := e.ptrLayout()
		l.Repr = ReprAggregate
		l.Slots = []types.TypeID{e.Types.Intern(types.MakePointer(e.Types.Builtins().Unit))}
		l.FieldOffsets = []int{0}
		return l, nil

	case types.KindRange:
		return e.slotsLayout([]types.TypeID{tt.Elem, tt.Elem}), nil

	case types.KindQualified:
		return e.slotsLayout([]types.TypeID{e.Types.Builtins().Bool, tt.Elem}), nil

	case types.KindClass:
		info, _ := e.Types.ClassInfo(id)
		slots := make([]types.TypeID, len(info.Fields))
		for i, f := range info.Fields {
			slots[i] = f.Type
		}
		return e.slotsLayout(slots), nil

	case types.KindTuple:
		info, _ := e.Types.TupleInfo(id)
		return e.slotsLayout(info.Elems), nil

	case types.KindEnv:
		info, _ := e.Types.EnvInfo(id)
		return e.slotsLayout(info.Fields), nil

	case types.KindClosure:
		info, _ := e.Types.ClosureInfo(id)
		return e.slotsLayout([]types.TypeID{info.Fn, info.Env}), nil
	}
	return unitLayout(), typeErr(id, ErrUnresolved)
}

// slotValue is the in-slot layout of a type: the value for scalars, a
// pointer for aggregates.
func (e *LayoutEngine) slotValue(t types.TypeID) (size, align int) {
	switch e.ReprOf(t) {
	case ReprUnit:
		return 0, 1
	case ReprAggregate:
		p := e.ptrLayout()
		return p.Size, p.Align
	}
	tt, _ := e.Types.Lookup(t)
	if tt.Kind == types.KindPointer || tt.Kind == types.KindFunc {
		p := e.ptrLayout()
		return p.Size, p.Align
	}
	s := int(tt.Width) / 8
	if s <= 0 {
		return 0, 1
	}
	return s, s
}

func (e *LayoutEngine) slotsLayout(slots []types.TypeID) TypeLayout {
	offsets := make([]int, len(slots))
	size := 0
	align := 1
	for i, s := range slots {
		fSize, fAlign := e.slotValue(s)
		size = roundUp(size, fAlign)
		offsets[i] = size
		size += fSize
		align = maxInt(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{
		Repr:         ReprAggregate,
		Size:         size,
		Align:        align,
		ValueSize:    e.ptrLayout().Size,
		Slots:        slots,
		FieldOffsets: offsets,
	}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign, ValueSize: ptrSize}
}

func unitLayout() TypeLayout {
	return TypeLayout{Repr: ReprUnit, Size: 0, Align: 1}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return unitLayout()
	}
	return TypeLayout{Repr: ReprScalar, Size: size, Align: size, ValueSize: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
