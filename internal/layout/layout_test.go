package layout

import (
	"errors"
	"testing"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

type countingAllocator struct{ allocs, reallocs, releases int }

func (a *countingAllocator) Allocate(uint64) Ptr {
	a.allocs++
	return Ptr(0x10 * a.allocs)
}

func (a *countingAllocator) Reallocate(p Ptr, _ uint64) Ptr {
	a.reallocs++
	return p + 1
}

func (a *countingAllocator) Release(Ptr) { a.releases++ }

type copierMap map[types.TypeID]symbols.SymbolID

func (m copierMap) Lookup(t types.TypeID) (symbols.SymbolID, bool) {
	c, ok := m[t]
	return c, ok
}

func newClass(in *types.Interner, strs *source.Interner, name string, decl uint32, fields ...types.Field) types.TypeID {
	id, _ := in.InternClass(strs.Intern(name), decl, nil)
	in.SetClassFields(id, fields)
	return id
}

func TestZeroLengthAllocationSkipsAllocator(t *testing.T) {
	a := &countingAllocator{}
	if p := Alloc(a, 0); p != Null {
		t.Fatalf("Alloc(0) = %#x", uint64(p))
	}
	if a.allocs != 0 {
		t.Fatalf("allocator must not be called")
	}
	p := Alloc(a, 24)
	if p == Null || a.allocs != 1 {
		t.Fatalf("Alloc(24) = %#x, calls %d", uint64(p), a.allocs)
	}
	if q := Realloc(a, p, 0); q != Null || a.releases != 1 || a.reallocs != 0 {
		t.Fatalf("Realloc(p, 0) must release: %#x %+v", uint64(q), a)
	}
	if q := Realloc(a, Null, 8); q == Null || a.allocs != 2 {
		t.Fatalf("Realloc(Null, 8) must allocate")
	}
	Free(a, Null)
	if a.releases != 1 {
		t.Fatalf("Free(Null) must be a no-op")
	}
}

func TestReprAndScalarLayout(t *testing.T) {
	in := types.NewInterner()
	e := New(X86_64LinuxGNU(), in)
	b := in.Builtins()
	cases := []struct {
		typ  types.TypeID
		repr Repr
		size int
	}{
		{b.Unit, ReprUnit, 0},
		{b.Bool, ReprScalar, 1},
		{b.Char, ReprScalar, 1},
		{b.Int, ReprScalar, 8},
		{b.Float, ReprScalar, 8},
		{in.Intern(types.MakePointer(b.Int)), ReprScalar, 8},
		{in.InternTuple([]types.TypeID{b.Char, b.Int}), ReprAggregate, 16},
		{in.Intern(types.MakeArray(b.Int, 3)), ReprAggregate, 24},
		{in.Intern(types.MakeArray(b.Int, types.DynamicLength)), ReprAggregate, 16},
	}
	for _, c := range cases {
		l, err := e.LayoutOf(c.typ)
		if err != nil {
			t.Fatalf("%s: %v", types.Label(in, nil, c.typ), err)
		}
		if l.Repr != c.repr || l.Size != c.size {
			t.Fatalf("%s: repr %s size %d, want %s %d", types.Label(in, nil, c.typ), l.Repr, l.Size, c.repr, c.size)
		}
		if c.repr == ReprAggregate && l.ValueSize != 8 {
			t.Fatalf("aggregates are passed as pointers")
		}
	}
}

func TestPointerWidthFollowsTarget(t *testing.T) {
	in := types.NewInterner()
	e := New(ForPointerSize(4), in)
	tuple := in.InternTuple([]types.TypeID{in.Builtins().Char, in.Intern(types.MakeArray(in.Builtins().Int, 2))})
	l, err := e.LayoutOf(tuple)
	if err != nil {
		t.Fatal(err)
	}
	if l.FieldOffsets[1] != 4 || l.Size != 8 {
		t.Fatalf("32-bit tuple layout = %+v", l)
	}
}

func TestEnvironmentSlotsFollowCaptureOrder(t *testing.T) {
	in := types.NewInterner()
	e := New(X86_64LinuxGNU(), in)
	b := in.Builtins()
	env := in.InternEnv(42, []types.TypeID{b.Char, b.Float, b.Bool})
	for slot, want := range []int{0, 8, 16} {
		got, err := e.FieldOffset(env, slot)
		if err != nil || got != want {
			t.Fatalf("offset of capture %d = %d, %v", slot, got, err)
		}
	}
}

func TestPlaceholderHasNoLayout(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	e := New(X86_64LinuxGNU(), in)
	ph := in.InternPlaceholder(strs.Intern("x"), 1, 0)
	if _, err := e.LayoutOf(ph); !errors.Is(err, ErrPlaceholder) {
		t.Fatalf("placeholder layout err = %v", err)
	}

	var err error
	func() {
		defer diag.RecoverInternal(&err)
		e.CopyPlan(ph, nil)
	}()
	if !diag.IsInternal(err) {
		t.Fatalf("copy plan of a placeholder must be an internal error, got %v", err)
	}
}

func TestCopyPlanRules(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	e := New(X86_64LinuxGNU(), in)
	b := in.Builtins()
	str := newClass(in, strs, "string", 1,
		types.Field{Name: strs.Intern("data"), Type: in.Intern(types.MakePointer(b.Char))},
		types.Field{Name: strs.Intern("size"), Type: b.Uint})
	plain := newClass(in, strs, "Plain", 2, types.Field{Name: strs.Intern("x"), Type: b.Int})
	copiers := copierMap{str: 77}

	cases := []struct {
		typ  types.TypeID
		want Strategy
	}{
		{b.Unit, CopyNone},
		{b.Int, CopyBits},
		{in.Intern(types.MakePointer(plain)), CopyShallow},
		{in.Intern(types.MakeArray(plain, types.DynamicLength)), ShareReference},
		{in.Intern(types.MakeDict(b.Int, plain)), ShareReference},
		{in.Intern(types.MakeArray(plain, 2)), DeepFields},
		{str, CallCopier},
		{plain, DeepFields},
		{in.InternTuple([]types.TypeID{b.Int, str}), DeepFields},
	}
	for _, c := range cases {
		p := e.CopyPlan(c.typ, copiers)
		if p.Strategy != c.want {
			t.Fatalf("%s: %s, want %s", types.Label(in, strs, c.typ), p.Strategy, c.want)
		}
	}
	if p := e.CopyPlan(str, copiers); p.Copier != 77 {
		t.Fatalf("copier = %v", p.Copier)
	}
}

func TestDeepCopyDoesNotAlias(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	e := New(X86_64LinuxGNU(), in)
	b := in.Builtins()
	inner := newClass(in, strs, "Inner", 1, types.Field{Name: strs.Intern("x"), Type: b.Int})
	innerPtr := in.Intern(types.MakePointer(inner))
	ints := in.Intern(types.MakeArray(b.Int, types.DynamicLength))
	outer := newClass(in, strs, "Outer", 2,
		types.Field{Name: strs.Intern("inner"), Type: inner},
		types.Field{Name: strs.Intern("ptr"), Type: innerPtr},
		types.Field{Name: strs.Intern("items"), Type: ints},
		types.Field{Name: strs.Intern("n"), Type: b.Float})

	h := NewHeap(e)
	mk := func(x uint64) Ptr {
		ip, err := h.New(inner)
		if err != nil {
			t.Fatal(err)
		}
		obj, _ := h.Object(ip)
		obj.Slots[0] = x
		return ip
	}
	in1 := mk(5)
	pointee := mk(9)
	arr, _ := h.New(ints)
	src, _ := h.New(outer)
	o, _ := h.Object(src)
	o.Slots = []uint64{uint64(in1), uint64(pointee), uint64(arr), 0x4000}

	cp, err := h.DeepCopy(outer, uint64(src), nil, nil)
	if err != nil {
		t.Fatalf("deep copy: %v", err)
	}
	if Ptr(cp) == src {
		t.Fatalf("copy must have fresh storage")
	}
	c, _ := h.Object(Ptr(cp))
	if Ptr(c.Slots[0]) == in1 {
		t.Fatalf("nested class must be copied deeply")
	}
	ci, _ := h.Object(Ptr(c.Slots[0]))
	if ci.Slots[0] != 5 {
		t.Fatalf("nested field = %d", ci.Slots[0])
	}
	if Ptr(c.Slots[1]) != pointee {
		t.Fatalf("pointer fields are copied shallowly")
	}
	if Ptr(c.Slots[2]) != arr {
		t.Fatalf("dynamic arrays are shared by reference")
	}
	if c.Slots[3] != 0x4000 {
		t.Fatalf("scalar bits = %#x", c.Slots[3])
	}

	// Mutating the copy leaves the source untouched.
	ci.Slots[0] = 6
	if orig, _ := h.Object(in1); orig.Slots[0] != 5 {
		t.Fatalf("source changed through the copy")
	}
}

func TestDeepCopyCallsCopierAndHandlesCycles(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	e := New(X86_64LinuxGNU(), in)
	b := in.Builtins()
	name := strs.Intern("Node")
	node, _ := in.InternClass(name, 3, nil)
	str := newClass(in, strs, "string", 1, types.Field{Name: strs.Intern("size"), Type: b.Uint})
	in.SetClassFields(node, []types.Field{
		{Name: strs.Intern("next"), Type: node},
		{Name: strs.Intern("label"), Type: str},
	})

	h := NewHeap(e)
	a, _ := h.New(node)
	s, _ := h.New(str)
	obj, _ := h.Object(a)
	obj.Slots[0] = uint64(a) // a.next = a
	obj.Slots[1] = uint64(s)

	calls := 0
	cp, err := h.DeepCopy(node, uint64(a), copierMap{str: 5}, func(c symbols.SymbolID, v uint64) uint64 {
		calls++
		if c != 5 || Ptr(v) != s {
			t.Fatalf("copier called with %v %#x", c, v)
		}
		return v + 1
	})
	if err != nil {
		t.Fatalf("deep copy: %v", err)
	}
	c, _ := h.Object(Ptr(cp))
	if Ptr(c.Slots[0]) != Ptr(cp) {
		t.Fatalf("cycle must map onto the copy")
	}
	if calls != 1 || c.Slots[1] != uint64(s)+1 {
		t.Fatalf("copier result not stored: calls=%d", calls)
	}
	if h.Stats.Allocs != 3 {
		t.Fatalf("allocations = %d", h.Stats.Allocs)
	}
}
