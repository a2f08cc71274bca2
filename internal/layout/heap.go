package layout

import (
	"fmt"

	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// Object is one heap block. Typed blocks carry one word per storage slot:
// scalar bits, or a Ptr for aggregates and pointers.
type Object struct {
	Type  types.TypeID
	Size  uint64
	Slots []uint64
}

// HeapStats counts allocator calls.
type HeapStats struct {
	Allocs   int
	Reallocs int
	Releases int
}

// Heap is a reference Allocator with a slot-level object model. It executes
// copy plans the way generated code would.
type Heap struct {
	engine  *LayoutEngine
	objects map[Ptr]*Object
	next    Ptr
	Stats   HeapStats
}

var _ Allocator = (*Heap)(nil)

func NewHeap(engine *LayoutEngine) *Heap {
	return &Heap{engine: engine, objects: make(map[Ptr]*Object), next: 0x1000}
}

func (h *Heap) Allocate(size uint64) Ptr {
	if size == 0 {
		diag.Internal("layout: zero-length allocation reached the allocator")
	}
	h.Stats.Allocs++
	p := h.next
	h.next += Ptr((size + 15) &^ 15)
	h.objects[p] = &Object{Size: size}
	return p
}

func (h *Heap) Reallocate(p Ptr, size uint64) Ptr {
	old, ok := h.objects[p]
	if !ok {
		diag.Internal("layout: reallocate of unknown pointer %#x", uint64(p))
	}
	h.Stats.Reallocs++
	np := h.next
	h.next += Ptr((size + 15) &^ 15)
	h.objects[np] = &Object{Type: old.Type, Size: size, Slots: old.Slots}
	delete(h.objects, p)
	return np
}

func (h *Heap) Release(p Ptr) {
	h.Stats.Releases++
	delete(h.objects, p)
}

// Object returns the block at p.
func (h *Heap) Object(p Ptr) (*Object, bool) {
	o, ok := h.objects[p]
	return o, ok
}

// Live is the number of blocks not released.
func (h *Heap) Live() int { return len(h.objects) }

// New allocates zeroed storage for an aggregate of type t. Zero-sized
// storage yields Null.
func (h *Heap) New(t types.TypeID) (Ptr, error) {
	l, err := h.engine.LayoutOf(t)
	if err != nil {
		return Null, err
	}
	if l.Repr != ReprAggregate {
		return Null, fmt.Errorf("layout: %s is not an aggregate", l.Repr)
	}
	p := Alloc(h, uint64(l.Size))
	if p == Null {
		return Null, nil
	}
	obj := h.objects[p]
	obj.Type = t
	obj.Slots = make([]uint64, len(l.Slots))
	return p, nil
}

// CopierFunc runs a resolved copier on a value and returns the copy.
type CopierFunc func(copier symbols.SymbolID, v uint64) uint64

// DeepCopy copies v of type t following the copy plans. Storage shared
// inside the source graph stays shared in the copy and cycles terminate.
func (h *Heap) DeepCopy(t types.TypeID, v uint64, copiers CopierLookup, call CopierFunc) (uint64, error) {
	c := deepCopier{h: h, copiers: copiers, call: call, done: make(map[Ptr]Ptr)}
	return c.copy(t, v)
}

type deepCopier struct {
	h       *Heap
	copiers CopierLookup
	call    CopierFunc
	done    map[Ptr]Ptr
}

func (c *deepCopier) copy(t types.TypeID, v uint64) (uint64, error) {
	plan := c.h.engine.CopyPlan(t, c.copiers)
	switch plan.Strategy {
	case CopyNone:
		return 0, nil
	case CopyBits, CopyShallow, ShareReference:
		return v, nil
	case CallCopier:
		if c.call == nil {
			diag.Internal("layout: copier of type#%d cannot be called", t)
		}
		return c.call(plan.Copier, v), nil
	}

	src := Ptr(v)
	if src == Null {
		return 0, nil
	}
	if dst, ok := c.done[src]; ok {
		return uint64(dst), nil
	}
	from, ok := c.h.objects[src]
	if !ok {
		return 0, fmt.Errorf("layout: dangling pointer %#x", uint64(src))
	}
	dst, err := c.h.New(t)
	if err != nil {
		return 0, err
	}
	c.done[src] = dst
	if dst == Null {
		return 0, nil
	}
	for i, slot := range plan.Slots {
		val, err := c.copy(slot, from.Slots[i])
		if err != nil {
			return 0, err
		}
		c.h.objects[dst].Slots[i] = val
	}
	return uint64(dst), nil
}
