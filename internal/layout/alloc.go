package layout

// Ptr is an address handed out by an Allocator. Null is zero.
type Ptr uint64

const Null Ptr = 0

// Allocator is the three-primitive allocation interface the backend wires to
// its garbage collected runtime.
type Allocator interface {
	Allocate(size uint64) Ptr
	Reallocate(p Ptr, size uint64) Ptr
	Release(p Ptr)
}

// Alloc requests size bytes. Zero-length requests yield Null without
// calling the allocator.
func Alloc(a Allocator, size uint64) Ptr {
	if size == 0 {
		return Null
	}
	return a.Allocate(size)
}

// Realloc resizes p. Shrinking to zero releases p and yields Null; growing
// from Null is a fresh allocation.
func Realloc(a Allocator, p Ptr, size uint64) Ptr {
	if size == 0 {
		if p != Null {
			a.Release(p)
		}
		return Null
	}
	if p == Null {
		return a.Allocate(size)
	}
	return a.Reallocate(p, size)
}

// Free releases p unless it is Null.
func Free(a Allocator, p Ptr) {
	if p != Null {
		a.Release(p)
	}
}
