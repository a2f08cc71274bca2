package ast

import (
	"fmt"
	"iter"

	"fortio.org/safecast"
)

// Arena stores nodes of one kind. Ids are 1-based so that 0 stays the
// "no node" sentinel of every id type.
type Arena[T any] struct {
	data []T
}

func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate appends value and returns its id.
func (a *Arena[T]) Allocate(value T) uint32 {
	n, err := safecast.Conv[uint32](len(a.data) + 1)
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	a.data = append(a.data, value)
	return n
}

func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// Slice exposes the backing storage; element i has id i+1. Read only.
func (a *Arena[T]) Slice() []T {
	return a.data
}

// All yields every node with its id in allocation order.
func (a *Arena[T]) All() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		for i := range a.data {
			if !yield(uint32(i+1), &a.data[i]) {
				return
			}
		}
	}
}

func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data))
}

func (a *Arena[T]) reset() {
	clear(a.data)
	a.data = a.data[:0]
}
