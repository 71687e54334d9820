// Package slots provides an arena of reusable slots addressed by
// generation-checked handles.
//
// A handle packs a slot index and the generation of the slot when the value
// was inserted. Removing a value bumps the generation, so a stale handle to a
// reused slot is rejected instead of reaching the new value.
package slots

import (
	"errors"
	"iter"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// IndexBits is the number of handle bits that hold the slot index.
const IndexBits = 16

// MaxSlots is the number of slots an arena can hold.
const MaxSlots = 1<<IndexBits - 1

// ErrFull is returned by Insert when every slot is in use.
var ErrFull = errors.New("slots: arena is full")

type slot[T any] struct {
	value T
	gen   uint64
	live  bool
}

// Arena stores values of type T. The zero Arena is empty and ready to use.
// H is the handle type; the bits above IndexBits hold the generation, and the
// top bit of H is left clear so callers may tag handles by shifting.
type Arena[H constraints.Unsigned, T any] struct {
	slots []slot[T]
	free  []int
	live  int
}

func (a *Arena[H, T]) genMask() uint64 {
	hbits := bits.Len64(uint64(^H(0)))
	if hbits <= IndexBits+1 {
		return 0
	}
	return 1<<(hbits-IndexBits-1) - 1
}

func (a *Arena[H, T]) handle(i int) H {
	return H(a.slots[i].gen<<IndexBits | uint64(i+1))
}

func (a *Arena[H, T]) lookup(h H) (int, bool) {
	i := int(uint64(h)&MaxSlots) - 1
	if i < 0 || i >= len(a.slots) {
		return 0, false
	}
	s := &a.slots[i]
	if !s.live || s.gen != uint64(h)>>IndexBits {
		return 0, false
	}
	return i, true
}

// Insert stores v and returns its handle. Handles are never zero.
func (a *Arena[H, T]) Insert(v T) (H, error) {
	var i int
	switch {
	case len(a.free) > 0:
		i = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
	case len(a.slots) < MaxSlots:
		a.slots = append(a.slots, slot[T]{})
		i = len(a.slots) - 1
	default:
		var zero H
		return zero, ErrFull
	}
	s := &a.slots[i]
	s.value, s.live = v, true
	a.live++
	return a.handle(i), nil
}

// Get returns the value stored under h.
func (a *Arena[H, T]) Get(h H) (T, bool) {
	i, ok := a.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return a.slots[i].value, true
}

// Ptr returns a pointer to the value stored under h, or nil. The pointer is
// invalidated by the next Insert.
func (a *Arena[H, T]) Ptr(h H) *T {
	i, ok := a.lookup(h)
	if !ok {
		return nil
	}
	return &a.slots[i].value
}

// Remove deletes the value stored under h and returns it.
func (a *Arena[H, T]) Remove(h H) (T, bool) {
	var zero T
	i, ok := a.lookup(h)
	if !ok {
		return zero, false
	}
	s := &a.slots[i]
	v := s.value
	s.value, s.live = zero, false
	s.gen = (s.gen + 1) & a.genMask()
	a.free = append(a.free, i)
	a.live--
	return v, true
}

// Len returns the number of stored values.
func (a *Arena[H, T]) Len() int {
	return a.live
}

// All iterates over the stored values in slot order.
func (a *Arena[H, T]) All() iter.Seq2[H, T] {
	return func(yield func(H, T) bool) {
		for i := range a.slots {
			if !a.slots[i].live {
				continue
			}
			if !yield(a.handle(i), a.slots[i].value) {
				return
			}
		}
	}
}
