package renderer

import (
	"fmt"
	"sync"
)

const (
	// MinFramesInFlight is the smallest supported number of per-frame uniform copies.
	MinFramesInFlight = 2

	// MaxFramesInFlight is the largest supported number of per-frame uniform copies.
	MaxFramesInFlight = 3

	// DefaultFramesInFlight is used when no count is configured.
	DefaultFramesInFlight = 3
)

// FrameRing holds one copy of the per-frame resources for every frame that may be in flight.
// The host writes only to the current slot; Advance moves to the next one after the frame has
// been presented, so a slot is never rewritten while the GPU may still read it.
type FrameRing[T any] struct {
	mu      sync.Mutex
	slots   []T
	current int
}

// NewFrameRing creates a ring of n slots, building each with newSlot.
//
// Parameters:
//   - n: the number of frames in flight, between MinFramesInFlight and MaxFramesInFlight
//   - newSlot: builds the resources of slot i
//
// Returns:
//   - *FrameRing[T]: the ring positioned at slot 0
//   - error: an error if n is out of range or a slot cannot be built
func NewFrameRing[T any](n int, newSlot func(i int) (T, error)) (*FrameRing[T], error) {
	if n < MinFramesInFlight || n > MaxFramesInFlight {
		return nil, fmt.Errorf("frames in flight must be between %d and %d, got %d", MinFramesInFlight, MaxFramesInFlight, n)
	}
	r := &FrameRing[T]{slots: make([]T, n)}
	for i := range r.slots {
		s, err := newSlot(i)
		if err != nil {
			return nil, fmt.Errorf("frame slot %d: %w", i, err)
		}
		r.slots[i] = s
	}
	return r, nil
}

// Current returns the slot the host writes this frame.
func (r *FrameRing[T]) Current() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[r.current]
}

// Index returns the position of the current slot.
func (r *FrameRing[T]) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Len returns the number of slots.
func (r *FrameRing[T]) Len() int {
	return len(r.slots)
}

// Advance rotates to the next slot and returns its position.
func (r *FrameRing[T]) Advance() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = (r.current + 1) % len(r.slots)
	return r.current
}

// Each calls fn for every slot in order.
func (r *FrameRing[T]) Each(fn func(i int, slot T)) {
	r.mu.Lock()
	slots := append([]T(nil), r.slots...)
	r.mu.Unlock()
	for i, s := range slots {
		fn(i, s)
	}
}
