// Package cindex manages circular read/write indices over a caller-owned
// element slice for one producer and one consumer.
//
// # Overview
//
// The ring never allocates, frees, or copies elements; it only tracks
// which slots of the backing slice are live. Producers fill the slot at
// WriteElement and publish it with Commit; consumers read the slot at
// ReadElement and release it with Consume. Commit and Consume move one
// element at a time and report false when the ring is full or empty —
// elements are indivisible, so there is no partial-count clamping.
//
//	backing := make([]Sample, 64)
//	ring, err := cindex.New(backing)
//	if err != nil { ... }
//
//	if !ring.Full() {
//		*ring.WriteElement() = sample
//		ring.Commit()
//	}
//
//	for !ring.Empty() {
//		process(*ring.ReadElement())
//		ring.Consume()
//	}
//
// Next and Prev walk slot indices without touching reader or writer state,
// which lets a consumer iterate all live elements from ReadIndex up to
// WriteIndex without consuming them.
//
// # Concurrency
//
// One writer goroutine and one reader goroutine are supported. The free
// counter is the single atomic field: its decrement in Commit publishes
// the element written beforehand, and its increment in Consume publishes
// the reclaimed slot. The write index belongs to the writer and the read
// index to the reader. Anything beyond one-and-one requires external
// locking.
package cindex

import (
	"errors"
	"sync/atomic"
)

// ErrTooSmall is returned by New when the backing slice holds fewer than
// two elements. A one-slot ring cannot tell full from empty.
var ErrTooSmall = errors.New("cindex: backing slice must hold at least 2 elements")

// Ring tracks circular indices over a caller-owned slice. It never owns or
// mutates the slice's elements.
type Ring[T any] struct {
	wr   int          // write slot, owned by the producer
	rd   int          // read slot, owned by the consumer
	free atomic.Int64 // free slots; the cross-thread publication point
	max  int
	ary  []T
}

// New wraps the given backing slice. The slice's full length becomes the
// ring capacity and its contents are left untouched.
func New[T any](ary []T) (*Ring[T], error) {
	if len(ary) < 2 {
		return nil, ErrTooSmall
	}
	r := &Ring[T]{
		max: len(ary),
		ary: ary,
	}
	r.free.Store(int64(len(ary)))
	return r, nil
}

// Reset empties the ring and rewinds both indices to slot zero. The
// backing slice is not modified. Not safe to call while the other side is
// active.
func (r *Ring[T]) Reset() {
	r.wr = 0
	r.rd = 0
	r.free.Store(int64(r.max))
}

// Cap returns the number of slots in the ring.
func (r *Ring[T]) Cap() int { return r.max }

// Free returns the number of slots available for writing.
func (r *Ring[T]) Free() int { return int(r.free.Load()) }

// Used returns the number of slots available for reading.
func (r *Ring[T]) Used() int { return r.max - int(r.free.Load()) }

// Full reports whether no slot is available for writing.
func (r *Ring[T]) Full() bool { return r.free.Load() == 0 }

// Empty reports whether no slot is available for reading.
func (r *Ring[T]) Empty() bool { return int(r.free.Load()) == r.max }

// Next returns the slot index after i, accounting for roll-over. Pure
// helper for iteration; no internal state changes.
func (r *Ring[T]) Next(i int) int { return (i + 1) % r.max }

// Prev returns the slot index before i, accounting for roll-over.
func (r *Ring[T]) Prev(i int) int {
	if i == 0 {
		return r.max - 1
	}
	return i - 1
}

// ReadIndex returns the current read slot. Useful as the starting point
// of a non-consuming walk toward WriteIndex.
func (r *Ring[T]) ReadIndex() int { return r.rd }

// WriteIndex returns the current write slot.
func (r *Ring[T]) WriteIndex() int { return r.wr }

// At returns a pointer to slot i of the backing slice.
func (r *Ring[T]) At(i int) *T { return &r.ary[i] }

// ReadElement returns a pointer to the current read slot's element.
func (r *Ring[T]) ReadElement() *T { return &r.ary[r.rd] }

// WriteElement returns a pointer to the current write slot's element. The
// producer fills it, then calls Commit.
func (r *Ring[T]) WriteElement() *T { return &r.ary[r.wr] }

// Commit publishes the element at the current write slot and advances the
// write index. Returns false, changing nothing, when the ring is full.
func (r *Ring[T]) Commit() bool {
	if r.free.Load() == 0 {
		return false
	}

	r.wr = (r.wr + 1) % r.max
	// Release point: the element written above happens-before the reader
	// observing the decremented free count.
	r.free.Add(-1)

	return true
}

// Consume releases the element at the current read slot and advances the
// read index. Returns false, changing nothing, when the ring is empty.
func (r *Ring[T]) Consume() bool {
	if int(r.free.Load()) == r.max {
		return false
	}

	r.rd = (r.rd + 1) % r.max
	r.free.Add(1)

	return true
}

// Drain releases every live element in one step and returns how many were
// outstanding. The free count is swapped, not load-then-stored, so a
// concurrent Commit is never lost. Called by the reader.
func (r *Ring[T]) Drain() int {
	free := int(r.free.Swap(int64(r.max)))
	drained := r.max - free
	r.rd = (r.rd + drained) % r.max
	return drained
}
