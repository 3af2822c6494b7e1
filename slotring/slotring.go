// Package slotring tracks circular slot indices using the sacrificed-slot
// convention: one slot always stays unused, so full (next write == read)
// and empty (read == write) are distinguishable without a counter. A ring
// of dim slots therefore holds at most dim-1 elements.
//
// This is deliberately a different full/empty scheme from packages
// mirrorbuf and cindex, which use an atomic free counter. Code layered on
// a slot ring depends on this exact arithmetic; the two conventions are
// not interchangeable.
//
// # Write protocol
//
// The ring manages indices only; the caller owns whatever storage the
// indices address. The producer stores its data at the slot WriteIndex
// reports, then calls Write, which reveals that slot to the reader and
// pre-advances a separate next-write cursor:
//
//	if !ring.Full() {
//		lines[ring.WriteIndex()] = entry
//		ring.Write()
//	}
//
//	for !ring.Empty() {
//		render(lines[ring.ReadIndex()])
//		ring.Read()
//	}
//
// Store-then-Write ordering is the caller's obligation; calling Write
// before storing publishes a stale slot.
//
// # Concurrency
//
// Unlike the other ring packages, nothing here is atomic. The used and
// free counters are plain values recomputed on every Write and Read, so a
// ring shared between goroutines needs external synchronization. The
// intended use is a single goroutine, or two goroutines coordinated by a
// lock the caller already holds for the slot storage itself.
package slotring

import "errors"

// ErrTooSmall is returned by New when dim < 2; with one slot sacrificed a
// smaller ring could never hold an element.
var ErrTooSmall = errors.New("slotring: dimension must be at least 2")

// Ring tracks read/write slot indices with one slot sacrificed. The zero
// value is not usable; construct with New.
type Ring struct {
	rd   int // current read slot
	wr   int // current write slot
	next int // slot that becomes the write slot after the next Write
	used int
	free int
	dim  int
}

// New returns a ring of dim slots, dim-1 of them usable.
func New(dim int) (*Ring, error) {
	if dim < 2 {
		return nil, ErrTooSmall
	}
	return &Ring{
		next: 1,
		free: dim - 1,
		dim:  dim,
	}, nil
}

// Cap returns the ring dimension. The usable capacity is Cap()-1.
func (r *Ring) Cap() int { return r.dim }

// Used returns the number of slots holding readable data.
func (r *Ring) Used() int { return r.used }

// Free returns the number of slots available for writing.
func (r *Ring) Free() int { return r.free }

// Full reports whether the pre-advanced write cursor has caught up with
// the read index.
func (r *Ring) Full() bool { return r.next == r.rd }

// Empty reports whether the read index has caught up with the write index.
func (r *Ring) Empty() bool { return r.rd == r.wr }

// Next returns the slot index after i, accounting for roll-over.
func (r *Ring) Next(i int) int {
	if i >= r.dim-1 {
		return 0
	}
	return i + 1
}

// Prev returns the slot index before i, accounting for roll-over.
func (r *Ring) Prev(i int) int {
	if i == 0 {
		return r.dim - 1
	}
	return i - 1
}

// ReadIndex returns the slot the reader should read before calling Read.
func (r *Ring) ReadIndex() int { return r.rd }

// WriteIndex returns the slot the writer should fill before calling Write.
func (r *Ring) WriteIndex() int { return r.wr }

// Write publishes the slot at WriteIndex and pre-advances the next-write
// cursor. Returns false, changing nothing, when the ring is full. Call
// after storing data at WriteIndex.
func (r *Ring) Write() bool {
	if r.Full() {
		return false
	}

	r.wr = r.next
	r.next = r.Next(r.next)

	if r.wr >= r.rd {
		r.used = r.wr - r.rd
	} else {
		r.used = r.dim - r.rd + r.wr
	}
	r.free = r.dim - r.used - 1

	return true
}

// Read releases the slot at ReadIndex and advances the read index.
// Returns false, changing nothing, when the ring is empty. Call after
// reading the data at ReadIndex.
func (r *Ring) Read() bool {
	if r.Empty() {
		return false
	}

	r.rd = r.Next(r.rd)

	if r.wr >= r.rd {
		r.used = r.wr - r.rd
	} else {
		r.used = r.dim - r.rd + r.wr
	}
	r.free = r.dim - r.used - 1

	return true
}

// Drain empties the ring in one step and returns the number of slots that
// were outstanding.
func (r *Ring) Drain() int {
	var drained int
	if r.wr >= r.rd {
		drained = r.wr - r.rd
	} else {
		drained = r.dim - r.rd + r.wr
	}

	r.rd = r.wr
	r.used = 0
	r.free = r.dim - 1

	return drained
}
