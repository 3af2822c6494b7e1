package mirrorbuf

import (
	"errors"
	"math/bits"
	"sync/atomic"

	"github.com/ringkit/ringkit/internal/vmem"
)

// ErrInvalidAlign is returned by New for alignments other than 0, 1, 2, 4, or 8.
var ErrInvalidAlign = errors.New("mirrorbuf: alignment must be 0, 1, 2, 4, or 8")

// Buffer is a mirrored SPSC circular byte buffer. The zero value is not
// usable; construct with New.
type Buffer struct {
	wr    int          // write index, owned by the producer
	rd    int          // read index, owned by the consumer
	free  atomic.Int64 // free bytes; the cross-thread publication point
	align int
	amask int
	max   int
	m     *vmem.Mapping
	data  []byte // 2*max aliased window
}

// New allocates and maps a buffer of at least minSize bytes, rounded up to
// a multiple of the system page size. A minSize of zero yields exactly one
// page. align of 0 or 1 disables alignment; 2, 4, or 8 make commit and
// consume counts round up to that boundary.
func New(minSize, align int) (*Buffer, error) {
	switch align {
	case 0, 1:
		align = 0
	case 2, 4, 8:
	default:
		return nil, ErrInvalidAlign
	}

	if minSize < 0 {
		minSize = 0
	}

	pagesize := vmem.PageSize()

	// Round up to the nearest page multiple, one page minimum.
	size := minSize &^ (pagesize - 1)
	if size < pagesize || minSize%pagesize != 0 {
		size += pagesize
	}

	// If the top bit is set, doubling the size for the mirror mapping
	// would overflow. Halve instead of failing.
	if uint(size)>>(bits.UintSize-1) != 0 {
		size /= 2
	}

	m, err := vmem.Map(size)
	if err != nil {
		return nil, err
	}

	b := &Buffer{
		align: align,
		max:   size,
		m:     m,
		data:  m.Bytes(),
	}
	if align > 0 {
		b.amask = align - 1
	}
	b.free.Store(int64(size))

	return b, nil
}

// Close unmaps the buffer memory. The buffer must not be used afterwards.
func (b *Buffer) Close() error {
	if b.m == nil {
		return nil
	}
	err := b.m.Close()
	b.m = nil
	b.data = nil
	b.wr = 0
	b.rd = 0
	b.max = 0
	b.free.Store(0)
	return err
}

// Capacity returns the total buffer size in bytes, always a page multiple.
func (b *Buffer) Capacity() int { return b.max }

// Align returns the configured element alignment, 0 when none.
func (b *Buffer) Align() int { return b.align }

// Free returns the number of bytes available for writing.
func (b *Buffer) Free() int { return int(b.free.Load()) }

// Used returns the number of bytes available for reading.
func (b *Buffer) Used() int { return b.max - int(b.free.Load()) }

// Full reports whether no space is available for writing.
func (b *Buffer) Full() bool { return b.free.Load() == 0 }

// Empty reports whether no data is available for reading.
func (b *Buffer) Empty() bool { return int(b.free.Load()) == b.max }

// ReadIndex returns the current read offset. Diagnostic only.
func (b *Buffer) ReadIndex() int { return b.rd }

// WriteIndex returns the current write offset. Diagnostic only.
func (b *Buffer) WriteIndex() int { return b.wr }

// ReadBytes returns the readable span: exactly Used() contiguous bytes
// starting at the read index. The mirror guarantees the span never wraps.
// The reader fills its sink from this slice, then calls Consume.
func (b *Buffer) ReadBytes() []byte {
	used := b.max - int(b.free.Load())
	return b.data[b.rd : b.rd+used]
}

// WriteBytes returns the writable span: exactly Free() contiguous bytes
// starting at the write index. The writer fills this slice, then calls
// Commit.
func (b *Buffer) WriteBytes() []byte {
	free := int(b.free.Load())
	return b.data[b.wr : b.wr+free]
}

// roundUp adjusts n up to the configured alignment. Because every commit
// and consume passes through here, the free count only ever holds aligned
// values.
func (b *Buffer) roundUp(n int) int {
	if b.align == 0 {
		return n
	}
	if rem := n & b.amask; rem != 0 {
		n = (n &^ b.amask) + b.align
	}
	return n
}

// Commit publishes n written bytes, making them available to the reader.
// n is rounded up to the alignment and clamped to Free(); the actual
// number of bytes committed is returned. Called by the writer after
// filling WriteBytes.
func (b *Buffer) Commit(n int) int {
	if n <= 0 {
		return 0
	}
	n = b.roundUp(n)

	if free := int(b.free.Load()); n > free {
		n = free
	}

	// The atomic decrement is the release point: the payload bytes above
	// happen-before the reader observing the shrunken free count.
	b.free.Add(int64(-n))
	b.wr = (b.wr + n) % b.max

	return n
}

// Consume releases n read bytes, making the space available to the
// writer. n is rounded up to the alignment and clamped to Used(); the
// actual number of bytes consumed is returned. Called by the reader after
// draining ReadBytes.
func (b *Buffer) Consume(n int) int {
	if n <= 0 {
		return 0
	}
	n = b.roundUp(n)

	if used := b.max - int(b.free.Load()); n > used {
		n = used
	}

	b.free.Add(int64(n))
	b.rd = (b.rd + n) % b.max

	return n
}

// Drain discards all pending data in one step and returns the number of
// bytes discarded. The free count is swapped, not load-then-stored, so a
// concurrent Commit is never lost. Called by the reader.
func (b *Buffer) Drain() int {
	free := int(b.free.Swap(int64(b.max)))
	drained := b.max - free
	b.rd = (b.rd + drained) % b.max
	return drained
}
