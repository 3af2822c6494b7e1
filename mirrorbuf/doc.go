// Package mirrorbuf provides a lock-free single-producer/single-consumer
// circular byte buffer with wrap-free addressing.
//
// # Overview
//
// The buffer's backing memory is mapped twice at adjacent virtual
// addresses (see internal/vmem), so the bytes at the read index are always
// contiguous for up to Used() bytes and the bytes at the write index for
// up to Free() bytes, no matter where the indices sit. Callers hand those
// views straight to I/O calls and never deal with wraparound:
//
//	b, err := mirrorbuf.New(0, 4) // one page, 4-byte alignment
//	if err != nil { ... }
//	defer b.Close()
//
//	// Produce: fill the free span, then publish.
//	n, _ := conn.Read(b.WriteBytes())
//	b.Commit(n)
//
//	// Consume: drain the used span, then release.
//	n, _ = file.Write(b.ReadBytes())
//	b.Consume(n)
//
// # Concurrency
//
// Exactly one writer and one reader are supported, each in its own
// goroutine. The free-byte counter is the single atomically updated field:
// Commit publishes written bytes to the reader and Consume publishes
// reclaimed space to the writer. The write index is touched only by the
// writer and the read index only by the reader, so neither needs to be
// atomic. More than one concurrent writer or reader requires external
// locking, which this package deliberately does not provide.
//
// No operation blocks. A caller that finds the buffer full or empty
// chooses its own wait strategy.
//
// # Alignment
//
// An element alignment of 2, 4, or 8 makes Commit and Consume round their
// counts up to the next alignment multiple, so the read view can be cast
// to fixed-size records without misaligned access. When a write is not an
// exact multiple of the alignment the rounded-up remainder becomes an
// unreadable hole; framing inside the data is the caller's concern.
//
// # Errors
//
// Only New can fail (platform mapping errors, or an impossible alignment).
// Every other operation is a total function over a live buffer: counts are
// clamped to what is available and the actual amount is returned. Calling
// operations on a closed buffer is undefined behavior, mirroring the
// no-runtime-validation contract of the underlying design.
package mirrorbuf
