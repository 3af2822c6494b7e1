// Package vmem implements the double virtual-memory mapping that backs the
// mirrored ring buffer.
//
// # Overview
//
// A mirrored mapping places one physical allocation of size bytes at two
// adjacent virtual address ranges, so that byte i and byte size+i are the
// same storage. A ring buffer built on top of such a mapping never has to
// split a read or write at the wrap point: any span of up to size bytes
// starting anywhere in the first half is contiguous in virtual memory.
//
//	Physical |0                   size-1|0                   size-1|
//	Virtual  |0                   size-1|size              2*size-1|
//	         +--------------------------+--------------------------+
//	         |          buffer          |          mirror          |
//	         +--------------------------+--------------------------+
//
// # Construction
//
// Map reserves a contiguous 2*size range of address space with no backing,
// creates a size-byte physical backing, and maps that backing into both
// halves of the reservation. The aliasing is then verified by writing
// sentinel bytes through each half and observing them through the other.
// Verification is the correctness gate for the whole technique; a mapping
// that fails it is released and an error returned.
//
// # Platform Support
//
//   - Linux: memfd_create(2) provides the anonymous backing; the two
//     halves are fixed-mapped over a PROT_NONE reservation.
//   - Other Unix: an unlinked temporary file provides the backing, with
//     the same fixed-mapping dance.
//   - Windows: VirtualAlloc2 reserves a placeholder region, which is
//     split and replaced by two MapViewOfFile3 views of one pagefile-backed
//     section.
//
// # Thread Safety
//
// The mapped bytes themselves carry no synchronization; callers layer
// their own publication protocol on top (see package mirrorbuf). Close is
// idempotent and safe to call concurrently, but callers must ensure no
// goroutine touches Bytes() after Close returns.
package vmem
