package vmem

import (
	"errors"
	"os"
	"sync/atomic"
)

// fallbackPageSize is used when the system page size cannot be determined.
const fallbackPageSize = 4096

var (
	// ErrBadSize is returned when the requested size is not a positive
	// multiple of the system page size.
	ErrBadSize = errors.New("vmem: size must be a positive multiple of the page size")
	// ErrMirror is returned when the two mapped halves fail the aliasing
	// verification.
	ErrMirror = errors.New("vmem: mapped halves do not alias the same memory")
)

// Mapping owns a 2*size byte virtual address range whose halves are backed
// by the same size-byte physical allocation. It is responsible for
// releasing the range; the bytes it exposes are invalid after Close.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function releasing the full range.
	unmap func([]byte) error
}

// PageSize returns the system virtual-memory page size.
func PageSize() int {
	if ps := os.Getpagesize(); ps > 0 {
		return ps
	}
	return fallbackPageSize
}

// Map creates a mirrored mapping of the given size. The size must be a
// positive multiple of PageSize(). Any intermediate resource is released
// on failure; the returned error wraps the platform error code.
func Map(size int) (*Mapping, error) {
	if size <= 0 || size%PageSize() != 0 {
		return nil, ErrBadSize
	}

	data, unmap, err := osMapMirror(size)
	if err != nil {
		return nil, err
	}

	if err := verifyMirror(data, size); err != nil {
		_ = unmap(data)
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmap,
	}, nil
}

// verifyMirror confirms that writes through either half of the mapping are
// visible through the other. The test bytes are cleared afterwards.
func verifyMirror(data []byte, size int) error {
	data[0] = 'x'
	if data[size] != 'x' {
		return ErrMirror
	}

	data[size] = 'y'
	if data[0] != 'y' {
		return ErrMirror
	}

	data[0] = 0
	return nil
}

// Bytes returns the full 2*size aliased window, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the logical (single-half) size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Close releases the mapped range. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}
