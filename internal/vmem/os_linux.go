//go:build linux

package vmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// osMapMirror builds the mirrored mapping over a memfd backing. The name
// passed to memfd_create is only a debugging label and need not be unique.
func osMapMirror(size int) ([]byte, func([]byte) error, error) {
	fd, err := unix.MemfdCreate("vmem-mirror", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, nil, fmt.Errorf("vmem: memfd_create: %w", err)
	}
	// The descriptor is not needed once both halves are mapped; the
	// mappings keep the backing alive.
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return nil, nil, fmt.Errorf("vmem: ftruncate: %w", err)
	}

	return dualMap(fd, size)
}
