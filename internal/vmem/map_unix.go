//go:build unix

package vmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// dualMap maps the backing descriptor at both halves of a fresh 2*size
// address-space reservation. MAP_FIXED atomically replaces the reserved
// pages in place, so the reservation never races with another mapping.
func dualMap(fd, size int) ([]byte, func([]byte) error, error) {
	// Reserve the contiguous double-size range with no backing. The
	// kernel chooses the address; PROT_NONE keeps it untouchable until
	// the real mappings land.
	resv, err := unix.Mmap(-1, 0, 2*size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("vmem: reserve address range: %w", err)
	}

	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_SHARED | unix.MAP_FIXED

	if _, err := unix.MmapPtr(fd, 0, unsafe.Pointer(&resv[0]), uintptr(size), prot, flags); err != nil {
		_ = unix.Munmap(resv)
		return nil, nil, fmt.Errorf("vmem: map low half: %w", err)
	}

	if _, err := unix.MmapPtr(fd, 0, unsafe.Pointer(&resv[size]), uintptr(size), prot, flags); err != nil {
		_ = unix.Munmap(resv)
		return nil, nil, fmt.Errorf("vmem: map high half: %w", err)
	}

	// One munmap of the original range releases both halves.
	return resv, unix.Munmap, nil
}
