//go:build windows

package vmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// osMapMirror builds the mirrored mapping from a pagefile-backed section.
// The double-size region is reserved as a placeholder, split in two, and
// each placeholder is replaced by a view of the same section.
func osMapMirror(size int) ([]byte, func([]byte) error, error) {
	process := windows.CurrentProcess()

	base, err := windows.VirtualAlloc2(process, 0, uintptr(2*size),
		windows.MEM_RESERVE|windows.MEM_RESERVE_PLACEHOLDER, windows.PAGE_NOACCESS, nil, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("vmem: reserve address range: %w", err)
	}

	// Split the placeholder into two regions of size bytes each.
	if err := windows.VirtualFree(base, uintptr(size),
		windows.MEM_RELEASE|windows.MEM_PRESERVE_PLACEHOLDER); err != nil {
		_ = windows.VirtualFree(base, 0, windows.MEM_RELEASE)
		return nil, nil, fmt.Errorf("vmem: split placeholder: %w", err)
	}

	section, err := windows.CreateFileMapping(windows.InvalidHandle, nil,
		windows.PAGE_READWRITE, uint32(uint64(size)>>32), uint32(size), nil)
	if err != nil {
		_ = windows.VirtualFree(base, 0, windows.MEM_RELEASE)
		_ = windows.VirtualFree(base+uintptr(size), 0, windows.MEM_RELEASE)
		return nil, nil, fmt.Errorf("vmem: create section: %w", err)
	}
	// The views keep their own references to the section.
	defer windows.CloseHandle(section)

	low, err := windows.MapViewOfFile3(section, process, base, 0, uintptr(size),
		windows.MEM_REPLACE_PLACEHOLDER, windows.PAGE_READWRITE, nil, 0)
	if err != nil {
		_ = windows.VirtualFree(base, 0, windows.MEM_RELEASE)
		_ = windows.VirtualFree(base+uintptr(size), 0, windows.MEM_RELEASE)
		return nil, nil, fmt.Errorf("vmem: map low view: %w", err)
	}

	high, err := windows.MapViewOfFile3(section, process, base+uintptr(size), 0, uintptr(size),
		windows.MEM_REPLACE_PLACEHOLDER, windows.PAGE_READWRITE, nil, 0)
	if err != nil {
		_ = windows.UnmapViewOfFile(low)
		_ = windows.VirtualFree(base+uintptr(size), 0, windows.MEM_RELEASE)
		return nil, nil, fmt.Errorf("vmem: map high view: %w", err)
	}

	if high != low+uintptr(size) {
		_ = windows.UnmapViewOfFile(low)
		_ = windows.UnmapViewOfFile(high)
		return nil, nil, ErrMirror
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(low)), 2*size)

	unmap := func(b []byte) error {
		addr := uintptr(unsafe.Pointer(&b[0]))
		half := uintptr(len(b) / 2)
		err1 := windows.UnmapViewOfFile(addr)
		err2 := windows.UnmapViewOfFile(addr + half)
		if err1 != nil {
			return fmt.Errorf("vmem: unmap low view: %w", err1)
		}
		if err2 != nil {
			return fmt.Errorf("vmem: unmap high view: %w", err2)
		}
		return nil
	}

	return data, unmap, nil
}
