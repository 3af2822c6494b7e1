//go:build unix && !linux

package vmem

import (
	"fmt"
	"os"
)

// osMapMirror builds the mirrored mapping over an unlinked temporary file.
// Systems without memfd_create still support mapping one descriptor at two
// fixed addresses; the file is removed immediately so only the mappings
// keep the backing alive.
func osMapMirror(size int) ([]byte, func([]byte) error, error) {
	f, err := os.CreateTemp("", "vmem-mirror-*")
	if err != nil {
		return nil, nil, fmt.Errorf("vmem: create backing file: %w", err)
	}
	defer f.Close()

	if err := os.Remove(f.Name()); err != nil {
		return nil, nil, fmt.Errorf("vmem: unlink backing file: %w", err)
	}

	if err := f.Truncate(int64(size)); err != nil {
		return nil, nil, fmt.Errorf("vmem: truncate backing file: %w", err)
	}

	return dualMap(int(f.Fd()), size)
}
