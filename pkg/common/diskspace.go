package common

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// FreeBytes reports free space on the filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}

// EnsureFreeSpace fails when writing need bytes to path would leave less
// than reserve bytes free.
func EnsureFreeSpace(path string, need, reserve uint64) error {
	free, err := FreeBytes(path)
	if err != nil {
		return err
	}
	if free < need+reserve {
		return fmt.Errorf("insufficient disk space in %s: need %d bytes, %d free", path, need+reserve, free)
	}
	return nil
}
