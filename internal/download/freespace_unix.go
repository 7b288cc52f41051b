//go:build unix

package download

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ensureFreeSpace rejects a download up front when the destination volume
// cannot hold the expected payload. Unknown sizes pass.
func ensureFreeSpace(dir string, expectedSize int64) error {
	if expectedSize <= 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		// Best effort: an unstatable filesystem should not block the download.
		return nil
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < uint64(expectedSize) {
		return fmt.Errorf("%s has %d bytes free, need %d", dir, available, expectedSize)
	}
	return nil
}
