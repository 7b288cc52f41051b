//go:build !unix

package download

import "os"

func ensureFreeSpace(dir string, expectedSize int64) error {
	if expectedSize <= 0 {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
