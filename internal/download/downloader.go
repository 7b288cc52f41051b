package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"curator/internal/services"
)

const copyBufferSize = 64 * 1024

// resumeTolerance is the fraction of the expected size an existing file must
// reach for the transfer to be skipped. This is a size heuristic, not a
// content check; see SizeSatisfies.
const resumeTolerance = 0.95

// ProgressFunc receives transfer progress. total is zero when the server did
// not report a content length.
type ProgressFunc func(downloaded, total int64)

// Downloader streams a URL to a local file with cooperative cancellation.
type Downloader struct {
	client *http.Client
}

// NewDownloader constructs a downloader. A nil client falls back to a default
// with no overall timeout: model downloads may legitimately run for hours and
// rely on caller cancellation instead.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{client: client}
}

// SizeSatisfies reports whether an existing file at path is within the
// tolerance window of expectedSize, allowing the transfer to short-circuit.
func SizeSatisfies(path string, expectedSize int64) bool {
	if expectedSize <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return float64(info.Size()) >= float64(expectedSize)*resumeTolerance
}

// Fetch streams url into dest, invoking progress between chunks. On any
// failure or cancellation the partial file is removed before returning;
// cancellation surfaces as ctx.Err.
func (d *Downloader) Fetch(ctx context.Context, url, dest string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "download", "build request", url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrNetwork, "download", "request", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrNetwork, "download", "request", fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url), nil)
	}

	// Destination failures are local problems; retrying the transfer will
	// not fix them, so they carry the validation marker rather than the
	// network one.
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrValidation, "download", "prepare destination", dest, err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return services.Wrap(services.ErrValidation, "download", "create destination", dest, err)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	if copyErr := copyWithProgress(ctx, out, resp.Body, total, progress); copyErr != nil {
		out.Close()
		os.Remove(dest)
		if errors.Is(copyErr, context.Canceled) || errors.Is(copyErr, context.DeadlineExceeded) {
			return copyErr
		}
		return services.Wrap(services.ErrNetwork, "download", "transfer", url, copyErr)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return services.Wrap(services.ErrValidation, "download", "flush destination", dest, err)
	}
	return nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) error {
	buf := make([]byte, copyBufferSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			// The transport reports context cancellation through the body read.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return readErr
		}
	}
}

// estimateRemaining extrapolates the remaining transfer time from throughput
// so far. Zero when unknown.
func estimateRemaining(downloaded, total int64, elapsed time.Duration) time.Duration {
	if downloaded <= 0 || total <= 0 || downloaded >= total || elapsed <= 0 {
		return 0
	}
	bytesPerSecond := float64(downloaded) / elapsed.Seconds()
	if bytesPerSecond <= 0 {
		return 0
	}
	remaining := float64(total-downloaded) / bytesPerSecond
	return time.Duration(remaining * float64(time.Second))
}
