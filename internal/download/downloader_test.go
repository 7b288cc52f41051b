package download_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curator/internal/download"
	"curator/internal/services"
	"curator/internal/testsupport"
)

func TestFetchWritesDestinationAndReportsProgress(t *testing.T) {
	payload := []byte("model weights payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "models", "tiny.gguf")
	var lastDownloaded, lastTotal int64
	err := download.NewDownloader(server.Client()).Fetch(context.Background(), server.URL, dest, func(downloaded, total int64) {
		lastDownloaded, lastTotal = downloaded, total
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != string(payload) {
		t.Fatalf("destination content %q err=%v", data, err)
	}
	if lastDownloaded != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Fatalf("progress downloaded=%d total=%d", lastDownloaded, lastTotal)
	}
}

func TestFetchRemovesPartialOnCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.Write(make([]byte, 64*1024))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	dest := filepath.Join(t.TempDir(), "partial.gguf")
	go func() {
		// Cancel once the first chunk has been observed.
		for {
			if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
				cancel()
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	err := download.NewDownloader(server.Client()).Fetch(ctx, server.URL, dest, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(dest); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial file must be removed, stat err=%v", statErr)
	}
}

func TestFetchRemovesPartialOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "err.gguf")
	err := download.NewDownloader(server.Client()).Fetch(context.Background(), server.URL, dest, nil)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if _, statErr := os.Stat(dest); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("no artifact expected, stat err=%v", statErr)
	}
}

func TestFetchUnwritableDestinationIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	// A regular file where a parent directory should be makes the
	// destination unwritable regardless of how often we retry.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	dest := filepath.Join(blocker, "model.gguf")

	err := download.NewDownloader(server.Client()).Fetch(context.Background(), server.URL, dest, nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if errors.Is(err, services.ErrNetwork) {
		t.Fatalf("local filesystem failure must not carry the network marker: %v", err)
	}
	if services.IsRetryable(err) {
		t.Fatalf("destination failure must not be retryable: %v", err)
	}
}

func TestSizeSatisfies(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.gguf")
	testsupport.WriteFile(t, full, 1000)

	if !download.SizeSatisfies(full, 1000) {
		t.Fatal("exact size should satisfy")
	}
	if !download.SizeSatisfies(full, 1050) {
		t.Fatal("95% tolerance should satisfy")
	}
	if download.SizeSatisfies(full, 2000) {
		t.Fatal("half-size file must not satisfy")
	}
	if download.SizeSatisfies(filepath.Join(dir, "absent"), 100) {
		t.Fatal("missing file must not satisfy")
	}
	if download.SizeSatisfies(full, 0) {
		t.Fatal("unknown expected size must not satisfy")
	}
}
