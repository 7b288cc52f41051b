package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"curator/internal/archive"
	"curator/internal/config"
	"curator/internal/download"
	"curator/internal/logging"
	"curator/internal/testsupport"
)

type captureRecorder struct {
	mu      sync.Mutex
	records []download.Record
}

func (c *captureRecorder) RecordDownload(_ context.Context, rec download.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

func (c *captureRecorder) last(t *testing.T) download.Record {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) == 0 {
		t.Fatal("no download outcomes recorded")
	}
	return c.records[len(c.records)-1]
}

func newOrchestrator(t *testing.T, opts ...download.Option) (*download.Orchestrator, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()
	orch := download.NewOrchestrator(cfg, download.NewDownloader(nil), archive.NewExtractor(logger), logger, opts...)
	return orch, cfg
}

func waitTerminal(t *testing.T, orch *download.Orchestrator) download.Progress {
	t.Helper()
	orch.Wait()
	progress, ok := orch.CurrentProgress()
	if !ok {
		t.Fatal("expected a published snapshot after Wait")
	}
	if !progress.State.Terminal() {
		t.Fatalf("expected terminal state, got %s", progress.State)
	}
	return progress
}

func TestStartDownloadRejectsSecondWhileActive(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	orch, _ := newOrchestrator(t)
	if !orch.StartDownload(download.KindModel, "first.gguf", server.URL, 0) {
		t.Fatal("first StartDownload must succeed")
	}
	if orch.StartDownload(download.KindModel, "second.gguf", server.URL, 0) {
		t.Fatal("second StartDownload must be rejected while the slot is occupied")
	}
	if !orch.IsActive() {
		t.Fatal("expected an active download")
	}

	close(release)
	progress := waitTerminal(t, orch)
	if progress.State != download.StateCompleted {
		t.Fatalf("state = %s, want completed", progress.State)
	}

	// Slot free again once terminal.
	if !orch.StartDownload(download.KindModel, "second.gguf", server.URL, 0) {
		t.Fatal("StartDownload must succeed after the previous download finished")
	}
	orch.Wait()
}

func TestStartDownloadRejectsInvalidID(t *testing.T) {
	orch, _ := newOrchestrator(t)
	if orch.StartDownload(download.KindModel, "", "http://example.invalid/x", 0) {
		t.Fatal("empty id must be rejected")
	}
	if orch.StartDownload(download.KindModel, "nested/model.gguf", "http://example.invalid/x", 0) {
		t.Fatal("id with path separator must be rejected")
	}
	if _, ok := orch.CurrentProgress(); ok {
		t.Fatal("rejected requests must not publish a snapshot")
	}
}

func TestExistingFileShortCircuitsTransfer(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("should never be fetched"))
	}))
	defer server.Close()

	recorder := &captureRecorder{}
	orch, cfg := newOrchestrator(t, download.WithRecorder(recorder))
	dest := filepath.Join(cfg.Paths.ModelsDir, "cached.gguf")
	testsupport.WriteFile(t, dest, 960)

	if !orch.StartDownload(download.KindModel, "cached.gguf", server.URL, 1000) {
		t.Fatal("StartDownload must accept the request")
	}
	progress := waitTerminal(t, orch)
	if progress.State != download.StateCompleted {
		t.Fatalf("state = %s, want completed", progress.State)
	}
	if progress.CompletedPath != dest {
		t.Fatalf("completed path = %q, want %q", progress.CompletedPath, dest)
	}
	if requests.Load() != 0 {
		t.Fatalf("expected zero network reads, server saw %d", requests.Load())
	}
	if rec := recorder.last(t); rec.State != download.StateCompleted {
		t.Fatalf("recorded state = %s, want completed", rec.State)
	}
}

func TestCancelledDownloadLeavesNoArtifact(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.Write(make([]byte, 64*1024))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	orch, cfg := newOrchestrator(t)
	if !orch.StartDownload(download.KindModel, "big.gguf", server.URL, 1048576) {
		t.Fatal("StartDownload must accept the request")
	}
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the request")
	}
	orch.CancelDownload()

	progress := waitTerminal(t, orch)
	if progress.State != download.StateCancelled {
		t.Fatalf("state = %s, want cancelled", progress.State)
	}
	dest := filepath.Join(cfg.Paths.ModelsDir, "big.gguf")
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("partial artifact must be removed, stat err=%v", err)
	}
}

func TestRuntimeDownloadExtractsArchive(t *testing.T) {
	platform := archive.PlatformTag()
	payload := testsupport.ZipBytes(t, map[string]string{
		"runtimes/" + platform + "/avx2/libggml.so": "native code",
		"runtimes/other-platform/avx2/libggml.so":   "wrong platform",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	orch, cfg := newOrchestrator(t)
	if !orch.StartDownload(download.KindRuntime, "runtime.zip", server.URL, int64(len(payload))) {
		t.Fatal("StartDownload must accept the request")
	}
	progress := waitTerminal(t, orch)
	if progress.State != download.StateCompleted {
		t.Fatalf("state = %s (%s), want completed", progress.State, progress.StatusText)
	}

	extracted := filepath.Join(cfg.Paths.RuntimesDir, platform, "avx2", "libggml.so")
	if _, err := os.Stat(extracted); err != nil {
		t.Fatalf("expected extracted runtime file: %v", err)
	}
	foreign := filepath.Join(cfg.Paths.RuntimesDir, platform, "other-platform")
	if _, err := os.Stat(foreign); !os.IsNotExist(err) {
		t.Fatal("foreign platform entries must be filtered out")
	}
	archivePath := filepath.Join(cfg.Paths.StateDir, "runtime.zip")
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Fatal("archive must be removed after extraction")
	}
}

func TestFailedDownloadReportsFailureAndLeavesNoArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	recorder := &captureRecorder{}
	orch, cfg := newOrchestrator(t, download.WithRecorder(recorder))
	if !orch.StartDownload(download.KindModel, "missing.gguf", server.URL, 0) {
		t.Fatal("StartDownload must accept the request")
	}
	progress := waitTerminal(t, orch)
	if progress.State != download.StateFailed {
		t.Fatalf("state = %s, want failed", progress.State)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ModelsDir, "missing.gguf")); !os.IsNotExist(err) {
		t.Fatal("failed download must not leave an artifact")
	}
	if rec := recorder.last(t); rec.Error == "" {
		t.Fatal("recorded outcome must carry the failure detail")
	}
}

func TestClearStatusOnlyAfterTerminalState(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	orch, _ := newOrchestrator(t)
	if !orch.StartDownload(download.KindModel, "slow.gguf", server.URL, 0) {
		t.Fatal("StartDownload must accept the request")
	}

	orch.ClearStatus()
	if _, ok := orch.CurrentProgress(); !ok {
		t.Fatal("ClearStatus must not wipe an in-flight snapshot")
	}

	close(release)
	waitTerminal(t, orch)
	orch.ClearStatus()
	if _, ok := orch.CurrentProgress(); ok {
		t.Fatal("ClearStatus must wipe a terminal snapshot")
	}
}
