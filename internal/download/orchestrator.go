package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"curator/internal/archive"
	"curator/internal/config"
	"curator/internal/logging"
)

// publishInterval bounds how often transfer progress is written to the shared
// snapshot, so a hot read loop does not contend on the mutex.
const publishInterval = 250 * time.Millisecond

// Recorder receives terminal download outcomes. Failures to record are logged
// and never affect the download result.
type Recorder interface {
	RecordDownload(ctx context.Context, rec Record) error
}

// Orchestrator owns the single background download slot.
type Orchestrator struct {
	cfg        *config.Config
	logger     *slog.Logger
	downloader *Downloader
	extractor  *archive.Extractor
	recorder   Recorder
	now        func() time.Time

	mu       sync.Mutex
	progress *Progress
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithRecorder attaches a terminal-outcome recorder.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) { o.recorder = recorder }
}

// WithClock overrides the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator constructs the download orchestrator.
func NewOrchestrator(cfg *config.Config, downloader *Downloader, extractor *archive.Extractor, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "download"),
		downloader: downloader,
		extractor:  extractor,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartDownload launches a background transfer. It returns false when the
// slot is already occupied by a non-terminal download or when the request is
// invalid; state is unaffected in both cases.
func (o *Orchestrator) StartDownload(kind Kind, id, url string, expectedSize int64) bool {
	id = strings.TrimSpace(id)
	url = strings.TrimSpace(url)
	if id == "" || url == "" {
		o.logger.Warn("download rejected", logging.String("reason", "empty id or url"))
		return false
	}
	if strings.Contains(id, "/") || strings.Contains(id, "\\") {
		o.logger.Warn("download rejected", logging.String("reason", "id must be a bare filename"), logging.String("id", id))
		return false
	}

	dest := o.destinationFor(kind, id)
	if err := ensureFreeSpace(filepath.Dir(dest), expectedSize); err != nil {
		o.logger.Warn("download rejected", logging.String("reason", "insufficient free space"), logging.Error(err))
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress != nil && !o.progress.State.Terminal() {
		o.logger.Warn("download rejected", logging.String("reason", "another download is active"), logging.String("active_id", o.progress.ID))
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.done = make(chan struct{})
	o.progress = &Progress{
		ID:          id,
		DisplayName: id,
		Kind:        kind,
		TotalBytes:  expectedSize,
		State:       StateStarting,
		StatusText:  "Starting download",
	}

	o.logger.Info("download started",
		logging.String("id", id),
		logging.String("kind", kind.String()),
		logging.String("url", url),
		logging.Int64("expected_bytes", expectedSize),
	)
	go o.run(ctx, o.done, kind, id, url, dest, expectedSize)
	return true
}

// CancelDownload requests cooperative cancellation of the active download.
// No-op when nothing is in flight.
func (o *Orchestrator) CancelDownload() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress == nil || o.progress.State.Terminal() || o.cancel == nil {
		return
	}
	o.logger.Info("download cancellation requested", logging.String("id", o.progress.ID))
	o.cancel()
}

// ClearStatus wipes the published snapshot. Only valid once the download has
// reached a terminal state; an in-flight status cannot be cleared from under
// a poller.
func (o *Orchestrator) ClearStatus() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress == nil || !o.progress.State.Terminal() {
		return
	}
	o.progress = nil
	o.cancel = nil
}

// CurrentProgress returns a copy of the live snapshot, if any.
func (o *Orchestrator) CurrentProgress() (Progress, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress == nil {
		return Progress{}, false
	}
	return *o.progress, true
}

// IsActive reports whether a download is currently in flight.
func (o *Orchestrator) IsActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress != nil && !o.progress.State.Terminal()
}

// Wait blocks until the current background transfer finishes. Returns
// immediately when nothing is in flight.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (o *Orchestrator) destinationFor(kind Kind, id string) string {
	if kind == KindRuntime {
		return filepath.Join(o.cfg.Paths.StateDir, id)
	}
	return filepath.Join(o.cfg.Paths.ModelsDir, id)
}

func (o *Orchestrator) run(ctx context.Context, done chan struct{}, kind Kind, id, url, dest string, expectedSize int64) {
	defer close(done)
	started := o.now()
	sampler := logging.NewProgressSampler(5)

	finish := func(state State, statusText, completedPath, errText string) {
		o.mu.Lock()
		if o.progress != nil && !o.progress.State.Terminal() {
			o.progress.State = state
			o.progress.StatusText = statusText
			o.progress.CompletedPath = completedPath
			if state == StateCompleted {
				o.progress.Percentage = 100
				o.progress.EstimatedRemaining = 0
			}
		}
		snapshot := *o.progress
		o.mu.Unlock()

		switch state {
		case StateCompleted:
			o.logger.Info("download completed", logging.String("id", id), logging.String("path", completedPath))
		case StateCancelled:
			o.logger.Info("download cancelled", logging.String("id", id))
		default:
			o.logger.Error("download failed", logging.String("id", id), logging.String("detail", errText))
		}
		o.record(kind, id, url, dest, snapshot, started, errText)
	}

	if SizeSatisfies(dest, expectedSize) {
		o.logger.Info("existing file satisfies expected size, skipping transfer",
			logging.String("id", id),
			logging.String("path", dest),
		)
		o.completeArtifact(ctx, kind, id, dest, finish)
		return
	}

	lastPublished := o.now()
	progressFn := func(downloaded, total int64) {
		now := o.now()
		if now.Sub(lastPublished) < publishInterval && (total <= 0 || downloaded < total) {
			return
		}
		lastPublished = now
		if total <= 0 {
			total = expectedSize
		}
		o.publishTransfer(downloaded, total, o.now().Sub(started), sampler)
	}

	o.setState(StateDownloading, "Downloading")
	if err := o.downloader.Fetch(ctx, url, dest, progressFn); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			finish(StateCancelled, "Cancelled", "", "")
			return
		}
		finish(StateFailed, "Download failed: "+err.Error(), "", err.Error())
		return
	}
	o.completeArtifact(ctx, kind, id, dest, finish)
}

// completeArtifact finalizes a fully transferred file: model downloads are
// complete as-is, runtime archives are extracted first and only report
// Completed when extraction succeeds.
func (o *Orchestrator) completeArtifact(ctx context.Context, kind Kind, id, dest string, finish func(State, string, string, string)) {
	if kind != KindRuntime {
		finish(StateCompleted, "Completed", dest, "")
		return
	}
	if err := ctx.Err(); err != nil {
		os.Remove(dest)
		finish(StateCancelled, "Cancelled", "", "")
		return
	}
	o.setState(StateDownloading, "Extracting runtime payload")
	platform := archive.PlatformTag()
	target := filepath.Join(o.cfg.Paths.RuntimesDir, platform)
	count, err := o.extractor.Extract(dest, platform, target)
	if err != nil {
		os.Remove(dest)
		finish(StateFailed, "Extraction failed: "+err.Error(), "", err.Error())
		return
	}
	os.Remove(dest)
	finish(StateCompleted, fmt.Sprintf("Completed (%d files extracted)", count), target, "")
}

func (o *Orchestrator) setState(state State, statusText string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.progress == nil || o.progress.State.Terminal() {
		return
	}
	o.progress.State = state
	o.progress.StatusText = statusText
}

func (o *Orchestrator) publishTransfer(downloaded, total int64, elapsed time.Duration, sampler *logging.ProgressSampler) {
	percentage := float64(0)
	if total > 0 {
		percentage = float64(downloaded) / float64(total) * 100
	}
	remaining := estimateRemaining(downloaded, total, elapsed)
	statusText := humanize.Bytes(uint64(downloaded))
	if total > 0 {
		statusText = fmt.Sprintf("%s of %s", humanize.Bytes(uint64(downloaded)), humanize.Bytes(uint64(total)))
		if remaining > 0 {
			statusText += fmt.Sprintf(", about %s left", remaining.Round(time.Second))
		}
	}

	o.mu.Lock()
	if o.progress == nil || o.progress.State.Terminal() {
		o.mu.Unlock()
		return
	}
	o.progress.DownloadedBytes = downloaded
	if total > 0 {
		o.progress.TotalBytes = total
	}
	o.progress.Percentage = percentage
	o.progress.EstimatedRemaining = remaining
	o.progress.StatusText = statusText
	id := o.progress.ID
	o.mu.Unlock()

	if sampler.ShouldLog(percentage, string(StateDownloading)) {
		o.logger.Info("download progress",
			logging.String("id", id),
			logging.Int64("downloaded_bytes", downloaded),
			logging.Int64("total_bytes", total),
			logging.Float64("percent", percentage),
		)
	}
}

func (o *Orchestrator) record(kind Kind, id, url, dest string, snapshot Progress, started time.Time, errText string) {
	if o.recorder == nil {
		return
	}
	rec := Record{
		ID:         id,
		Kind:       kind.String(),
		URL:        url,
		Dest:       dest,
		State:      snapshot.State,
		Bytes:      snapshot.DownloadedBytes,
		Total:      snapshot.TotalBytes,
		Error:      errText,
		StartedAt:  started,
		FinishedAt: o.now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.recorder.RecordDownload(ctx, rec); err != nil {
		o.logger.Warn("failed to record download outcome", logging.Error(err))
	}
}
