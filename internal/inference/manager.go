package inference

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/services"
)

const (
	// defaultIdleWindow is how long a loaded model survives without a
	// Generate call before being evicted to free memory.
	defaultIdleWindow = 5 * time.Minute
	// defaultTickInterval bounds how late an eviction can fire.
	defaultTickInterval = 30 * time.Second
)

// Manager owns the loaded-model resource. At most one model is resident at a
// time and load, generate, and unload are mutually exclusive; callers that
// need throughput must batch externally.
type Manager struct {
	cfg          *config.Config
	logger       *slog.Logger
	factory      BackendFactory
	now          func() time.Time
	idleWindow   time.Duration
	tickInterval time.Duration

	mu           sync.Mutex
	backend      Backend
	modelPath    string
	variant      string
	idleDeadline time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// ManagerOption customizes the manager.
type ManagerOption func(*Manager)

// WithManagerClock overrides the time source (used in tests).
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIdleWindow overrides the idle eviction window.
func WithIdleWindow(window time.Duration) ManagerOption {
	return func(m *Manager) {
		if window > 0 {
			m.idleWindow = window
		}
	}
}

// WithTickInterval overrides the eviction check interval (used in tests).
func WithTickInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		if interval > 0 {
			m.tickInterval = interval
		}
	}
}

// NewManager constructs the lifecycle manager and starts its idle eviction
// loop. Callers must Close the manager to stop the loop and release the
// loaded model.
func NewManager(cfg *config.Config, factory BackendFactory, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "inference"),
		factory:      factory,
		now:          time.Now,
		idleWindow:   defaultIdleWindow,
		tickInterval: defaultTickInterval,
		stop:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.evictLoop()
	return m
}

// Load makes the model at path resident, unloading any existing model first.
// Context size and GPU layer count are read from configuration at load time
// and bound to this load.
func (m *Manager) Load(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return services.Wrap(services.ErrNotFound, "inference", "load", "model file not found: "+path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()

	backend, variant, loadErr := m.loadBackendLocked(ctx, path)
	if loadErr != nil {
		return loadErr
	}
	m.backend = backend
	m.modelPath = path
	m.variant = variant
	m.idleDeadline = m.now().Add(m.idleWindow)
	m.logger.Info("model loaded",
		logging.String("path", path),
		logging.String("variant", variant),
		logging.Int("context_size", m.cfg.Model.ContextSize),
		logging.Int("gpu_layers", m.cfg.Model.GPULayers),
	)
	return nil
}

// loadBackendLocked selects a runtime variant and initializes a backend for
// it. A GPU variant that fails to initialize degrades to the best CPU
// variant with a warning rather than failing the load.
func (m *Manager) loadBackendLocked(ctx context.Context, path string) (Backend, string, error) {
	opts := LoadOptions{ContextSize: m.cfg.Model.ContextSize, GPULayers: m.cfg.Model.GPULayers}

	if m.cfg.Model.GPULayers > 0 {
		if dir, variant := selectGPUVariant(m.cfg.Paths.RuntimesDir); dir != "" {
			backend := m.factory(dir)
			err := backend.Load(ctx, path, opts)
			if err == nil {
				return backend, variant, nil
			}
			m.logger.Warn("GPU runtime failed to initialize, falling back to CPU",
				logging.String("variant", variant),
				logging.Error(err),
			)
		} else {
			m.logger.Warn("no GPU runtime variant installed, falling back to CPU")
		}
		opts.GPULayers = 0
	}

	dir, variant := selectCPUVariant(m.cfg.Paths.RuntimesDir)
	if variant == "" {
		variant = "system"
	}
	backend := m.factory(dir)
	if err := backend.Load(ctx, path, opts); err != nil {
		return nil, "", services.Wrap(services.ErrBackendLoad, "inference", "load", "backend failed to initialize", err)
	}
	return backend, variant, nil
}

// Generate produces text for prompt using the resident model. Each call
// resets the idle eviction deadline.
func (m *Manager) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backend == nil {
		return "", services.Wrap(services.ErrNotLoaded, "inference", "generate", "no model loaded", nil)
	}
	m.idleDeadline = m.now().Add(m.idleWindow)
	text, err := m.backend.Generate(ctx, prompt, GenerateOptions{
		MaxTokens:   m.cfg.Model.MaxTokens,
		Temperature: policyTemperature,
		TopP:        policyTopP,
		TopK:        policyTopK,
		Stop:        policyStop(),
	})
	if err != nil {
		return "", services.Wrap(services.ErrGenerate, "inference", "generate", "backend generation failed", err)
	}
	m.idleDeadline = m.now().Add(m.idleWindow)
	return text, nil
}

// Unload releases the resident model. Safe to call when nothing is loaded.
func (m *Manager) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()
}

// LoadedModel reports the path of the resident model, if any.
func (m *Manager) LoadedModel() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelPath, m.backend != nil
}

// Close stops the eviction loop and unloads any resident model.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.Unload()
}

func (m *Manager) unloadLocked() {
	if m.backend == nil {
		return
	}
	if err := m.backend.Unload(); err != nil {
		m.logger.Warn("backend unload reported an error", logging.Error(err))
	}
	m.logger.Info("model unloaded", logging.String("path", m.modelPath))
	m.backend = nil
	m.modelPath = ""
	m.variant = ""
}

func (m *Manager) evictLoop() {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIfIdle()
		}
	}
}

func (m *Manager) evictIfIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backend == nil || m.now().Before(m.idleDeadline) {
		return
	}
	m.logger.Info("evicting idle model",
		logging.String("path", m.modelPath),
		logging.Duration("idle_window", m.idleWindow),
	)
	m.unloadLocked()
}
