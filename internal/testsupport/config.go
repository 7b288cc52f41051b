package testsupport

import (
	"path/filepath"
	"testing"

	"curator/internal/config"
)

// NewConfig returns a validated Config rooted in a per-test temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ModelsDir = filepath.Join(base, "models")
	cfg.Paths.RuntimesDir = filepath.Join(base, "runtimes")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return &cfg
}
