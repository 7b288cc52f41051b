package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curator/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false")
	}
	if cfg.Model.ContextSize != 4096 {
		t.Fatalf("unexpected context size %d", cfg.Model.ContextSize)
	}
	if !cfg.Rename.Movies || !cfg.Rename.Episodes || !cfg.Rename.Music {
		t.Fatal("expected media rename flags enabled by default")
	}
	if cfg.Rename.Directories {
		t.Fatal("expected directory renames disabled by default")
	}
	if !filepath.IsAbs(cfg.Paths.ModelsDir) {
		t.Fatalf("models dir not expanded: %q", cfg.Paths.ModelsDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
models_dir = "`+filepath.Join(dir, "models")+`"

[model]
path = "`+filepath.Join(dir, "m.gguf")+`"
context_size = 2048
gpu_layers = 20

[rename]
directories = true
custom_prompt_additions = "  keep release year  "

[logging]
format = "json"
level = "debug"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution exists=%v path=%q", exists, resolved)
	}
	if cfg.Model.ContextSize != 2048 || cfg.Model.GPULayers != 20 {
		t.Fatalf("model overrides not applied: %+v", cfg.Model)
	}
	if !cfg.Rename.Directories {
		t.Fatal("directories flag not applied")
	}
	if cfg.Rename.CustomPromptAdditions != "keep release year" {
		t.Fatalf("prompt additions not trimmed: %q", cfg.Rename.CustomPromptAdditions)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging overrides not applied: %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		detail  string
	}{
		{"tiny context", "[model]\ncontext_size = 16\n", "context_size"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad level", "[logging]\nlevel = \"verbose\"\n", "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Fatalf("error %q missing %q", err, tc.detail)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ModelsDir = filepath.Join(dir, "models")
	cfg.Paths.RuntimesDir = filepath.Join(dir, "runtimes")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.StateDir = filepath.Join(dir, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.Paths.ModelsDir, cfg.Paths.RuntimesDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q", d)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample should load cleanly, exists=%v err=%v", exists, err)
	}
}
