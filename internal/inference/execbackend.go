package inference

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"curator/internal/logging"
	"curator/internal/services"
)

// ExecBackend drives a llama.cpp command-line binary as the inference
// engine. Load verifies the binary and its shared libraries resolve against
// the variant directory; Generate runs one subprocess per call.
type ExecBackend struct {
	binary string
	libDir string
	logger *slog.Logger

	modelPath string
	loadOpts  LoadOptions
}

// NewExecBackend constructs a backend for the named binary. libDir, when
// non-empty, is searched for the binary first and exported as the dynamic
// library path for every subprocess.
func NewExecBackend(binary, libDir string, logger *slog.Logger) *ExecBackend {
	return &ExecBackend{
		binary: binary,
		libDir: libDir,
		logger: logging.NewComponentLogger(logger, "backend"),
	}
}

// ExecBackendFactory adapts NewExecBackend to the BackendFactory contract.
func ExecBackendFactory(binary string, logger *slog.Logger) BackendFactory {
	return func(libDir string) Backend {
		return NewExecBackend(binary, libDir, logger)
	}
}

// Load resolves the engine binary and proves its runtime dependencies link
// by running it once with --version. A missing GPU runtime library surfaces
// here, before any generation is attempted.
func (b *ExecBackend) Load(ctx context.Context, modelPath string, opts LoadOptions) error {
	bin, err := b.resolveBinary()
	if err != nil {
		return err
	}
	probe := exec.CommandContext(ctx, bin, "--version")
	probe.Env = b.environ()
	var stderr bytes.Buffer
	probe.Stderr = &stderr
	if err := probe.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("engine probe failed: %s", detail)
	}

	b.modelPath = modelPath
	b.loadOpts = opts
	b.logger.Debug("engine probe succeeded",
		logging.String("binary", bin),
		logging.String("lib_dir", b.libDir),
	)
	return nil
}

// Generate runs one inference subprocess and returns its raw output.
func (b *ExecBackend) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if b.modelPath == "" {
		return "", services.ErrNotLoaded
	}
	bin, err := b.resolveBinary()
	if err != nil {
		return "", err
	}

	args := []string{
		"-m", b.modelPath,
		"-p", prompt,
		"-n", strconv.Itoa(opts.MaxTokens),
		"-c", strconv.Itoa(b.loadOpts.ContextSize),
		"--temp", strconv.FormatFloat(opts.Temperature, 'f', -1, 64),
		"--top-p", strconv.FormatFloat(opts.TopP, 'f', -1, 64),
		"--top-k", strconv.Itoa(opts.TopK),
		"--no-display-prompt",
		"--simple-io",
	}
	if b.loadOpts.GPULayers > 0 {
		args = append(args, "-ngl", strconv.Itoa(b.loadOpts.GPULayers))
	}
	for _, stop := range opts.Stop {
		args = append(args, "-r", stop)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = b.environ()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("inference run failed: %s", detail)
	}
	return stdout.String(), nil
}

// Unload drops the bound model. The engine itself is per-call, so there is
// no resident process to stop.
func (b *ExecBackend) Unload() error {
	b.modelPath = ""
	return nil
}

func (b *ExecBackend) resolveBinary() (string, error) {
	if b.libDir != "" {
		candidate := filepath.Join(b.libDir, b.binary)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	bin, err := exec.LookPath(b.binary)
	if err != nil {
		return "", services.Wrap(services.ErrBackendLoad, "backend", "resolve binary", b.binary, err)
	}
	return bin, nil
}

func (b *ExecBackend) environ() []string {
	if b.libDir == "" {
		return nil
	}
	env := os.Environ()
	path := b.libDir
	if existing := os.Getenv("LD_LIBRARY_PATH"); existing != "" {
		path += string(os.PathListSeparator) + existing
	}
	return append(env, "LD_LIBRARY_PATH="+path)
}
