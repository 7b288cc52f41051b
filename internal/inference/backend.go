package inference

import "context"

// LoadOptions are bound to a model at load time. Later configuration changes
// do not affect an already-loaded model.
type LoadOptions struct {
	ContextSize int
	GPULayers   int
}

// GenerateOptions carry the per-call generation parameters. Apart from
// MaxTokens these are fixed policy constants tuned for short, deterministic,
// single-line output.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
	Stop        []string
}

// Backend abstracts the native inference engine. Implementations are not
// required to be safe for concurrent use; the Manager serializes all calls.
type Backend interface {
	Load(ctx context.Context, modelPath string, opts LoadOptions) error
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Unload() error
}

// BackendFactory builds a backend bound to a runtime variant library
// directory. libDir may be empty when no variant payload is installed, in
// which case the backend resolves its engine from the ambient environment.
type BackendFactory func(libDir string) Backend

// Generation policy constants. Low temperature keeps filename suggestions
// stable across runs; the newline stop sequence enforces single-line output.
const (
	policyTemperature = 0.1
	policyTopP        = 0.9
	policyTopK        = 40
)

func policyStop() []string { return []string{"\n"} }
