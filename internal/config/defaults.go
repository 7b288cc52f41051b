package config

const (
	defaultModelsDir     = "~/.local/share/curator/models"
	defaultRuntimesDir   = "~/.local/share/curator/runtimes"
	defaultLogDir        = "~/.local/share/curator/logs"
	defaultStateDir      = "~/.local/share/curator/state"
	defaultContextSize   = 4096
	defaultMaxTokens     = 128
	defaultBackendBinary = "llama-cli"
	defaultRuntimeURL    = "https://github.com/ggml-org/llama.cpp/releases/latest/download/llama-runtimes.zip"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelsDir:   defaultModelsDir,
			RuntimesDir: defaultRuntimesDir,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
		},
		Model: Model{
			ContextSize:   defaultContextSize,
			MaxTokens:     defaultMaxTokens,
			BackendBinary: defaultBackendBinary,
		},
		Rename: Rename{
			Movies:      true,
			Episodes:    true,
			Music:       true,
			Directories: false,
		},
		Downloads: Downloads{
			RuntimeURL: defaultRuntimeURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
