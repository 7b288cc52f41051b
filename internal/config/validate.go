package config

import (
	"fmt"
	"strings"
)

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.ModelsDir) == "" {
		return fmt.Errorf("paths.models_dir: required")
	}
	if strings.TrimSpace(c.Paths.RuntimesDir) == "" {
		return fmt.Errorf("paths.runtimes_dir: required")
	}
	if c.Model.ContextSize < 512 {
		return fmt.Errorf("model.context_size: %d below minimum 512", c.Model.ContextSize)
	}
	if c.Model.MaxTokens < 8 {
		return fmt.Errorf("model.max_tokens: %d below minimum 8", c.Model.MaxTokens)
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
