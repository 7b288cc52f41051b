package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeModel(); err != nil {
		return err
	}
	c.normalizeRename()
	c.normalizeDownloads()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ModelsDir) == "" {
		c.Paths.ModelsDir = defaultModelsDir
	}
	if c.Paths.ModelsDir, err = expandPath(c.Paths.ModelsDir); err != nil {
		return fmt.Errorf("paths.models_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RuntimesDir) == "" {
		c.Paths.RuntimesDir = defaultRuntimesDir
	}
	if c.Paths.RuntimesDir, err = expandPath(c.Paths.RuntimesDir); err != nil {
		return fmt.Errorf("paths.runtimes_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeModel() error {
	c.Model.Path = strings.TrimSpace(c.Model.Path)
	if c.Model.Path != "" {
		expanded, err := expandPath(c.Model.Path)
		if err != nil {
			return fmt.Errorf("model.path: %w", err)
		}
		c.Model.Path = expanded
	}
	if c.Model.ContextSize <= 0 {
		c.Model.ContextSize = defaultContextSize
	}
	if c.Model.MaxTokens <= 0 {
		c.Model.MaxTokens = defaultMaxTokens
	}
	if c.Model.GPULayers < 0 {
		c.Model.GPULayers = 0
	}
	c.Model.BackendBinary = strings.TrimSpace(c.Model.BackendBinary)
	if c.Model.BackendBinary == "" {
		c.Model.BackendBinary = defaultBackendBinary
	}
	return nil
}

func (c *Config) normalizeRename() {
	c.Rename.CustomPromptAdditions = strings.TrimSpace(c.Rename.CustomPromptAdditions)
}

func (c *Config) normalizeDownloads() {
	c.Downloads.RuntimeURL = strings.TrimSpace(c.Downloads.RuntimeURL)
	if c.Downloads.RuntimeURL == "" {
		c.Downloads.RuntimeURL = defaultRuntimeURL
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
