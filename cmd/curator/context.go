package main

import (
	"log/slog"
	"strings"
	"sync"

	"curator/internal/activity"
	"curator/internal/archive"
	"curator/internal/config"
	"curator/internal/download"
	"curator/internal/inference"
	"curator/internal/logging"
)

// commandContext lazily builds the pieces commands share: configuration,
// logger, download orchestrator, and model manager.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openStore() (*activity.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return activity.Open(cfg)
}

func (c *commandContext) newOrchestrator(recorder download.Recorder) (*download.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts := []download.Option{}
	if recorder != nil {
		opts = append(opts, download.WithRecorder(recorder))
	}
	return download.NewOrchestrator(cfg, download.NewDownloader(nil), archive.NewExtractor(logger), logger, opts...), nil
}

func (c *commandContext) newManager() (*inference.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	factory := inference.ExecBackendFactory(cfg.Model.BackendBinary, logger)
	return inference.NewManager(cfg, factory, logger), nil
}
