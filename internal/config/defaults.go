package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Snaplen:     65535,
			Promiscuous: true,
		},
		Display: DisplayConfig{
			SamplingIntervalMs: 200,
			ChartRefreshMs:     500,
			HistoryCap:         1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyDefaults fills in zero values left by a partial config file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Capture.Snaplen == 0 {
		cfg.Capture.Snaplen = def.Capture.Snaplen
	}
	if cfg.Display.SamplingIntervalMs == 0 {
		cfg.Display.SamplingIntervalMs = def.Display.SamplingIntervalMs
	}
	if cfg.Display.ChartRefreshMs == 0 {
		cfg.Display.ChartRefreshMs = def.Display.ChartRefreshMs
	}
	if cfg.Display.HistoryCap == 0 {
		cfg.Display.HistoryCap = def.Display.HistoryCap
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.LogEvery == 0 {
		cfg.Logging.LogEvery = 1
	}
}

// WriteDefault writes the default configuration to a file
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
