package config

// Configuration loading and validation for ipview

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hareinweed/ipview/internal/errors"
	"github.com/hareinweed/ipview/internal/filter"
	"github.com/hareinweed/ipview/internal/logging"
)

// CaptureConfig controls the live capture.
type CaptureConfig struct {
	Interface   string `yaml:"interface"`
	Snaplen     int    `yaml:"snaplen"`
	Promiscuous bool   `yaml:"promiscuous"`
	DurationMs  int    `yaml:"duration_ms"` // 0 captures until stopped
	DumpPath    string `yaml:"dump_path,omitempty"`
}

// DisplayConfig controls the record table and traffic chart.
type DisplayConfig struct {
	SamplingIntervalMs int    `yaml:"sampling_interval_ms"` // traffic chart bucket width
	ChartRefreshMs     int    `yaml:"chart_refresh_ms"`
	HistoryCap         int    `yaml:"history_cap"`
	Filter             string `yaml:"filter,omitempty"` // initial filter expression
}

// LoggingConfig controls the log output.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	File     string `yaml:"file,omitempty"`
	Format   string `yaml:"format,omitempty"` // "text" or "json"
	LogEvery int    `yaml:"log_every,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
}

// Load loads a configuration from a YAML file.
// If the file doesn't exist and autoCreate is true, it will create a default config file
func Load(path string, autoCreate bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if autoCreate {
				if err := WriteDefault(path); err != nil {
					return nil, fmt.Errorf("create default config: %w", err)
				}
				data, err = os.ReadFile(path)
				if err != nil {
					return nil, errors.WrapConfigError(
						fmt.Errorf("read created config file: %w", err),
						path,
					)
				}
			} else {
				return nil, errors.WrapConfigError(
					fmt.Errorf("config file not found: %s", path),
					path,
				)
			}
		} else {
			return nil, errors.WrapConfigError(
				fmt.Errorf("read config file: %w", err),
				path,
			)
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError(fmt.Errorf("parse YAML: %w", err), path)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, errors.WrapConfigError(err, path)
	}

	return cfg, nil
}

// Validate validates a configuration
func Validate(cfg *Config) error {
	if cfg.Capture.Snaplen < 0 || cfg.Capture.Snaplen > 65535 {
		return fmt.Errorf("capture.snaplen must be between 0 and 65535")
	}
	if cfg.Capture.DurationMs < 0 {
		return fmt.Errorf("capture.duration_ms must be >= 0")
	}
	if cfg.Display.SamplingIntervalMs <= 0 {
		return fmt.Errorf("display.sampling_interval_ms must be > 0")
	}
	if cfg.Display.ChartRefreshMs <= 0 {
		return fmt.Errorf("display.chart_refresh_ms must be > 0")
	}
	if cfg.Display.HistoryCap < 0 {
		return fmt.Errorf("display.history_cap must be >= 0")
	}
	if cfg.Display.Filter != "" {
		if _, err := filter.Compile(cfg.Display.Filter); err != nil {
			return fmt.Errorf("display.filter: %w", err)
		}
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\"")
	}
	if cfg.Logging.LogEvery < 0 {
		return fmt.Errorf("logging.log_every must be >= 0")
	}
	return nil
}
