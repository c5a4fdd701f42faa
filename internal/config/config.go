// Package config provides configuration management for the survey pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSource            = errors.New("source.path or source.url is required")
	ErrInvalidSourceFormat      = errors.New("source.format must be 'csv', 'xlsx' or empty")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingOutputDir         = errors.New("output.dir is required")
	ErrNoOutputFormats          = errors.New("output.formats must name at least one of: json, markdown, svg")
	ErrInvalidOutputFormat      = errors.New("output.formats entries must be 'json', 'markdown' or 'svg'")
	ErrInvalidCanvas            = errors.New("render.width and render.height must be at least 200")
	ErrInvalidAbsentThreshold   = errors.New("validation.absent_warn_percent must be between 0 and 100")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrMissingServerAddr        = errors.New("server.addr is required")
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSVG      = "svg"
)

// Config represents the complete pipeline configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Retry      RetryPolicy      `yaml:"retry"`
	Output     OutputConfig     `yaml:"output"`
	Render     RenderConfig     `yaml:"render"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
}

// SourceConfig locates the survey table.
type SourceConfig struct {
	Path       string   `yaml:"path"`
	URL        string   `yaml:"url"`
	Format     string   `yaml:"format"`
	Sheet      string   `yaml:"sheet"`
	BackupURLs []string `yaml:"backup_urls"`
}

// IsLocalFile returns true if this source uses a local file.
func (s *SourceConfig) IsLocalFile() bool {
	return s.Path != ""
}

// GetSource returns the file path if local, or URL if remote.
func (s *SourceConfig) GetSource() string {
	if s.IsLocalFile() {
		return s.Path
	}

	return s.URL
}

// GetAllURLs returns all URLs (primary + backups) for a remote source.
func (s *SourceConfig) GetAllURLs() []string {
	var urls []string
	if s.URL != "" {
		urls = append(urls, s.URL)
	}

	return append(urls, s.BackupURLs...)
}

// ResolveFormat returns the configured format, falling back to the source extension.
func (s *SourceConfig) ResolveFormat() string {
	if s.Format != "" {
		return strings.ToLower(s.Format)
	}

	src := s.GetSource()
	if i := strings.IndexAny(src, "?#"); i >= 0 && !s.IsLocalFile() {
		src = src[:i]
	}

	if strings.EqualFold(filepath.Ext(src), ".xlsx") {
		return "xlsx"
	}

	return "csv"
}

// RetryPolicy defines retry behavior for remote sources.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	BufferSizeKb      int     `yaml:"buffer_size_kb"`
}

// OutputConfig defines where and what the survey command writes.
type OutputConfig struct {
	Dir          string   `yaml:"dir"`
	Formats      []string `yaml:"formats"`
	PrettyPrint  bool     `yaml:"pretty_print"`
	CreateBackup bool     `yaml:"create_backup"`
}

// RenderConfig sizes the SVG canvas.
type RenderConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// ValidationConfig tunes data quality warnings.
type ValidationConfig struct {
	AbsentWarnPercent int  `yaml:"absent_warn_percent"`
	Strict            bool `yaml:"strict"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
}

// Default returns a configuration that validates once a source is set.
func Default() *Config {
	return &Config{
		Retry: RetryPolicy{
			MaxAttempts:       3,
			InitialDelayMs:    500,
			MaxDelayMs:        30000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        30,
			BufferSizeKb:      10240,
		},
		Output: OutputConfig{
			Dir:          "out",
			Formats:      []string{FormatJSON, FormatMarkdown, FormatSVG},
			PrettyPrint:  true,
			CreateBackup: false,
		},
		Render: RenderConfig{
			Width:  1600,
			Height: 1000,
			Title:  "Student Mental Health Survey",
		},
		Validation: ValidationConfig{
			AbsentWarnPercent: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeoutSec:  10,
			WriteTimeoutSec: 30,
		},
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.Path == "" && c.Source.URL == "" {
		return ErrMissingSource
	}

	switch strings.ToLower(c.Source.Format) {
	case "", "csv", "xlsx":
	default:
		return ErrInvalidSourceFormat
	}

	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate output config
	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if len(c.Output.Formats) == 0 {
		return ErrNoOutputFormats
	}

	for _, f := range c.Output.Formats {
		switch f {
		case FormatJSON, FormatMarkdown, FormatSVG:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, f)
		}
	}

	if c.Render.Width < 200 || c.Render.Height < 200 {
		return ErrInvalidCanvas
	}

	if c.Validation.AbsentWarnPercent < 0 || c.Validation.AbsentWarnPercent > 100 {
		return ErrInvalidAbsentThreshold
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Server.Addr == "" {
		return ErrMissingServerAddr
	}

	return nil
}

// WantsFormat reports whether the output formats include f.
func (c *Config) WantsFormat(f string) bool {
	for _, want := range c.Output.Formats {
		if want == f {
			return true
		}
	}

	return false
}

// GetOutputPath returns {dir}/{name}.
func (c *Config) GetOutputPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-attempt timeout.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s, MaxAttempts: %d, Output: %s %v}",
		c.Source.GetSource(),
		c.Retry.MaxAttempts,
		c.Output.Dir,
		c.Output.Formats,
	)
}
