// Package config loads the pdfmaster server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/novvoo/go-pdfmaster/pkg/document"
	"github.com/novvoo/go-pdfmaster/pkg/thumbnail"
)

// Config holds all pdfmaster configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Limits    LimitsConfig    `yaml:"limits"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MaxConnections  int    `yaml:"max_connections"` // 0 = unlimited
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"` // whole request body
}

// LimitsConfig bounds what a single document may be.
type LimitsConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes"`
}

// ThumbnailConfig configures page rendering.
type ThumbnailConfig struct {
	Scale        float64 `yaml:"scale"`
	MaxWidth     int     `yaml:"max_width"`
	CacheEntries int     `yaml:"cache_entries"`
	Workers      int     `yaml:"workers"`
}

// SessionConfig configures workspace expiry.
type SessionConfig struct {
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level       string `yaml:"level"`  // debug, info, warn, error
	Format      string `yaml:"format"` // json, console
	Development bool   `yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			MaxConnections:  256,
			ReadTimeout:     "60s",
			WriteTimeout:    "120s",
			ShutdownTimeout: "15s",
			MaxUploadBytes:  512 << 20,
		},
		Limits: LimitsConfig{
			MaxFileBytes: document.DefaultMaxSize,
		},
		Thumbnail: ThumbnailConfig{
			Scale:        thumbnail.DefaultScale,
			CacheEntries: thumbnail.DefaultCacheSize,
		},
		Session: SessionConfig{
			TTL:           "2h",
			SweepInterval: "5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if addr := os.Getenv("PDFMASTER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("PDFMASTER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("PDFMASTER_MAX_FILE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PDFMASTER_MAX_FILE_BYTES: %w", err)
		}
		c.Limits.MaxFileBytes = n
	}
	return nil
}

// Validate checks values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("server.max_connections must not be negative, got %d", c.Server.MaxConnections))
	}
	if c.Limits.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("limits.max_file_bytes must be positive, got %d", c.Limits.MaxFileBytes))
	}
	if c.Server.MaxUploadBytes < c.Limits.MaxFileBytes {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes (%d) is smaller than limits.max_file_bytes (%d)",
			c.Server.MaxUploadBytes, c.Limits.MaxFileBytes))
	}
	if c.Thumbnail.Scale <= 0 {
		errs = append(errs, fmt.Errorf("thumbnail.scale must be positive, got %g", c.Thumbnail.Scale))
	}
	if c.Thumbnail.MaxWidth < 0 || c.Thumbnail.CacheEntries < 0 || c.Thumbnail.Workers < 0 {
		errs = append(errs, errors.New("thumbnail sizes must not be negative"))
	}
	for name, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"session.ttl":             c.Session.TTL,
		"session.sweep_interval":  c.Session.SweepInterval,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// GetReadTimeout returns the request read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 60*time.Second)
}

// GetWriteTimeout returns the response write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 120*time.Second)
}

// GetShutdownTimeout returns how long in-flight requests get on shutdown.
func (c *Config) GetShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 15*time.Second)
}

// GetSessionTTL returns the idle time after which sessions expire.
func (c *Config) GetSessionTTL() time.Duration {
	return duration(c.Session.TTL, 2*time.Hour)
}

// GetSweepInterval returns how often expired sessions are removed.
func (c *Config) GetSweepInterval() time.Duration {
	return duration(c.Session.SweepInterval, 5*time.Minute)
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
