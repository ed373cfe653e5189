// Package config loads curhat settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvUserName   = "CURHAT_USER_NAME"
	EnvThreshold  = "CURHAT_THRESHOLD"
	EnvContent    = "CURHAT_CONTENT"
	EnvDataDir    = "CURHAT_DATA_DIR"
	EnvLogLevel   = "CURHAT_LOG_LEVEL"
	EnvTranscript = "CURHAT_TRANSCRIPT"
)

// Config holds every tunable of the CLI and the MCP server.
type Config struct {
	// UserName is offered as the default name in the chat prompt.
	UserName string `yaml:"user_name"`

	// SuggestionThreshold is how many turns a topic is explored before a
	// reflection is offered.
	SuggestionThreshold int `yaml:"suggestion_threshold"`

	// ContentPath points to a YAML content pack. Empty uses the built-in pack.
	ContentPath string `yaml:"content_path,omitempty"`

	DataDir    string `yaml:"data_dir"`
	Transcript bool   `yaml:"transcript"`
	LogLevel   string `yaml:"log_level"`

	// IdleTimeout and SweepInterval are Go durations ("30m", "1m").
	IdleTimeout   string `yaml:"idle_timeout"`
	SweepInterval string `yaml:"sweep_interval"`
}

// DefaultDir is ~/.curhat.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".curhat")
}

// DefaultPath is ~/.curhat/config.yaml.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		UserName:            "User",
		SuggestionThreshold: 3,
		DataDir:             DefaultDir(),
		Transcript:          true,
		LogLevel:            "info",
		IdleTimeout:         "30m",
		SweepInterval:       "1m",
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvUserName); v != "" {
		c.UserName = v
	}
	if v := os.Getenv(EnvThreshold); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvThreshold, v, err)
		}
		c.SuggestionThreshold = n
	}
	if v := os.Getenv(EnvContent); v != "" {
		c.ContentPath = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvTranscript); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTranscript, v, err)
		}
		c.Transcript = b
	}
	return nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.SuggestionThreshold < 1 {
		return fmt.Errorf("suggestion_threshold must be at least 1, got %d", c.SuggestionThreshold)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := parsePositive("idle_timeout", c.IdleTimeout); err != nil {
		return err
	}
	if _, err := parsePositive("sweep_interval", c.SweepInterval); err != nil {
		return err
	}
	if c.Transcript && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required when transcript is enabled")
	}
	return nil
}

// Level returns the zap level named by LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// GetIdleTimeout returns IdleTimeout, or 30 minutes when unparsable.
func (c *Config) GetIdleTimeout() time.Duration {
	d, err := parsePositive("idle_timeout", c.IdleTimeout)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// GetSweepInterval returns SweepInterval, or one minute when unparsable.
func (c *Config) GetSweepInterval() time.Duration {
	d, err := parsePositive("sweep_interval", c.SweepInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

func parsePositive(field, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, v)
	}
	return d, nil
}
