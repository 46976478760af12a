// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by applyEnvOverrides.
const (
	EnvLogLevel = "DSBAUTOSTART_LOG_LEVEL"
	EnvDesktop  = "DSBAUTOSTART_DESKTOP"
	EnvShell    = "DSBAUTOSTART_SHELL"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "500ms", "5s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all dsbautostart configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Desktop DesktopConfig `yaml:"desktop"`
	XDG     XDGConfig     `yaml:"xdg"`
	Legacy  LegacyConfig  `yaml:"legacy"`
	Run     RunConfig     `yaml:"run"`
}

// LoggingConfig holds logging settings. An empty File disables the JSON
// log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DesktopConfig selects the desktop environment name used for
// NotShowIn/OnlyShowIn. Empty means $XDG_CURRENT_DESKTOP.
type DesktopConfig struct {
	Current string `yaml:"current"`
}

// XDGConfig holds search directory settings.
type XDGConfig struct {
	// SystemFallback is searched when $XDG_CONFIG_DIRS is unset.
	SystemFallback string `yaml:"system_fallback"`
}

// LegacyConfig locates the autostart.sh command list. Empty Path means
// <config home>/dsbautostart/autostart.sh.
type LegacyConfig struct {
	Path string `yaml:"path"`
}

// RunConfig controls how -a starts commands.
type RunConfig struct {
	Shell        string   `yaml:"shell"`
	Terminal     string   `yaml:"terminal"`
	SkipRunning  bool     `yaml:"skip_running"`
	ProbeTimeout Duration `yaml:"probe_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
		XDG: XDGConfig{
			SystemFallback: "/usr/local/etc/xdg/autostart",
		},
		Run: RunConfig{
			Shell:        "/bin/sh",
			Terminal:     "xterm -e",
			SkipRunning:  false,
			ProbeTimeout: Duration{5 * time.Second},
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	LogLevel string
	Desktop  string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
//
// An explicitly given file that cannot be read is an error; a discovered
// one that vanished is not.
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	var filePath string
	explicit := len(configPath) > 0
	if explicit {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case explicit:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Layer 3: environment variables
	applyEnvOverrides(cfg)

	// Layer 4: CLI flags
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Desktop != "" {
		cfg.Desktop.Current = cli.Desktop
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if desktop := os.Getenv(EnvDesktop); desktop != "" {
		cfg.Desktop.Current = desktop
	}
	if shell := os.Getenv(EnvShell); shell != "" {
		cfg.Run.Shell = shell
	}
}

// LegacyPath returns the autostart.sh location, defaulting to a file below
// configHome.
func (c *Config) LegacyPath(configHome string) string {
	if c.Legacy.Path != "" {
		return c.Legacy.Path
	}
	return filepath.Join(configHome, "dsbautostart", "autostart.sh")
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if strings.TrimSpace(c.Run.Shell) == "" {
		return fmt.Errorf("run shell is required")
	}
	if c.Run.SkipRunning && c.Run.ProbeTimeout.Duration <= 0 {
		return fmt.Errorf("run probe timeout must be positive (got: %s)", c.Run.ProbeTimeout)
	}
	if c.XDG.SystemFallback != "" && !filepath.IsAbs(c.XDG.SystemFallback) {
		return fmt.Errorf("xdg system fallback must be absolute (got: %s)", c.XDG.SystemFallback)
	}
	return nil
}
