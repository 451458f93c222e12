// ABOUTME: Configuration loading and parsing for the gigboard client
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/2389/gigboard/internal/storage"
)

// Defaults applied before a file is decoded.
const (
	DefaultBaseURL       = "http://localhost:8080/api"
	DefaultTimeout       = 15 * time.Second
	DefaultFlashDuration = 3 * time.Second
)

// Config represents the complete gigboard configuration
type Config struct {
	API     APIConfig     `yaml:"api" toml:"api"`
	Session SessionConfig `yaml:"session" toml:"session"`
	UI      UIConfig      `yaml:"ui" toml:"ui"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// APIConfig holds job board server settings
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" toml:"base_url"`
	Timeout           time.Duration `yaml:"-" toml:"-"`
	RequestsPerSecond float64       `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int           `yaml:"burst" toml:"burst"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// SessionConfig selects where credentials are kept between runs
type SessionConfig struct {
	Backend string `yaml:"backend" toml:"backend"` // file, sqlite or memory
	Path    string `yaml:"path" toml:"path"`
}

// UIConfig holds terminal rendering settings
type UIConfig struct {
	FlashDuration time.Duration `yaml:"-" toml:"-"`
	Color         string        `yaml:"color" toml:"color"` // auto, always or never

	FlashDurationRaw string `yaml:"flash_duration" toml:"flash_duration"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutRaw: DefaultTimeout.String(),
			Burst:      1,
		},
		Session: SessionConfig{Backend: storage.BackendFile},
		UI: UIConfig{
			Color:            "auto",
			FlashDurationRaw: DefaultFlashDuration.String(),
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
	// Defaults always parse.
	_ = parseDurations(cfg)
	cfg.fillSessionPath()
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	cfg.Session.Path = ""
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	cfg.fillSessionPath()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Resolve finds and loads the configuration.
// Priority: explicit path > GIGBOARD_CONFIG > XDG config file > defaults.
// An explicit path or GIGBOARD_CONFIG must exist; the XDG file may not.
func Resolve(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	if env := os.Getenv("GIGBOARD_CONFIG"); env != "" {
		cfg, err := Load(env)
		return cfg, env, err
	}

	for _, name := range []string{"config.yaml", "config.yml", "config.toml"} {
		path := filepath.Join(ConfigDir(), name)
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ConfigDir returns the gigboard config directory.
// Priority: XDG_CONFIG_HOME/gigboard > ~/.config/gigboard
func ConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gigboard")
}

// DataDir returns the gigboard data directory.
// Priority: XDG_DATA_HOME/gigboard > ~/.local/share/gigboard
func DataDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "gigboard")
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is not a valid URL: %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https scheme")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative")
	}

	switch c.Session.Backend {
	case storage.BackendFile, storage.BackendSQLite:
		if c.Session.Path == "" {
			return fmt.Errorf("session.path is required for the %s backend", c.Session.Backend)
		}
	case storage.BackendMemory:
	default:
		return fmt.Errorf("session.backend must be file, sqlite or memory, got %q", c.Session.Backend)
	}

	if c.UI.FlashDuration < 0 {
		return fmt.Errorf("ui.flash_duration must not be negative")
	}
	switch c.UI.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("ui.color must be auto, always or never, got %q", c.UI.Color)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.API.TimeoutRaw != "" {
		cfg.API.Timeout, err = time.ParseDuration(cfg.API.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing api.timeout %q: %w", cfg.API.TimeoutRaw, err)
		}
	}

	if cfg.UI.FlashDurationRaw != "" {
		cfg.UI.FlashDuration, err = time.ParseDuration(cfg.UI.FlashDurationRaw)
		if err != nil {
			return fmt.Errorf("parsing ui.flash_duration %q: %w", cfg.UI.FlashDurationRaw, err)
		}
	}

	return nil
}

// fillSessionPath picks a default credentials file for the backend.
func (c *Config) fillSessionPath() {
	if c.Session.Path != "" {
		return
	}
	switch c.Session.Backend {
	case storage.BackendSQLite:
		c.Session.Path = filepath.Join(DataDir(), "session.db")
	case storage.BackendFile, "":
		c.Session.Path = filepath.Join(DataDir(), "session.json")
	}
}
