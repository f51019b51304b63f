package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/hyperengineering/slate/internal/schedule"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server    ServerConfig                 `yaml:"server"`
	Database  DatabaseConfig               `yaml:"database"`
	Auth      AuthConfig                   `yaml:"auth"`
	Worker    WorkerConfig                 `yaml:"worker"`
	Log       LogConfig                    `yaml:"log"`
	Templates map[string]schedule.Template `yaml:"templates"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	APIKey  string `yaml:"-"` // env-only, never in YAML
	DevMode bool   `yaml:"-"`
}

// WorkerConfig contains background worker settings. A zero BackupInterval
// disables backups.
type WorkerConfig struct {
	BackupInterval Duration `yaml:"backup_interval"`
	BackupDir      string   `yaml:"backup_dir"`
	BackupKeep     int      `yaml:"backup_keep"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultTemplate is the name of the built-in timeline template.
const DefaultTemplate = "standard"

// Template returns the named timeline template. An empty name selects the
// default. Templates from YAML override the built-in one of the same name.
func (c *Config) Template(name string) (schedule.Template, bool) {
	if name == "" {
		name = DefaultTemplate
	}
	if t, ok := c.Templates[name]; ok {
		if t.Name == "" {
			t.Name = name
		}
		return t, true
	}
	if name == DefaultTemplate {
		return schedule.StandardTemplate, true
	}
	return schedule.Template{}, false
}

// TemplateNames returns every available template name, sorted.
func (c *Config) TemplateNames() []string {
	names := []string{DefaultTemplate}
	for name := range c.Templates {
		if name != DefaultTemplate {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("SLATE_CONFIG_PATH", "config/slate.yaml")
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLocal loads configuration like Load but does not require an API key.
// Commands that open the database directly never serve HTTP.
func LoadLocal() (*Config, error) {
	cfg := newDefaults()

	if err := loadYAMLFile(cfg, getEnv("SLATE_CONFIG_PATH", "config/slate.yaml")); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.validateSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific path, which must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/slate.db",
		},
		Worker: WorkerConfig{
			BackupInterval: Duration(6 * time.Hour),
			BackupDir:      "data/backups",
			BackupKeep:     7,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("SLATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	overrideDuration("SLATE_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	overrideDuration("SLATE_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	overrideDuration("SLATE_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Database
	if v := os.Getenv("SLATE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Auth
	if v := os.Getenv("SLATE_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	cfg.Auth.DevMode = os.Getenv("SLATE_DEV_MODE") == "true"

	// Worker
	overrideDuration("SLATE_BACKUP_INTERVAL", &cfg.Worker.BackupInterval)
	if v := os.Getenv("SLATE_BACKUP_DIR"); v != "" {
		cfg.Worker.BackupDir = v
	}
	if v := os.Getenv("SLATE_BACKUP_KEEP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.BackupKeep = n
		}
	}

	// Log
	if v := os.Getenv("SLATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SLATE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func overrideDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks that required configuration values are set.
// In dev mode (SLATE_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	if err := c.validateSettings(); err != nil {
		return err
	}
	if c.Auth.DevMode {
		return nil
	}
	if c.Auth.APIKey == "" {
		return errors.New("SLATE_API_KEY is required")
	}
	return nil
}

func (c *Config) validateSettings() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}
	if c.Worker.BackupInterval > 0 && c.Worker.BackupKeep < 1 {
		return errors.New("worker.backup_keep must be at least 1 when backups are enabled")
	}
	for name, t := range c.Templates {
		if len(t.Phases) == 0 {
			return fmt.Errorf("template %q has no phases", name)
		}
		for _, p := range t.Phases {
			if p.Label == "" || p.BusinessDays < 1 {
				return fmt.Errorf("template %q: every phase needs a label and at least one business day", name)
			}
		}
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
