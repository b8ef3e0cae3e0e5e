package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/trail/config.yaml"

// Config holds all trail configuration.
type Config struct {
	Activity ActivityConfig `yaml:"activity"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ActivityConfig struct {
	Key           string   `yaml:"key"`
	Max           int      `yaml:"max"`
	Exclude       []string `yaml:"exclude"`
	HalfLifeHours float64  `yaml:"half_life_hours"`
}

type StorageConfig struct {
	Backend     string        `yaml:"backend"`
	Driver      string        `yaml:"driver"`
	Path        string        `yaml:"path"`
	SQLiteFile  string        `yaml:"sqlite_file"`
	PostgresDSN string        `yaml:"postgres_dsn"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxFailures    int  `yaml:"max_failures"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Host              string  `yaml:"host"`
	Port              int     `yaml:"port"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxRequestSize    int64   `yaml:"max_request_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HalfLife returns the score half-life as a duration.
func (a ActivityConfig) HalfLife() time.Duration {
	return time.Duration(a.HalfLifeHours * float64(time.Hour))
}

// Timeout returns the breaker open-state timeout as a duration.
func (b BreakerConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// DatabasePath returns the expanded SQLite database path.
func (s StorageConfig) DatabasePath() (string, error) {
	if s.SQLiteFile == ":memory:" {
		return s.SQLiteFile, nil
	}
	dir, err := expandPath(s.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.SQLiteFile), nil
}

// Addr returns host:port for the ingest server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Activity.Key == "" {
		return fmt.Errorf("activity.key must not be empty")
	}
	if c.Activity.Max < 0 {
		return fmt.Errorf("activity.max must be zero (unlimited) or positive, got %d", c.Activity.Max)
	}
	if c.Activity.HalfLifeHours <= 0 {
		return fmt.Errorf("activity.half_life_hours must be positive, got %v", c.Activity.HalfLifeHours)
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be sqlite, memory or postgres, got %q", c.Storage.Backend)
	}
	switch c.Storage.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be sqlite3 or sqlite, got %q", c.Storage.Driver)
	}
	if c.Storage.Breaker.MaxFailures < 0 {
		return fmt.Errorf("storage.breaker.max_failures must not be negative, got %d", c.Storage.Breaker.MaxFailures)
	}
	if c.Storage.Breaker.TimeoutSeconds < 0 {
		return fmt.Errorf("storage.breaker.timeout_seconds must not be negative, got %d", c.Storage.Breaker.TimeoutSeconds)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML, or
// holds invalid values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
