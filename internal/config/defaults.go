package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Activity: ActivityConfig{
			Key:           "activity",
			Max:           0,
			Exclude:       DefaultExcludePaths(),
			HalfLifeHours: 168,
		},
		Storage: StorageConfig{
			Backend:     "sqlite",
			Driver:      "sqlite3",
			Path:        "~/.config/trail",
			SQLiteFile:  "trail.db",
			PostgresDSN: "",
			Breaker: BreakerConfig{
				Enabled:        true,
				MaxFailures:    3,
				TimeoutSeconds: 30,
			},
		},
		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              8722,
			RequestsPerSecond: 50,
			Burst:             100,
			MaxRequestSize:    65536,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
