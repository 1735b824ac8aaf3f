package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the polyterm client.
type Config struct {
	API     API     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// API holds the remote terminal API endpoint configuration.
type API struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
}

// Storage holds paths for local persistence: the watchlist database and the
// snapshot history directory.
type Storage struct {
	DataDir       string `yaml:"data_dir"`
	WatchlistPath string `yaml:"watchlist_path"`
	Backend       string `yaml:"backend"` // "sqlite" or "file"
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		API: API{
			BaseURL:         "http://localhost:8002",
			Timeout:         30 * time.Second,
			RateLimitPerMin: 60,
		},
		Storage: Storage{
			DataDir:       "./data",
			WatchlistPath: "./data/polyterm.db",
			Backend:       "sqlite",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			File:   "",
		},
	}
}

// Load reads the YAML configuration file at the given path, parses it over
// the defaults, and then applies environment variable overrides. An empty
// path skips the file entirely and yields defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYTERM_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("POLYTERM_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("POLYTERM_WATCHLIST_PATH"); v != "" {
		cfg.Storage.WatchlistPath = v
	}
	if v := os.Getenv("POLYTERM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POLYTERM_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Storage.WatchlistPath == "" {
		return fmt.Errorf("storage.watchlist_path is required")
	}
	switch c.Storage.Backend {
	case "sqlite", "file":
	default:
		return fmt.Errorf("storage.backend must be \"sqlite\" or \"file\", got %q", c.Storage.Backend)
	}
	return nil
}
