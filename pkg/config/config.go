package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete driftwatch configuration
type Config struct {
	Service Service `mapstructure:"service"`
	Compare Compare `mapstructure:"compare"`
	Storage Storage `mapstructure:"storage"`
	Cache   Cache   `mapstructure:"cache"`
	Batch   Batch   `mapstructure:"batch"`
	Output  Output  `mapstructure:"output"`
	Logging Logging `mapstructure:"logging"`
}

// Service describes the HTTP service under test
type Service struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Compare contains comparison knobs
type Compare struct {
	Tolerance float64 `mapstructure:"tolerance"`
	MaxDepth  int     `mapstructure:"max_depth"`
}

// Storage contains snapshot/report storage configuration
type Storage struct {
	BaseDir string `mapstructure:"base_dir"`
}

// Cache contains snapshot read-cache configuration
type Cache struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Batch contains the named endpoint tests run by the batch command
type Batch struct {
	Workers int    `mapstructure:"workers"`
	Tests   []Test `mapstructure:"tests"`
}

// Test is one named endpoint test definition
type Test struct {
	Name     string            `mapstructure:"name"`
	Endpoint string            `mapstructure:"endpoint"`
	Params   map[string]string `mapstructure:"params"`
	Snapshot string            `mapstructure:"snapshot"`
}

// Output contains output formatting configuration
type Output struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Service: Service{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Compare: Compare{
			Tolerance: 0.05,
			MaxDepth:  50,
		},
		Storage: Storage{
			BaseDir: filepath.Join(homeDir, ".driftwatch"),
		},
		Cache: Cache{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		Batch: Batch{
			Workers: 4,
		},
		Output: Output{
			Format:  "summary",
			NoColor: false,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from .env, config file, and environment
func Load() (*Config, error) {
	// A local .env is convenient in CI; its absence is not an error.
	_ = godotenv.Load()

	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".driftwatch"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("DRIFTWATCH")
	viper.AutomaticEnv()

	viper.BindEnv("service.base_url", "DRIFTWATCH_BASE_URL")
	viper.BindEnv("service.timeout", "DRIFTWATCH_TIMEOUT")
	viper.BindEnv("compare.tolerance", "DRIFTWATCH_TOLERANCE")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file means defaults plus environment.
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service base URL is required")
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service timeout must be positive")
	}
	if c.Compare.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative")
	}
	if c.Compare.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base dir is required")
	}

	seen := make(map[string]bool, len(c.Batch.Tests))
	for _, test := range c.Batch.Tests {
		if test.Name == "" {
			return fmt.Errorf("batch test name is required")
		}
		if test.Endpoint == "" {
			return fmt.Errorf("batch test %q needs an endpoint", test.Name)
		}
		if seen[test.Name] {
			return fmt.Errorf("duplicate batch test name %q", test.Name)
		}
		seen[test.Name] = true
	}

	return nil
}

// ExpandPaths expands ~ in configured paths
func (c *Config) ExpandPaths() error {
	expanded, err := expandPath(c.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to expand storage base dir: %w", err)
	}
	c.Storage.BaseDir = expanded
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
