// Package config loads the assetform service configuration from YAML with
// ASSETFORM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ASSETFORM_"

// Database drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the root configuration document.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	Log      LogConfig      `yaml:"log" json:"log"`
	// Fixtures is a YAML catalog seeded into the store on start.
	Fixtures string `yaml:"fixtures" json:"fixtures,omitempty"`
}

// DatabaseConfig selects the catalog and asset store.
type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn,omitempty"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, console
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: DriverMemory},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info", Format: FormatJSON},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from ASSETFORM_DATABASE_DRIVER,
// ASSETFORM_DATABASE_DSN, ASSETFORM_HTTP_ADDR, ASSETFORM_LOG_LEVEL,
// ASSETFORM_LOG_FORMAT and ASSETFORM_FIXTURES.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"DATABASE_DRIVER": &c.Database.Driver,
		"DATABASE_DSN":    &c.Database.DSN,
		"HTTP_ADDR":       &c.HTTP.Addr,
		"LOG_LEVEL":       &c.Log.Level,
		"LOG_FORMAT":      &c.Log.Format,
		"FIXTURES":        &c.Fixtures,
	}
	for name, target := range overrides {
		if value, ok := lookup(EnvPrefix + name); ok && value != "" {
			*target = value
		}
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Database.DSN == "" {
			problems = append(problems, "database.dsn is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not one of memory, sqlite", c.Database.Driver))
	}
	if c.HTTP.Addr == "" {
		problems = append(problems, "http.addr is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is invalid", c.Log.Level))
	}
	if c.Log.Format != FormatJSON && c.Log.Format != FormatConsole {
		problems = append(problems, fmt.Sprintf("log.format %q is not one of json, console", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Logger builds a zap logger for the configured level and format.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Log.Format == FormatConsole {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
