// Package config loads abreport settings. Precedence, lowest first:
// defaults, YAML file, ABR_* environment variables, command-line flags
// (applied by the cli package).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const envPrefix = "ABR_"

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	RequireToken bool   `yaml:"require_token"`
	TokenFile    string `yaml:"token_file"`
}

// StoreConfig picks the data provider. The memory driver serves the bundled
// sample tests; the sqlite driver reads and writes Path.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			TokenFile: ".abreport-token",
		},
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   "./abreport.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a config from defaults, the optional YAML file at path and
// the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envPrefix + "PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPORT %q: %w", envPrefix, v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv(envPrefix + "REQUIRE_TOKEN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sREQUIRE_TOKEN %q: %w", envPrefix, v, err)
		}
		c.Server.RequireToken = b
	}
	c.Server.TokenFile = getEnvOrDefault(envPrefix+"TOKEN_FILE", c.Server.TokenFile)
	c.Store.Driver = getEnvOrDefault(envPrefix+"STORE", c.Store.Driver)
	c.Store.Path = getEnvOrDefault(envPrefix+"DB_PATH", c.Store.Path)
	c.Log.Level = getEnvOrDefault(envPrefix+"LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault(envPrefix+"LOG_FORMAT", c.Log.Format)
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want %s or %s)", c.Store.Driver, DriverMemory, DriverSQLite)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", c.Log.Format)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
