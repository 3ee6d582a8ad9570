// Package config loads the loom CLI configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/loom/internal/logging"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the file read when no --config flag is given.
const DefaultPath = "loom.yaml"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the CLI configuration.
type Config struct {
	LogLevel string  `yaml:"log_level" json:"log_level"`
	Storage  Storage `yaml:"storage" json:"storage"`
	HTTP     HTTP    `yaml:"http" json:"http"`
	Metrics  Metrics `yaml:"metrics" json:"metrics"`
	MCP      MCP     `yaml:"mcp" json:"mcp"`
}

// Storage selects where session and favorites snapshots live.
type Storage struct {
	Driver string `yaml:"driver" json:"driver"`
	// Path is the directory (file) or database file (sqlite).
	Path     string   `yaml:"path" json:"path"`
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
	// EncryptionKey enables at-rest encryption of snapshots (32 bytes, base64).
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
	// MaskFields lists JSON field patterns masked before snapshots are written.
	MaskFields []string `yaml:"mask_fields" json:"mask_fields"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Metrics configures the /metrics endpoint.
type Metrics struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// MCP configures the Model Context Protocol tools.
type MCP struct {
	// Enabled mounts the SSE transport under /mcp in the serve command.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Settle bounds how long send_action waits for effects.
	Settle Duration `yaml:"settle" json:"settle"`
}

// Duration is a time.Duration written as "30s" or "5m" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Storage: Storage{
			Driver: DriverMemory,
		},
		HTTP: HTTP{Addr: ":8080"},
	}
}

// Load reads path (YAML, or JSON when the extension is .json) over the
// defaults. A missing file yields the defaults unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

// ApplyDefaults fills settings that depend on the storage driver.
func (c *Config) ApplyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			c.Storage.Path = ".loom/snapshots"
		}
	case DriverSQLite:
		if c.Storage.Path == "" {
			c.Storage.Path = ".loom/loom.db"
		}
	case DriverRedis:
		if c.Storage.Addr == "" {
			c.Storage.Addr = "localhost:6379"
		}
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.TTL.Duration < 0 {
		return fmt.Errorf("storage ttl must not be negative")
	}
	if c.Storage.DB < 0 {
		return fmt.Errorf("storage db must not be negative")
	}
	return nil
}
