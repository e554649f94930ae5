// Package config loads the go-indexdb configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	// Path of the pebble directory. Ignored when InMemory is set.
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
	// Codec is "json", "msgpack", "json+lz4" or "msgpack+lz4"
	Codec        string `yaml:"codec"`
	Sync         bool   `yaml:"sync"`
	BlockCacheMB int64  `yaml:"block_cache_mb"`
	// Namespace holding the records
	Namespace string `yaml:"namespace"`
}

type IndexConfig struct {
	CreateOnDemand bool `yaml:"create_on_demand"`
	// Declare lists indexes to declare at startup, e.g. [["date desc", "count"]]
	Declare [][]string `yaml:"declare"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "text" (colored when attached to a terminal) or "json"
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Path:         "go-indexdb-data",
			Codec:        "msgpack+lz4",
			Sync:         true,
			BlockCacheMB: 64,
			Namespace:    "records",
		},
		Index: IndexConfig{
			CreateOnDemand: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required unless storage.in_memory is set")
	}
	if c.Storage.Namespace == "" {
		return fmt.Errorf("storage.namespace must not be empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
