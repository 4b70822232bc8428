/*
config.go - Server configuration loading

PURPOSE:
  Loads server settings from an optional YAML file, with sensible
  defaults when no file is given. Command-line flags override the file.

EXAMPLE FILE:
  port: 8080
  db: carts.db
  format:
    decimals: 2
    decimal_point: "."
    thousands_sep: ","
    format_numbers: true
*/
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/cart-engine/cart"
)

// Config holds server settings.
type Config struct {
	Port   int               `yaml:"port"`
	DB     string            `yaml:"db"`
	Format cart.FormatConfig `yaml:"format"`
}

// defaultConfig is used when no config file is supplied.
func defaultConfig() Config {
	return Config{
		Port:   8080,
		DB:     "carts.db",
		Format: cart.DefaultFormat(),
	}
}

// loadConfig reads the YAML file at path, or returns defaults for an
// empty path.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
