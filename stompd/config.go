package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Addr        string `toml:"addr"`
	MetricsAddr string `toml:"metrics_addr"`
	LogLevel    string `toml:"log_level"`
}

// LoadConfig reads a TOML config from path and fills in defaults. An
// empty path yields the default config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:61613"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
