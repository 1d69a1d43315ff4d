package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/smartbot-tech/smartbot/pkg/rating"
)

// ServerConfig holds the configuration for the HTTP API server.
type ServerConfig struct {
	Addr         string `json:"addr"`
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	DatabasePath string `json:"database_path"`
}

// GenerationConfig holds the defaults for prediction and generation.
type GenerationConfig struct {
	DefaultOrder  int `json:"default_order"`
	DefaultLength int `json:"default_length"`
}

// Config is the top-level configuration struct that aggregates all other
// configs.
type Config struct {
	Server     *ServerConfig     `json:"server_config"`
	Generation *GenerationConfig `json:"generation_config"`
	Rating     *rating.Config    `json:"rating_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	ratingCfg := rating.DefaultConfig()
	return &Config{
		Server: &ServerConfig{
			Addr:         ":7280",
			LogLevel:     "info",
			DataDir:      "./data",
			DatabasePath: "./data/smartbot.db?_journal_mode=WAL&_busy_timeout=5000",
		},
		Generation: &GenerationConfig{
			DefaultOrder:  2,
			DefaultLength: 10,
		},
		Rating: &ratingCfg,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values, written
// atomically so a crash never leaves a half-written config behind.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The defaults still work even if we can't persist them.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
