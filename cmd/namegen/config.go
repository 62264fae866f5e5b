package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP server. Every field can
// be overridden by the environment variable named in its env tag.
type ServerConfig struct {
	Addr          string `json:"addr" env:"NAMEGEN_ADDR"`
	LogLevel      string `json:"log_level" env:"NAMEGEN_LOG_LEVEL"`
	DatabasePath  string `json:"database_path" env:"NAMEGEN_DATABASE_PATH"`
	DefaultAmount int    `json:"default_amount" env:"NAMEGEN_DEFAULT_AMOUNT"`
	MaxAmount     int    `json:"max_amount" env:"NAMEGEN_MAX_AMOUNT"`
}

// Config is the top-level configuration struct.
type Config struct {
	Server *ServerConfig `json:"server_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:          ":7280",
		LogLevel:      "info",
		DatabasePath:  "./data/namegen.db",
		DefaultAmount: 16,
		MaxAmount:     1000,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Values from
// the environment, including a .env file in the working directory, take
// precedence over the file.
func LoadConfig(path string) (*Config, error) {
	config := &Config{Server: DefaultServerConfig()}

	file, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			// The server can still run with defaults.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err = json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if config.Server == nil {
			config.Server = DefaultServerConfig()
		}
	}

	// The .env file is optional.
	_ = godotenv.Load()
	if err = env.Parse(config.Server); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Server.DefaultAmount <= 0 {
		config.Server.DefaultAmount = 1
	}
	if config.Server.MaxAmount < config.Server.DefaultAmount {
		config.Server.MaxAmount = config.Server.DefaultAmount
	}
	return config, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
