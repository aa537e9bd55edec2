// Package config loads runtime configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Server
	ServerPort string
	ServerURL  string // base URL the CLI uses to reach a running server

	// Analysis defaults
	Threshold   float64
	MinKeywords int
	Concurrency int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors the optional YAML config file. Every field overrides
// the built-in default; environment variables override the file.
type fileConfig struct {
	ServerPort  string   `yaml:"server_port"`
	ServerURL   string   `yaml:"server_url"`
	Threshold   *float64 `yaml:"threshold"`
	MinKeywords *int     `yaml:"min_keywords"`
	Concurrency *int     `yaml:"concurrency"`
	LogFile     string   `yaml:"log_file"`
	LogLevel    string   `yaml:"log_level"`
}

// Load reads configuration with precedence: defaults, then the YAML file
// named by PAGINAS_CONFIG (if set), then PAGINAS_* environment variables.
func Load() (Config, error) {
	cfg := Config{
		ServerPort:  "8090",
		ServerURL:   "http://localhost:8090",
		Threshold:   0.8,
		MinKeywords: 10,
		Concurrency: 4,
		LogFile:     "/tmp/paginas.log",
		LogLevel:    slog.LevelInfo,
	}

	if path := os.Getenv("PAGINAS_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.ServerPort = getEnv("PAGINAS_SERVER_PORT", cfg.ServerPort)
	cfg.ServerURL = getEnv("PAGINAS_SERVER_URL", cfg.ServerURL)
	cfg.LogFile = getEnv("PAGINAS_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = parseLogLevel(getEnv("PAGINAS_LOG_LEVEL", levelName(cfg.LogLevel)))

	if v := os.Getenv("PAGINAS_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("PAGINAS_THRESHOLD: %w", err)
		}
		cfg.Threshold = f
	}
	if v := os.Getenv("PAGINAS_MIN_KEYWORDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PAGINAS_MIN_KEYWORDS: %w", err)
		}
		cfg.MinKeywords = n
	}
	if v := os.Getenv("PAGINAS_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PAGINAS_CONCURRENCY: %w", err)
		}
		cfg.Concurrency = n
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.ServerPort != "" {
		c.ServerPort = fc.ServerPort
	}
	if fc.ServerURL != "" {
		c.ServerURL = fc.ServerURL
	}
	if fc.Threshold != nil {
		c.Threshold = *fc.Threshold
	}
	if fc.MinKeywords != nil {
		c.MinKeywords = *fc.MinKeywords
	}
	if fc.Concurrency != nil {
		c.Concurrency = *fc.Concurrency
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		c.LogLevel = parseLogLevel(fc.LogLevel)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelName(l slog.Level) string {
	return l.String()
}
