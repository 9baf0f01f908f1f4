package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	Port       string `yaml:"port"`
	APIBaseURL string `yaml:"apiBaseURL"`

	// RequestTimeoutSeconds bounds one remote API round trip, chat included.
	RequestTimeoutSeconds int `yaml:"requestTimeoutSeconds"`

	// LogFile enables JSON logging with rotation when set; empty logs to stdout.
	LogFile  string `yaml:"logFile"`
	LogLevel string `yaml:"logLevel"`
}

func defaultConfig() config {
	return config{
		Port:                  "8081",
		APIBaseURL:            "http://127.0.0.1:5001",
		RequestTimeoutSeconds: 60,
		LogLevel:              "info",
	}
}

// loadConfig reads the YAML config file at path, falling back to defaults when the
// file does not exist. Environment variables override file values either way.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("error decoding config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *config) applyEnv() {
	if v := os.Getenv("CHATUI_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("CHATUI_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("CHATUI_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("CHATUI_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c config) requestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c config) logLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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
