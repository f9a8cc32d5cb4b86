package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	RefreshInterval time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("UPTOP_CONFIG", "config.json"),
		"Path to configuration file (env: UPTOP_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("UPTOP_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: UPTOP_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("UPTOP_LOG_FORMAT", "json"),
		"Log format: json, text (env: UPTOP_LOG_FORMAT)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("UPTOP_METRICS_PORT", 9090),
		"Prometheus metrics port, 0 to disable (env: UPTOP_METRICS_PORT)")

	flag.DurationVar(&cfg.RefreshInterval, "refresh-interval",
		getEnvDuration("UPTOP_REFRESH_INTERVAL", 5*time.Minute),
		"Background data refresh interval (env: UPTOP_REFRESH_INTERVAL)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}
	if cfg.RefreshInterval < time.Second {
		return fmt.Errorf("refresh interval too small: %s", cfg.RefreshInterval)
	}
	return nil
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
