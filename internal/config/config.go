package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopulse/internal"
	"gopulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Data      DataConfig
	Examples  ExamplesConfig
	Log       LogConfig
	Profiling ProfilingConfig
}

// ServerConfig holds dashboard web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	ReadTimeout time.Duration
}

// APIConfig holds JSON API server settings
type APIConfig struct {
	Port string
}

// DataConfig holds tabular upload settings
type DataConfig struct {
	ExampleFile    string // optional CSV/XLSX preloaded into the playground
	MaxUploadBytes int64
	MaxRows        int
}

// ExamplesConfig controls the generated lesson data
type ExamplesConfig struct {
	Seed         int64
	TorquePoints int
	CatalogFile  string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  internal.LogLevel
	Format string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	logConfig, err := loadLogConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load log configuration")
	}

	config := &Config{
		Server:    *loadServerConfig(),
		API:       *loadAPIConfig(),
		Data:      *loadDataConfig(),
		Examples:  *loadExamplesConfig(),
		Log:       *logConfig,
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		ReadTimeout: getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
	}
}

func loadAPIConfig() *APIConfig {
	return &APIConfig{
		Port: getEnvOrDefault("API_PORT", "8081"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		ExampleFile:    getEnvOrDefault("EXAMPLE_FILE", ""),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 5<<20)),
		MaxRows:        getEnvIntOrDefault("MAX_ROWS", 5000),
	}
}

func loadExamplesConfig() *ExamplesConfig {
	return &ExamplesConfig{
		Seed:         int64(getEnvIntOrDefault("EXAMPLE_SEED", 42)),
		TorquePoints: getEnvIntOrDefault("TORQUE_POINTS", 30),
		CatalogFile:  getEnvOrDefault("LESSON_CATALOG", ""),
	}
}

func loadLogConfig() (*LogConfig, error) {
	level := internal.LogLevelInfo
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := internal.ParseLogLevel(raw)
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		level = parsed
	}

	format := getEnvOrDefault("LOG_FORMAT", "console")
	if format != "console" && format != "json" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("LOG_FORMAT must be console or json, got %q", format))
	}

	return &LogConfig{Level: level, Format: format}, nil
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.GinMode != "debug" && config.Server.GinMode != "release" && config.Server.GinMode != "test" {
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", config.Server.GinMode))
	}
	if config.Data.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Data.MaxRows < 2 {
		return errors.ConfigInvalid("MAX_ROWS must be at least 2")
	}
	if config.Examples.TorquePoints < 2 {
		return errors.ConfigInvalid("TORQUE_POINTS must be at least 2")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
