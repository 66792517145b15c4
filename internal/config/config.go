package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"expenselog/internal/log"
)

type Config struct {
	// Storage
	DataBackend  string `yaml:"data_backend"`
	SQLiteDBPath string `yaml:"sqlite_db_path"`
	SeedFile     string `yaml:"seed_file"` // CSV export loaded by the memory backend

	// Outputs
	ExportPath  string `yaml:"export_path"`
	ChartDir    string `yaml:"chart_dir"`
	ChartFormat string `yaml:"chart_format"`
	ChartWidth  int    `yaml:"chart_width"`
	ChartHeight int    `yaml:"chart_height"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "./expenses.db",
		ExportPath:   "expenses_export.csv",
		ChartDir:     ".",
		ChartFormat:  "png",
		ChartWidth:   800,
		ChartHeight:  500,
		LogLevel:     "warn",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)
	cfg.ExportPath = getEnv("EXPORT_PATH", cfg.ExportPath)
	cfg.ChartDir = getEnv("CHART_DIR", cfg.ChartDir)
	cfg.ChartFormat = getEnv("CHART_FORMAT", cfg.ChartFormat)
	cfg.ChartWidth = getEnvInt("CHART_WIDTH", cfg.ChartWidth)
	cfg.ChartHeight = getEnvInt("CHART_HEIGHT", cfg.ChartHeight)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		switch {
		case c.SQLiteDBPath == "":
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		case strings.HasPrefix(c.SQLiteDBPath, ":memory:"):
			errors = append(errors, "SQLite database path must be a file; use the memory backend instead of ':memory:'")
		default:
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("seed file does not exist: %s", c.SeedFile))
		}
	}

	if c.ExportPath == "" {
		errors = append(errors, "export path cannot be empty")
	}

	if c.ChartDir == "" {
		errors = append(errors, "chart directory cannot be empty")
	} else if info, err := os.Stat(c.ChartDir); err == nil && !info.IsDir() {
		errors = append(errors, fmt.Sprintf("chart directory '%s' is not a directory", c.ChartDir))
	}

	if c.ChartFormat != "png" && c.ChartFormat != "svg" {
		errors = append(errors, fmt.Sprintf("invalid chart format '%s': must be 'png' or 'svg'", c.ChartFormat))
	}

	if c.ChartWidth < 100 || c.ChartWidth > 4000 {
		errors = append(errors, fmt.Sprintf("invalid chart width %d: must be between 100 and 4000", c.ChartWidth))
	}
	if c.ChartHeight < 100 || c.ChartHeight > 4000 {
		errors = append(errors, fmt.Sprintf("invalid chart height %d: must be between 100 and 4000", c.ChartHeight))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
