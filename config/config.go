package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const appName = "zsmm"

// Config holds all configuration for the application.
// Values are loaded by Viper from flags, environment variables and an optional .env file.
type Config struct {
	WorkshopDir  string `mapstructure:"ZSMM_WORKSHOP_DIR"` // Optional, falls back to the saved location
	ConfigDir    string `mapstructure:"ZSMM_CONFIG_DIR"`
	ScanWorkers  int    `mapstructure:"ZSMM_SCAN_WORKERS"`
	LogLevel     string `mapstructure:"ZSMM_LOG_LEVEL"`
	Verbose      bool   `mapstructure:"ZSMM_VERBOSE"`
	LogFile      string `mapstructure:"-"` // Derived from ConfigDir
	DatabasePath string `mapstructure:"-"` // Derived from ConfigDir
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"workshop-dir": "ZSMM_WORKSHOP_DIR",
	"config-dir":   "ZSMM_CONFIG_DIR",
	"workers":      "ZSMM_SCAN_WORKERS",
	"log-level":    "ZSMM_LOG_LEVEL",
	"verbose":      "ZSMM_VERBOSE",
}

// LoadConfig reads configuration from flags, the environment and .env files.
// flags may be nil.
func LoadConfig(flags *pflag.FlagSet) (config Config, err error) {
	v := viper.New()

	for _, key := range flagKeys {
		if err := v.BindEnv(key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	// The config dir locates the .env file, so it cannot come from it.
	configDir := v.GetString("ZSMM_CONFIG_DIR")
	if configDir == "" {
		if configDir, err = DefaultConfigDir(); err != nil {
			return Config{}, err
		}
	}

	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	vipErr := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(vipErr, &notFound) {
		slog.Debug("Config file (.env) not found, relying on flags and environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}
	config.ConfigDir = configDir

	processConfigDefaults(&config)
	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// processConfigDefaults fills in values that were not configured.
func processConfigDefaults(config *Config) {
	if config.ConfigDir == "" {
		if dir, err := DefaultConfigDir(); err == nil {
			config.ConfigDir = dir
		}
	}
	if config.ScanWorkers <= 0 {
		config.ScanWorkers = runtime.NumCPU()
	}
	if _, err := zapcore.ParseLevel(config.LogLevel); config.LogLevel == "" || err != nil {
		if config.LogLevel != "" {
			slog.Warn("Invalid ZSMM_LOG_LEVEL, defaulting to info", "value", config.LogLevel)
		}
		config.LogLevel = "info"
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
}

// validateAndEnsureDirectories normalizes paths, creates the config directory
// and derives the file locations inside it.
func validateAndEnsureDirectories(config *Config) error {
	if config.ConfigDir == "" {
		return fmt.Errorf("ZSMM_CONFIG_DIR could not be determined")
	}

	dir, err := NormalizePath(config.ConfigDir)
	if err != nil {
		return fmt.Errorf("invalid config directory: %w", err)
	}
	config.ConfigDir = dir

	if config.WorkshopDir != "" {
		workshopDir, err := NormalizePath(config.WorkshopDir)
		if err != nil {
			return fmt.Errorf("invalid workshop directory: %w", err)
		}
		config.WorkshopDir = workshopDir
	}

	if err := os.MkdirAll(config.ConfigDir, 0755); err != nil {
		slog.Error("Failed to create config directory", "path", config.ConfigDir, "error", err)
		return err
	}

	config.LogFile = filepath.Join(config.ConfigDir, appName+".log")
	config.DatabasePath = filepath.Join(config.ConfigDir, appName+".db")
	return nil
}

// DefaultConfigDir returns the per-user configuration directory for the application.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// NormalizePath trims quotes, expands environment variables and ~, and
// returns a clean absolute path.
func NormalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "\"")
	path = strings.Trim(path, "'")
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("couldn't expand ~: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("couldn't convert to absolute path: %w", err)
	}
	return filepath.Clean(absPath), nil
}
