package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"godmon/internal/constants"
)

// DefaultPath returns $XDG_CONFIG_HOME/godmon/godmon.yaml (or the
// ~/.config fallback).
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "godmon", "godmon.yaml")
}

// LoadConfig reads the YAML config file, applies environment overrides
// and defaults, and validates the result. An empty configFile falls back
// to the default path; a missing default file is not an error, the
// defaults plus environment are used as-is.
func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("GODMON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	explicit := configFile != ""
	if !explicit {
		configFile = DefaultPath()
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil || explicit {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("auth.god_name", "GODMON_AUTH_GOD_NAME")
	viper.BindEnv("auth.token", "GODMON_AUTH_TOKEN")

	viper.BindEnv("source.engine", "GODMON_SOURCE_ENGINE")
	viper.BindEnv("source.state_file", "GODMON_SOURCE_STATE_FILE")

	viper.BindEnv("session.browser", "GODMON_SESSION_BROWSER")
	viper.BindEnv("session.refresh_command", "GODMON_SESSION_REFRESH_COMMAND")

	viper.BindEnv("notifications.command", "GODMON_NOTIFICATIONS_COMMAND")

	viper.BindEnv("logging.level", "GODMON_LOGGING_LEVEL")
	viper.BindEnv("logging.file", "GODMON_LOGGING_FILE")

	viper.BindEnv("metrics.enabled", "GODMON_METRICS_ENABLED")
	viper.BindEnv("metrics.addr", "GODMON_METRICS_ADDR")
}

func setDefaults() {
	viper.SetDefault("source.engine", constants.DefaultEngine)
	viper.SetDefault("source.timeout_seconds", int(constants.DefaultHTTPTimeout.Seconds()))

	viper.SetDefault("poll.interval_seconds", int(constants.DefaultPollInterval.Seconds()))
	viper.SetDefault("poll.force_on_hour_change", true)

	viper.SetDefault("session.browser", constants.DefaultBrowser)

	viper.SetDefault("notifications.notify_on_start", true)
	viper.SetDefault("notifications.report_connection", constants.ReportConnectionAlways)

	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.initial_interval", "500ms")
	viper.SetDefault("retry.max_interval", "5s")
	viper.SetDefault("retry.multiplier", 2.0)
	viper.SetDefault("retry.max_elapsed_time", "20s")

	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", "5m")
	viper.SetDefault("circuit_breaker.timeout", "90s")
	viper.SetDefault("circuit_breaker.failure_ratio", 0.6)
	viper.SetDefault("circuit_breaker.min_requests", 3)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.addr", "localhost:9361")

	viper.SetDefault("logging.level", "warn")
	viper.SetDefault("logging.file", constants.DefaultLogFile)
}
