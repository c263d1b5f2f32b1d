package config

import (
	"time"
)

type Config struct {
	Auth           AuthConfig
	Source         SourceConfig
	Poll           PollConfig
	Session        SessionConfig
	Notifications  NotificationsConfig
	Rules          []RuleConfig
	Retry          RetryConfig
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Metrics        MetricsConfig
	Logging        LoggingConfig
}

type AuthConfig struct {
	GodName string `mapstructure:"god_name"`
	Token   string `mapstructure:"token"`
}

type SourceConfig struct {
	Engine         string `mapstructure:"engine"`
	StateFile      string `mapstructure:"state_file"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PollConfig struct {
	IntervalSeconds   int  `mapstructure:"interval_seconds"`
	ForceOnHourChange bool `mapstructure:"force_on_hour_change"`
}

type SessionConfig struct {
	Browser            string `mapstructure:"browser"`
	RefreshCommand     string `mapstructure:"refresh_command"`
	Autorefresh        bool   `mapstructure:"autorefresh"`
	OpenBrowserOnStart bool   `mapstructure:"open_browser_on_start"`
}

type NotificationsConfig struct {
	Command          string `mapstructure:"command"`
	OnlyWhenActive   bool   `mapstructure:"only_when_active"`
	NotifyOnStart    bool   `mapstructure:"notify_on_start"`
	Quiet            bool   `mapstructure:"quiet"`
	ReportConnection string `mapstructure:"report_connection"` // "always", "once", "never"
}

// RuleConfig declares one status rule: a CEL predicate over the snapshot
// plus exactly one outcome, either a notification message or a named
// built-in action.
type RuleConfig struct {
	Name    string `mapstructure:"name"`
	Expr    string `mapstructure:"expr"`
	Message string `mapstructure:"message"`
	Action  string `mapstructure:"action"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
