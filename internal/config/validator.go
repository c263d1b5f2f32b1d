package config

import (
	"fmt"

	"godmon/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateSource(cfg.Source); err != nil {
		errors = append(errors, err)
	}

	if err := validatePoll(cfg.Poll); err != nil {
		errors = append(errors, err)
	}

	if err := validateNotifications(cfg.Notifications); err != nil {
		errors = append(errors, err)
	}

	for i, rule := range cfg.Rules {
		if err := validateRule(i, rule); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateSource(cfg SourceConfig) error {
	switch cfg.Engine {
	case "", "godville", "godvillegame", "thetale", "file":
	default:
		return &ValidationError{
			Field:   "source.engine",
			Message: fmt.Sprintf("unknown engine %q", cfg.Engine),
		}
	}

	if cfg.TimeoutSeconds < 0 {
		return &ValidationError{
			Field:   "source.timeout_seconds",
			Message: "timeout must not be negative",
		}
	}

	return nil
}

func validatePoll(cfg PollConfig) error {
	if cfg.IntervalSeconds <= 0 {
		return &ValidationError{
			Field:   "poll.interval_seconds",
			Message: fmt.Sprintf("interval must be positive, got %d", cfg.IntervalSeconds),
		}
	}
	return nil
}

func validateNotifications(cfg NotificationsConfig) error {
	switch cfg.ReportConnection {
	case "", constants.ReportConnectionAlways, constants.ReportConnectionOnce, constants.ReportConnectionNever:
		return nil
	default:
		return &ValidationError{
			Field:   "notifications.report_connection",
			Message: fmt.Sprintf("must be one of always/once/never, got %q", cfg.ReportConnection),
		}
	}
}

func validateRule(index int, rule RuleConfig) error {
	field := fmt.Sprintf("rules[%d]", index)

	if rule.Name == "" {
		return &ValidationError{Field: field + ".name", Message: "rule name is required"}
	}
	if rule.Name == "session_expired" {
		return &ValidationError{
			Field:   field + ".name",
			Message: "session_expired is reserved for the built-in rule",
		}
	}
	if rule.Expr == "" {
		return &ValidationError{Field: field + ".expr", Message: "rule expression is required"}
	}
	if (rule.Message == "") == (rule.Action == "") {
		return &ValidationError{
			Field:   field,
			Message: "exactly one of message or action must be set",
		}
	}
	return nil
}
