package rules

import (
	"fmt"

	"godmon/internal/config"
	"godmon/internal/logger"
	"godmon/internal/status"
	"godmon/pkg/cel"
)

// Named actions a rule may reference instead of a message.
const (
	ActionOpenBrowser    = "open_browser"
	ActionRefreshSession = "refresh_session"
)

// ActionProvider supplies the side effects configured rules can trigger.
type ActionProvider interface {
	Notify(message string) error
	OpenBrowser() error
	RefreshSession() error
}

// Build compiles the configured rule expressions and assembles an engine.
// Each expression is a CEL predicate over the `state` map; a rule carries
// either a notification message or the name of a built-in action.
func Build(cfgs []config.RuleConfig, notifications config.NotificationsConfig, provider ActionProvider, log logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.NopLogger()
	}

	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create rule evaluator: %w", err)
	}

	engine := NewEngine(log)
	for _, cfg := range cfgs {
		program, err := evaluator.CompileBool(cfg.Expr)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid expression: %w", cfg.Name, err)
		}

		predicate := func(snap status.Snapshot) (bool, error) {
			return program.Eval(map[string]any(snap))
		}

		action, err := buildAction(cfg, provider)
		if err != nil {
			return nil, err
		}

		opts := []Option{WithLogger(log)}
		if notifications.OnlyWhenActive {
			opts = append(opts, WithSuppressWhileInactive())
		}
		if !notifications.NotifyOnStart {
			opts = append(opts, WithSkipFirstTransition())
		}

		rule, err := NewRule(cfg.Name, predicate, action, opts...)
		if err != nil {
			return nil, err
		}
		if err := engine.Register(rule); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

func buildAction(cfg config.RuleConfig, provider ActionProvider) (Action, error) {
	if cfg.Message != "" {
		message := cfg.Message
		return func() error { return provider.Notify(message) }, nil
	}
	switch cfg.Action {
	case ActionOpenBrowser:
		return provider.OpenBrowser, nil
	case ActionRefreshSession:
		return provider.RefreshSession, nil
	default:
		return nil, fmt.Errorf("rule %q: unknown action %q", cfg.Name, cfg.Action)
	}
}
