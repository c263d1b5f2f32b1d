package rules

import (
	"fmt"

	"godmon/internal/logger"
	"godmon/internal/status"
	"godmon/pkg/metrics"
)

// Engine holds registered rules and checks them in registration order on
// every snapshot. Rules are isolated from each other: one rule's failure
// never prevents later rules from running.
type Engine struct {
	rules []*Rule
	names map[string]struct{}
	log   logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger()
	}
	return &Engine{
		names: map[string]struct{}{},
		log:   log,
	}
}

// Register appends a rule. Names must be unique within the engine.
func (e *Engine) Register(rule *Rule) error {
	if _, exists := e.names[rule.Name()]; exists {
		return fmt.Errorf("rule %q already registered", rule.Name())
	}
	e.names[rule.Name()] = struct{}{}
	e.rules = append(e.rules, rule)
	metrics.ActiveRules.Set(float64(len(e.rules)))
	return nil
}

func (e *Engine) Len() int { return len(e.rules) }

// CheckAll evaluates every rule against the snapshot, in the order the
// rules were registered.
func (e *Engine) CheckAll(snap status.Snapshot) {
	for _, rule := range e.rules {
		rule.Evaluate(snap)
	}
}
