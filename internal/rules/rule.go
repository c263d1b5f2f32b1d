package rules

import (
	"fmt"

	"godmon/internal/logger"
	"godmon/internal/status"
	"godmon/pkg/errors"
	"godmon/pkg/metrics"
)

// Predicate inspects a snapshot and reports whether the rule's condition
// currently holds.
type Predicate func(snap status.Snapshot) (bool, error)

// Action runs the rule's side effect when the condition starts holding.
type Action func() error

// Rule is an edge-triggered check over consecutive snapshots. The action
// fires when the predicate transitions from false to true; a condition
// that merely stays true never re-fires, and a falling edge is silent.
type Rule struct {
	name      string
	predicate Predicate
	action    Action
	log       logger.Logger

	suppressWhileInactive bool
	skipFirstTransition   bool
	lastResult            bool
}

type Option func(*Rule)

// WithSuppressWhileInactive skips evaluation entirely while the session
// is expired, leaving the rule's remembered state untouched.
func WithSuppressWhileInactive() Option {
	return func(r *Rule) { r.suppressWhileInactive = true }
}

// WithSkipFirstTransition swallows the first rising edge. Useful for
// conditions that are expected to already hold at startup, where an
// immediate notification would be noise.
func WithSkipFirstTransition() Option {
	return func(r *Rule) { r.skipFirstTransition = true }
}

func WithLogger(log logger.Logger) Option {
	return func(r *Rule) {
		if log != nil {
			r.log = log
		}
	}
}

func NewRule(name string, predicate Predicate, action Action, opts ...Option) (*Rule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name is required")
	}
	if predicate == nil {
		return nil, fmt.Errorf("rule %q: predicate is required", name)
	}
	if action == nil {
		return nil, fmt.Errorf("rule %q: action is required", name)
	}
	r := &Rule{
		name:      name,
		predicate: predicate,
		action:    action,
		log:       logger.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Rule) Name() string { return r.name }

// Evaluate runs the rule against one snapshot. It returns the new
// predicate result on a transition and nil otherwise: when the result
// did not change, when the rule was skipped, or when the predicate
// failed. Skips and failures leave the remembered state untouched, so a
// transition masked by an error still fires on the next clean check.
func (r *Rule) Evaluate(snap status.Snapshot) *bool {
	if r.suppressWhileInactive && snap.Expired() {
		return nil
	}

	result, err := r.runPredicate(snap)
	if err != nil {
		metrics.RuleErrorsTotal.WithLabelValues(r.name, "predicate").Inc()
		r.log.Warnw("rule predicate failed", "rule", r.name, "error", err)
		return nil
	}

	if result == r.lastResult {
		return nil
	}

	r.lastResult = result
	if result {
		metrics.RuleTransitionsTotal.WithLabelValues(r.name, "rising").Inc()
		if r.skipFirstTransition {
			r.skipFirstTransition = false
			r.log.Debugw("rule transition suppressed", "rule", r.name)
		} else if err := r.runAction(); err != nil {
			metrics.RuleErrorsTotal.WithLabelValues(r.name, "action").Inc()
			r.log.Warnw("rule action failed", "rule", r.name, "error", err)
		}
	} else {
		metrics.RuleTransitionsTotal.WithLabelValues(r.name, "falling").Inc()
	}

	return &result
}

// runPredicate and runAction contain panics from user-supplied code so
// one broken rule cannot take the whole dashboard down.

func (r *Rule) runPredicate(snap status.Snapshot) (result bool, err error) {
	defer func() {
		if rec := errors.RecoverPanic(recover()); rec != nil {
			result, err = false, rec
		}
	}()
	return r.predicate(snap)
}

func (r *Rule) runAction() (err error) {
	defer func() {
		if rec := errors.RecoverPanic(recover()); rec != nil {
			err = rec
		}
	}()
	return r.action()
}
