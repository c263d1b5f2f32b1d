package source

import (
	"context"
	"time"

	"godmon/internal/logger"
	"godmon/pkg/metrics"
	"godmon/pkg/retry"
)

// RetrySource decorates a Source with bounded exponential-backoff
// retries. Only transient failures (timeouts, connection errors) are
// retried; protocol errors surface immediately.
type RetrySource struct {
	inner  Source
	policy retry.Policy
	log    logger.Logger
}

func WithRetry(inner Source, policy retry.Policy, log logger.Logger) *RetrySource {
	return &RetrySource{inner: inner, policy: policy, log: log}
}

func (s *RetrySource) ID() string       { return s.inner.ID() }
func (s *RetrySource) Name() string     { return s.inner.Name() }
func (s *RetrySource) HeroURL() string  { return s.inner.HeroURL() }
func (s *RetrySource) TokenURL() string { return s.inner.TokenURL() }

func (s *RetrySource) Fetch(ctx context.Context, godname, token string) ([]byte, error) {
	var body []byte
	err := retry.RetryNotify(ctx, s.policy, func() error {
		var err error
		body, err = s.inner.Fetch(ctx, godname, token)
		if err != nil && !IsTransient(err) {
			return retry.NewFatalError(err)
		}
		return err
	}, func(err error, next time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(s.inner.ID()).Inc()
		s.log.Warnw("fetch failed, retrying",
			"source", s.inner.ID(),
			"next_attempt_in", next,
			"error", err)
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
