package source

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"godmon/pkg/circuitbreaker"
)

// BreakerSource decorates a Source with a circuit breaker so a flapping
// backend is not hammered on every poll cycle. An open circuit is
// reported as a connection failure, which the polling loop treats as
// transient and covers with the previous snapshot.
type BreakerSource struct {
	inner   Source
	breaker *circuitbreaker.Wrapper
}

func WithBreaker(inner Source, breaker *circuitbreaker.Wrapper) *BreakerSource {
	return &BreakerSource{inner: inner, breaker: breaker}
}

func (s *BreakerSource) ID() string       { return s.inner.ID() }
func (s *BreakerSource) Name() string     { return s.inner.Name() }
func (s *BreakerSource) HeroURL() string  { return s.inner.HeroURL() }
func (s *BreakerSource) TokenURL() string { return s.inner.TokenURL() }

func (s *BreakerSource) Fetch(ctx context.Context, godname, token string) ([]byte, error) {
	result, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.inner.Fetch(ctx, godname, token)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, newFetchError(KindConnection, s.inner.HeroURL(), err)
		}
		return nil, err
	}
	return result.([]byte), nil
}
