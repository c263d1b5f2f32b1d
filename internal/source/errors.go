package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"github.com/sony/gobreaker"
)

// Kind classifies fetch failures so the polling loop can switch on them
// explicitly instead of probing error values.
type Kind int

const (
	KindOther Kind = iota
	KindTimeout
	KindConnection
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	default:
		return "other"
	}
}

// FetchError wraps any failure to obtain a raw state document.
type FetchError struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable satisfies the retry package's marker interface: only
// timeouts and connection failures are worth another attempt.
func (e *FetchError) IsRetryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindConnection
}

func newFetchError(kind Kind, url string, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, Err: err}
}

// Classify maps a transport-level error onto a FetchError kind.
func Classify(rawURL string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newFetchError(KindTimeout, rawURL, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newFetchError(KindTimeout, rawURL, err)
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return newFetchError(KindConnection, rawURL, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return newFetchError(KindConnection, rawURL, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return newFetchError(KindConnection, rawURL, err)
	}

	return newFetchError(KindOther, rawURL, err)
}

// KindOf extracts the failure kind, defaulting to KindOther for foreign
// errors.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindOther
}

// IsTransient reports whether the polling loop may fall back to the
// previous snapshot instead of terminating.
func IsTransient(err error) bool {
	k := KindOf(err)
	return k == KindTimeout || k == KindConnection
}
