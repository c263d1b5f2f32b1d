package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"godmon/internal/config"
	"godmon/internal/constants"
	"godmon/internal/logger"
	"godmon/pkg/metrics"
)

// Source is one backend capable of producing a raw hero-state document.
// Implementations must classify failures via FetchError so the polling
// loop can tell transient faults from fatal ones.
type Source interface {
	// ID is a short stable identifier injected into snapshots.
	ID() string
	// Name is the human-readable backend name.
	Name() string
	// HeroURL is the page the browser key opens.
	HeroURL() string
	// TokenURL points the user at the re-authorization flow.
	TokenURL() string
	// Fetch returns the raw JSON state document.
	Fetch(ctx context.Context, godname, token string) ([]byte, error)
}

// New builds the configured backend. A state_file setting always wins:
// dump files are just another state source.
func New(cfg config.SourceConfig, log logger.Logger) (Source, error) {
	if cfg.StateFile != "" {
		return NewFileSource(cfg.StateFile), nil
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Engine {
	case "", "godville":
		return NewGodville(client, log), nil
	case "godvillegame":
		return NewGodvilleGame(client), nil
	case "thetale":
		return NewTheTale(client, log), nil
	case "file":
		return nil, fmt.Errorf("engine %q requires source.state_file", cfg.Engine)
	default:
		return nil, fmt.Errorf("unknown source engine %q", cfg.Engine)
	}
}

// getBody performs one GET and returns the response body. A 404 is
// reported as errNotFound so callers can try a legacy URL; other non-2xx
// statuses are protocol errors.
var errNotFound = fmt.Errorf("not found")

func getBody(ctx context.Context, client *http.Client, sourceID, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newFetchError(KindOther, rawURL, err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	metrics.ObserveFetchDuration(sourceID, time.Since(start))
	if err != nil {
		fe := Classify(rawURL, err)
		metrics.FetchErrorsTotal.WithLabelValues(sourceID, fe.Kind.String()).Inc()
		return nil, fe
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, newFetchError(KindProtocol, rawURL, errNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fe := newFetchError(KindProtocol, rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
		metrics.FetchErrorsTotal.WithLabelValues(sourceID, fe.Kind.String()).Inc()
		return nil, fe
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fe := Classify(rawURL, err)
		metrics.FetchErrorsTotal.WithLabelValues(sourceID, fe.Kind.String()).Inc()
		return nil, fe
	}
	return body, nil
}
