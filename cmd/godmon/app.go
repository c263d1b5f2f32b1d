package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"godmon/internal/config"
	"godmon/internal/constants"
	"godmon/internal/logger"
	"godmon/internal/monitor"
	"godmon/internal/notify"
	"godmon/internal/rules"
	"godmon/internal/source"
	"godmon/internal/ui"
	"godmon/pkg/circuitbreaker"
	"godmon/pkg/health"
	"godmon/pkg/metrics"
	"godmon/pkg/retry"
)

type App struct {
	cfg *config.Config
	log logger.Logger

	src       source.Source
	engine    *rules.Engine
	notifier  *notify.Notifier
	screen    *ui.Screen
	monitor   *monitor.Monitor
	freshness *health.FreshnessChecker
	server    *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{cfg: cfg, log: log}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := config.ValidateStatic(a.cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := a.initSource(); err != nil {
		return fmt.Errorf("failed to initialize source: %w", err)
	}

	a.notifier = notify.New(
		a.cfg.Notifications.Command,
		a.cfg.Notifications.Quiet,
		a.cfg.Session.Browser,
		a.cfg.Session.RefreshCommand,
		a.src.HeroURL(),
		a.log,
	)

	engine, err := rules.Build(a.cfg.Rules, a.cfg.Notifications, a.notifier, a.log)
	if err != nil {
		return fmt.Errorf("failed to build rule engine: %w", err)
	}
	a.engine = engine

	metrics.RegisterMonitorMetrics()
	metrics.RegisterSourceMetrics()
	if a.cfg.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	maxAge := 3 * time.Duration(a.cfg.Poll.IntervalSeconds) * time.Second
	a.freshness = health.NewFreshnessChecker("state_freshness", maxAge)

	if a.cfg.Metrics.Enabled {
		a.initHTTPServer()
	}

	return nil
}

// initSource builds the backend chain: engine-specific fetcher, retry
// wrapper, and optionally a circuit breaker outermost so open-circuit
// cycles skip the retries entirely.
func (a *App) initSource() error {
	src, err := source.New(a.cfg.Source, a.log)
	if err != nil {
		return err
	}

	policy := retry.Policy{
		MaxAttempts:     a.cfg.Retry.MaxAttempts,
		InitialInterval: a.cfg.Retry.InitialInterval,
		MaxInterval:     a.cfg.Retry.MaxInterval,
		Multiplier:      a.cfg.Retry.Multiplier,
		MaxElapsedTime:  a.cfg.Retry.MaxElapsedTime,
	}
	var wrapped source.Source = source.WithRetry(src, policy, a.log)

	if a.cfg.CircuitBreaker.Enabled {
		breaker := circuitbreaker.NewWrapper(circuitbreaker.Config{
			Name:         src.ID(),
			MaxRequests:  a.cfg.CircuitBreaker.MaxRequests,
			Interval:     a.cfg.CircuitBreaker.Interval,
			Timeout:      a.cfg.CircuitBreaker.Timeout,
			FailureRatio: a.cfg.CircuitBreaker.FailureRatio,
			MinRequests:  a.cfg.CircuitBreaker.MinRequests,
		})
		wrapped = source.WithBreaker(wrapped, breaker)
	}

	a.src = wrapped
	return nil
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(a.freshness)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    a.cfg.Metrics.Addr,
		Handler: mux,
	}
}

func (a *App) Run(ctx context.Context) error {
	screen, err := ui.NewScreen()
	if err != nil {
		return err
	}
	a.screen = screen
	a.notifier.SetPopupSink(screen.ShowPopup)

	a.monitor = monitor.New(a.cfg, a.src, a.engine, a.notifier, a.screen, a.freshness, a.log)

	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.log.Infow("metrics server starting", "addr", a.cfg.Metrics.Addr)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer a.screen.Close()
		err := a.monitor.Run(gCtx)
		// Stop the metrics server too, whichever way the loop ended.
		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			a.server.Shutdown(shutdownCtx)
		}
		return err
	})

	return g.Wait()
}

func (a *App) Shutdown() {
	a.log.Infow("shutdown complete")
}
