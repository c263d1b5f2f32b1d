// Package monitor runs the polling loop: fetch the hero state on a
// fixed cadence, feed it through the rule engine, and keep the
// dashboard current. Session and connectivity troubles surface as
// pop-up warnings on the presenter.
package monitor

import (
	"context"
	"fmt"
	"time"

	"godmon/internal/config"
	"godmon/internal/constants"
	"godmon/internal/logger"
	"godmon/internal/notify"
	"godmon/internal/rules"
	"godmon/internal/source"
	"godmon/internal/status"
	"godmon/pkg/health"
	"godmon/pkg/metrics"
)

// Presenter is the dashboard surface the loop draws on. *ui.Screen is
// the real one; tests substitute a fake.
type Presenter interface {
	Render(snap status.Snapshot)
	ShowPopup(message string) string
	DismissTopPopup() bool
	RemovePopup(id string)
	PollKey() (rune, bool)
}

type Monitor struct {
	cfg       *config.Config
	src       source.Source
	engine    *rules.Engine
	notifier  *notify.Notifier
	presenter Presenter
	log       logger.Logger
	freshness *health.FreshnessChecker

	// now and sleep are swappable so tests can drive the loop with a
	// fake clock.
	now   func() time.Time
	sleep func(time.Duration)

	interval time.Duration

	prev            status.Snapshot
	lastFetch       time.Time
	forceFetch      bool
	connErrReported bool
	connPopupID     string
	tokenPopupID    string
	expiredPopupID  string
}

func New(cfg *config.Config, src source.Source, engine *rules.Engine, notifier *notify.Notifier, presenter Presenter, freshness *health.FreshnessChecker, log logger.Logger) *Monitor {
	interval := time.Duration(cfg.Poll.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}
	return &Monitor{
		cfg:       cfg,
		src:       src,
		engine:    engine,
		notifier:  notifier,
		presenter: presenter,
		freshness: freshness,
		log:       log,
		now:       time.Now,
		sleep:     time.Sleep,
		interval:  interval,
	}
}

// Run blocks until the user quits, the context is canceled, or the
// backend becomes unreachable before any state was ever fetched.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.bootstrap(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quit, err := m.tick(ctx)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		m.sleep(constants.IdleSleep)
	}
}

// bootstrap performs the first fetch. Unlike later cycles there is no
// previous snapshot to fall back on, so any failure here is fatal.
func (m *Monitor) bootstrap(ctx context.Context) error {
	snap, err := m.readState(ctx)
	if err != nil {
		return err
	}

	expiredOnStart := snap.Expired()
	if m.cfg.Session.OpenBrowserOnStart && expiredOnStart {
		if err := m.notifier.OpenBrowser(); err != nil {
			m.log.Warnw("failed to open browser", "error", err)
		}
	}
	if err := m.registerSessionRule(expiredOnStart); err != nil {
		return err
	}
	m.process(snap)
	return nil
}

// registerSessionRule adds the built-in expiry watch to the engine. A
// session already expired at startup must not warn until it has been
// active once, which is exactly the skip-first-transition behavior.
func (m *Monitor) registerSessionRule(expiredOnStart bool) error {
	opts := []rules.Option{rules.WithLogger(m.log)}
	if expiredOnStart {
		opts = append(opts, rules.WithSkipFirstTransition())
	}
	rule, err := rules.NewRule("session_expired",
		func(snap status.Snapshot) (bool, error) { return snap.Expired(), nil },
		m.sessionExpired, opts...)
	if err != nil {
		return err
	}
	return m.engine.Register(rule)
}

// tick runs one iteration of the loop: keystrokes first, then a fetch
// if one is due.
func (m *Monitor) tick(ctx context.Context) (quit bool, err error) {
	for {
		key, ok := m.presenter.PollKey()
		if !ok {
			break
		}
		if m.handleKey(key) {
			return true, nil
		}
	}

	if !m.due(m.now()) {
		return false, nil
	}

	snap, err := m.readState(ctx)
	if err != nil {
		return false, err
	}
	m.process(snap)
	return false, nil
}

// due reports whether a fetch should happen now: the interval elapsed,
// a refresh was requested by key, or the wall-clock hour changed since
// the last fetch. Godville recomputes remote state on the hour, so the
// hour boundary forces a refresh even mid-interval.
func (m *Monitor) due(now time.Time) bool {
	if m.forceFetch {
		return true
	}
	if now.Sub(m.lastFetch) >= m.interval {
		return true
	}
	return m.cfg.Poll.ForceOnHourChange &&
		!now.Truncate(time.Hour).Equal(m.lastFetch.Truncate(time.Hour))
}

// readState fetches and parses a snapshot. Transient fetch failures
// fall back to the previous snapshot with the error recorded in it, so
// the dashboard keeps showing the last known state. With nothing to
// fall back on the error is fatal, and so is a response the backend
// produced but that does not parse: a malformed body means the protocol
// changed under us, not a network blip.
func (m *Monitor) readState(ctx context.Context) (status.Snapshot, error) {
	m.lastFetch = m.now()
	m.forceFetch = false

	body, err := m.src.Fetch(ctx, m.cfg.Auth.GodName, m.cfg.Auth.Token)
	if err != nil {
		if m.prev == nil || !source.IsTransient(err) {
			metrics.PollCyclesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("unable to fetch state from %s: %w", m.src.Name(), err)
		}

		metrics.PollCyclesTotal.WithLabelValues("stale").Inc()
		metrics.StaleRendersTotal.Inc()
		m.log.Warnw("fetch failed, rendering last known state", "error", err)
		m.reportConnectionError(err)

		snap := m.prev.Clone()
		snap[status.FieldError] = err.Error()
		return snap, nil
	}

	snap, err := status.Parse(body)
	if err != nil {
		metrics.PollCyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("unable to parse state from %s: %w", m.src.Name(), err)
	}

	tokenHint := ""
	if tokenURL := m.src.TokenURL(); tokenURL != "" {
		tokenHint = "Get an API token at " + tokenURL
	}
	snap.Normalize(m.cfg.Auth.Token != "", tokenHint)
	snap[status.FieldEngine] = m.src.ID()

	metrics.PollCyclesTotal.WithLabelValues("ok").Inc()
	if m.freshness != nil {
		m.freshness.Touch()
	}
	m.clearConnectionError()
	m.prev = snap
	return snap, nil
}

// process pushes one snapshot through session handling, the rule
// engine, and the dashboard.
func (m *Monitor) process(snap status.Snapshot) {
	if !snap.Expired() && m.expiredPopupID != "" {
		m.presenter.RemovePopup(m.expiredPopupID)
		m.expiredPopupID = ""
	}
	m.handleExpiredToken(snap)
	m.engine.CheckAll(snap)
	m.presenter.Render(snap)
}

// warn raises a managed popup and runs the notification command, and
// returns the popup handle so the warning can be withdrawn when the
// condition clears. Quiet mode swallows the warning entirely.
func (m *Monitor) warn(message string) string {
	if m.cfg.Notifications.Quiet {
		m.log.Infow("warning suppressed", "message", message)
		return ""
	}
	id := m.presenter.ShowPopup(message)
	if err := m.notifier.RunCommand(message); err != nil {
		m.log.Warnw("notification command failed", "error", err)
	}
	return id
}

// sessionExpired fires on a new expiry: refresh the session when
// configured to, warn otherwise.
func (m *Monitor) sessionExpired() error {
	if m.cfg.Session.Autorefresh {
		m.log.Infow("session expired, refreshing")
		if err := m.notifier.RefreshSession(); err != nil {
			m.log.Warnw("session refresh failed", "error", err)
			m.expiredPopupID = m.warn("Session expired and automatic refresh failed")
		}
		return nil
	}
	m.expiredPopupID = m.warn("Session expired")
	return nil
}

// handleExpiredToken raises a persistent warning while the API token is
// rejected, pointing at the page where a fresh one is issued.
func (m *Monitor) handleExpiredToken(snap status.Snapshot) {
	if snap.TokenExpired() {
		if m.tokenPopupID == "" {
			message := "API token expired or missing"
			if tokenURL := m.src.TokenURL(); tokenURL != "" {
				message += ". Get a new one at " + tokenURL
			}
			m.tokenPopupID = m.warn(message)
		}
		return
	}
	if m.tokenPopupID != "" {
		m.presenter.RemovePopup(m.tokenPopupID)
		m.tokenPopupID = ""
	}
}

// reportConnectionError raises a pop-up per the report_connection
// policy: every failing cycle, once per outage, or never.
func (m *Monitor) reportConnectionError(err error) {
	policy := m.cfg.Notifications.ReportConnection
	if policy == constants.ReportConnectionNever {
		return
	}
	if policy == constants.ReportConnectionOnce && m.connErrReported {
		return
	}
	m.connErrReported = true
	if m.connPopupID != "" {
		m.presenter.RemovePopup(m.connPopupID)
	}
	m.connPopupID = m.warn("Connection error: " + err.Error())
}

func (m *Monitor) clearConnectionError() {
	m.connErrReported = false
	if m.connPopupID != "" {
		m.presenter.RemovePopup(m.connPopupID)
		m.connPopupID = ""
	}
}
