package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PollCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godmon_poll_cycles_total",
			Help: "Total number of polling cycles by outcome (count)",
		},
		[]string{"result"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "godmon_fetch_duration_ms",
			Help:    "Duration of state fetches in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"source"},
	)

	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godmon_fetch_errors_total",
			Help: "Total number of state fetch errors by kind (count)",
		},
		[]string{"source", "kind"},
	)

	StaleRendersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "godmon_stale_renders_total",
			Help: "Total number of cycles rendered from the previous snapshot (count)",
		},
	)

	RuleTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godmon_rule_transitions_total",
			Help: "Total number of rule result transitions by direction (count)",
		},
		[]string{"rule", "direction"},
	)

	RuleErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godmon_rule_errors_total",
			Help: "Total number of rule predicate and action errors (count)",
		},
		[]string{"rule", "stage"},
	)

	ActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "godmon_active_rules",
			Help: "Number of registered rules (count)",
		},
	)

	NotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "godmon_notifications_total",
			Help: "Total number of notifications posted (count)",
		},
	)

	ActivePopups = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "godmon_active_popups",
			Help: "Number of popup notifications currently on screen (count)",
		},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "godmon_retry_attempts_total",
			Help: "Total number of fetch retry attempts (count)",
		},
		[]string{"source"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "godmon_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)
)

func RegisterMonitorMetrics() {
	prometheus.MustRegister(PollCyclesTotal)
	prometheus.MustRegister(StaleRendersTotal)
	prometheus.MustRegister(RuleTransitionsTotal)
	prometheus.MustRegister(RuleErrorsTotal)
	prometheus.MustRegister(ActiveRules)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(ActivePopups)
}

func RegisterSourceMetrics() {
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(FetchErrorsTotal)
	prometheus.MustRegister(RetryAttemptsTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
}

func ObserveFetchDuration(source string, duration time.Duration) {
	FetchDuration.WithLabelValues(source).Observe(float64(duration.Milliseconds()))
}
