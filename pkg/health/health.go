package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

type Health struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type CheckerRegistry struct {
	checkers []Checker
}

func NewCheckerRegistry() *CheckerRegistry {
	return &CheckerRegistry{
		checkers: make([]Checker, 0),
	}
}

func (r *CheckerRegistry) Register(checker Checker) {
	r.checkers = append(r.checkers, checker)
}

func (r *CheckerRegistry) Check(ctx context.Context) Health {
	results := make(map[string]CheckResult)
	allHealthy := true

	for _, checker := range r.checkers {
		err := checker.Check(ctx)
		result := CheckResult{
			Timestamp: time.Now(),
		}

		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			allHealthy = false
		} else {
			result.Status = StatusHealthy
		}

		results[checker.Name()] = result
	}

	overallStatus := StatusHealthy
	if !allHealthy {
		overallStatus = StatusUnhealthy
	}

	return Health{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// FreshnessChecker reports unhealthy when the monitored value has not
// been refreshed within maxAge. The polling loop touches it after every
// successful fetch.
type FreshnessChecker struct {
	name     string
	maxAge   time.Duration
	lastUnix atomic.Int64
}

func NewFreshnessChecker(name string, maxAge time.Duration) *FreshnessChecker {
	return &FreshnessChecker{name: name, maxAge: maxAge}
}

func (c *FreshnessChecker) Name() string {
	return c.name
}

// Touch records a successful refresh.
func (c *FreshnessChecker) Touch() {
	c.lastUnix.Store(time.Now().Unix())
}

func (c *FreshnessChecker) Check(ctx context.Context) error {
	last := c.lastUnix.Load()
	if last == 0 {
		return fmt.Errorf("%s has never been refreshed", c.name)
	}
	age := time.Since(time.Unix(last, 0))
	if age > c.maxAge {
		return fmt.Errorf("%s is stale: last refresh %s ago", c.name, age.Round(time.Second))
	}
	return nil
}
