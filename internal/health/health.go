// Package health probes the storage backends a vault session runs on.
package health

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hengadev/vaultx/internal/reliability"
	"github.com/hengadev/vaultx/internal/vault"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded indicates the component answers but is being skipped, e.g. an open circuit.
	StatusDegraded Status = "degraded"
	StatusUnknown  Status = "unknown"
)

// ProbeKey is read by backend checks. It is never written, so a healthy backend answers
// with vault.ErrNotFound.
const ProbeKey = "vaultx_health_probe"

// DefaultTimeout bounds a check that sets no timeout of its own.
const DefaultTimeout = 5 * time.Second

// Check is a named health check.
type Check struct {
	Name      string
	Critical  bool
	Timeout   time.Duration
	CheckFunc func(context.Context) (Status, error)
}

// Result is the outcome of one check.
type Result struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Critical  bool          `json:"critical"`
}

// Report is the outcome of every registered check.
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Version   string        `json:"version,omitempty"`
	Results   []Result      `json:"results"`
	Summary   Summary       `json:"summary"`
}

// Summary counts results per status.
type Summary struct {
	Total          int `json:"total"`
	Healthy        int `json:"healthy"`
	Unhealthy      int `json:"unhealthy"`
	Degraded       int `json:"degraded"`
	Unknown        int `json:"unknown"`
	CriticalFailed int `json:"critical_failed"`
}

// Checker runs registered checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	version string
	now     func() time.Time
}

func NewChecker(version string) *Checker {
	return &Checker{
		checks:  make(map[string]Check),
		version: version,
		now:     time.Now,
	}
}

// Register adds check, replacing any check with the same name.
func (c *Checker) Register(check Check) error {
	if check.Name == "" {
		return errors.New("health check name cannot be empty")
	}
	if check.CheckFunc == nil {
		return fmt.Errorf("health check %q has no function", check.Name)
	}
	if check.Timeout <= 0 {
		check.Timeout = DefaultTimeout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[check.Name] = check
	return nil
}

// Names returns the registered check names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run executes every registered check and aggregates the results. Results are sorted by name.
func (c *Checker) Run(ctx context.Context) Report {
	start := c.now()

	c.mu.RLock()
	checks := make([]Check, 0, len(c.checks))
	for _, check := range c.checks {
		checks = append(checks, check)
	}
	c.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.execute(ctx, check)
		}()
	}
	wg.Wait()

	slices.SortFunc(results, func(a, b Result) int { return cmp.Compare(a.Name, b.Name) })
	return Report{
		Status:    overallStatus(results),
		Timestamp: start,
		Duration:  c.now().Sub(start),
		Version:   c.version,
		Results:   results,
		Summary:   summarize(results),
	}
}

func (c *Checker) execute(ctx context.Context, check Check) Result {
	start := c.now()
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	status, err := check.CheckFunc(checkCtx)
	result := Result{
		Name:      check.Name,
		Status:    status,
		Duration:  c.now().Sub(start),
		Timestamp: start,
		Critical:  check.Critical,
	}
	if err != nil {
		result.Error = err.Error()
		if result.Status == StatusHealthy {
			result.Status = StatusUnhealthy
		}
	}
	return result
}

func summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		switch r.Status {
		case StatusHealthy:
			s.Healthy++
		case StatusUnhealthy:
			s.Unhealthy++
			if r.Critical {
				s.CriticalFailed++
			}
		case StatusDegraded:
			s.Degraded++
		default:
			s.Unknown++
		}
	}
	return s
}

// overallStatus is unhealthy when a critical check failed and degraded when any other
// check is not healthy.
func overallStatus(results []Result) Status {
	if len(results) == 0 {
		return StatusUnknown
	}
	degraded := false
	for _, r := range results {
		switch r.Status {
		case StatusHealthy:
		case StatusUnhealthy, StatusUnknown:
			if r.Critical {
				return StatusUnhealthy
			}
			degraded = true
		default:
			degraded = true
		}
	}
	if degraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// AdapterCheck probes a backend by reading ProbeKey. A missing key is healthy and an
// open circuit is degraded.
func AdapterCheck(name string, adapter vault.Adapter, critical bool) Check {
	return Check{
		Name:     name,
		Critical: critical,
		CheckFunc: func(ctx context.Context) (Status, error) {
			_, err := adapter.Get(ctx, ProbeKey)
			switch {
			case err == nil, errors.Is(err, vault.ErrNotFound):
				return StatusHealthy, nil
			case reliability.IsCircuitOpenError(err):
				return StatusDegraded, err
			default:
				return StatusUnhealthy, err
			}
		},
	}
}
