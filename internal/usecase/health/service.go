package health

import (
	"context"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Report is the health endpoint payload.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Service aggregates health checks over optional dependencies. A nil
// pinger means the dependency is not configured and is skipped.
type Service struct {
	index   Pinger
	cache   Pinger
	timeout time.Duration
}

func New(index, cache Pinger) *Service {
	return &Service{index: index, cache: cache, timeout: 2 * time.Second}
}

// Check runs all configured probes. The service itself being up counts
// as healthy; a failing dependency degrades the report rather than
// failing it.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: StatusHealthy, Checks: map[string]string{}}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.probe(ctx, &report, "index", s.index)
	s.probe(ctx, &report, "cache", s.cache)
	return report
}

func (s *Service) probe(ctx context.Context, report *Report, name string, p Pinger) {
	if p == nil {
		return
	}
	if err := p.Ping(ctx); err != nil {
		report.Status = StatusDegraded
		report.Checks[name] = err.Error()
		return
	}
	report.Checks[name] = "ok"
}
