package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/noah-isme/grading-portal/pkg/backend"
)

// HealthCheck is the outcome of probing one dependency.
type HealthCheck struct {
	Target     string        `json:"target"`
	Reachable  bool          `json:"reachable"`
	StatusCode int           `json:"statusCode,omitempty"`
	Duration   time.Duration `json:"durationNs"`
	Error      string        `json:"error,omitempty"`
	ObservedAt time.Time     `json:"observedAt"`
}

// ReadinessReport aggregates every dependency probe.
type ReadinessReport struct {
	Ready  bool          `json:"ready"`
	Checks []HealthCheck `json:"checks"`
}

type backendProber interface {
	Get(ctx context.Context, creds backend.Credentials, path string) (*backend.Response, error)
}

type cachePinger interface {
	Ping(ctx context.Context) error
}

// HealthService probes the grading backend and, when configured, the cache.
type HealthService struct {
	backend    backendProber
	healthPath string
	cache      cachePinger
	timeout    time.Duration
}

// NewHealthService constructs a HealthService. cache may be nil.
func NewHealthService(prober backendProber, healthPath string, cache cachePinger, timeout time.Duration) *HealthService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if healthPath == "" {
		healthPath = "/actuator/health"
	}
	return &HealthService{backend: prober, healthPath: healthPath, cache: cache, timeout: timeout}
}

// Ready reports whether the portal can serve pages.
func (s *HealthService) Ready(ctx context.Context) ReadinessReport {
	checks := []HealthCheck{s.pingBackend(ctx)}
	if s.cache != nil {
		checks = append(checks, s.pingCache(ctx))
	}
	report := ReadinessReport{Ready: true, Checks: checks}
	for _, check := range checks {
		if !check.Reachable {
			report.Ready = false
		}
	}
	return report
}

func (s *HealthService) pingBackend(ctx context.Context) HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := HealthCheck{Target: "backend"}
	start := time.Now()
	resp, err := s.backend.Get(ctx, backend.Credentials{}, s.healthPath)
	result.Duration = time.Since(start)
	result.ObservedAt = time.Now().UTC()

	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &statusErr):
		result.StatusCode = statusErr.StatusCode
	case err != nil:
		result.Error = err.Error()
		return result
	default:
		result.StatusCode = resp.StatusCode
	}

	// A 4xx still proves the backend is up; only 5xx counts against readiness.
	result.Reachable = result.StatusCode < http.StatusInternalServerError
	if !result.Reachable {
		result.Error = fmt.Sprintf("received status %d", result.StatusCode)
	}
	return result
}

func (s *HealthService) pingCache(ctx context.Context) HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.cache.Ping(ctx)
	result := HealthCheck{Target: "cache", Reachable: err == nil, Duration: time.Since(start), ObservedAt: time.Now().UTC()}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
