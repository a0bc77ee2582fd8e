package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe reports whether a dependency is reachable.
type Probe interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// HealthCheck names a dependency for the debug endpoint. A failing
// Critical check turns the response into a 503.
type HealthCheck struct {
	Name     string
	Probe    Probe
	Critical bool
}

type CheckResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type DebugResponseDTO struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
	Time   time.Time              `json:"time"`
}

type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
	log     *zap.Logger
}

func NewHealthHandler(checks []HealthCheck, log *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Debug runs every probe concurrently.
func (h *HealthHandler) Debug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make([]CheckResult, len(h.checks))
	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res := CheckResult{Status: "ok"}
			if err := c.Probe.Probe(ctx); err != nil {
				res.Status = "error"
				res.Error = err.Error()
			}
			res.LatencyMS = time.Since(start).Milliseconds()
			results[i] = res
		}()
	}
	wg.Wait()

	status := http.StatusOK
	payload := DebugResponseDTO{
		Status: "ok",
		Checks: make(map[string]CheckResult, len(h.checks)),
		Time:   time.Now().UTC(),
	}
	for i, c := range h.checks {
		payload.Checks[c.Name] = results[i]
		if results[i].Status == "ok" {
			continue
		}
		h.log.Warn("health probe failed", zap.String("check", c.Name), zap.String("error", results[i].Error))
		if payload.Status == "ok" {
			payload.Status = "degraded"
		}
		if c.Critical {
			status = http.StatusServiceUnavailable
			payload.Status = "down"
		}
	}

	respondData(w, status, payload)
}
