package httpserver

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthCheck reports nil when the dependency is usable.
type HealthCheck func(ctx context.Context) error

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status              string `json:"status"`
	Latency             string `json:"latency"`
	Message             string `json:"message,omitempty"`
	ConsecutiveFailures int    `json:"consecutive_failures,omitempty"`
}

// HealthResponse is the payload of /livez and /readyz.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type checkState struct {
	check               HealthCheck
	consecutiveFailures int
}

// HealthHandler serves liveness and readiness probes.
//
//	health := httpserver.NewHealthHandler("connpass-exporter", version)
//	health.AddReadinessCheck("collection", exporter.Ready)
//
//	mux.Handle("/livez", health.LiveHandler())
//	mux.Handle("/readyz", health.ReadyHandler())
type HealthHandler struct {
	serviceName string
	version     string
	startTime   time.Time

	mu              sync.Mutex
	readinessChecks map[string]*checkState
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(serviceName, version string) *HealthHandler {
	return &HealthHandler{
		serviceName:     serviceName,
		version:         version,
		startTime:       time.Now(),
		readinessChecks: make(map[string]*checkState),
	}
}

// AddReadinessCheck registers a check run on every /readyz request.
func (h *HealthHandler) AddReadinessCheck(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readinessChecks[name] = &checkState{check: check}
}

// LiveHandler always reports ok while the process can serve HTTP.
func (h *HealthHandler) LiveHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeHealth(w, nil)
	})
}

// ReadyHandler returns 200 if every readiness check passes, 503 otherwise.
func (h *HealthHandler) ReadyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()

		names := make([]string, 0, len(h.readinessChecks))
		for name := range h.readinessChecks {
			names = append(names, name)
		}
		sort.Strings(names)

		results := make(map[string]CheckResult, len(names))
		for _, name := range names {
			state := h.readinessChecks[name]

			start := time.Now()
			err := state.check(r.Context())
			result := CheckResult{Status: "ok", Latency: time.Since(start).String()}

			if err != nil {
				state.consecutiveFailures++
				result.Status = "fail"
				result.Message = err.Error()
				result.ConsecutiveFailures = state.consecutiveFailures
			} else {
				state.consecutiveFailures = 0
			}
			results[name] = result
		}

		h.writeHealth(w, results)
	})
}

func (h *HealthHandler) writeHealth(w http.ResponseWriter, results map[string]CheckResult) {
	status, code, message := "ok", http.StatusOK, "all checks passed"

	var errs []Error
	for name, res := range results {
		if res.Status != "ok" {
			errs = append(errs, Error{Field: name, Message: res.Message})
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		status, code, message = "fail", http.StatusServiceUnavailable, "one or more checks failed"
	}

	WriteJSON(w, code, Response[HealthResponse]{
		Data: HealthResponse{
			Status:    status,
			Service:   h.serviceName,
			Version:   h.version,
			Uptime:    time.Since(h.startTime).Round(time.Second).String(),
			Timestamp: time.Now().Format(time.RFC3339),
			Checks:    results,
		},
		Errors:  errs,
		Message: message,
	})
}
