// Package health serves liveness, readiness and status probes. Readiness
// runs every registered dependency check in parallel under one deadline.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/pk-mender/desafiojr/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultCheckTimeout bounds one readiness probe.
const DefaultCheckTimeout = 2 * time.Second

// Probe statuses.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

type check struct {
	fn       CheckFunc
	required bool
}

type Handler struct {
	startTime   time.Time
	environment string
	timeout     time.Duration

	mu     sync.RWMutex
	checks map[string]check
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		timeout:     DefaultCheckTimeout,
		checks:      make(map[string]check),
	}
}

// WithTimeout replaces the readiness deadline.
func (h *Handler) WithTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.timeout = d
	}
	return h
}

// RegisterCheck adds a dependency the service cannot work without. A failing
// required check makes readiness answer 503.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	h.register(name, fn, true)
}

// RegisterOptional adds a dependency the service can run without, such as a
// cache. A failing optional check reports "degraded" and still answers 200.
func (h *Handler) RegisterOptional(name string, fn CheckFunc) {
	h.register(name, fn, false)
}

func (h *Handler) register(name string, fn CheckFunc, required bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check{fn: fn, required: required}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness answers 200 while the process is serving.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	response := h.Readiness(r.Context())
	status := http.StatusOK
	if response.Status == StatusNotReady {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, response)
}

// Readiness runs all checks and summarizes them.
func (h *Handler) Readiness(ctx context.Context) ReadinessResponse {
	h.mu.RLock()
	checks := make(map[string]check, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(checks))
		failed  = map[bool]bool{}
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, c := range checks {
		g.Go(func() error {
			result := "up"
			err := c.fn(gctx)
			if err != nil {
				result = "down: " + err.Error()
			}
			mu.Lock()
			results[name] = result
			if err != nil {
				failed[c.required] = true
			}
			mu.Unlock()
			// a failing check must not cancel its siblings
			return nil
		})
	}
	_ = g.Wait()

	response := ReadinessResponse{Status: StatusReady, Checks: results}
	switch {
	case failed[true]:
		response.Status = StatusNotReady
	case failed[false]:
		response.Status = StatusDegraded
	}
	return response
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// HandleStatus reports version and uptime.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
