package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
)

// Pinger checks one backing component.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	components map[string]Pinger
	logger     logging.Logger
}

// NewHealthHandler creates a handler checking the given components on
// readiness.
func NewHealthHandler(components map[string]Pinger, log logging.Logger) *HealthHandler {
	return &HealthHandler{components: components, logger: log}
}

type healthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Liveness reports process health only; it never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// Readiness pings every component with a short deadline and reports 503 when
// any is down.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Components: make(map[string]string, len(h.components))}
	code := http.StatusOK
	for name, p := range h.components {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Component unhealthy",
				logging.String("component", name), logging.Err(err))
			status.Components[name] = "down"
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Components[name] = "up"
	}
	writeJSON(w, code, status)
}
