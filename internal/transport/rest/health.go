package rest

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/frahmantamala/photo-fundraising/internal/transport"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Check is one dependency tested by the readiness endpoint.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

type HealthHandler struct {
	*transport.BaseHandler
	checks []Check
}

// NewHealthHandler always checks the database; extra checks are appended.
func NewHealthHandler(db *sql.DB, extra ...Check) *HealthHandler {
	checks := make([]Check, 0, len(extra)+1)
	if db != nil {
		checks = append(checks, Check{Name: "postgres", Run: db.PingContext})
	}
	checks = append(checks, extra...)
	return &HealthHandler{
		BaseHandler: transport.NewBaseHandler(nil),
		checks:      checks,
	}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(h.checks)),
	}

	for _, check := range h.checks {
		entry := runCheck(r.Context(), check)
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
			h.Logger.Warn("health check failed", "component", check.Name, "message", entry.Message)
		}
		resp.Components[check.Name] = entry
	}
	resp.CheckedAt = time.Now()

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, status, resp)
}

func runCheck(ctx context.Context, check Check) CheckEntry {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := check.Run(ctx)
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
