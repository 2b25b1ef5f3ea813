package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/dipscan/pkg/database"
)

// HealthChecker reports backend health (database.DB)
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler reports service liveness
type HealthHandler struct {
	service string
	ledger  string
	db      HealthChecker // nil unless the postgres backend is used
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service, ledgerBackend string, db HealthChecker) *HealthHandler {
	return &HealthHandler{
		service: service,
		ledger:  ledgerBackend,
		db:      db,
		started: time.Now(),
	}
}

// Check returns server health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":         "ok",
		"service":        h.service,
		"ledger_backend": h.ledger,
		"uptime":         time.Since(h.started).Round(time.Second).String(),
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		db, err := h.db.HealthCheck(ctx)
		body["database"] = db
		if err != nil {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, body)
}
