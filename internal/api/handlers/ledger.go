package handlers

import (
	"net/http"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/ledger"
	"github.com/wonny/dipscan/internal/strategyconfig"
	"github.com/wonny/dipscan/pkg/logger"
)

// LedgerHandler serves the virtual position book read-only
type LedgerHandler struct {
	repo   contracts.LedgerRepository
	cfg    strategyconfig.Ledger
	logger *logger.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(repo contracts.LedgerRepository, cfg strategyconfig.Ledger, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		repo:   repo,
		cfg:    cfg,
		logger: log.WithField("handler", "ledger"),
	}
}

// GetPositions returns positions, open first
// GET /api/ledger?status=open
func (h *LedgerHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	book, err := ledger.Snapshot(r.Context(), h.repo, h.cfg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load ledger")
		respondError(w, http.StatusInternalServerError, "Failed to load ledger")
		return
	}

	status := r.URL.Query().Get("status")
	positions := make([]*contracts.Position, 0)
	for _, p := range book.Positions() {
		if status != "" && string(p.Status) != status {
			continue
		}
		positions = append(positions, p)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(positions),
		"positions": positions,
	})
}

// GetStats returns ledger statistics
// GET /api/ledger/stats
func (h *LedgerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	book, err := ledger.Snapshot(r.Context(), h.repo, h.cfg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load ledger")
		respondError(w, http.StatusInternalServerError, "Failed to load ledger")
		return
	}
	respondJSON(w, http.StatusOK, book.Stats())
}
