package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/wonny/dipscan/internal/report"
	"github.com/wonny/dipscan/pkg/logger"
)

// BacktestHandler serves the last exported backtest summary
type BacktestHandler struct {
	outputDir string
	logger    *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(outputDir string, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		outputDir: outputDir,
		logger:    log.WithField("handler", "backtest"),
	}
}

// GetSummary returns backtest_summary.csv as JSON
// GET /api/backtest/summary
func (h *BacktestHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := report.ReadBacktestSummary(filepath.Join(h.outputDir, report.BacktestSummaryFile))
	if errors.Is(err, fs.ErrNotExist) {
		respondError(w, http.StatusNotFound, "no backtest summary; run `dipscan backtest` first")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to read backtest summary")
		respondError(w, http.StatusInternalServerError, "Failed to read backtest summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rows": rows,
	})
}
