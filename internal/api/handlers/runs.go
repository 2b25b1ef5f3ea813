package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/wonny/dipscan/internal/brain"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/pkg/logger"
)

// Runner is the scan entry point (brain.Orchestrator)
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
	Last() *brain.RunResult
}

// RunHandler serves the latest signals and triggers new runs
// ⭐ SSOT: 실행/시그널 API 핸들러는 이 구조체에서만
type RunHandler struct {
	runner Runner
	// 요청 컨텍스트가 아닌 서버 수명 컨텍스트로 실행
	baseCtx context.Context
	logger  *logger.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(baseCtx context.Context, runner Runner, log *logger.Logger) *RunHandler {
	return &RunHandler{
		runner:  runner,
		baseCtx: baseCtx,
		logger:  log.WithField("handler", "runs"),
	}
}

// SignalsResponse is the body of GET /api/signals
type SignalsResponse struct {
	RunID        string                    `json:"run_id"`
	StrategyHash string                    `json:"strategy_hash"`
	Count        int                       `json:"count"`
	Signals      []*contracts.SignalResult `json:"signals"`
}

// GetSignals returns the signals of the latest run
// GET /api/signals?category=strong-buy&reportable=true
func (h *RunHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	last := h.runner.Last()
	if last == nil {
		respondError(w, http.StatusNotFound, "no run has completed yet")
		return
	}

	category := r.URL.Query().Get("category")
	reportable := r.URL.Query().Get("reportable") == "true"

	signals := make([]*contracts.SignalResult, 0, len(last.Signals))
	for _, s := range last.Signals {
		if category != "" && string(s.Category) != category {
			continue
		}
		if reportable && !s.Reportable() {
			continue
		}
		signals = append(signals, s)
	}

	respondJSON(w, http.StatusOK, SignalsResponse{
		RunID:        last.RunID,
		StrategyHash: last.StrategyHash,
		Count:        len(signals),
		Signals:      signals,
	})
}

// GetLastRun returns the summary of the latest run
// GET /api/runs/last
func (h *RunHandler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	last := h.runner.Last()
	if last == nil {
		respondError(w, http.StatusNotFound, "no run has completed yet")
		return
	}
	respondJSON(w, http.StatusOK, last.Summary())
}

// TriggerRun starts a run in the background and returns its ID
// POST /api/runs?dry_run=true
func (h *RunHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	cfg := brain.RunConfig{
		RunID:  uuid.NewString(),
		DryRun: r.URL.Query().Get("dry_run") == "true",
	}

	go func() {
		if _, err := h.runner.Run(h.baseCtx, cfg); err != nil {
			h.logger.WithError(err).WithField("run_id", cfg.RunID).Error("Triggered run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run_id":  cfg.RunID,
		"dry_run": cfg.DryRun,
		"status":  "started",
	})
}
