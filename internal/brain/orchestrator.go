package brain

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/fanout"
	"github.com/wonny/dipscan/internal/ledger"
	"github.com/wonny/dipscan/internal/report"
	"github.com/wonny/dipscan/internal/s1_indicators"
	"github.com/wonny/dipscan/internal/s2_signals"
	"github.com/wonny/dipscan/internal/strategyconfig"
	"github.com/wonny/dipscan/pkg/logger"
)

// Orchestrator coordinates one daily run:
// list → (load → indicators → score) fan-out → sort → reports → ledger
// ⭐ SSOT: 실행 조율은 여기서만
type Orchestrator struct {
	source   contracts.BarSource
	builder  *s2_signals.Builder
	ledger   contracts.LedgerRepository // nil: ledger step skipped
	strategy *strategyconfig.Config
	opts     Options
	logger   *logger.Logger

	// 한 번에 하나의 실행만 (ledger single writer)
	runMu sync.Mutex

	mu        sync.RWMutex
	last      *RunResult
	listeners []func(RunSummary)
}

// Options are the per-process settings of the orchestrator
type Options struct {
	Workers      int
	OutputDir    string
	ArchiveDir   string
	StrategyHash string
}

// RunConfig holds configuration for a single run
type RunConfig struct {
	RunID       string
	Now         time.Time
	DryRun      bool // skip the ledger transaction
	SkipReports bool
}

// RunResult holds the results of a complete run
type RunResult struct {
	RunID        string                    `json:"run_id"`
	StrategyID   string                    `json:"strategy_id"`
	StrategyHash string                    `json:"strategy_hash"`
	StartedAt    time.Time                 `json:"started_at"`
	Duration     time.Duration             `json:"duration"`
	Instruments  int                       `json:"instruments"`
	Scored       int                       `json:"scored"`
	Skipped      map[string]int            `json:"skipped"`
	Signals      []*contracts.SignalResult `json:"signals"`
	Reports      *report.DecisionPaths     `json:"reports,omitempty"`
	Ledger       *ledger.MergeSummary      `json:"ledger,omitempty"`
	Prices       []contracts.LatestPrice   `json:"-"`
	Success      bool                      `json:"success"`
	Error        string                    `json:"error,omitempty"`
}

// RunSummary is the compact form pushed to run listeners
type RunSummary struct {
	RunID       string               `json:"run_id"`
	StartedAt   time.Time            `json:"started_at"`
	Duration    string               `json:"duration"`
	Instruments int                  `json:"instruments"`
	Scored      int                  `json:"scored"`
	Skipped     map[string]int       `json:"skipped"`
	Actionable  int                  `json:"actionable"`
	Notable     int                  `json:"notable"`
	Ledger      *ledger.MergeSummary `json:"ledger,omitempty"`
	Success     bool                 `json:"success"`
	Error       string               `json:"error,omitempty"`
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	source contracts.BarSource,
	strategy *strategyconfig.Config,
	ledgerRepo contracts.LedgerRepository,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	scorer := s2_signals.NewScorer(strategy.Scoring)
	return &Orchestrator{
		source:   source,
		builder:  s2_signals.NewBuilder(source, scorer, log),
		ledger:   ledgerRepo,
		strategy: strategy,
		opts:     opts,
		logger:   log.WithField("module", "brain"),
	}
}

// Subscribe registers fn to receive every finished run
func (o *Orchestrator) Subscribe(fn func(RunSummary)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// Last returns the most recent finished run, nil before the first run
func (o *Orchestrator) Last() *RunResult {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// Run executes one scan. Per-instrument failures are counted as skipped.
// Ledger errors are returned after reports have been written.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Now.IsZero() {
		config.Now = time.Now()
	}

	result := &RunResult{
		RunID:        config.RunID,
		StrategyID:   o.strategy.Meta.StrategyID,
		StrategyHash: o.opts.StrategyHash,
		StartedAt:    config.Now,
		Skipped:      make(map[string]int),
	}
	log := o.logger.WithField("run_id", config.RunID)
	started := time.Now()

	err := o.run(ctx, config, result, log)

	result.Duration = time.Since(started)
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}
	o.finish(result)

	fields := map[string]interface{}{
		"instruments": result.Instruments,
		"scored":      result.Scored,
		"skipped":     result.Skipped,
		"duration":    result.Duration.String(),
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Run failed")
		return result, err
	}
	log.WithFields(fields).Info("Run completed")
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, config RunConfig, result *RunResult, log *logger.Logger) error {
	files, err := o.source.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	result.Instruments = len(files)

	log.WithFields(map[string]interface{}{
		"instruments": len(files),
		"workers":     o.opts.Workers,
		"strategy":    o.strategy.Meta.StrategyID,
	}).Info("Starting run")

	outcomes, err := fanout.Map(ctx, len(files), o.opts.Workers,
		func(ctx context.Context, i int) contracts.Outcome {
			return o.builder.Build(ctx, files[i])
		},
		func(i int, err error) contracts.Outcome {
			return contracts.Outcome{Code: files[i].Code, Source: files[i].Path, Err: err}
		},
	)
	if err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	for i := range outcomes {
		out := &outcomes[i]
		if out.Latest != nil {
			result.Prices = append(result.Prices, *out.Latest)
		}
		if !out.OK() {
			result.Skipped[out.SkipReason()]++
			continue
		}
		result.Signals = append(result.Signals, out.Result)
	}
	result.Scored = len(result.Signals)
	SortSignals(result.Signals)

	if !config.SkipReports {
		paths, err := report.SaveDecisions(o.opts.OutputDir, o.opts.ArchiveDir, result.Signals, config.Now)
		if err != nil {
			return err
		}
		result.Reports = &paths
		log.WithField("report", paths.Report).Info("Decision report written")
	}

	if config.DryRun || o.ledger == nil {
		return nil
	}

	var summary ledger.MergeSummary
	err = ledger.RunTx(ctx, o.ledger, o.strategy.Ledger, func(l *ledger.Ledger) error {
		summary = l.Merge(result.Signals, result.Prices, config.Now)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	result.Ledger = &summary

	log.WithFields(map[string]interface{}{
		"admitted":    summary.Admitted,
		"refreshed":   summary.Refreshed,
		"stopped_out": summary.StoppedOut,
		"took_profit": summary.TookProfit,
	}).Info("Ledger updated")
	return nil
}

func (o *Orchestrator) finish(result *RunResult) {
	o.mu.Lock()
	o.last = result
	listeners := make([]func(RunSummary), len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	summary := result.Summary()
	for _, fn := range listeners {
		fn(summary)
	}
}

// Summary condenses a run for listeners
func (r *RunResult) Summary() RunSummary {
	s := RunSummary{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt,
		Duration:    r.Duration.String(),
		Instruments: r.Instruments,
		Scored:      r.Scored,
		Skipped:     r.Skipped,
		Ledger:      r.Ledger,
		Success:     r.Success,
		Error:       r.Error,
	}
	for _, sig := range r.Signals {
		switch {
		case sig.Category.IsActionable():
			s.Actionable++
		case sig.Category.IsNotable():
			s.Notable++
		}
	}
	return s
}

// SortSignals orders by score desc, then code asc
func SortSignals(signals []*contracts.SignalResult) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].Code < signals[j].Code
	})
}

// Streaks finds every instrument whose latest bar closes a decline streak
func (o *Orchestrator) Streaks(ctx context.Context) ([]report.Streak, error) {
	files, err := o.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	found, err := fanout.Map(ctx, len(files), o.opts.Workers,
		func(ctx context.Context, i int) *report.Streak {
			series, err := o.source.Load(ctx, files[i])
			if err != nil || series.Len() == 0 {
				return nil
			}
			changes := make([]float64, series.Len())
			for k, b := range series.Bars {
				changes[k] = b.PercentChange
			}
			streak, cumulative := s1_indicators.DeclineStreak(changes)
			last := len(changes) - 1
			if streak[last] == 0 {
				return nil
			}
			name := series.Name
			if name == "" {
				name = contracts.UnknownName
			}
			return &report.Streak{
				Code:              series.Code,
				Name:              name,
				Days:              streak[last],
				CumulativeDecline: cumulative[last],
				Date:              series.Bars[last].Date,
			}
		},
		func(i int, err error) *report.Streak { return nil },
	)
	if err != nil {
		return nil, err
	}

	var out []report.Streak
	for _, s := range found {
		if s != nil {
			out = append(out, *s)
		}
	}
	report.SortStreaks(out)

	o.logger.WithFields(map[string]interface{}{
		"instruments": len(files),
		"declining":   len(out),
	}).Info("Decline streaks collected")
	return out, nil
}
