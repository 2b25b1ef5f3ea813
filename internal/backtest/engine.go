package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/fanout"
	"github.com/wonny/dipscan/pkg/logger"
)

// Engine runs the simulator across every instrument of a source
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	source    contracts.BarSource
	simulator *Simulator
	workers   int
	logger    *logger.Logger
}

// Result holds backtest results
type Result struct {
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Instruments int            `json:"instruments"`
	Tested      int            `json:"tested"`
	Skipped     map[string]int `json:"skipped"` // by reason
	Horizons    []int          `json:"horizons"`

	Trades     []Trade         `json:"trades"`
	Summary    []HorizonStats  `json:"summary"`
	ByCategory []CategoryStats `json:"by_category"`
}

type instrumentResult struct {
	trades []Trade
	err    error
}

// NewEngine creates a new backtest engine
func NewEngine(source contracts.BarSource, simulator *Simulator, workers int, log *logger.Logger) *Engine {
	return &Engine{
		source:    source,
		simulator: simulator,
		workers:   workers,
		logger:    log.WithField("module", "backtest"),
	}
}

// Run executes the backtest. Instruments that fail to load or are too
// short are counted, never fatal.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	files, err := e.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"instruments": len(files),
		"workers":     e.workers,
		"horizons":    e.simulator.Horizons(),
	}).Info("Starting backtest")

	results, err := fanout.Map(ctx, len(files), e.workers,
		func(ctx context.Context, i int) instrumentResult {
			series, err := e.source.Load(ctx, files[i])
			if err != nil {
				return instrumentResult{err: err}
			}
			trades, err := e.simulator.Run(series)
			return instrumentResult{trades: trades, err: err}
		},
		func(i int, err error) instrumentResult {
			return instrumentResult{err: fmt.Errorf("%s: %w", files[i].Code, err)}
		},
	)
	if err != nil {
		return nil, err
	}

	res := &Result{
		StartedAt:   started,
		Instruments: len(files),
		Skipped:     make(map[string]int),
		Horizons:    e.simulator.Horizons(),
	}
	for i, r := range results {
		if r.err != nil {
			o := contracts.Outcome{Code: files[i].Code, Err: r.err}
			res.Skipped[o.SkipReason()]++
			e.logger.WithFields(map[string]interface{}{
				"code":  files[i].Code,
				"error": r.err.Error(),
			}).Debug("Instrument skipped")
			continue
		}
		res.Tested++
		res.Trades = append(res.Trades, r.trades...)
	}

	sort.Slice(res.Trades, func(i, j int) bool {
		a, b := res.Trades[i], res.Trades[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Code < b.Code
	})

	res.Summary = Summarize(res.Trades, res.Horizons)
	res.ByCategory = SummarizeByCategory(res.Trades, res.Horizons)
	res.Duration = time.Since(started)

	e.logger.WithFields(map[string]interface{}{
		"tested":   res.Tested,
		"signals":  len(res.Trades),
		"duration": res.Duration.String(),
	}).Info("Backtest completed")

	return res, nil
}
