package backtest

import (
	"fmt"
	"time"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/s1_indicators"
	"github.com/wonny/dipscan/internal/s2_signals"
	"github.com/wonny/dipscan/internal/strategyconfig"
)

// Trade is one historical trigger with its forward returns
type Trade struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Date        time.Time           `json:"date"`
	Score       int                 `json:"score"`
	Category    contracts.Category  `json:"category"`
	EntryPrice  float64             `json:"entry_price"`
	VolumeRatio contracts.NullFloat `json:"volume_ratio"`
	Returns     []HorizonReturn     `json:"returns"` // same order as configured horizons
}

// HorizonReturn is the outcome of holding a trade for Horizon bars
type HorizonReturn struct {
	Horizon   int     `json:"horizon"`
	ReturnPct float64 `json:"return_pct"`
	StopHit   bool    `json:"stop_hit"`
}

// Simulator replays the scorer over one instrument's history
// ⭐ SSOT: 백테스팅 시뮬레이션은 여기서만
type Simulator struct {
	cfg    strategyconfig.Backtest
	scorer *s2_signals.Scorer
}

// NewSimulator creates a simulator over a validated backtest config
func NewSimulator(cfg strategyconfig.Backtest, scorer *s2_signals.Scorer) *Simulator {
	return &Simulator{cfg: cfg, scorer: scorer}
}

// Horizons returns the configured holding periods
func (s *Simulator) Horizons() []int {
	return s.cfg.Horizons
}

// Run finds every trigger bar in [warmup, len-maxHorizon) and measures
// forward returns. Series shorter than min_bars are rejected.
func (s *Simulator) Run(series *contracts.BarSeries) ([]Trade, error) {
	n := series.Len()
	if n < s.cfg.MinBars {
		return nil, fmt.Errorf("%s: %d bars, need %d: %w", series.Code, n, s.cfg.MinBars, contracts.ErrInsufficientHistory)
	}

	snaps := s1_indicators.Compute(series)
	last := n - s.cfg.MaxHorizon()

	var trades []Trade
	for i := s.cfg.WarmupBars; i < last; i++ {
		ev, err := s.scorer.ScoreAt(snaps, i)
		if err != nil {
			continue
		}
		if ev.Score < s.cfg.TriggerScore || !s.passesGates(&snaps[i]) {
			continue
		}

		entry := series.Bars[i].Close
		trade := Trade{
			Code:        series.Code,
			Name:        series.Name,
			Date:        series.Bars[i].Date,
			Score:       ev.Score,
			Category:    ev.Category,
			EntryPrice:  entry,
			VolumeRatio: snaps[i].VolumeRatio,
			Returns:     make([]HorizonReturn, len(s.cfg.Horizons)),
		}
		for k, h := range s.cfg.Horizons {
			trade.Returns[k] = ForwardReturn(series.Bars, i, h, s.cfg.StopLossPct)
		}
		trades = append(trades, trade)
	}

	return trades, nil
}

// 거래대금 하한 + 극단적 거래량 축소 게이트
func (s *Simulator) passesGates(snap *contracts.Snapshot) bool {
	if s.cfg.MinTurnover > 0 && snap.Turnover < s.cfg.MinTurnover {
		return false
	}
	if s.cfg.MaxVolumeRatio > 0 {
		if !snap.VolumeRatio.Valid || snap.VolumeRatio.Value >= s.cfg.MaxVolumeRatio {
			return false
		}
	}
	return true
}

// ForwardReturn holds from close of bar i for h bars. If any low in
// (i, i+h] falls strictly below the stop price the return is exactly
// stopPct; otherwise it is the close-to-close change.
func ForwardReturn(bars []contracts.Bar, i, h int, stopPct float64) HorizonReturn {
	entry := bars[i].Close
	stopPrice := entry * (1 + stopPct/100)

	for k := i + 1; k <= i+h; k++ {
		if bars[k].Low < stopPrice {
			return HorizonReturn{Horizon: h, ReturnPct: stopPct, StopHit: true}
		}
	}

	exit := bars[i+h].Close
	return HorizonReturn{Horizon: h, ReturnPct: (exit - entry) / entry * 100}
}
