package backtest

import "github.com/wonny/dipscan/internal/contracts"

// HorizonStats aggregates trades for one holding period
type HorizonStats struct {
	Horizon       int                 `json:"horizon"`
	Signals       int                 `json:"signals"`
	Wins          int                 `json:"wins"`
	StopHits      int                 `json:"stop_hits"`
	WinRatePct    contracts.NullFloat `json:"win_rate_pct"`    // undefined with no signals
	MeanReturnPct contracts.NullFloat `json:"mean_return_pct"` // undefined with no signals
}

// CategoryStats is HorizonStats restricted to one trigger category
type CategoryStats struct {
	Category contracts.Category `json:"category"`
	HorizonStats
}

// Summarize aggregates per horizon; a win is a return strictly above 0
func Summarize(trades []Trade, horizons []int) []HorizonStats {
	out := make([]HorizonStats, len(horizons))
	sums := make([]float64, len(horizons))
	for k, h := range horizons {
		out[k].Horizon = h
	}

	for _, t := range trades {
		for k := range horizons {
			if k >= len(t.Returns) {
				continue
			}
			r := t.Returns[k]
			out[k].Signals++
			sums[k] += r.ReturnPct
			if r.ReturnPct > 0 {
				out[k].Wins++
			}
			if r.StopHit {
				out[k].StopHits++
			}
		}
	}

	for k := range out {
		if out[k].Signals == 0 {
			continue
		}
		n := float64(out[k].Signals)
		out[k].WinRatePct = contracts.Float(float64(out[k].Wins) / n * 100)
		out[k].MeanReturnPct = contracts.Float(sums[k] / n)
	}
	return out
}

// SummarizeByCategory breaks Summarize down by trigger category, in rank order.
// Categories without trades are omitted.
func SummarizeByCategory(trades []Trade, horizons []int) []CategoryStats {
	grouped := make(map[contracts.Category][]Trade)
	for _, t := range trades {
		grouped[t.Category] = append(grouped[t.Category], t)
	}

	var out []CategoryStats
	for _, c := range contracts.Categories() {
		group, ok := grouped[c]
		if !ok {
			continue
		}
		for _, hs := range Summarize(group, horizons) {
			out = append(out, CategoryStats{Category: c, HorizonStats: hs})
		}
	}
	return out
}
