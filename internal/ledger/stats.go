package ledger

import "github.com/wonny/dipscan/internal/contracts"

// Stats summarizes the ledger
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	Closed     int `json:"closed"`
	StoppedOut int `json:"stopped_out"`
	TookProfit int `json:"took_profit"`

	// Over closed positions; a win is a return strictly above 0
	WinRatePct          contracts.NullFloat `json:"win_rate_pct"`
	MeanClosedReturnPct contracts.NullFloat `json:"mean_closed_return_pct"`
	// Over open positions
	MeanOpenReturnPct contracts.NullFloat `json:"mean_open_return_pct"`
}

// ComputeStats is read-only over any position list
func ComputeStats(positions []*contracts.Position) Stats {
	var (
		s                  Stats
		wins               int
		openSum, closedSum float64
	)

	for _, p := range positions {
		s.Total++
		if p.IsOpen() {
			s.Open++
			openSum += p.CurrentReturnPct
			continue
		}

		s.Closed++
		closedSum += p.CurrentReturnPct
		if p.CurrentReturnPct > 0 {
			wins++
		}
		switch p.Status {
		case contracts.StatusStoppedOut:
			s.StoppedOut++
		case contracts.StatusTookProfit:
			s.TookProfit++
		}
	}

	if s.Closed > 0 {
		s.WinRatePct = contracts.Float(float64(wins) / float64(s.Closed) * 100)
		s.MeanClosedReturnPct = contracts.Float(closedSum / float64(s.Closed))
	}
	if s.Open > 0 {
		s.MeanOpenReturnPct = contracts.Float(openSum / float64(s.Open))
	}
	return s
}

// Stats returns statistics over the current book
func (l *Ledger) Stats() Stats {
	return ComputeStats(l.positions)
}
