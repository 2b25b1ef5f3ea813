package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/strategyconfig"
)

// Ledger is the in-memory virtual position book for one transaction.
// At most one open position exists per code.
// ⭐ SSOT: 포지션 상태 전이는 여기서만
type Ledger struct {
	cfg       strategyconfig.Ledger
	positions []*contracts.Position
	open      map[string]*contracts.Position
	newID     func() uuid.UUID
}

// MergeSummary counts what one Merge changed
type MergeSummary struct {
	Admitted   int `json:"admitted"`
	Refreshed  int `json:"refreshed"`
	StoppedOut int `json:"stopped_out"`
	TookProfit int `json:"took_profit"`
}

// New wraps loaded positions. If storage holds several open positions for
// one code, the earliest entry stays open-indexed and the rest are still
// refreshed through Refresh.
func New(cfg strategyconfig.Ledger, positions []*contracts.Position) *Ledger {
	l := &Ledger{
		cfg:       cfg,
		positions: positions,
		open:      make(map[string]*contracts.Position),
		newID:     uuid.New,
	}
	for _, p := range positions {
		if !p.IsOpen() {
			continue
		}
		if cur, ok := l.open[p.Code]; !ok || p.EntryDate.Before(cur.EntryDate) {
			l.open[p.Code] = p
		}
	}
	return l
}

// Eligible reports whether a signal may open a position, ignoring
// whether one is already open
func (l *Ledger) Eligible(sig *contracts.SignalResult) bool {
	return l.cfg.Admits(sig.Category) && sig.Score >= l.cfg.AdmissionScore
}

// Admit opens a position for an eligible signal unless one is already
// open for the code. The suggested stop is used only when it is defined
// and below the entry price.
func (l *Ledger) Admit(sig *contracts.SignalResult, now time.Time) (*contracts.Position, bool) {
	if !l.Eligible(sig) || sig.Price <= 0 {
		return nil, false
	}
	if _, exists := l.open[sig.Code]; exists {
		return nil, false
	}

	stop := sig.Price * (1 + l.cfg.DefaultStopPct/100)
	if sig.StopLoss.Valid && sig.StopLoss.Value < sig.Price && sig.StopLoss.Value > 0 {
		stop = sig.StopLoss.Value
	}

	entryDate := sig.Date
	if entryDate.IsZero() {
		entryDate = truncateDay(now)
	}

	p := &contracts.Position{
		ID:             l.newID(),
		Code:           sig.Code,
		Name:           sig.Name,
		EntryDate:      entryDate,
		EntryPrice:     sig.Price,
		StopLossPrice:  stop,
		CurrentPrice:   sig.Price,
		OriginCategory: sig.Category,
		Status:         contracts.StatusOpen,
		UpdatedAt:      now,
	}
	l.positions = append(l.positions, p)
	l.open[p.Code] = p
	return p, true
}

// Refresh marks every open position of code to price as of date and
// applies the exit rules. Closed positions are never touched.
// It returns the positions closed by this call.
func (l *Ledger) Refresh(code string, price float64, date, now time.Time) []*contracts.Position {
	if price <= 0 {
		return nil
	}

	var closed []*contracts.Position
	for _, p := range l.positions {
		if p.Code != code || !p.IsOpen() {
			continue
		}

		p.CurrentPrice = price
		p.CurrentReturnPct = (price - p.EntryPrice) / p.EntryPrice * 100
		p.HoldingDays = holdingDays(p.EntryDate, date)
		p.UpdatedAt = now

		switch {
		case price < p.StopLossPrice:
			p.Status = contracts.StatusStoppedOut
		case p.CurrentReturnPct >= l.cfg.TakeProfitPct:
			p.Status = contracts.StatusTookProfit
		default:
			continue
		}

		exit := truncateDay(date)
		p.ExitDate = &exit
		if l.open[code] == p {
			delete(l.open, code)
		}
		closed = append(closed, p)
	}
	return closed
}

// Merge admits every signal first, then refreshes every code with a
// latest price. A position admitted today is refreshed at its entry price.
func (l *Ledger) Merge(signals []*contracts.SignalResult, prices []contracts.LatestPrice, now time.Time) MergeSummary {
	var sum MergeSummary

	for _, sig := range signals {
		if _, ok := l.Admit(sig, now); ok {
			sum.Admitted++
		}
	}

	for _, lp := range prices {
		if !l.hasOpen(lp.Code) {
			continue
		}
		sum.Refreshed++
		for _, p := range l.Refresh(lp.Code, lp.Close, lp.Date, now) {
			switch p.Status {
			case contracts.StatusStoppedOut:
				sum.StoppedOut++
			case contracts.StatusTookProfit:
				sum.TookProfit++
			}
		}
	}
	return sum
}

// Positions returns all positions: open first, then by entry date and code
func (l *Ledger) Positions() []*contracts.Position {
	out := make([]*contracts.Position, len(l.positions))
	copy(out, l.positions)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsOpen() != b.IsOpen() {
			return a.IsOpen()
		}
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		return a.Code < b.Code
	})
	return out
}

// OpenPosition returns the open position for code
func (l *Ledger) OpenPosition(code string) (*contracts.Position, bool) {
	p, ok := l.open[code]
	return p, ok
}

func (l *Ledger) hasOpen(code string) bool {
	for _, p := range l.positions {
		if p.Code == code && p.IsOpen() {
			return true
		}
	}
	return false
}

func holdingDays(entry, date time.Time) int {
	days := int(math.Floor(truncateDay(date).Sub(truncateDay(entry)).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
