package contracts

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the canonical day format used in files and reports
const DateLayout = "2006-01-02"

// Bar is one trading day for one instrument
type Bar struct {
	Date          time.Time `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        float64   `json:"volume"`
	Turnover      float64   `json:"turnover"`      // traded value
	PercentChange float64   `json:"pct_change"`    // day-over-day close change, %
	TurnoverRate  float64   `json:"turnover_rate"` // optional, 0 when absent

	// HasPercentChange is false when the source carried no value;
	// Validate derives it from consecutive closes.
	HasPercentChange bool `json:"-"`
}

// BarSeries is the full daily history of one instrument
// ⭐ SSOT: S0 → S1 데이터 전달
type BarSeries struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Bars []Bar  `json:"bars"`
}

// Validate sorts bars ascending by date, rejects duplicate dates and
// non-positive closes, and fills missing percent changes.
func (s *BarSeries) Validate() error {
	sort.SliceStable(s.Bars, func(i, j int) bool {
		return s.Bars[i].Date.Before(s.Bars[j].Date)
	})

	for i := range s.Bars {
		b := &s.Bars[i]
		if b.Close <= 0 {
			return fmt.Errorf("%s: close %.4f on %s: %w", s.Code, b.Close, b.Date.Format(DateLayout), ErrMalformedInput)
		}
		if i > 0 && b.Date.Equal(s.Bars[i-1].Date) {
			return fmt.Errorf("%s: duplicate date %s: %w", s.Code, b.Date.Format(DateLayout), ErrMalformedInput)
		}

		if !b.HasPercentChange {
			if i == 0 {
				b.PercentChange = 0
			} else {
				prev := s.Bars[i-1].Close
				b.PercentChange = (b.Close - prev) / prev * 100
			}
			b.HasPercentChange = true
		}
	}

	return nil
}

// Len returns the number of bars
func (s *BarSeries) Len() int {
	return len(s.Bars)
}

// Latest returns the most recent bar
func (s *BarSeries) Latest() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// LatestPrice is the last close of an instrument, used to refresh open positions
type LatestPrice struct {
	Code  string    `json:"code"`
	Name  string    `json:"name"`
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
