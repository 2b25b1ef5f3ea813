package contracts

import (
	"fmt"
	"time"
)

// Category is the decision bucket of a scored instrument.
// Declaration order is the reporting rank.
type Category string

const (
	CategoryStrongBuy         Category = "strong-buy"
	CategoryWatch             Category = "watch"
	CategoryHold              Category = "hold"
	CategoryRiskAvoid         Category = "risk-avoid"
	CategoryOverboughtWarning Category = "overbought-warning"
)

var categoryRank = map[Category]int{
	CategoryStrongBuy:         0,
	CategoryWatch:             1,
	CategoryHold:              2,
	CategoryRiskAvoid:         3,
	CategoryOverboughtWarning: 4,
}

// Categories returns all categories in rank order
func Categories() []Category {
	return []Category{
		CategoryStrongBuy,
		CategoryWatch,
		CategoryHold,
		CategoryRiskAvoid,
		CategoryOverboughtWarning,
	}
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryRank[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Rank orders categories for sorting; unknown categories sort last
func (c Category) Rank() int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return len(categoryRank)
}

// IsActionable reports whether the category suggests opening a position
func (c Category) IsActionable() bool {
	return c == CategoryStrongBuy || c == CategoryWatch
}

// IsNotable reports whether the category is a warning worth reporting
func (c Category) IsNotable() bool {
	return c == CategoryRiskAvoid || c == CategoryOverboughtWarning
}

// UnknownName is shown when a code is missing from the name list
const UnknownName = "unknown name"

// SignalResult is the scored decision for one instrument on one day
// ⭐ SSOT: S2 → Ledger/Report 시그널 전달
type SignalResult struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Score    int       `json:"score"`
	Category Category  `json:"category"`
	Advice   string    `json:"advice"`
	Price    float64   `json:"price"`
	StopLoss NullFloat `json:"stop_loss"`
	Snapshot Snapshot  `json:"snapshot"`
}

// Reportable reports whether the signal belongs in the decision report
func (r *SignalResult) Reportable() bool {
	return r.Category.IsActionable() || r.Category.IsNotable()
}
