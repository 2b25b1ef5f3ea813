package contracts

import (
	"time"

	"github.com/google/uuid"
)

// PositionStatus is the lifecycle state of a virtual position
type PositionStatus string

const (
	StatusOpen       PositionStatus = "open"
	StatusStoppedOut PositionStatus = "stopped-out"
	StatusTookProfit PositionStatus = "took-profit"
)

// IsClosed reports whether the status is terminal
func (s PositionStatus) IsClosed() bool {
	return s == StatusStoppedOut || s == StatusTookProfit
}

// Position is one virtual, fixed-size holding opened on a signal
// ⭐ SSOT: 포지션 원장은 ledger 패키지만 변경
type Position struct {
	ID               uuid.UUID      `json:"id"`
	Code             string         `json:"code"`
	Name             string         `json:"name"`
	EntryDate        time.Time      `json:"entry_date"`
	EntryPrice       float64        `json:"entry_price"`
	StopLossPrice    float64        `json:"stop_loss_price"`
	CurrentPrice     float64        `json:"current_price"`
	CurrentReturnPct float64        `json:"current_return_pct"`
	HoldingDays      int            `json:"holding_days"`
	OriginCategory   Category       `json:"origin_category"`
	Status           PositionStatus `json:"status"`
	ExitDate         *time.Time     `json:"exit_date,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IsOpen reports whether the position is still tracked
func (p *Position) IsOpen() bool {
	return p.Status == StatusOpen
}
