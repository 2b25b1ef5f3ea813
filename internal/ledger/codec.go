package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wonny/dipscan/internal/contracts"
)

// Columns is the persisted position schema shared by every backend
var Columns = []string{
	"id", "code", "name", "entry_date", "entry_price", "stop_loss_price",
	"current_price", "current_return_pct", "holding_days", "origin_category",
	"status", "exit_date", "updated_at",
}

func formatDate(t time.Time) string {
	return t.Format(contracts.DateLayout)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// encodeRecord flattens a position into Columns order
func encodeRecord(p *contracts.Position) []string {
	exit := ""
	if p.ExitDate != nil {
		exit = formatDate(*p.ExitDate)
	}
	return []string{
		p.ID.String(),
		p.Code,
		p.Name,
		formatDate(p.EntryDate),
		formatFloat(p.EntryPrice),
		formatFloat(p.StopLossPrice),
		formatFloat(p.CurrentPrice),
		formatFloat(p.CurrentReturnPct),
		strconv.Itoa(p.HoldingDays),
		string(p.OriginCategory),
		string(p.Status),
		exit,
		p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// decodeRecord is the inverse of encodeRecord
func decodeRecord(rec []string) (*contracts.Position, error) {
	if len(rec) != len(Columns) {
		return nil, fmt.Errorf("expected %d fields, got %d: %w", len(Columns), len(rec), contracts.ErrMalformedInput)
	}

	var (
		p   contracts.Position
		err error
	)
	if p.ID, err = uuid.Parse(rec[0]); err != nil {
		return nil, fmt.Errorf("id %q: %w", rec[0], contracts.ErrMalformedInput)
	}
	p.Code = rec[1]
	p.Name = rec[2]
	if p.EntryDate, err = time.Parse(contracts.DateLayout, rec[3]); err != nil {
		return nil, fmt.Errorf("entry_date %q: %w", rec[3], contracts.ErrMalformedInput)
	}

	floats := []*float64{&p.EntryPrice, &p.StopLossPrice, &p.CurrentPrice, &p.CurrentReturnPct}
	for i, dst := range floats {
		col := 4 + i
		if *dst, err = strconv.ParseFloat(rec[col], 64); err != nil {
			return nil, fmt.Errorf("%s %q: %w", Columns[col], rec[col], contracts.ErrMalformedInput)
		}
	}
	if p.HoldingDays, err = strconv.Atoi(rec[8]); err != nil {
		return nil, fmt.Errorf("holding_days %q: %w", rec[8], contracts.ErrMalformedInput)
	}

	cat, err := contracts.ParseCategory(rec[9])
	if err != nil {
		return nil, fmt.Errorf("origin_category: %v: %w", err, contracts.ErrMalformedInput)
	}
	p.OriginCategory = cat

	p.Status = contracts.PositionStatus(rec[10])
	if p.Status != contracts.StatusOpen && !p.Status.IsClosed() {
		return nil, fmt.Errorf("status %q: %w", rec[10], contracts.ErrMalformedInput)
	}

	if rec[11] != "" {
		exit, err := time.Parse(contracts.DateLayout, rec[11])
		if err != nil {
			return nil, fmt.Errorf("exit_date %q: %w", rec[11], contracts.ErrMalformedInput)
		}
		p.ExitDate = &exit
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, rec[12]); err != nil {
		return nil, fmt.Errorf("updated_at %q: %w", rec[12], contracts.ErrMalformedInput)
	}

	return &p, nil
}
