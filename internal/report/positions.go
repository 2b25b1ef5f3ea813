package report

import (
	"io"
	"strconv"

	"github.com/wonny/dipscan/internal/contracts"
)

// PositionsHeader is the human-facing ledger view, not the storage schema
var PositionsHeader = []string{
	"code", "name", "status", "origin_category", "entry_date", "entry_price",
	"stop_loss_price", "current_price", "current_return_pct", "holding_days", "exit_date",
}

// PositionRows renders positions in the given order
func PositionRows(positions []*contracts.Position) [][]string {
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		exit := ""
		if p.ExitDate != nil {
			exit = p.ExitDate.Format(contracts.DateLayout)
		}
		rows = append(rows, []string{
			p.Code,
			p.Name,
			string(p.Status),
			string(p.OriginCategory),
			p.EntryDate.Format(contracts.DateLayout),
			Round(p.EntryPrice, PricePlaces),
			Round(p.StopLossPrice, PricePlaces),
			Round(p.CurrentPrice, PricePlaces),
			Round(p.CurrentReturnPct, ValuePlaces),
			strconv.Itoa(p.HoldingDays),
			exit,
		})
	}
	return rows
}

// WritePositions renders the ledger view to w
func WritePositions(w io.Writer, positions []*contracts.Position) error {
	return writeRows(w, PositionsHeader, PositionRows(positions))
}
