package report

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/wonny/dipscan/internal/backtest"
	"github.com/wonny/dipscan/internal/contracts"
)

// Backtest export file names inside OUTPUT_DIR
const (
	BacktestDetailFile  = "backtest_detail.csv"
	BacktestSummaryFile = "backtest_summary.csv"
)

// ScopeAll marks summary rows that aggregate every category
const ScopeAll = "all"

// BacktestDetailHeader has one return/stop column pair per horizon
func BacktestDetailHeader(horizons []int) []string {
	header := []string{"code", "name", "date", "score", "category", "entry_price", "volume_ratio"}
	for _, h := range horizons {
		header = append(header, fmt.Sprintf("return_%dd", h), fmt.Sprintf("stop_hit_%dd", h))
	}
	return header
}

// BacktestDetailRows renders one row per trade
func BacktestDetailRows(res *backtest.Result) [][]string {
	rows := make([][]string, 0, len(res.Trades))
	for _, t := range res.Trades {
		row := []string{
			t.Code,
			t.Name,
			t.Date.Format(contracts.DateLayout),
			strconv.Itoa(t.Score),
			string(t.Category),
			Round(t.EntryPrice, PricePlaces),
			RoundNull(t.VolumeRatio, ValuePlaces),
		}
		for k := range res.Horizons {
			if k >= len(t.Returns) {
				row = append(row, "", "")
				continue
			}
			row = append(row, Round(t.Returns[k].ReturnPct, ValuePlaces), strconv.FormatBool(t.Returns[k].StopHit))
		}
		rows = append(rows, row)
	}
	return rows
}

// BacktestSummaryHeader is the summary column order
var BacktestSummaryHeader = []string{
	"scope", "horizon", "signals", "wins", "stop_hits", "win_rate_pct", "mean_return_pct",
}

// BacktestSummaryRows renders the overall rows first, then per category
func BacktestSummaryRows(res *backtest.Result) [][]string {
	rows := make([][]string, 0, len(res.Summary)+len(res.ByCategory))
	for _, s := range res.Summary {
		rows = append(rows, summaryRow(ScopeAll, s))
	}
	for _, c := range res.ByCategory {
		rows = append(rows, summaryRow(string(c.Category), c.HorizonStats))
	}
	return rows
}

func summaryRow(scope string, s backtest.HorizonStats) []string {
	return []string{
		scope,
		strconv.Itoa(s.Horizon),
		strconv.Itoa(s.Signals),
		strconv.Itoa(s.Wins),
		strconv.Itoa(s.StopHits),
		RoundNull(s.WinRatePct, ValuePlaces),
		RoundNull(s.MeanReturnPct, ValuePlaces),
	}
}

// SaveBacktest writes detail and summary exports into dir
func SaveBacktest(dir string, res *backtest.Result) error {
	if err := writeFile(filepath.Join(dir, BacktestDetailFile), BacktestDetailHeader(res.Horizons), BacktestDetailRows(res)); err != nil {
		return fmt.Errorf("backtest detail: %w", err)
	}
	if err := writeFile(filepath.Join(dir, BacktestSummaryFile), BacktestSummaryHeader, BacktestSummaryRows(res)); err != nil {
		return fmt.Errorf("backtest summary: %w", err)
	}
	return nil
}

// SummaryRow is one parsed row of backtest_summary.csv
type SummaryRow struct {
	Scope         string              `json:"scope"`
	Horizon       int                 `json:"horizon"`
	Signals       int                 `json:"signals"`
	Wins          int                 `json:"wins"`
	StopHits      int                 `json:"stop_hits"`
	WinRatePct    contracts.NullFloat `json:"win_rate_pct"`
	MeanReturnPct contracts.NullFloat `json:"mean_return_pct"`
}

// ReadBacktestSummary parses a summary written by SaveBacktest
func ReadBacktestSummary(path string) ([]SummaryRow, error) {
	records, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", filepath.Base(path), contracts.ErrMalformedInput)
	}

	rows := make([]SummaryRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(BacktestSummaryHeader) {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), i+2, contracts.ErrMalformedInput)
		}
		row := SummaryRow{Scope: rec[0]}
		ints := []*int{&row.Horizon, &row.Signals, &row.Wins, &row.StopHits}
		for k, dst := range ints {
			if *dst, err = strconv.Atoi(rec[1+k]); err != nil {
				return nil, fmt.Errorf("%s line %d: %v: %w", filepath.Base(path), i+2, err, contracts.ErrMalformedInput)
			}
		}
		row.WinRatePct = parseNull(rec[5])
		row.MeanReturnPct = parseNull(rec[6])
		rows = append(rows, row)
	}
	return rows, nil
}

func parseNull(s string) contracts.NullFloat {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return contracts.Undefined
	}
	return contracts.Float(v)
}
