package s0_data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/dipscan/internal/contracts"
)

// Canonical column keys
const (
	colDate         = "date"
	colOpen         = "open"
	colHigh         = "high"
	colLow          = "low"
	colClose        = "close"
	colVolume       = "volume"
	colTurnover     = "turnover"
	colPctChange    = "pct_change"
	colTurnoverRate = "turnover_rate"
)

// 원본 데이터는 중국어 헤더, 가공 데이터는 영문 헤더
var columnAliases = map[string]string{
	"日期": colDate, "date": colDate, "trade_date": colDate,
	"开盘": colOpen, "open": colOpen,
	"最高": colHigh, "high": colHigh,
	"最低": colLow, "low": colLow,
	"收盘": colClose, "close": colClose,
	"成交量": colVolume, "volume": colVolume, "vol": colVolume,
	"成交额": colTurnover, "turnover": colTurnover, "amount": colTurnover,
	"涨跌幅": colPctChange, "pct_change": colPctChange, "pct_chg": colPctChange, "change_pct": colPctChange,
	"换手率": colTurnoverRate, "turnover_rate": colTurnoverRate,
}

var requiredColumns = []string{colDate, colOpen, colHigh, colLow, colClose, colVolume}

var dateLayouts = []string{
	contracts.DateLayout,
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
	"2006/1/2",
}

// ReadCSVFile reads one instrument's bars from a CSV file
func ReadCSVFile(path string) ([]contracts.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadCSV parses bars. Headers are trimmed and matched against the
// Chinese and English aliases; rows keep file order.
func ReadCSV(r io.Reader) ([]contracts.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", contracts.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %v: %w", err, contracts.ErrMalformedInput)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if key, ok := columnAliases[strings.ToLower(h)]; ok {
			if _, dup := idx[key]; !dup {
				idx[key] = i
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", col, contracts.ErrMalformedInput)
		}
	}

	var bars []contracts.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, contracts.ErrMalformedInput)
		}
		if isBlank(rec) {
			continue
		}

		bar, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func parseRow(rec []string, idx map[string]int) (contracts.Bar, error) {
	var bar contracts.Bar

	date, err := parseDate(cell(rec, idx, colDate))
	if err != nil {
		return bar, err
	}
	bar.Date = date

	required := []struct {
		col string
		dst *float64
	}{
		{colOpen, &bar.Open},
		{colHigh, &bar.High},
		{colLow, &bar.Low},
		{colClose, &bar.Close},
		{colVolume, &bar.Volume},
	}
	for _, r := range required {
		v, ok, err := parseNumber(cell(rec, idx, r.col))
		if err != nil {
			return bar, fmt.Errorf("%s: %w", r.col, err)
		}
		if !ok {
			return bar, fmt.Errorf("%s: empty value: %w", r.col, contracts.ErrMalformedInput)
		}
		*r.dst = v
	}

	if v, ok, err := parseNumber(cell(rec, idx, colTurnover)); err != nil {
		return bar, fmt.Errorf("%s: %w", colTurnover, err)
	} else if ok {
		bar.Turnover = v
	}

	if v, ok, err := parseNumber(cell(rec, idx, colTurnoverRate)); err != nil {
		return bar, fmt.Errorf("%s: %w", colTurnoverRate, err)
	} else if ok {
		bar.TurnoverRate = v
	}

	// 涨跌幅 없으면 Validate에서 종가로 계산
	if v, ok, err := parseNumber(cell(rec, idx, colPctChange)); err != nil {
		return bar, fmt.Errorf("%s: %w", colPctChange, err)
	} else if ok {
		bar.PercentChange = v
		bar.HasPercentChange = true
	}

	return bar, nil
}

func cell(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: %w", s, contracts.ErrMalformedInput)
}

// parseNumber returns ok=false for an empty cell
func parseNumber(s string) (float64, bool, error) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, ",", ""), "%")
	if s == "" || s == "-" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("number %q: %w", s, contracts.ErrMalformedInput)
	}
	return v, true, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
