package s0_data

import (
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/wonny/dipscan/internal/contracts"
)

// BarRecord is the on-disk parquet layout of one daily bar
type BarRecord struct {
	Date         int64    `parquet:"date,timestamp(millisecond)"` // Unix ms, UTC midnight
	Open         float64  `parquet:"open"`
	High         float64  `parquet:"high"`
	Low          float64  `parquet:"low"`
	Close        float64  `parquet:"close"`
	Volume       float64  `parquet:"volume"`
	Turnover     float64  `parquet:"turnover"`
	PctChange    *float64 `parquet:"pct_change,optional"`
	TurnoverRate float64  `parquet:"turnover_rate"`
}

// ReadParquetFile reads one instrument's bars from a parquet file
func ReadParquetFile(path string) ([]contracts.Bar, error) {
	rows, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %v: %w", path, err, contracts.ErrMalformedInput)
	}

	bars := make([]contracts.Bar, 0, len(rows))
	for _, r := range rows {
		bar := contracts.Bar{
			Date:         time.UnixMilli(r.Date).UTC(),
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			Turnover:     r.Turnover,
			TurnoverRate: r.TurnoverRate,
		}
		if r.PctChange != nil {
			bar.PercentChange = *r.PctChange
			bar.HasPercentChange = true
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// WriteParquetFile writes bars in BarRecord layout
func WriteParquetFile(path string, bars []contracts.Bar) error {
	records := make([]BarRecord, len(bars))
	for i, b := range bars {
		records[i] = BarRecord{
			Date:         b.Date.UnixMilli(),
			Open:         b.Open,
			High:         b.High,
			Low:          b.Low,
			Close:        b.Close,
			Volume:       b.Volume,
			Turnover:     b.Turnover,
			TurnoverRate: b.TurnoverRate,
		}
		if b.HasPercentChange {
			pct := b.PercentChange
			records[i].PctChange = &pct
		}
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
