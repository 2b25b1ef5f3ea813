package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/fanout"
)

// PerformanceFile is the archive-based performance summary inside OUTPUT_DIR
const PerformanceFile = "performance_summary.csv"

// MinArchives is the number of archived reports needed for a summary
const MinArchives = 2

// =============================================================================
// Performance Tracker
// =============================================================================

// Tracker measures how archived decisions played out against later bars
// ⭐ SSOT: 아카이브 기반 사후 성과 추적은 여기서만
type Tracker struct {
	archiveDir string
	source     contracts.BarSource
	horizons   []int
	workers    int
	log        zerolog.Logger
}

// ArchivedSignal is one row read back from an archived decision report
type ArchivedSignal struct {
	Code     string
	Category contracts.Category
	Price    float64
	Date     time.Time
}

// PerformanceRow aggregates one category over one horizon
type PerformanceRow struct {
	Category      contracts.Category  `json:"category"`
	Horizon       int                 `json:"horizon"`
	Signals       int                 `json:"signals"`
	Wins          int                 `json:"wins"`
	WinRatePct    contracts.NullFloat `json:"win_rate_pct"`
	MeanReturnPct contracts.NullFloat `json:"mean_return_pct"`
}

// Performance is the tracker output. Message is set instead of Rows when
// there is not enough archived history.
type Performance struct {
	Archives  int              `json:"archives"`
	Evaluated int              `json:"evaluated"` // distinct archived signals
	Message   string           `json:"message,omitempty"`
	Rows      []PerformanceRow `json:"rows"`
}

// NewTracker creates a tracker over archiveDir
func NewTracker(archiveDir string, source contracts.BarSource, horizons []int, workers int, log zerolog.Logger) *Tracker {
	if workers < 1 {
		workers = 1
	}
	return &Tracker{
		archiveDir: archiveDir,
		source:     source,
		horizons:   horizons,
		workers:    workers,
		log:        log.With().Str("component", "report.performance").Logger(),
	}
}

// Archives lists archived decision reports, oldest first
func (t *Tracker) Archives() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(t.archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if !d.IsDir() && strings.HasPrefix(name, "decision_") && strings.HasSuffix(name, ".csv") {
			paths = append(paths, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walk archive: %w", err)
	}

	// YYYY/MM/decision_YYYYMMDD_HHMMSS[_N] 이므로 경로 정렬 = 시간 정렬
	sort.Strings(paths)
	return paths, nil
}

// Evaluate reads every archive and measures forward returns per category
// and horizon. Horizons that have not matured yet are left out.
func (t *Tracker) Evaluate(ctx context.Context) (*Performance, error) {
	archives, err := t.Archives()
	if err != nil {
		return nil, err
	}

	perf := &Performance{Archives: len(archives)}
	if len(archives) < MinArchives {
		perf.Message = fmt.Sprintf("insufficient history: need at least %d archived reports, found %d", MinArchives, len(archives))
		t.log.Warn().Int("archives", len(archives)).Msg(perf.Message)
		return perf, nil
	}

	signals, err := t.readAll(archives)
	if err != nil {
		return nil, err
	}
	perf.Evaluated = len(signals)

	bars, err := t.loadBars(ctx, signals)
	if err != nil {
		return nil, err
	}

	type key struct {
		cat contracts.Category
		h   int
	}
	acc := make(map[key]*PerformanceRow)
	sums := make(map[key]float64)

	for _, s := range signals {
		series, ok := bars[s.Code]
		if !ok {
			continue
		}
		for _, h := range t.horizons {
			ret, ok := ForwardReturn(series, s, h)
			if !ok {
				continue
			}
			k := key{s.Category, h}
			row, exists := acc[k]
			if !exists {
				row = &PerformanceRow{Category: s.Category, Horizon: h}
				acc[k] = row
			}
			row.Signals++
			sums[k] += ret
			if ret > 0 {
				row.Wins++
			}
		}
	}

	for _, c := range contracts.Categories() {
		for _, h := range t.horizons {
			row, ok := acc[key{c, h}]
			if !ok {
				continue
			}
			n := float64(row.Signals)
			row.WinRatePct = contracts.Float(float64(row.Wins) / n * 100)
			row.MeanReturnPct = contracts.Float(sums[key{c, h}] / n)
			perf.Rows = append(perf.Rows, *row)
		}
	}

	t.log.Info().
		Int("archives", perf.Archives).
		Int("signals", perf.Evaluated).
		Int("rows", len(perf.Rows)).
		Msg("performance evaluated")

	return perf, nil
}

// ForwardReturn measures close h bars after the signal date against the
// reported price. ok is false when the signal date is not in the series or
// the horizon has not matured.
func ForwardReturn(series *contracts.BarSeries, s ArchivedSignal, h int) (float64, bool) {
	if s.Price <= 0 {
		return 0, false
	}
	i := sort.Search(len(series.Bars), func(i int) bool {
		return !series.Bars[i].Date.Before(s.Date)
	})
	if i >= len(series.Bars) || !series.Bars[i].Date.Equal(s.Date) {
		return 0, false
	}
	if i+h >= len(series.Bars) {
		return 0, false
	}
	return (series.Bars[i+h].Close - s.Price) / s.Price * 100, true
}

// readAll merges archives; a signal repeated across same-day runs counts once
func (t *Tracker) readAll(archives []string) ([]ArchivedSignal, error) {
	seen := make(map[string]bool)
	var out []ArchivedSignal
	for _, path := range archives {
		signals, err := ReadArchive(path)
		if err != nil {
			t.log.Warn().Err(err).Str("archive", path).Msg("archive skipped")
			continue
		}
		for _, s := range signals {
			k := s.Code + "|" + s.Date.Format(contracts.DateLayout) + "|" + string(s.Category)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *Tracker) loadBars(ctx context.Context, signals []ArchivedSignal) (map[string]*contracts.BarSeries, error) {
	files, err := t.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	wanted := make(map[string]bool)
	for _, s := range signals {
		wanted[s.Code] = true
	}
	var todo []contracts.SourceFile
	for _, f := range files {
		if wanted[f.Code] {
			todo = append(todo, f)
		}
	}

	loaded, err := fanout.Map(ctx, len(todo), t.workers,
		func(ctx context.Context, i int) *contracts.BarSeries {
			series, err := t.source.Load(ctx, todo[i])
			if err != nil {
				t.log.Debug().Err(err).Str("code", todo[i].Code).Msg("bars unavailable")
				return nil
			}
			return series
		},
		func(i int, err error) *contracts.BarSeries { return nil },
	)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*contracts.BarSeries, len(todo))
	for i, series := range loaded {
		if series != nil {
			out[todo[i].Code] = series
		}
	}
	return out, nil
}

// ReadArchive parses an archived decision report by header name
func ReadArchive(path string) ([]ArchivedSignal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseArchive(f)
}

func parseArchive(r io.Reader) ([]ArchivedSignal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimPrefix(strings.TrimSpace(h), utf8BOM)] = i
	}
	for _, name := range []string{"code", "category", "price", "date"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", name, contracts.ErrMalformedInput)
		}
	}

	var out []ArchivedSignal
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		field := func(name string) string {
			if i := col[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		cat, err := contracts.ParseCategory(field("category"))
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(field("price"), 64)
		if err != nil {
			continue
		}
		date, err := time.Parse(contracts.DateLayout, field("date"))
		if err != nil {
			continue
		}
		out = append(out, ArchivedSignal{Code: field("code"), Category: cat, Price: price, Date: date})
	}
	return out, nil
}

// PerformanceHeader is the performance summary column order
var PerformanceHeader = []string{"category", "horizon", "signals", "wins", "win_rate_pct", "mean_return_pct"}

// SavePerformance writes the summary; with a Message it writes that
// message as the only content
func SavePerformance(dir string, perf *Performance) (string, error) {
	path := filepath.Join(dir, PerformanceFile)
	if perf.Message != "" {
		return path, writeFile(path, []string{"message"}, [][]string{{perf.Message}})
	}

	rows := make([][]string, 0, len(perf.Rows))
	for _, r := range perf.Rows {
		rows = append(rows, []string{
			string(r.Category),
			strconv.Itoa(r.Horizon),
			strconv.Itoa(r.Signals),
			strconv.Itoa(r.Wins),
			RoundNull(r.WinRatePct, ValuePlaces),
			RoundNull(r.MeanReturnPct, ValuePlaces),
		})
	}
	return path, writeFile(path, PerformanceHeader, rows)
}
