package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dipscan/internal/backtest"
	"github.com/wonny/dipscan/internal/contracts"
)

var reportDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte(utf8BOM)), "report must start with a BOM")

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   string
	}{
		{1.005, 2, "1.01"},
		{-2.345, 2, "-2.35"},
		{4.1254, 3, "4.125"},
		{10, 2, "10.00"},
		{0, 3, "0.000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Round(tt.v, tt.places))
		})
	}
	assert.Equal(t, "", RoundNull(contracts.Undefined, 2))
}

func sampleSignals() []*contracts.SignalResult {
	return []*contracts.SignalResult{
		{
			Code: "510300", Name: "沪深300ETF", Date: reportDay, Score: 90,
			Category: contracts.CategoryStrongBuy, Advice: "buy", Price: 3.8765,
			StopLoss: contracts.Float(3.7),
			Snapshot: contracts.Snapshot{
				Low: 3.7, MA5: contracts.Float(3.95), RSI14: contracts.Float(28.456),
				DeclineStreak: 4, CumulativeDecline: -6.789,
			},
		},
		{Code: "512880", Name: "证券ETF", Date: reportDay, Score: 30, Category: contracts.CategoryHold, Price: 1},
		{Code: "159915", Name: "创业板ETF", Date: reportDay, Score: 0, Category: contracts.CategoryOverboughtWarning, Price: 2.5},
	}
}

func TestSaveDecisions(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 1, 16, 5, 9, 0, time.UTC)

	paths, err := SaveDecisions(filepath.Join(dir, "out"), filepath.Join(dir, "archive"), sampleSignals(), at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive", "2024", "03", "decision_20240301_160509.csv"), paths.Archive)

	rows := readCSV(t, paths.Report)
	require.Len(t, rows, 3, "header + actionable + notable")
	assert.Equal(t, DecisionHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "510300", first[0])
	assert.Equal(t, "strong-buy", first[2])
	assert.Equal(t, "3.877", first[5])
	assert.Equal(t, "3.700", first[6])
	assert.Equal(t, "28.46", first[10])
	assert.Equal(t, "", first[11], "undefined K is an empty cell")
	assert.Equal(t, "4", first[17])
	assert.Equal(t, "-6.79", first[18])
	assert.Equal(t, "2024-03-01", first[19])
	assert.Equal(t, "159915", rows[2][0])

	archived := readCSV(t, paths.Archive)
	assert.Equal(t, rows, archived)
}

func TestSaveDecisionsEmptyWritesHeader(t *testing.T) {
	dir := t.TempDir()
	paths, err := SaveDecisions(dir, filepath.Join(dir, "archive"), nil, reportDay)
	require.NoError(t, err)

	rows := readCSV(t, paths.Report)
	assert.Equal(t, [][]string{DecisionHeader}, rows)
}

func TestSaveDecisionsSameSecondKeepsEveryArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")
	at := time.Date(2024, 3, 1, 16, 5, 9, 0, time.UTC)

	first := sampleSignals()[:1]
	second := sampleSignals()

	p1, err := SaveDecisions(dir, archive, first, at)
	require.NoError(t, err)
	p2, err := SaveDecisions(dir, archive, second, at)
	require.NoError(t, err)
	p3, err := SaveDecisions(dir, archive, second, at)
	require.NoError(t, err)

	monthDir := filepath.Join(archive, "2024", "03")
	assert.Equal(t, ArchivePath(archive, at), p1.Archive)
	assert.Equal(t, filepath.Join(monthDir, "decision_20240301_160509_1.csv"), p2.Archive)
	assert.Equal(t, filepath.Join(monthDir, "decision_20240301_160509_2.csv"), p3.Archive)

	assert.Len(t, readCSV(t, p1.Archive), 2, "first archive is not overwritten")
	assert.Len(t, readCSV(t, p2.Archive), 3)

	entries, err := os.ReadDir(monthDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")

	tr := NewTracker(archive, &memSource{}, []int{3}, 1, zerolog.Nop())
	got, err := tr.Archives()
	require.NoError(t, err)
	assert.Equal(t, []string{p1.Archive, p2.Archive, p3.Archive}, got)
}

func TestSaveBacktest(t *testing.T) {
	dir := t.TempDir()
	res := &backtest.Result{
		Horizons: []int{3, 5},
		Trades: []backtest.Trade{{
			Code: "510300", Date: reportDay, Score: 90, Category: contracts.CategoryStrongBuy, EntryPrice: 4,
			Returns: []backtest.HorizonReturn{{Horizon: 3, ReturnPct: -5, StopHit: true}, {Horizon: 5, ReturnPct: 2.345}},
		}},
	}
	res.Summary = backtest.Summarize(res.Trades, res.Horizons)
	res.ByCategory = backtest.SummarizeByCategory(res.Trades, res.Horizons)

	require.NoError(t, SaveBacktest(dir, res))

	detail := readCSV(t, filepath.Join(dir, BacktestDetailFile))
	require.Len(t, detail, 2)
	assert.Equal(t, []string{"code", "name", "date", "score", "category", "entry_price", "volume_ratio",
		"return_3d", "stop_hit_3d", "return_5d", "stop_hit_5d"}, detail[0])
	assert.Equal(t, []string{"-5.00", "true", "2.35", "false"}, detail[1][7:])

	summary := readCSV(t, filepath.Join(dir, BacktestSummaryFile))
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"all", "3", "1", "0", "1", "0.00", "-5.00"}, summary[1])
	assert.Equal(t, "strong-buy", summary[3][0])
}

func TestStreaks(t *testing.T) {
	streaks := []Streak{
		{Code: "B", Days: 2, CumulativeDecline: -3, Date: reportDay},
		{Code: "A", Days: 5, CumulativeDecline: -4, Date: reportDay},
		{Code: "C", Days: 2, CumulativeDecline: -5, Date: reportDay},
	}
	SortStreaks(streaks)

	var buf bytes.Buffer
	require.NoError(t, WriteStreaks(&buf, streaks))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, StreaksHeader, rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "C", rows[2][0])
	assert.Equal(t, "B", rows[3][0])
	assert.Equal(t, "-5.00", rows[2][3])
}

func TestWritePositions(t *testing.T) {
	exit := reportDay.AddDate(0, 0, 3)
	var buf bytes.Buffer
	err := WritePositions(&buf, []*contracts.Position{{
		Code: "510300", Status: contracts.StatusStoppedOut, OriginCategory: contracts.CategoryWatch,
		EntryDate: reportDay, EntryPrice: 10, StopLossPrice: 9, CurrentPrice: 8.8,
		CurrentReturnPct: -12, HoldingDays: 3, ExitDate: &exit,
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "510300,,stopped-out,watch,2024-03-01,10.000,9.000,8.800,-12.00,3,2024-03-04")
}

// memSource serves fixed series by code
type memSource struct {
	series map[string]*contracts.BarSeries
}

func (m *memSource) List(ctx context.Context) ([]contracts.SourceFile, error) {
	var out []contracts.SourceFile
	for code := range m.series {
		out = append(out, contracts.SourceFile{Code: code, Path: code + ".csv"})
	}
	return out, nil
}

func (m *memSource) Load(ctx context.Context, f contracts.SourceFile) (*contracts.BarSeries, error) {
	return m.series[f.Code], nil
}

func risingSeries(code string, start time.Time, closes ...float64) *contracts.BarSeries {
	s := &contracts.BarSeries{Code: code}
	for i, c := range closes {
		s.Bars = append(s.Bars, contracts.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100})
	}
	return s
}

func TestTrackerInsufficientHistory(t *testing.T) {
	dir := t.TempDir()
	_, err := SaveDecisions(dir, filepath.Join(dir, "archive"), sampleSignals(), reportDay)
	require.NoError(t, err)

	tr := NewTracker(filepath.Join(dir, "archive"), &memSource{}, []int{3}, 2, zerolog.Nop())
	perf, err := tr.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "insufficient history: need at least 2 archived reports, found 1", perf.Message)

	path, err := SavePerformance(dir, perf)
	require.NoError(t, err)
	rows := readCSV(t, path)
	assert.Equal(t, [][]string{{"message"}, {perf.Message}}, rows)
}

func TestTrackerMissingArchiveDir(t *testing.T) {
	tr := NewTracker(filepath.Join(t.TempDir(), "none"), &memSource{}, []int{3}, 1, zerolog.Nop())
	perf, err := tr.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, perf.Archives)
	assert.True(t, strings.HasSuffix(perf.Message, "found 0"))
}

func TestTrackerEvaluate(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "archive")

	day2 := reportDay.AddDate(0, 0, 1)
	first := []*contracts.SignalResult{
		{Code: "510300", Date: reportDay, Score: 90, Category: contracts.CategoryStrongBuy, Price: 10},
	}
	second := []*contracts.SignalResult{
		{Code: "510300", Date: reportDay, Score: 90, Category: contracts.CategoryStrongBuy, Price: 10},
		{Code: "159915", Date: day2, Score: 70, Category: contracts.CategoryWatch, Price: 2},
	}
	_, err := SaveDecisions(dir, archive, first, reportDay.Add(16*time.Hour))
	require.NoError(t, err)
	_, err = SaveDecisions(dir, archive, second, day2.Add(16*time.Hour))
	require.NoError(t, err)

	src := &memSource{series: map[string]*contracts.BarSeries{
		"510300": risingSeries("510300", reportDay, 10, 10.2, 10.4, 10.6, 10.8),
		"159915": risingSeries("159915", reportDay, 2.1, 2, 1.9, 1.8, 1.7),
	}}

	tr := NewTracker(archive, src, []int{3, 10}, 2, zerolog.Nop())
	perf, err := tr.Evaluate(context.Background())
	require.NoError(t, err)

	assert.Empty(t, perf.Message)
	assert.Equal(t, 2, perf.Archives)
	assert.Equal(t, 2, perf.Evaluated, "duplicate signal across archives counts once")
	require.Len(t, perf.Rows, 2, "10-day horizon has not matured")

	buy := perf.Rows[0]
	assert.Equal(t, contracts.CategoryStrongBuy, buy.Category)
	assert.Equal(t, 3, buy.Horizon)
	assert.Equal(t, 1, buy.Signals)
	assert.InDelta(t, 6, buy.MeanReturnPct.Value, 1e-9)
	assert.InDelta(t, 100, buy.WinRatePct.Value, 1e-9)

	watch := perf.Rows[1]
	assert.Equal(t, contracts.CategoryWatch, watch.Category)
	assert.InDelta(t, -15, watch.MeanReturnPct.Value, 1e-9)
	assert.InDelta(t, 0, watch.WinRatePct.Value, 1e-9)

	path, err := SavePerformance(dir, perf)
	require.NoError(t, err)
	rows := readCSV(t, path)
	assert.Equal(t, PerformanceHeader, rows[0])
	assert.Equal(t, []string{"strong-buy", "3", "1", "1", "100.00", "6.00"}, rows[1])
}

func TestReadBacktestSummary(t *testing.T) {
	dir := t.TempDir()
	res := &backtest.Result{Horizons: []int{3}}
	res.Summary = backtest.Summarize(nil, res.Horizons)
	require.NoError(t, SaveBacktest(dir, res))

	rows, err := ReadBacktestSummary(filepath.Join(dir, BacktestSummaryFile))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, SummaryRow{Scope: ScopeAll, Horizon: 3}, rows[0])

	_, err = ReadBacktestSummary(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
