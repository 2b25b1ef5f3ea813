package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dipscan/internal/brain"
	"github.com/wonny/dipscan/internal/report"
	"github.com/wonny/dipscan/pkg/logger"
)

type stubRunner struct {
	err   error
	calls int
}

func (r *stubRunner) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	r.calls++
	if r.err != nil {
		return &brain.RunResult{Error: r.err.Error()}, r.err
	}
	return &brain.RunResult{RunID: "run-1", Success: true}, nil
}

func TestDailyScanJob(t *testing.T) {
	ok := &stubRunner{}
	job := NewDailyScanJob(ok, "0 0 16 * * 1-5", logger.Nop())
	assert.Equal(t, "daily_scan", job.Name())
	assert.Equal(t, "0 0 16 * * 1-5", job.Schedule())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, ok.calls)

	failing := &stubRunner{err: errors.New("ledger unavailable")}
	err := NewDailyScanJob(failing, "@daily", logger.Nop()).Run(context.Background())
	assert.ErrorContains(t, err, "ledger unavailable")
}

type stubEvaluator struct {
	perf *report.Performance
	err  error
}

func (e *stubEvaluator) Evaluate(ctx context.Context) (*report.Performance, error) {
	return e.perf, e.err
}

func TestPerformanceJob(t *testing.T) {
	dir := t.TempDir()
	perf := &report.Performance{Archives: 1, Message: "insufficient history: need at least 2 archived reports, found 1"}

	job := NewPerformanceJob(&stubEvaluator{perf: perf}, dir, "0 30 16 * * 1-5", logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, report.PerformanceFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), perf.Message)

	failing := NewPerformanceJob(&stubEvaluator{err: errors.New("walk failed")}, dir, "@daily", logger.Nop())
	assert.Error(t, failing.Run(context.Background()))
}
