package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/dipscan/internal/report"
	"github.com/wonny/dipscan/pkg/logger"
)

// Evaluator produces an archive-based performance summary (report.Tracker)
type Evaluator interface {
	Evaluate(ctx context.Context) (*report.Performance, error)
}

// PerformanceJob refreshes performance_summary.csv
type PerformanceJob struct {
	tracker   Evaluator
	outputDir string
	schedule  string
	logger    *logger.Logger
}

// NewPerformanceJob creates a new performance summary job
func NewPerformanceJob(tracker Evaluator, outputDir, schedule string, log *logger.Logger) *PerformanceJob {
	return &PerformanceJob{
		tracker:   tracker,
		outputDir: outputDir,
		schedule:  schedule,
		logger:    log.WithField("job", "performance_summary"),
	}
}

// Name returns the job name
func (j *PerformanceJob) Name() string {
	return "performance_summary"
}

// Schedule returns the configured cron expression
func (j *PerformanceJob) Schedule() string {
	return j.schedule
}

// Run evaluates archives and writes the summary. Too little history is
// not a failure.
func (j *PerformanceJob) Run(ctx context.Context) error {
	perf, err := j.tracker.Evaluate(ctx)
	if err != nil {
		return fmt.Errorf("evaluate performance: %w", err)
	}

	path, err := report.SavePerformance(j.outputDir, perf)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"path":     path,
		"archives": perf.Archives,
		"rows":     len(perf.Rows),
	}).Info("Performance summary written")
	return nil
}
