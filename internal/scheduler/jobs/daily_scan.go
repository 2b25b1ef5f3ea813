package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/dipscan/internal/brain"
	"github.com/wonny/dipscan/pkg/logger"
)

// Runner executes one scan (brain.Orchestrator)
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// DailyScanJob runs the full scan after market close
type DailyScanJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewDailyScanJob creates a new daily scan job
func NewDailyScanJob(runner Runner, schedule string, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		runner:   runner,
		schedule: schedule,
		logger:   log.WithField("job", "daily_scan"),
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the configured cron expression
func (j *DailyScanJob) Schedule() string {
	return j.schedule
}

// Run executes the scan; a ledger failure fails the job so it is retried
func (j *DailyScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled scan")

	res, err := j.runner.Run(ctx, brain.RunConfig{})
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	summary := res.Summary()
	j.logger.WithFields(map[string]interface{}{
		"run_id":     summary.RunID,
		"scored":     summary.Scored,
		"actionable": summary.Actionable,
		"notable":    summary.Notable,
	}).Info("Scheduled scan completed")
	return nil
}
