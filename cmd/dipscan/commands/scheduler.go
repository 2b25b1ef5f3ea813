package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/ledger"
	"github.com/wonny/dipscan/internal/scheduler"
	"github.com/wonny/dipscan/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 즉시 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/dipscan scheduler start
  go run ./cmd/dipscan scheduler list
  go run ./cmd/dipscan scheduler run daily_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- daily_scan: SCAN_SCHEDULE (기본 평일 오후 4시)
- performance_summary: PERFORMANCE_SCHEDULE (기본 평일 오후 4시 30분)

--disable로 특정 작업을 제외할 수 있습니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.

Example:
  go run ./cmd/dipscan scheduler start --disable performance_summary`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerDisable []string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().StringSliceVar(&schedulerDisable, "disable", nil, "스케줄에서 제외할 작업 (쉼표 구분)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	PrintHeader("Dipscan Scheduler")

	sched, repo, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer repo.Close()

	if err := disableJobs(sched, schedulerDisable); err != nil {
		return err
	}
	sched.Start()

	PrintSuccess("Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for name, st := range sched.Stats() {
		next := "-"
		if st.NextRun != nil {
			next = st.NextRun.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  - %s (%s) next: %s\n", name, st.Schedule, next)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

// disableJobs unschedules the named jobs before start
func disableJobs(sched *scheduler.Scheduler, names []string) error {
	for _, name := range names {
		if err := sched.RemoveJob(name); err != nil {
			return fmt.Errorf("disable job: %w", err)
		}
	}
	if len(sched.Jobs()) == 0 {
		return fmt.Errorf("every job is disabled")
	}
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, repo, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer repo.Close()

	stats := sched.Stats()
	fmt.Println("Registered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s (%s)\n", name, stats[name].Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, repo, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer repo.Close()

	fmt.Printf("Running job: %s\n", jobName)
	res, err := sched.RunJob(ctx, jobName)
	if err != nil {
		if res.Attempts > 0 {
			PrintError(fmt.Sprintf("Job %s failed after %d attempt(s)", jobName, res.Attempts))
		}
		return fmt.Errorf("run job: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Job %s completed in %s", jobName, res.Duration))
	return nil
}

func initScheduler(ctx context.Context) (*scheduler.Scheduler, ledger.Repository, error) {
	a, err := setup()
	if err != nil {
		return nil, nil, err
	}

	repo, err := a.openLedger(ctx)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(a.log, scheduler.WithRetry(a.cfg.JobMaxRetries, a.cfg.JobRetryDelay))

	if err := sched.AddJob(jobs.NewDailyScanJob(a.orchestrator(repo), a.cfg.ScanSchedule, a.log)); err != nil {
		repo.Close()
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewPerformanceJob(a.tracker(), a.cfg.OutputDir, a.cfg.PerformanceSchedule, a.log)); err != nil {
		repo.Close()
		return nil, nil, err
	}

	return sched, repo, nil
}
