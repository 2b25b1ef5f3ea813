package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/brain"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/report"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "일일 스캔 실행",
	Long: `DATA_DIR의 모든 종목을 스캔합니다.

이 명령어는:
- 종목별 지표 계산 및 점수 산출 (병렬)
- decision_report.csv 작성 및 아카이브 보관
- 포지션 원장 갱신 (편입 → 손절/익절 갱신)

Example:
  go run ./cmd/dipscan scan
  go run ./cmd/dipscan scan --dry-run
  go run ./cmd/dipscan scan --json`,
	RunE: runScan,
}

var (
	scanDryRun bool
	scanJSON   bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "원장 갱신 생략")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "실행 결과를 JSON으로 출력")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	orch := a.orchestrator(repo)
	res, err := orch.Run(ctx, brain.RunConfig{DryRun: scanDryRun})
	if res == nil {
		return err
	}

	if scanJSON {
		if jerr := PrintJSON(res); jerr != nil {
			return jerr
		}
		return err
	}

	printRun(res)
	return err
}

func (a *app) orchestrator(repo contracts.LedgerRepository) *brain.Orchestrator {
	return brain.NewOrchestrator(a.source, a.strategy, repo, brain.Options{
		Workers:      a.cfg.Workers,
		OutputDir:    a.cfg.OutputDir,
		ArchiveDir:   a.cfg.ArchiveDir,
		StrategyHash: a.strategyHash,
	}, a.log)
}

func printRun(res *brain.RunResult) {
	summary := res.Summary()

	PrintHeader("Dipscan Daily Scan")
	PrintKeyValue("Run ID", res.RunID, 12)
	PrintKeyValue("Strategy", fmt.Sprintf("%s (%.12s)", res.StrategyID, res.StrategyHash), 12)
	PrintKeyValue("Instruments", res.Instruments, 12)
	PrintKeyValue("Scored", res.Scored, 12)
	PrintKeyValue("Actionable", summary.Actionable, 12)
	PrintKeyValue("Notable", summary.Notable, 12)

	if len(res.Skipped) > 0 {
		reasons := make([]string, 0, len(res.Skipped))
		for reason := range res.Skipped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			PrintKeyValue("Skipped", fmt.Sprintf("%s × %d", reason, res.Skipped[reason]), 12)
		}
	}
	PrintSeparator()

	widths := []int{8, 16, 20, 6, 10, 10}
	PrintTableHeader([]string{"CODE", "NAME", "CATEGORY", "SCORE", "PRICE", "STOP"}, widths)
	for _, s := range res.Signals {
		if !s.Reportable() {
			continue
		}
		PrintTableRow([]string{
			s.Code,
			s.Name,
			string(s.Category),
			fmt.Sprintf("%d", s.Score),
			report.Round(s.Price, report.PricePlaces),
			report.RoundNull(s.StopLoss, report.PricePlaces),
		}, widths)
	}
	PrintSeparator()

	if res.Reports != nil {
		PrintKeyValue("Report", res.Reports.Report, 12)
		PrintKeyValue("Archive", res.Reports.Archive, 12)
	}
	if res.Ledger != nil {
		PrintKeyValue("Ledger", fmt.Sprintf("admitted %d, refreshed %d, stopped-out %d, took-profit %d",
			res.Ledger.Admitted, res.Ledger.Refreshed, res.Ledger.StoppedOut, res.Ledger.TookProfit), 12)
	}

	fmt.Println()
	if res.Success {
		PrintSuccess(fmt.Sprintf("Scan completed in %s", res.Duration.Round(time.Millisecond)))
	} else {
		PrintError(fmt.Sprintf("Scan failed: %s", res.Error))
	}
}
