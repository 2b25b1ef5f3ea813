package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/report"
)

// performanceCmd represents the performance command
var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "과거 리포트 성과 추적",
	Long: `ARCHIVE_DIR에 보관된 결정 리포트를 이후 일봉과 비교하여
카테고리별 / 호라이즌별 승률과 평균 수익률을 계산합니다.

아카이브가 2개 미만이면 performance_summary.csv에
"insufficient history" 메시지를 기록합니다.

Example:
  go run ./cmd/dipscan performance`,
	RunE: runPerformance,
}

var performanceJSON bool

func init() {
	rootCmd.AddCommand(performanceCmd)

	performanceCmd.Flags().BoolVar(&performanceJSON, "json", false, "JSON으로 출력")
}

func (a *app) tracker() *report.Tracker {
	return report.NewTracker(a.cfg.ArchiveDir, a.source, a.strategy.Backtest.Horizons, a.cfg.Workers, a.log.Zerolog())
}

func runPerformance(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	perf, err := a.tracker().Evaluate(ctx)
	if err != nil {
		return fmt.Errorf("evaluate archives: %w", err)
	}

	path, err := report.SavePerformance(a.cfg.OutputDir, perf)
	if err != nil {
		return err
	}

	if performanceJSON {
		return PrintJSON(perf)
	}

	PrintHeader("Dipscan Performance")
	PrintKeyValue("Archives", perf.Archives, 10)
	PrintKeyValue("Signals", perf.Evaluated, 10)
	PrintSeparator()

	if perf.Message != "" {
		PrintWarning(perf.Message)
	} else {
		widths := []int{20, 8, 8, 10, 12}
		PrintTableHeader([]string{"CATEGORY", "HORIZON", "SIGNALS", "WIN %", "MEAN RET %"}, widths)
		for _, row := range perf.Rows {
			PrintTableRow([]string{
				string(row.Category),
				fmt.Sprintf("%dd", row.Horizon),
				fmt.Sprintf("%d", row.Signals),
				report.RoundNull(row.WinRatePct, report.ValuePlaces),
				report.RoundNull(row.MeanReturnPct, report.ValuePlaces),
			}, widths)
		}
		PrintSeparator()
	}

	PrintKeyValue("Summary", path, 10)
	return nil
}
