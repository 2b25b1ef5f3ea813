package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/backtest"
	"github.com/wonny/dipscan/internal/report"
	"github.com/wonny/dipscan/internal/s2_signals"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "규칙표 백테스트",
	Long: `전체 히스토리를 재생하며 트리거 점수 이상인 날의
3/5/10일 후 수익률(손절 포함)을 집계합니다.

결과:
- backtest_detail.csv  : 트리거별 상세
- backtest_summary.csv : 호라이즌별 / 카테고리별 승률, 평균 수익률

Example:
  go run ./cmd/dipscan backtest
  go run ./cmd/dipscan backtest --strategy configs/strategy.yaml`,
	RunE: runBacktest,
}

var backtestJSON bool

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().BoolVar(&backtestJSON, "json", false, "요약을 JSON으로 출력")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scorer := s2_signals.NewScorer(a.strategy.Scoring)
	simulator := backtest.NewSimulator(a.strategy.Backtest, scorer)
	engine := backtest.NewEngine(a.source, simulator, a.cfg.Workers, a.log)

	res, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	if err := report.SaveBacktest(a.cfg.OutputDir, res); err != nil {
		return err
	}

	if backtestJSON {
		return PrintJSON(map[string]interface{}{
			"instruments": res.Instruments,
			"tested":      res.Tested,
			"skipped":     res.Skipped,
			"trades":      len(res.Trades),
			"summary":     res.Summary,
			"by_category": res.ByCategory,
		})
	}

	PrintHeader("Dipscan Backtest")
	PrintKeyValue("Instruments", res.Instruments, 12)
	PrintKeyValue("Tested", res.Tested, 12)
	PrintKeyValue("Triggers", len(res.Trades), 12)
	PrintSeparator()

	widths := []int{20, 8, 8, 8, 10, 12}
	PrintTableHeader([]string{"SCOPE", "HORIZON", "SIGNALS", "STOPS", "WIN %", "MEAN RET %"}, widths)
	for _, st := range res.Summary {
		printHorizonRow(report.ScopeAll, st, widths)
	}
	for _, cs := range res.ByCategory {
		printHorizonRow(string(cs.Category), cs.HorizonStats, widths)
	}
	PrintSeparator()

	PrintKeyValue("Detail", filepath.Join(a.cfg.OutputDir, report.BacktestDetailFile), 12)
	PrintKeyValue("Summary", filepath.Join(a.cfg.OutputDir, report.BacktestSummaryFile), 12)
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Backtest completed in %s", res.Duration.Round(time.Millisecond)))
	return nil
}

func printHorizonRow(scope string, st backtest.HorizonStats, widths []int) {
	PrintTableRow([]string{
		scope,
		fmt.Sprintf("%dd", st.Horizon),
		fmt.Sprintf("%d", st.Signals),
		fmt.Sprintf("%d", st.StopHits),
		report.RoundNull(st.WinRatePct, report.ValuePlaces),
		report.RoundNull(st.MeanReturnPct, report.ValuePlaces),
	}, widths)
}
