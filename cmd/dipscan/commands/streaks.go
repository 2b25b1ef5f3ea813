package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/report"
)

// streaksCmd represents the streaks command
var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "연속 하락 종목 조회",
	Long: `최근 일봉이 연속 하락 중인 종목을 연속일수 순으로 나열합니다.
결과는 decline_streaks.csv로 저장되고 stdout에도 출력됩니다.

Example:
  go run ./cmd/dipscan streaks
  go run ./cmd/dipscan streaks --min-days 3`,
	RunE: runStreaks,
}

var streaksMinDays int

func init() {
	rootCmd.AddCommand(streaksCmd)

	streaksCmd.Flags().IntVar(&streaksMinDays, "min-days", 1, "최소 연속 하락일수")
}

func runStreaks(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 원장 없이 지표만 사용
	streaks, err := a.orchestrator(nil).Streaks(ctx)
	if err != nil {
		return err
	}

	filtered := streaks[:0]
	for _, s := range streaks {
		if s.Days >= streaksMinDays {
			filtered = append(filtered, s)
		}
	}

	path, err := report.SaveStreaks(a.cfg.OutputDir, filtered)
	if err != nil {
		return err
	}
	a.log.WithFields(map[string]interface{}{
		"path":    path,
		"streaks": len(filtered),
	}).Info("Saved decline streaks")

	return report.WriteStreaks(os.Stdout, filtered)
}
