package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/ledger"
	"github.com/wonny/dipscan/internal/report"
)

// ledgerCmd represents the ledger command
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "포지션 원장 조회",
	Long: `가상 포지션 원장을 조회합니다 (읽기 전용).

Subcommands:
  show   - 포지션 목록 (CSV, stdout)
  stats  - 승률 / 평균 수익률 통계

Example:
  go run ./cmd/dipscan ledger show --status open
  go run ./cmd/dipscan ledger stats`,
}

var (
	ledgerShowCmd = &cobra.Command{
		Use:   "show",
		Short: "포지션 목록",
		RunE:  showLedger,
	}

	ledgerStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "원장 통계",
		RunE:  showLedgerStats,
	}

	ledgerStatus string
	ledgerJSON   bool
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerStatsCmd)

	ledgerShowCmd.Flags().StringVar(&ledgerStatus, "status", "", "open | stopped-out | took-profit")
	ledgerStatsCmd.Flags().BoolVar(&ledgerJSON, "json", false, "JSON으로 출력")
}

func loadLedger(ctx context.Context) (*ledger.Ledger, error) {
	a, err := setup()
	if err != nil {
		return nil, err
	}

	repo, err := a.openLedger(ctx)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	return ledger.Snapshot(ctx, repo, a.strategy.Ledger)
}

func showLedger(cmd *cobra.Command, args []string) error {
	l, err := loadLedger(cmd.Context())
	if err != nil {
		return err
	}

	positions := l.Positions()
	if ledgerStatus != "" {
		status := contracts.PositionStatus(ledgerStatus)
		filtered := positions[:0]
		for _, p := range positions {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		positions = filtered
	}

	return report.WritePositions(os.Stdout, positions)
}

func showLedgerStats(cmd *cobra.Command, args []string) error {
	l, err := loadLedger(cmd.Context())
	if err != nil {
		return err
	}

	stats := l.Stats()
	if ledgerJSON {
		return PrintJSON(stats)
	}

	PrintHeader("Dipscan Ledger")
	PrintKeyValue("Positions", stats.Total, 16)
	PrintKeyValue("Open", stats.Open, 16)
	PrintKeyValue("Closed", fmt.Sprintf("%d (stopped-out %d, took-profit %d)", stats.Closed, stats.StoppedOut, stats.TookProfit), 16)
	PrintKeyValue("Win rate %", report.RoundNull(stats.WinRatePct, report.ValuePlaces), 16)
	PrintKeyValue("Mean closed %", report.RoundNull(stats.MeanClosedReturnPct, report.ValuePlaces), 16)
	PrintKeyValue("Mean open %", report.RoundNull(stats.MeanOpenReturnPct, report.ValuePlaces), 16)
	PrintSeparator()
	return nil
}
