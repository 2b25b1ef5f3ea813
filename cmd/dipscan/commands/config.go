package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정 확인",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "환경 설정과 전략 규칙표 검증",
	Long: `환경 변수(.env)와 전략 규칙표(YAML)를 읽어 검증하고
실제 적용되는 값과 전략 해시를 출력합니다.

Example:
  go run ./cmd/dipscan config check
  go run ./cmd/dipscan config check --strategy configs/strategy.yaml --json`,
	RunE: checkConfig,
}

var configJSON bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)

	configCheckCmd.Flags().BoolVar(&configJSON, "json", false, "전략 규칙표를 JSON으로 출력")
}

func checkConfig(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if configJSON {
		return PrintJSON(map[string]interface{}{
			"strategy_hash": a.strategyHash,
			"strategy":      a.strategy,
		})
	}

	cfg := a.cfg
	strategyFile := cfg.StrategyFile
	if strategyFile == "" {
		strategyFile = "(built-in defaults)"
	}

	PrintHeader("Dipscan Configuration")
	PrintKeyValue("Env", cfg.Env, 14)
	PrintKeyValue("Data dir", cfg.DataDir, 14)
	PrintKeyValue("Name list", fmt.Sprintf("%s (%d names)", cfg.NameListFile, len(a.source.Names())), 14)
	PrintKeyValue("Restrict", cfg.RestrictToList, 14)
	PrintKeyValue("Output dir", cfg.OutputDir, 14)
	PrintKeyValue("Archive dir", cfg.ArchiveDir, 14)
	PrintKeyValue("Workers", cfg.Workers, 14)
	PrintKeyValue("Ledger", cfg.Ledger.Backend, 14)
	PrintKeyValue("Scan cron", cfg.ScanSchedule, 14)
	PrintKeyValue("Perf cron", cfg.PerformanceSchedule, 14)
	PrintSeparator()
	PrintKeyValue("Strategy", strategyFile, 14)
	PrintKeyValue("Strategy ID", fmt.Sprintf("%s v%s", a.strategy.Meta.StrategyID, a.strategy.Meta.Version), 14)
	PrintKeyValue("Hash", a.strategyHash, 14)
	PrintKeyValue("Conditions", len(a.strategy.Scoring.Conditions), 14)
	PrintKeyValue("Risk rules", len(a.strategy.Scoring.RiskRules), 14)
	PrintKeyValue("Bands", len(a.strategy.Scoring.Bands), 14)
	PrintKeyValue("Horizons", a.strategy.Backtest.Horizons, 14)
	PrintSeparator()

	PrintSuccess("Configuration is valid")
	return nil
}
