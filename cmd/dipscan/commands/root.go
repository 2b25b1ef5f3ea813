package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/dipscan/internal/ledger"
	"github.com/wonny/dipscan/internal/s0_data"
	"github.com/wonny/dipscan/internal/strategyconfig"
	"github.com/wonny/dipscan/pkg/config"
	"github.com/wonny/dipscan/pkg/logger"
)

var (
	// Global flags (override the matching env settings)
	strategyFile string
	dataDir      string
	outputDir    string
	workers      int
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dipscan",
	Short: "Dipscan - 일봉 기반 눌림목 스캐너",
	Long: `Dipscan Unified CLI

종목별 일봉 파일을 읽어 지표를 계산하고, 규칙표로 점수를 매겨
결정 리포트와 가상 포지션 원장을 갱신합니다.

Usage:
  go run ./cmd/dipscan [command]

Examples:
  go run ./cmd/dipscan scan
  go run ./cmd/dipscan backtest
  go run ./cmd/dipscan ledger stats
  go run ./cmd/dipscan api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy rule table YAML (default: STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "bar file directory (default: DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "report directory (default: OUTPUT_DIR)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "parallel instrument workers (default: WORKERS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// ═══════════════════════════════════════════════════════════
// Wiring
// 모든 커맨드가 동일한 순서로 의존성을 구성하도록 통일
// ═══════════════════════════════════════════════════════════

// app holds the dependencies shared by every command
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyHash string
	source       *s0_data.DirSource
}

func setup() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy rule table
	strategy, err := strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	// 4. Name list (decode failure degrades to an empty mapping)
	names, enc, err := s0_data.LoadNames(cfg.NameListFile)
	if err != nil {
		log.WithError(err).WithField("file", cfg.NameListFile).Warn("Name list unavailable, names will be unknown")
	} else {
		log.WithFields(map[string]interface{}{
			"file":     cfg.NameListFile,
			"encoding": enc,
			"names":    len(names),
		}).Debug("Loaded name list")
	}

	// 5. Bar source
	source := s0_data.NewDirSource(cfg.DataDir, names, cfg.RestrictToList, log)

	return &app{
		cfg:          cfg,
		log:          log,
		strategy:     strategy,
		strategyHash: hash,
		source:       source,
	}, nil
}

func applyFlags(cfg *config.Config) {
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

func (a *app) openLedger(ctx context.Context) (ledger.Repository, error) {
	repo, err := ledger.Open(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("open ledger (%s): %w", a.cfg.Ledger.Backend, err)
	}
	return repo, nil
}
