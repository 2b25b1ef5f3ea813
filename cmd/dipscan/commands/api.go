package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/dipscan/internal/api"
	"github.com/wonny/dipscan/internal/api/handlers"
	"github.com/wonny/dipscan/internal/ledger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                - Health check
  GET  /api/signals           - 최근 실행 시그널 (?category=, ?reportable=true)
  POST /api/runs              - 스캔 실행 트리거 (?dry_run=true)
  GET  /api/runs/last         - 최근 실행 요약
  GET  /api/ledger            - 포지션 목록 (?status=)
  GET  /api/ledger/stats      - 원장 통계
  GET  /api/backtest/summary  - 최근 백테스트 요약
  GET  /ws/runs               - 실행 완료 이벤트 (websocket)

Example:
  go run ./cmd/dipscan api
  go run ./cmd/dipscan api --port 8089`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Wiring
	a, err := setup()
	if err != nil {
		return err
	}
	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Ledger
	repo, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	var db handlers.HealthChecker
	if pg, ok := repo.(*ledger.PostgresRepository); ok {
		db = pg.DB()
	}

	// 3. Run event hub
	hub := api.NewHub(log)
	go hub.Run(ctx)

	orch := a.orchestrator(repo)
	orch.Subscribe(hub.Publish)

	// 4. Handlers + router
	router := api.NewRouter(api.Handlers{
		Health:   handlers.NewHealthHandler("dipscan", a.cfg.Ledger.Backend, db),
		Runs:     handlers.NewRunHandler(ctx, orch, log),
		Ledger:   handlers.NewLedgerHandler(repo, a.strategy.Ledger, log),
		Backtest: handlers.NewBacktestHandler(a.cfg.OutputDir, log),
		Hub:      hub,
	}, rate.NewLimiter(rate.Limit(a.cfg.APIRateLimit), a.cfg.APIBurst), log)

	// 5. Server with graceful shutdown
	server := api.New(a.cfg, log, router)
	// 진행 중인 트리거 실행과 hub 종료
	server.OnShutdown(cancel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost%s\n", server.Addr())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
