package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dipscan/internal/scheduler"
	"github.com/wonny/dipscan/pkg/config"
	"github.com/wonny/dipscan/pkg/logger"
)

func TestApplyFlags(t *testing.T) {
	base := config.Config{DataDir: "fund_data", OutputDir: "output", Workers: 4, LogLevel: "info"}

	tests := []struct {
		name  string
		set   func()
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name:  "no flags keeps env values",
			set:   func() {},
			check: func(t *testing.T, cfg config.Config) { assert.Equal(t, base, cfg) },
		},
		{
			name: "overrides",
			set: func() {
				dataDir, outputDir, workers, strategyFile = "/bars", "/out", 2, "s.yaml"
			},
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "/bars", cfg.DataDir)
				assert.Equal(t, "/out", cfg.OutputDir)
				assert.Equal(t, 2, cfg.Workers)
				assert.Equal(t, "s.yaml", cfg.StrategyFile)
			},
		},
		{
			name:  "verbose forces debug",
			set:   func() { verbose = true },
			check: func(t *testing.T, cfg config.Config) { assert.Equal(t, "debug", cfg.LogLevel) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategyFile, dataDir, outputDir, workers, verbose = "", "", "", 0, false
			t.Cleanup(func() { strategyFile, dataDir, outputDir, workers, verbose = "", "", "", 0, false })

			tt.set()
			cfg := base
			applyFlags(&cfg)
			tt.check(t, cfg)
		})
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"scan"}, {"backtest"}, {"ledger", "show"}, {"ledger", "stats"},
		{"performance"}, {"streaks"}, {"scheduler", "start"}, {"scheduler", "run"},
		{"api"}, {"config", "check"}, {"data", "convert"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if assert.NoError(t, err, path) {
			assert.Equal(t, path[len(path)-1], cmd.Name())
		}
	}
}

type noopJob struct{ name string }

func (j noopJob) Name() string                  { return j.name }
func (j noopJob) Schedule() string              { return "0 0 16 * * 1-5" }
func (j noopJob) Run(ctx context.Context) error { return nil }

func TestDisableJobs(t *testing.T) {
	newScheduler := func(t *testing.T) *scheduler.Scheduler {
		s := scheduler.New(logger.Nop())
		require.NoError(t, s.AddJob(noopJob{"daily_scan"}))
		require.NoError(t, s.AddJob(noopJob{"performance_summary"}))
		return s
	}

	tests := []struct {
		name     string
		disable  []string
		wantJobs []string
		wantErr  bool
	}{
		{"nothing disabled", nil, []string{"daily_scan", "performance_summary"}, false},
		{"one disabled", []string{"performance_summary"}, []string{"daily_scan"}, false},
		{"unknown job", []string{"cleanup"}, nil, true},
		{"all disabled", []string{"daily_scan", "performance_summary"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScheduler(t)
			err := disableJobs(s, tt.disable)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJobs, s.Jobs())
		})
	}
}
