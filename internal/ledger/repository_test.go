package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/pkg/config"
	"github.com/wonny/dipscan/pkg/database"
)

func samplePositions() []*contracts.Position {
	exit := day5
	return []*contracts.Position{
		{
			ID:               uuid.MustParse("6f1c1c2e-8a5e-4d7b-9b7e-0b1e6f6f0a01"),
			Code:             "510300",
			Name:             "沪深300ETF",
			EntryDate:        day1,
			EntryPrice:       4.125,
			StopLossPrice:    3.9,
			CurrentPrice:     4.2,
			CurrentReturnPct: 1.8181818181818181,
			HoldingDays:      4,
			OriginCategory:   contracts.CategoryStrongBuy,
			Status:           contracts.StatusOpen,
			UpdatedAt:        now,
		},
		{
			ID:               uuid.MustParse("6f1c1c2e-8a5e-4d7b-9b7e-0b1e6f6f0a02"),
			Code:             "159915",
			Name:             "创业板ETF, \"A\"",
			EntryDate:        day1,
			EntryPrice:       2,
			StopLossPrice:    1.9,
			CurrentPrice:     1.8,
			CurrentReturnPct: -10,
			HoldingDays:      4,
			OriginCategory:   contracts.CategoryWatch,
			Status:           contracts.StatusStoppedOut,
			ExitDate:         &exit,
			UpdatedAt:        now,
		},
	}
}

func assertRoundTrip(t *testing.T, repo contracts.LedgerRepository) {
	t.Helper()
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	want := samplePositions()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))

	byID := make(map[uuid.UUID]*contracts.Position)
	for _, p := range got {
		byID[p.ID] = p
	}
	for _, w := range want {
		g, ok := byID[w.ID]
		require.True(t, ok, "missing %s", w.Code)
		assert.Equal(t, w.Code, g.Code)
		assert.Equal(t, w.Name, g.Name)
		assert.True(t, w.EntryDate.Equal(g.EntryDate))
		assert.Equal(t, w.EntryPrice, g.EntryPrice)
		assert.Equal(t, w.StopLossPrice, g.StopLossPrice)
		assert.Equal(t, w.CurrentReturnPct, g.CurrentReturnPct)
		assert.Equal(t, w.HoldingDays, g.HoldingDays)
		assert.Equal(t, w.OriginCategory, g.OriginCategory)
		assert.Equal(t, w.Status, g.Status)
		assert.True(t, w.UpdatedAt.Equal(g.UpdatedAt))
		if w.ExitDate == nil {
			assert.Nil(t, g.ExitDate)
		} else {
			require.NotNil(t, g.ExitDate)
			assert.True(t, w.ExitDate.Equal(*g.ExitDate))
		}
	}

	// 두 번째 저장은 전체 교체
	require.NoError(t, repo.Save(ctx, want[:1]))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCSVRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "positions.csv")
	assertRoundTrip(t, NewCSVRepository(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestCSVRepositoryMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.csv")
	content := "id,code\n" + "x,y\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewCSVRepository(path).Load(context.Background())
	assert.Error(t, err)
}

func TestCSVRepositoryBadStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.csv")
	repo := NewCSVRepository(path)
	p := samplePositions()[0]
	p.Status = "sold"
	require.NoError(t, repo.Save(context.Background(), []*contracts.Position{p}))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, contracts.ErrMalformedInput)
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "dipscan.db"))
	require.NoError(t, err)
	defer repo.Close()

	assertRoundTrip(t, repo)
}

func TestPostgresRepositoryRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		URL:             url,
		Schema:          "dipscan_test_" + time.Now().Format("150405"),
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
		MaxConnIdleTime: time.Minute,
	}}
	ctx := context.Background()

	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer func() {
		_, _ = db.Pool.Exec(ctx, "DROP SCHEMA IF EXISTS "+cfg.Database.Schema+" CASCADE")
		db.Close()
	}()

	repo, err := NewPostgresRepository(ctx, db)
	require.NoError(t, err)

	assertRoundTrip(t, repo)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvRepo, err := Open(ctx, &config.Config{Ledger: config.LedgerConfig{Backend: config.LedgerBackendCSV, File: filepath.Join(dir, "p.csv")}})
	require.NoError(t, err)
	assert.IsType(t, &CSVRepository{}, csvRepo)

	sqliteRepo, err := Open(ctx, &config.Config{Ledger: config.LedgerConfig{Backend: config.LedgerBackendSQLite, SQLitePath: filepath.Join(dir, "p.db")}})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, sqliteRepo)
	require.NoError(t, sqliteRepo.Close())

	_, err = Open(ctx, &config.Config{Ledger: config.LedgerConfig{Backend: "redis"}})
	assert.Error(t, err)
}
