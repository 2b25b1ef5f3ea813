package ledger

import (
	"context"
	"fmt"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/pkg/config"
	"github.com/wonny/dipscan/pkg/database"
)

// Repository is a LedgerRepository that owns a resource
type Repository interface {
	contracts.LedgerRepository
	Close() error
}

// Open returns the repository selected by LEDGER_BACKEND
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendCSV:
		return NewCSVRepository(cfg.Ledger.File), nil
	case config.LedgerBackendSQLite:
		return OpenSQLite(cfg.Ledger.SQLitePath)
	case config.LedgerBackendPostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo, err := NewPostgresRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}
