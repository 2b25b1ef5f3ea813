package ledger

import (
	"context"
	"fmt"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/strategyconfig"
)

// RunTx loads the book, applies fn, and saves the result as one scoped
// transaction. Nothing is saved when fn fails.
func RunTx(ctx context.Context, repo contracts.LedgerRepository, cfg strategyconfig.Ledger, fn func(*Ledger) error) error {
	positions, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	l := New(cfg, positions)
	if err := fn(l); err != nil {
		return err
	}

	if err := repo.Save(ctx, l.Positions()); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Snapshot loads the book read-only
func Snapshot(ctx context.Context, repo contracts.LedgerRepository, cfg strategyconfig.Ledger) (*Ledger, error) {
	positions, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return New(cfg, positions), nil
}
