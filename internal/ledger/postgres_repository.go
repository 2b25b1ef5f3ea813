package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/pkg/database"
)

const positionsTable = "positions"

// PostgresRepository keeps the ledger in <schema>.positions
// ⭐ SSOT: Postgres 원장 저장/조회는 여기서만
type PostgresRepository struct {
	db    *database.DB
	table string
}

// NewPostgresRepository creates the schema and table if missing
func NewPostgresRepository(ctx context.Context, db *database.DB) (*PostgresRepository, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	r := &PostgresRepository{db: db, table: db.Table(positionsTable)}

	query := `
		CREATE TABLE IF NOT EXISTS ` + r.table + ` (
			id                 TEXT PRIMARY KEY,
			code               TEXT NOT NULL,
			name               TEXT NOT NULL,
			entry_date         DATE NOT NULL,
			entry_price        DOUBLE PRECISION NOT NULL,
			stop_loss_price    DOUBLE PRECISION NOT NULL,
			current_price      DOUBLE PRECISION NOT NULL,
			current_return_pct DOUBLE PRECISION NOT NULL,
			holding_days       INTEGER NOT NULL,
			origin_category    TEXT NOT NULL,
			status             TEXT NOT NULL,
			exit_date          DATE,
			updated_at         TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := db.Pool.Exec(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create positions table: %w", err)
	}
	return r, nil
}

// Load reads every position
func (r *PostgresRepository) Load(ctx context.Context) ([]*contracts.Position, error) {
	query := `SELECT ` + strings.Join(Columns, ", ") + ` FROM ` + r.table + ` ORDER BY entry_date, code`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*contracts.Position
	for rows.Next() {
		var (
			p        contracts.Position
			id       string
			category string
			status   string
		)
		err := rows.Scan(
			&id, &p.Code, &p.Name, &p.EntryDate,
			&p.EntryPrice, &p.StopLossPrice, &p.CurrentPrice, &p.CurrentReturnPct,
			&p.HoldingDays, &category, &status, &p.ExitDate, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("position id %q: %w", id, contracts.ErrMalformedInput)
		}
		if p.OriginCategory, err = contracts.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("position %s: %v: %w", id, err, contracts.ErrMalformedInput)
		}
		p.Status = contracts.PositionStatus(status)
		positions = append(positions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}

// Save replaces the table content inside one transaction using COPY
func (r *PostgresRepository) Save(ctx context.Context, positions []*contracts.Position) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM `+r.table); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	rows := make([][]interface{}, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []interface{}{
			p.ID.String(), p.Code, p.Name, p.EntryDate,
			p.EntryPrice, p.StopLossPrice, p.CurrentPrice, p.CurrentReturnPct,
			p.HoldingDays, string(p.OriginCategory), string(p.Status), p.ExitDate, p.UpdatedAt,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{r.db.Schema, positionsTable},
		Columns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy positions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit positions: %w", err)
	}
	return nil
}

// Close releases the pool
func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}

// DB exposes the pool for health checks
func (r *PostgresRepository) DB() *database.DB {
	return r.db
}
