package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/dipscan/internal/contracts"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the ledger in a local SQLite database
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database and runs migrations
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// 단일 writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS positions (
			id                 TEXT PRIMARY KEY,
			code               TEXT NOT NULL,
			name               TEXT NOT NULL,
			entry_date         TEXT NOT NULL,
			entry_price        REAL NOT NULL,
			stop_loss_price    REAL NOT NULL,
			current_price      REAL NOT NULL,
			current_return_pct REAL NOT NULL,
			holding_days       INTEGER NOT NULL,
			origin_category    TEXT NOT NULL,
			status             TEXT NOT NULL,
			exit_date          TEXT,
			updated_at         TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_code ON positions(code, status)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Load reads every position
func (r *SQLiteRepository) Load(ctx context.Context) ([]*contracts.Position, error) {
	query := `SELECT ` + strings.Join(Columns, ", ") + ` FROM positions ORDER BY entry_date, code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var positions []*contracts.Position
	for rows.Next() {
		rec := make([]string, len(Columns))
		var exit sql.NullString
		dst := make([]interface{}, len(Columns))
		for i := range rec {
			dst[i] = &rec[i]
		}
		dst[11] = &exit

		if err := rows.Scan(dst...); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		rec[11] = exit.String

		p, err := decodeRecord(rec)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return positions, nil
}

// Save replaces the table content inside one SQL transaction
func (r *SQLiteRepository) Save(ctx context.Context, positions []*contracts.Position) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO positions (`+strings.Join(Columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		var exit interface{}
		if p.ExitDate != nil {
			exit = formatDate(*p.ExitDate)
		}
		rec := encodeRecord(p)
		_, err := stmt.ExecContext(ctx,
			rec[0], p.Code, p.Name, rec[3],
			p.EntryPrice, p.StopLossPrice, p.CurrentPrice, p.CurrentReturnPct,
			p.HoldingDays, rec[9], rec[10], exit, rec[12],
		)
		if err != nil {
			return fmt.Errorf("insert position %s: %w", p.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
