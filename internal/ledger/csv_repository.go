package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wonny/dipscan/internal/contracts"
)

// CSVRepository keeps the ledger in one CSV file, rewritten atomically
type CSVRepository struct {
	path string
}

// NewCSVRepository creates a CSV-backed repository
func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

// Load returns an empty ledger when the file does not exist yet
func (r *CSVRepository) Load(ctx context.Context) ([]*contracts.Position, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(Columns)

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger header: %w", err)
	}

	var positions []*contracts.Position
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %v: %w", line, err, contracts.ErrMalformedInput)
		}
		p, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// Save writes to a temp file in the same directory and renames it over
// the ledger, so readers never see a partial file
func (r *CSVRepository) Save(ctx context.Context, positions []*contracts.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, p := range positions {
		if err := w.Write(encodeRecord(p)); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Close is a no-op
func (r *CSVRepository) Close() error {
	return nil
}
