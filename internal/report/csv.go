package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/wonny/dipscan/internal/contracts"
)

// utf8BOM prefixes every report file (utf-8-sig)
const utf8BOM = "\ufeff"

// Decimal places for report fields
const (
	PricePlaces int32 = 3
	ValuePlaces int32 = 2
)

// Round renders v with the given decimal places, half away from zero
func Round(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// RoundNull renders an undefined value as an empty cell
func RoundNull(v contracts.NullFloat, places int32) string {
	if !v.Valid {
		return ""
	}
	return Round(v.Value, places)
}

// writeRows writes header + rows; the header is written even with no rows
func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// writeFile replaces path atomically; files carry a UTF-8 BOM
func writeFile(path string, header []string, rows [][]string) error {
	tmp, err := writeTemp(path, header, rows)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// createFile publishes a complete file at path only if path does not exist.
// The hard link is atomic and fails with fs.ErrExist on a taken name.
func createFile(path string, header []string, rows [][]string) error {
	tmp, err := writeTemp(path, header, rows)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, path); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeTemp writes BOM + header + rows to a temp file next to path
func writeTemp(path string, header []string, rows [][]string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}

	if _, err := io.WriteString(tmp, utf8BOM); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := writeRows(tmp, header, rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp report: %w", err)
	}
	return tmp.Name(), nil
}

// readFile reads a report written by writeFile
func readFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	return csv.NewReader(bytes.NewReader(data)).ReadAll()
}
