package contracts

import "context"

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// LedgerRepository persists the whole position collection.
// Save replaces the stored collection with positions.
type LedgerRepository interface {
	Load(ctx context.Context) ([]*Position, error)
	Save(ctx context.Context, positions []*Position) error
}

// BarSource lists and loads per-instrument bar series
type BarSource interface {
	List(ctx context.Context) ([]SourceFile, error)
	Load(ctx context.Context, file SourceFile) (*BarSeries, error)
}

// SourceFile is one instrument's bar file
type SourceFile struct {
	Code string `json:"code"`
	Path string `json:"path"`
}
