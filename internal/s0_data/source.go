package s0_data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/pkg/logger"
)

// Supported bar file extensions
const (
	ExtCSV     = ".csv"
	ExtParquet = ".parquet"
)

var codePattern = regexp.MustCompile(`\d{6}`)

// ExtractCode returns the first 6-digit run in s
func ExtractCode(s string) (string, bool) {
	code := codePattern.FindString(s)
	return code, code != ""
}

// DirSource serves bar series from one directory of per-instrument files
// ⭐ SSOT: S0 입력 파일 접근은 여기서만
type DirSource struct {
	dir      string
	names    NameMap
	restrict bool
	logger   *logger.Logger
}

// NewDirSource creates a DirSource. With restrict set, only codes
// present in names are listed (an empty name map lists everything).
func NewDirSource(dir string, names NameMap, restrict bool, log *logger.Logger) *DirSource {
	if names == nil {
		names = NameMap{}
	}
	return &DirSource{
		dir:      dir,
		names:    names,
		restrict: restrict,
		logger:   log.WithField("module", "s0_data"),
	}
}

// Names returns the name mapping used to label series
func (s *DirSource) Names() NameMap {
	return s.names
}

// List returns one SourceFile per code, sorted by code
func (s *DirSource) List(ctx context.Context) ([]contracts.SourceFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", s.dir, err)
	}

	filter := s.restrict && len(s.names) > 0
	if s.restrict && !filter {
		s.logger.Warn("Name list is empty; scanning every file")
	}

	seen := make(map[string]string)
	var files []contracts.SourceFile
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ExtCSV && ext != ExtParquet {
			continue
		}

		code, ok := ExtractCode(e.Name())
		if !ok {
			s.logger.WithField("file", e.Name()).Debug("No 6-digit code in file name; skipped")
			continue
		}
		if filter && !s.names.Has(code) {
			continue
		}
		if prev, dup := seen[code]; dup {
			s.logger.WithFields(map[string]interface{}{
				"code": code,
				"kept": prev,
				"file": e.Name(),
			}).Warn("Duplicate code in data dir; later file ignored")
			continue
		}
		seen[code] = e.Name()

		files = append(files, contracts.SourceFile{
			Code: code,
			Path: filepath.Join(s.dir, e.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Code < files[j].Code })
	return files, nil
}

// Load reads and validates one instrument's series
func (s *DirSource) Load(ctx context.Context, file contracts.SourceFile) (*contracts.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		bars []contracts.Bar
		err  error
	)
	switch strings.ToLower(filepath.Ext(file.Path)) {
	case ExtParquet:
		bars, err = ReadParquetFile(file.Path)
	default:
		bars, err = ReadCSVFile(file.Path)
	}
	if err != nil {
		return nil, err
	}

	series := &contracts.BarSeries{
		Code: file.Code,
		Name: s.names.Name(file.Code),
		Bars: bars,
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}
