package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wonny/dipscan/internal/contracts"
)

// DecisionFile is the daily decision report name inside OUTPUT_DIR
const DecisionFile = "decision_report.csv"

// DecisionHeader is the decision report column order
var DecisionHeader = []string{
	"code", "name", "category", "advice", "score", "price",
	"stop_loss", "low", "ma5", "ma20", "rsi14", "k", "d", "j", "bias20",
	"volume_ratio", "return_250", "decline_streak", "cumulative_decline", "date",
}

// DecisionRows keeps actionable and notable signals, in input order
func DecisionRows(signals []*contracts.SignalResult) [][]string {
	rows := make([][]string, 0, len(signals))
	for _, s := range signals {
		if !s.Reportable() {
			continue
		}
		snap := s.Snapshot
		rows = append(rows, []string{
			s.Code,
			s.Name,
			string(s.Category),
			s.Advice,
			strconv.Itoa(s.Score),
			Round(s.Price, PricePlaces),
			RoundNull(s.StopLoss, PricePlaces),
			Round(snap.Low, PricePlaces),
			RoundNull(snap.MA5, PricePlaces),
			RoundNull(snap.MA20, PricePlaces),
			RoundNull(snap.RSI14, ValuePlaces),
			RoundNull(snap.K, ValuePlaces),
			RoundNull(snap.D, ValuePlaces),
			RoundNull(snap.J, ValuePlaces),
			RoundNull(snap.Bias20, ValuePlaces),
			RoundNull(snap.VolumeRatio, ValuePlaces),
			RoundNull(snap.Return250, ValuePlaces),
			strconv.Itoa(snap.DeclineStreak),
			Round(snap.CumulativeDecline, ValuePlaces),
			s.Date.Format(contracts.DateLayout),
		})
	}
	return rows
}

// WriteDecisions renders the decision report to w
func WriteDecisions(w io.Writer, signals []*contracts.SignalResult) error {
	return writeRows(w, DecisionHeader, DecisionRows(signals))
}

// maxArchiveSeq bounds the _N suffixes tried for runs within one second
const maxArchiveSeq = 100

// ArchivePath is ARCHIVE_DIR/YYYY/MM/decision_YYYYMMDD_HHMMSS.csv
func ArchivePath(archiveDir string, at time.Time) string {
	return archivePath(archiveDir, at, 0)
}

// archivePath adds _seq for the seq-th run in the same second.
// "decision_..._HHMMSS.csv" sorts before "decision_..._HHMMSS_1.csv".
func archivePath(archiveDir string, at time.Time, seq int) string {
	name := "decision_" + at.Format("20060102_150405")
	if seq > 0 {
		name += fmt.Sprintf("_%d", seq)
	}
	return filepath.Join(archiveDir, at.Format("2006"), at.Format("01"), name+".csv")
}

// saveArchive never overwrites an earlier archive
func saveArchive(archiveDir string, at time.Time, rows [][]string) (string, error) {
	for seq := 0; seq < maxArchiveSeq; seq++ {
		path := archivePath(archiveDir, at, seq)
		err := createFile(path, DecisionHeader, rows)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return path, err
		}
	}
	return "", fmt.Errorf("archive %s: %d reports in the same second", ArchivePath(archiveDir, at), maxArchiveSeq)
}

// DecisionPaths are the files written by SaveDecisions
type DecisionPaths struct {
	Report  string `json:"report"`
	Archive string `json:"archive"`
}

// SaveDecisions writes the current report and its dated archive copy
func SaveDecisions(outputDir, archiveDir string, signals []*contracts.SignalResult, at time.Time) (DecisionPaths, error) {
	rows := DecisionRows(signals)
	paths := DecisionPaths{Report: filepath.Join(outputDir, DecisionFile)}

	if err := writeFile(paths.Report, DecisionHeader, rows); err != nil {
		return paths, fmt.Errorf("decision report: %w", err)
	}

	archive, err := saveArchive(archiveDir, at, rows)
	paths.Archive = archive
	if err != nil {
		return paths, fmt.Errorf("decision archive: %w", err)
	}
	return paths, nil
}
