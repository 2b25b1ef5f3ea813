package report

import (
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/dipscan/internal/contracts"
)

// StreaksFile is the consecutive-decline report name inside OUTPUT_DIR
const StreaksFile = "decline_streaks.csv"

// Streak is an instrument whose latest bar closes a run of declines
type Streak struct {
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Days              int       `json:"days"`
	CumulativeDecline float64   `json:"cumulative_decline"`
	Date              time.Time `json:"date"`
}

// StreaksHeader is the streak report column order
var StreaksHeader = []string{"code", "name", "days", "cumulative_decline", "date"}

// SortStreaks orders by longest streak, then deepest decline, then code
func SortStreaks(streaks []Streak) {
	sort.Slice(streaks, func(i, j int) bool {
		a, b := streaks[i], streaks[j]
		if a.Days != b.Days {
			return a.Days > b.Days
		}
		if a.CumulativeDecline != b.CumulativeDecline {
			return a.CumulativeDecline < b.CumulativeDecline
		}
		return a.Code < b.Code
	})
}

// StreakRows renders streaks in the given order
func StreakRows(streaks []Streak) [][]string {
	rows := make([][]string, 0, len(streaks))
	for _, s := range streaks {
		rows = append(rows, []string{
			s.Code,
			s.Name,
			strconv.Itoa(s.Days),
			Round(s.CumulativeDecline, ValuePlaces),
			s.Date.Format(contracts.DateLayout),
		})
	}
	return rows
}

// WriteStreaks renders the streak report to w
func WriteStreaks(w io.Writer, streaks []Streak) error {
	return writeRows(w, StreaksHeader, StreakRows(streaks))
}

// SaveStreaks writes the streak report into dir
func SaveStreaks(dir string, streaks []Streak) (string, error) {
	path := filepath.Join(dir, StreaksFile)
	return path, writeFile(path, StreaksHeader, StreakRows(streaks))
}
