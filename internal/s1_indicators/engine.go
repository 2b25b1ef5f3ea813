// Package s1_indicators derives per-bar technical indicators from an
// ascending bar series. Every function is pure and never reorders input.
package s1_indicators

import "github.com/wonny/dipscan/internal/contracts"

// Window lengths
const (
	RSIPeriod      = 14
	KDJPeriod      = 9
	MAShort        = 5
	MALong         = 20
	VolumeLookback = 5

	ReturnShort = 5
	ReturnMid   = 20
	ReturnYear  = 250
)

// KDJAlpha is the smoothing factor of K and D (com=2)
const KDJAlpha = 1.0 / 3.0

// Compute returns one snapshot per bar, aligned by index.
// series.Bars must already be validated (ascending, positive closes).
// ⭐ SSOT: 지표 계산은 여기서만
func Compute(series *contracts.BarSeries) []contracts.Snapshot {
	n := len(series.Bars)
	if n == 0 {
		return nil
	}

	closes := make([]float64, n)
	volumes := make([]float64, n)
	changes := make([]float64, n)
	for i, b := range series.Bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
		changes[i] = b.PercentChange
	}

	rsi := RSI(closes, RSIPeriod)
	k, d, j := KDJ(closes, KDJPeriod, KDJAlpha)
	ma5 := SMA(closes, MAShort)
	ma20 := SMA(closes, MALong)
	bias5 := Bias(closes, ma5)
	bias20 := Bias(closes, ma20)
	volRatio := VolumeRatio(volumes, VolumeLookback)
	ret5 := PeriodReturn(closes, ReturnShort)
	ret20 := PeriodReturn(closes, ReturnMid)
	ret250 := PeriodReturn(closes, ReturnYear)
	streak, cum := DeclineStreak(changes)

	snaps := make([]contracts.Snapshot, n)
	for i, b := range series.Bars {
		snaps[i] = contracts.Snapshot{
			Date:          b.Date,
			Close:         b.Close,
			Low:           b.Low,
			High:          b.High,
			Volume:        b.Volume,
			Turnover:      b.Turnover,
			PercentChange: b.PercentChange,

			RSI14:       rsi[i],
			K:           k[i],
			D:           d[i],
			J:           j[i],
			MA5:         ma5[i],
			MA20:        ma20[i],
			Bias5:       bias5[i],
			Bias20:      bias20[i],
			VolumeRatio: volRatio[i],
			Return5:     ret5[i],
			Return20:    ret20[i],
			Return250:   ret250[i],

			DeclineStreak:     streak[i],
			CumulativeDecline: cum[i],
		}
	}
	return snaps
}

// Latest returns the most recent snapshot
func Latest(snaps []contracts.Snapshot) (contracts.Snapshot, bool) {
	if len(snaps) == 0 {
		return contracts.Snapshot{}, false
	}
	return snaps[len(snaps)-1], true
}
