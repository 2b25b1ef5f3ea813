package s1_indicators

import "github.com/wonny/dipscan/internal/contracts"

// SMA is the simple trailing mean over window values
func SMA(values []float64, window int) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(values))
	if window < 1 {
		return out
	}

	var sum float64
	for t, v := range values {
		sum += v
		if t >= window {
			sum -= values[t-window]
		}
		if t >= window-1 {
			out[t] = contracts.Float(sum / float64(window))
		}
	}
	return out
}

// Bias is the percentage distance of close from its moving average
func Bias(closes []float64, ma []contracts.NullFloat) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(closes))
	for t := range closes {
		if !ma[t].Valid || ma[t].Value == 0 {
			continue
		}
		out[t] = contracts.Float((closes[t] - ma[t].Value) / ma[t].Value * 100)
	}
	return out
}

// VolumeRatio is volume over the mean volume of the lookback bars
// before t (t excluded). A zero mean gives 0, not undefined.
func VolumeRatio(volumes []float64, lookback int) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(volumes))
	if lookback < 1 {
		return out
	}

	for t := lookback; t < len(volumes); t++ {
		var sum float64
		for k := t - lookback; k < t; k++ {
			sum += volumes[k]
		}
		mean := sum / float64(lookback)
		if mean == 0 {
			out[t] = contracts.Float(0)
			continue
		}
		out[t] = contracts.Float(volumes[t] / mean)
	}
	return out
}

// PeriodReturn is the percentage change of close over n bars
func PeriodReturn(closes []float64, n int) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(closes))
	if n < 1 {
		return out
	}

	for t := n; t < len(closes); t++ {
		base := closes[t-n]
		if base == 0 {
			continue
		}
		out[t] = contracts.Float((closes[t] - base) / base * 100)
	}
	return out
}

// DeclineStreak counts consecutive bars ending at t (inclusive) whose
// percent change is negative, and sums those changes.
func DeclineStreak(changes []float64) (streak []int, cumulative []float64) {
	streak = make([]int, len(changes))
	cumulative = make([]float64, len(changes))

	for t, c := range changes {
		if c >= 0 {
			continue
		}
		streak[t] = 1
		cumulative[t] = c
		if t > 0 {
			streak[t] += streak[t-1]
			cumulative[t] += cumulative[t-1]
		}
	}
	return streak, cumulative
}
