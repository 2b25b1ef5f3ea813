package s1_indicators

import "github.com/wonny/dipscan/internal/contracts"

// RSI is the simple-mean relative strength index over the trailing
// period close-to-close changes; it needs period+1 bars.
// avgLoss 0 gives 100, avgGain 0 gives 0, a flat window is undefined.
func RSI(closes []float64, period int) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(closes))
	if period < 1 {
		return out
	}

	for t := period; t < len(closes); t++ {
		var gains, losses float64
		for k := t - period + 1; k <= t; k++ {
			delta := closes[k] - closes[k-1]
			if delta > 0 {
				gains += delta
			} else {
				losses -= delta
			}
		}

		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		switch {
		case avgGain == 0 && avgLoss == 0:
			// 0/0
		case avgLoss == 0:
			out[t] = contracts.Float(100)
		default:
			out[t] = contracts.Float(100 - 100/(1+avgGain/avgLoss))
		}
	}
	return out
}
