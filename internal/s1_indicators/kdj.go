package s1_indicators

import "github.com/wonny/dipscan/internal/contracts"

// RSV is the raw stochastic value of close within the trailing period
// closes. Undefined before period bars or when the window is flat.
func RSV(closes []float64, period int) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(closes))
	if period < 1 {
		return out
	}

	for t := period - 1; t < len(closes); t++ {
		lo, hi := closes[t], closes[t]
		for k := t - period + 1; k <= t; k++ {
			if closes[k] < lo {
				lo = closes[k]
			}
			if closes[k] > hi {
				hi = closes[k]
			}
		}
		if hi == lo {
			continue
		}
		out[t] = contracts.Float((closes[t] - lo) / (hi - lo) * 100)
	}
	return out
}

// EWM is a non-adjusted exponentially weighted mean. It is seeded by
// the first defined input; afterwards undefined inputs carry the previous
// mean forward while the old weight keeps decaying.
func EWM(in []contracts.NullFloat, alpha float64) []contracts.NullFloat {
	out := make([]contracts.NullFloat, len(in))

	var (
		mean    float64
		oldWt   float64
		started bool
	)
	for i, x := range in {
		if !started {
			if x.Valid {
				mean, oldWt, started = x.Value, 1, true
				out[i] = contracts.Float(mean)
			}
			continue
		}

		oldWt *= 1 - alpha
		if x.Valid {
			if x.Value != mean {
				mean = (oldWt*mean + alpha*x.Value) / (oldWt + alpha)
			}
			oldWt = 1
		}
		out[i] = contracts.Float(mean)
	}
	return out
}

// KDJ computes K = EWM(RSV), D = EWM(K), J = 3K - 2D.
// All three are undefined on bars whose RSV is undefined.
func KDJ(closes []float64, period int, alpha float64) (k, d, j []contracts.NullFloat) {
	rsv := RSV(closes, period)
	kCarried := EWM(rsv, alpha)
	dCarried := EWM(kCarried, alpha)

	n := len(closes)
	k = make([]contracts.NullFloat, n)
	d = make([]contracts.NullFloat, n)
	j = make([]contracts.NullFloat, n)
	for i := 0; i < n; i++ {
		if !rsv[i].Valid {
			continue
		}
		k[i] = kCarried[i]
		d[i] = dCarried[i]
		j[i] = contracts.Float(3*kCarried[i].Value - 2*dCarried[i].Value)
	}
	return k, d, j
}
