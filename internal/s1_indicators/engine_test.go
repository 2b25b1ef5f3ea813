package s1_indicators

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dipscan/internal/contracts"
)

func seriesFromCloses(closes []float64) *contracts.BarSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	s := &contracts.BarSeries{Code: "510300", Bars: bars}
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

func TestRSIRangeOnRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	closes := make([]float64, 600)
	price := 10.0
	for i := range closes {
		price *= 1 + (rng.Float64()-0.5)*0.06
		closes[i] = price
	}

	snaps := Compute(seriesFromCloses(closes))
	defined := 0
	for _, s := range snaps {
		if s.RSI14.Valid {
			defined++
			assert.GreaterOrEqual(t, s.RSI14.Value, 0.0)
			assert.LessOrEqual(t, s.RSI14.Value, 100.0)
		}
	}
	assert.Equal(t, len(closes)-RSIPeriod, defined)
}

func TestRSI(t *testing.T) {
	rising := make([]float64, 20)
	falling := make([]float64, 20)
	flat := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(10 + i)
		falling[i] = float64(40 - i)
		flat[i] = 7
	}

	tests := []struct {
		name   string
		closes []float64
		want   contracts.NullFloat
	}{
		{"only gains", rising, contracts.Float(100)},
		{"only losses", falling, contracts.Float(0)},
		{"flat window", flat, contracts.Undefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RSI(tt.closes, RSIPeriod)
			assert.False(t, out[RSIPeriod-1].Valid, "needs period+1 bars")
			assert.Equal(t, tt.want, out[len(out)-1])
		})
	}

	// gains 1,1 losses 2 over period 3: avgGain 2/3, avgLoss 2/3 → 50
	out := RSI([]float64{10, 11, 12, 10}, 3)
	require.True(t, out[3].Valid)
	assert.InDelta(t, 50.0, out[3].Value, 1e-9)
}

func TestDeclineStreak(t *testing.T) {
	// 10.0, 9.5, 9.0, 8.6, 8.5
	s := seriesFromCloses([]float64{10.0, 9.5, 9.0, 8.6, 8.5})
	s.Bars[0].PercentChange = 1.0

	snaps := Compute(s)
	last := snaps[len(snaps)-1]
	assert.Equal(t, 4, last.DeclineStreak)
	assert.InDelta(t, -5.0-5.263157-4.444444-1.162790, last.CumulativeDecline, 1e-4)
	assert.Equal(t, 0, snaps[0].DeclineStreak)
}

func TestDeclineStreakStrictlyDeclining(t *testing.T) {
	for _, l := range []int{1, 2, 7, 30} {
		changes := make([]float64, l)
		for i := range changes {
			changes[i] = -0.5
		}
		streak, cum := DeclineStreak(changes)
		assert.Equal(t, l, streak[l-1])
		assert.InDelta(t, -0.5*float64(l), cum[l-1], 1e-9)
	}

	streak, cum := DeclineStreak([]float64{-1, -1, 0, -2})
	assert.Equal(t, []int{1, 2, 0, 1}, streak)
	assert.Equal(t, []float64{-1, -2, 0, -2}, cum)
}

func TestVolumeRatio(t *testing.T) {
	out := VolumeRatio([]float64{0, 0, 0, 0, 0, 500}, VolumeLookback)
	require.True(t, out[5].Valid, "zero trailing volume is defined")
	assert.Equal(t, 0.0, out[5].Value)
	assert.False(t, out[4].Valid)

	out = VolumeRatio([]float64{100, 200, 300, 400, 500, 150}, VolumeLookback)
	assert.InDelta(t, 0.5, out[5].Value, 1e-9)
}

func TestMovingAveragesOnTwentyBars(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}

	snaps := Compute(seriesFromCloses(closes))
	last := snaps[19]

	require.True(t, last.MA5.Valid)
	require.True(t, last.MA20.Valid)
	assert.InDelta(t, 18.0, last.MA5.Value, 1e-9)
	assert.InDelta(t, 10.5, last.MA20.Value, 1e-9)
	assert.InDelta(t, (20-10.5)/10.5*100, last.Bias20.Value, 1e-9)
	assert.InDelta(t, (20-18.0)/18.0*100, last.Bias5.Value, 1e-9)

	assert.False(t, snaps[18].MA20.Valid)
	assert.True(t, snaps[4].MA5.Valid)
	assert.False(t, snaps[3].MA5.Valid)
	assert.False(t, last.Return250.Valid)
	assert.InDelta(t, (20-15)/15.0*100, last.Return5.Value, 1e-9)
}

func TestEWM(t *testing.T) {
	in := []contracts.NullFloat{contracts.Undefined, contracts.Float(10), contracts.Undefined, contracts.Float(40)}
	out := EWM(in, KDJAlpha)

	assert.False(t, out[0].Valid)
	assert.Equal(t, contracts.Float(10), out[1])
	assert.Equal(t, contracts.Float(10), out[2], "carried forward")
	// old weight decayed twice: (4/9*10 + 1/3*40) / (4/9 + 1/3)
	assert.InDelta(t, 160.0/7.0, out[3].Value, 1e-9)
}

func TestKDJ(t *testing.T) {
	rising := make([]float64, 15)
	for i := range rising {
		rising[i] = float64(i + 1)
	}
	k, d, j := KDJ(rising, KDJPeriod, KDJAlpha)

	assert.False(t, k[KDJPeriod-2].Valid)
	for i := KDJPeriod - 1; i < len(rising); i++ {
		assert.InDelta(t, 100.0, k[i].Value, 1e-9)
		assert.InDelta(t, 100.0, d[i].Value, 1e-9)
		assert.InDelta(t, 100.0, j[i].Value, 1e-9)
	}

	flat := []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5}
	k, d, j = KDJ(flat, KDJPeriod, KDJAlpha)
	for i := range flat {
		assert.False(t, k[i].Valid)
		assert.False(t, d[i].Valid)
		assert.False(t, j[i].Valid)
	}
}

func TestKDJDropAfterRally(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 5}
	k, d, j := KDJ(closes, KDJPeriod, KDJAlpha)

	// rsv: 100 at t=8, (5-2)/(9-2)*100 at t=9
	rsv9 := 3.0 / 7.0 * 100
	wantK := (2.0/3.0*100 + 1.0/3.0*rsv9) / (2.0/3.0 + 1.0/3.0)
	wantD := (2.0/3.0*100 + 1.0/3.0*wantK) / (2.0/3.0 + 1.0/3.0)

	assert.InDelta(t, wantK, k[9].Value, 1e-9)
	assert.InDelta(t, wantD, d[9].Value, 1e-9)
	assert.InDelta(t, 3*wantK-2*wantD, j[9].Value, 1e-9)
}

func TestComputeEmptyAndLatest(t *testing.T) {
	assert.Nil(t, Compute(&contracts.BarSeries{}))

	_, ok := Latest(nil)
	assert.False(t, ok)

	snaps := Compute(seriesFromCloses([]float64{1, 2, 3}))
	s, ok := Latest(snaps)
	require.True(t, ok)
	assert.Equal(t, 3.0, s.Close)
}
