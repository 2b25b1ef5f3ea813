package s2_signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/strategyconfig"
)

func defaultScorer() *Scorer {
	return NewScorer(strategyconfig.Default().Scoring)
}

// dipSnapshot satisfies every default condition (115 points)
func dipSnapshot() contracts.Snapshot {
	return contracts.Snapshot{
		Date:          time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		Close:         9.0,
		Low:           8.8,
		PercentChange: -1.5,
		DeclineStreak: 4,
		RSI14:         contracts.Float(28),
		J:             contracts.Float(-3),
		Return250:     contracts.Float(-22),
		Bias20:        contracts.Float(-6),
		VolumeRatio:   contracts.Float(0.6),
		MA5:           contracts.Float(9.4),
	}
}

func TestScorer_Evaluate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*contracts.Snapshot)
		wantScore    int
		wantCategory contracts.Category
		wantStop     contracts.NullFloat
	}{
		{
			name:         "full dip is strong-buy with stop at low",
			mutate:       func(s *contracts.Snapshot) {},
			wantScore:    115,
			wantCategory: contracts.CategoryStrongBuy,
			wantStop:     contracts.Float(8.8),
		},
		{
			name: "70 points is watch with stop at MA5",
			mutate: func(s *contracts.Snapshot) {
				s.Return250 = contracts.Undefined  // -15
				s.Bias20 = contracts.Float(0)      // -20
				s.VolumeRatio = contracts.Float(1) // -10
			},
			wantScore:    70,
			wantCategory: contracts.CategoryWatch,
			wantStop:     contracts.Float(9.4),
		},
		{
			name: "all undefined is hold",
			mutate: func(s *contracts.Snapshot) {
				*s = contracts.Snapshot{Close: 9, PercentChange: 0.2}
			},
			wantScore:    0,
			wantCategory: contracts.CategoryHold,
		},
		{
			name: "streak above range does not score",
			mutate: func(s *contracts.Snapshot) {
				s.DeclineStreak = 6
			},
			wantScore:    95,
			wantCategory: contracts.CategoryStrongBuy,
			wantStop:     contracts.Float(8.8),
		},
		{
			name: "heavy volume sell-off overrides a high score",
			mutate: func(s *contracts.Snapshot) {
				s.VolumeRatio = contracts.Float(2.5)
				s.PercentChange = -3.2
			},
			wantScore:    105,
			wantCategory: contracts.CategoryRiskAvoid,
		},
		{
			name: "overbought",
			mutate: func(s *contracts.Snapshot) {
				*s = contracts.Snapshot{Close: 12, RSI14: contracts.Float(85)}
			},
			wantScore:    0,
			wantCategory: contracts.CategoryOverboughtWarning,
		},
		{
			name: "rsi exactly at threshold does not score",
			mutate: func(s *contracts.Snapshot) {
				*s = contracts.Snapshot{Close: 12, RSI14: contracts.Float(35)}
			},
			wantScore:    0,
			wantCategory: contracts.CategoryHold,
		},
	}

	scorer := defaultScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := dipSnapshot()
			tt.mutate(&snap)

			ev := scorer.Evaluate(&snap)
			assert.Equal(t, tt.wantScore, ev.Score)
			assert.Equal(t, tt.wantCategory, ev.Category)
			assert.Equal(t, tt.wantStop, ev.StopLoss)
			assert.NotEmpty(t, ev.Advice)
		})
	}
}

func TestScorer_WatchWithUndefinedMA5(t *testing.T) {
	snap := dipSnapshot()
	snap.Return250 = contracts.Undefined
	snap.Bias20 = contracts.Undefined
	snap.VolumeRatio = contracts.Undefined
	snap.MA5 = contracts.Undefined

	ev := defaultScorer().Evaluate(&snap)
	assert.Equal(t, contracts.CategoryWatch, ev.Category)
	assert.False(t, ev.StopLoss.Valid)
}

func TestScorer_ScoreAt(t *testing.T) {
	scorer := defaultScorer()
	snaps := make([]contracts.Snapshot, 25)
	for i := range snaps {
		snaps[i] = dipSnapshot()
	}

	_, err := scorer.ScoreAt(snaps, 18)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	ev, err := scorer.ScoreAt(snaps, 19)
	require.NoError(t, err)
	assert.Equal(t, 115, ev.Score)
	assert.Len(t, ev.Matched, 6)

	_, err = scorer.ScoreAt(snaps, 25)
	assert.Error(t, err)
}

func TestScorer_Score(t *testing.T) {
	scorer := defaultScorer()
	series := &contracts.BarSeries{Code: "510300"}

	_, err := scorer.Score(series, nil)
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	_, err = scorer.Score(series, make([]contracts.Snapshot, 5))
	assert.ErrorIs(t, err, contracts.ErrInsufficientHistory)

	snaps := make([]contracts.Snapshot, 20)
	snaps[19] = dipSnapshot()
	res, err := scorer.Score(series, snaps)
	require.NoError(t, err)
	assert.Equal(t, "510300", res.Code)
	assert.Equal(t, contracts.UnknownName, res.Name)
	assert.Equal(t, 9.0, res.Price)
	assert.Equal(t, contracts.CategoryStrongBuy, res.Category)
	assert.Equal(t, snaps[19].Date, res.Date)
}

func TestScorer_CustomThresholds(t *testing.T) {
	cfg := strategyconfig.Default().Scoring
	v := 40.0
	cfg.Conditions[1].Max = &v
	cfg.Conditions[1].MaxInclusive = true

	snap := contracts.Snapshot{RSI14: contracts.Float(40)}
	ev := NewScorer(cfg).Evaluate(&snap)
	assert.Equal(t, 25, ev.Score)
	assert.Equal(t, []string{"rsi_oversold"}, ev.Matched)
}
