package strategyconfig

import "github.com/wonny/dipscan/internal/contracts"

func f(v float64) *float64 { return &v }

// Default returns the canonical rule table used when no file is configured
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "dip_reversal",
			Version:    "1",
		},
		Scoring: Scoring{
			MinBars: 20,
			Conditions: []Condition{
				{Name: "decline_streak", Indicator: contracts.IndicatorDeclineStreak, Min: f(3), Max: f(5), MinInclusive: true, MaxInclusive: true, Points: 20},
				{Name: "rsi_oversold", Indicator: contracts.IndicatorRSI14, Max: f(35), Points: 25},
				{Name: "j_oversold", Indicator: contracts.IndicatorJ, Max: f(10), Points: 25},
				{Name: "yearly_drawdown", Indicator: contracts.IndicatorReturn250, Max: f(-15), Points: 15},
				{Name: "bias20_stretch", Indicator: contracts.IndicatorBias20, Max: f(-2.5), Points: 20},
				{Name: "shrinking_volume", Indicator: contracts.IndicatorVolumeRatio, Min: f(0.4), Max: f(1.0), Points: 10},
			},
			RiskRules: []RiskRule{
				{
					Name:     "heavy_volume_selloff",
					Category: contracts.CategoryRiskAvoid,
					Advice:   "heavy-volume sell-off, stay out",
					When: []Condition{
						{Indicator: contracts.IndicatorVolumeRatio, Min: f(2.0)},
						{Indicator: contracts.IndicatorPctChange, Max: f(-2)},
					},
				},
				{
					Name:     "overbought",
					Category: contracts.CategoryOverboughtWarning,
					Advice:   "overbought, consider trimming",
					When: []Condition{
						{Indicator: contracts.IndicatorRSI14, Min: f(80)},
					},
				},
			},
			Bands: []Band{
				{MinScore: 85, Category: contracts.CategoryStrongBuy, StopLoss: StopAtLow, Advice: "strong dip signal, buy with stop at today's low"},
				{MinScore: 65, Category: contracts.CategoryWatch, StopLoss: StopAtMA5, Advice: "watch, enter small with stop at MA5"},
			},
			HoldAdvice: "no signal",
		},
		Backtest: Backtest{
			TriggerScore: 90,
			Horizons:     []int{3, 5, 10},
			StopLossPct:  -5,
			WarmupBars:   30,
			MinBars:      260,
			MinTurnover:  5_000_000,
		},
		Ledger: Ledger{
			AdmissionCategories: []contracts.Category{contracts.CategoryStrongBuy, contracts.CategoryWatch},
			AdmissionScore:      65,
			DefaultStopPct:      -5,
			TakeProfitPct:       10,
		},
	}
}
