package contracts

import "time"

// Indicator names addressable from the rule table
const (
	IndicatorRSI14         = "rsi14"
	IndicatorK             = "k"
	IndicatorD             = "d"
	IndicatorJ             = "j"
	IndicatorMA5           = "ma5"
	IndicatorMA20          = "ma20"
	IndicatorBias5         = "bias5"
	IndicatorBias20        = "bias20"
	IndicatorVolumeRatio   = "volume_ratio"
	IndicatorReturn5       = "return_5"
	IndicatorReturn20      = "return_20"
	IndicatorReturn250     = "return_250"
	IndicatorDeclineStreak = "decline_streak"
	IndicatorPctChange     = "pct_change"
	IndicatorTurnover      = "turnover"
	IndicatorClose         = "close"
)

// IndicatorNames lists every name accepted by Snapshot.Lookup
func IndicatorNames() []string {
	return []string{
		IndicatorRSI14, IndicatorK, IndicatorD, IndicatorJ,
		IndicatorMA5, IndicatorMA20, IndicatorBias5, IndicatorBias20,
		IndicatorVolumeRatio, IndicatorReturn5, IndicatorReturn20, IndicatorReturn250,
		IndicatorDeclineStreak, IndicatorPctChange, IndicatorTurnover, IndicatorClose,
	}
}

// Snapshot holds every indicator derived for one bar
// ⭐ SSOT: S1 → S2 지표 데이터 전달
type Snapshot struct {
	Date          time.Time `json:"date"`
	Close         float64   `json:"close"`
	Low           float64   `json:"low"`
	High          float64   `json:"high"`
	Volume        float64   `json:"volume"`
	Turnover      float64   `json:"turnover"`
	PercentChange float64   `json:"pct_change"`

	RSI14       NullFloat `json:"rsi14"`
	K           NullFloat `json:"k"`
	D           NullFloat `json:"d"`
	J           NullFloat `json:"j"`
	MA5         NullFloat `json:"ma5"`
	MA20        NullFloat `json:"ma20"`
	Bias5       NullFloat `json:"bias5"`
	Bias20      NullFloat `json:"bias20"`
	VolumeRatio NullFloat `json:"volume_ratio"`
	Return5     NullFloat `json:"return_5"`
	Return20    NullFloat `json:"return_20"`
	Return250   NullFloat `json:"return_250"`

	DeclineStreak     int     `json:"decline_streak"`
	CumulativeDecline float64 `json:"cumulative_decline"` // sum of pct_change over the streak
}

// Lookup resolves an indicator by name. ok is false for unknown names.
func (s *Snapshot) Lookup(name string) (v NullFloat, ok bool) {
	switch name {
	case IndicatorRSI14:
		return s.RSI14, true
	case IndicatorK:
		return s.K, true
	case IndicatorD:
		return s.D, true
	case IndicatorJ:
		return s.J, true
	case IndicatorMA5:
		return s.MA5, true
	case IndicatorMA20:
		return s.MA20, true
	case IndicatorBias5:
		return s.Bias5, true
	case IndicatorBias20:
		return s.Bias20, true
	case IndicatorVolumeRatio:
		return s.VolumeRatio, true
	case IndicatorReturn5:
		return s.Return5, true
	case IndicatorReturn20:
		return s.Return20, true
	case IndicatorReturn250:
		return s.Return250, true
	case IndicatorDeclineStreak:
		return Float(float64(s.DeclineStreak)), true
	case IndicatorPctChange:
		return Float(s.PercentChange), true
	case IndicatorTurnover:
		return Float(s.Turnover), true
	case IndicatorClose:
		return Float(s.Close), true
	}
	return Undefined, false
}
