package strategyconfig

import "github.com/wonny/dipscan/internal/contracts"

// Config는 dip 스캐너 전략의 전체 설정
// ⭐ SSOT: 모든 임계값/가중치는 여기서만 정의
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Scoring  Scoring  `yaml:"scoring" json:"scoring"`
	Backtest Backtest `yaml:"backtest" json:"backtest"`
	Ledger   Ledger   `yaml:"ledger" json:"ledger"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Scoring S2: 점수 규칙표
type Scoring struct {
	// MinBars below this the instrument is skipped as insufficient history
	MinBars int `yaml:"min_bars" json:"min_bars"`

	Conditions []Condition `yaml:"conditions" json:"conditions"`
	RiskRules  []RiskRule  `yaml:"risk_rules" json:"risk_rules"`
	Bands      []Band      `yaml:"bands" json:"bands"`

	// HoldAdvice is used when no risk rule and no band matches
	HoldAdvice string `yaml:"hold_advice" json:"hold_advice"`
}

// Condition is one scoring predicate over a named indicator.
// Unset bounds are open; an undefined indicator never matches.
type Condition struct {
	Name         string   `yaml:"name" json:"name"`
	Indicator    string   `yaml:"indicator" json:"indicator"`
	Min          *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max          *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	MinInclusive bool     `yaml:"min_inclusive" json:"min_inclusive"`
	MaxInclusive bool     `yaml:"max_inclusive" json:"max_inclusive"`
	Points       int      `yaml:"points" json:"points"`
}

// Matches reports whether v satisfies the bounds
func (c *Condition) Matches(v contracts.NullFloat) bool {
	if !v.Valid {
		return false
	}
	if c.Min != nil {
		if c.MinInclusive && v.Value < *c.Min {
			return false
		}
		if !c.MinInclusive && v.Value <= *c.Min {
			return false
		}
	}
	if c.Max != nil {
		if c.MaxInclusive && v.Value > *c.Max {
			return false
		}
		if !c.MaxInclusive && v.Value >= *c.Max {
			return false
		}
	}
	return true
}

// RiskRule overrides the band category when every predicate holds.
// Points on the predicates are ignored.
type RiskRule struct {
	Name     string             `yaml:"name" json:"name"`
	Category contracts.Category `yaml:"category" json:"category"`
	Advice   string             `yaml:"advice" json:"advice"`
	When     []Condition        `yaml:"when" json:"when"`
}

// Stop-loss anchors for bands
const (
	StopAtLow  = "low"
	StopAtMA5  = "ma5"
	StopAtNone = "none"
)

// Band maps a score floor to a category; bands are checked in order
type Band struct {
	MinScore int                `yaml:"min_score" json:"min_score"`
	Category contracts.Category `yaml:"category" json:"category"`
	StopLoss string             `yaml:"stop_loss" json:"stop_loss"`
	Advice   string             `yaml:"advice" json:"advice"`
}

// Backtest 히스토리 리플레이 설정
type Backtest struct {
	TriggerScore int     `yaml:"trigger_score" json:"trigger_score"`
	Horizons     []int   `yaml:"horizons" json:"horizons"`
	StopLossPct  float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"` // negative, e.g. -5
	WarmupBars   int     `yaml:"warmup_bars" json:"warmup_bars"`
	MinBars      int     `yaml:"min_bars" json:"min_bars"`

	// Gates; 0 disables
	MinTurnover    float64 `yaml:"min_turnover" json:"min_turnover"`
	MaxVolumeRatio float64 `yaml:"max_volume_ratio" json:"max_volume_ratio"`
}

// MaxHorizon returns the longest configured horizon
func (b *Backtest) MaxHorizon() int {
	max := 0
	for _, h := range b.Horizons {
		if h > max {
			max = h
		}
	}
	return max
}

// Ledger 가상 포지션 원장 설정
type Ledger struct {
	AdmissionCategories []contracts.Category `yaml:"admission_categories" json:"admission_categories"`
	AdmissionScore      int                  `yaml:"admission_score" json:"admission_score"`
	DefaultStopPct      float64              `yaml:"default_stop_pct" json:"default_stop_pct"` // negative
	TakeProfitPct       float64              `yaml:"take_profit_pct" json:"take_profit_pct"`
}

// Admits reports whether a category may open a position
func (l *Ledger) Admits(c contracts.Category) bool {
	for _, ac := range l.AdmissionCategories {
		if ac == c {
			return true
		}
	}
	return false
}
