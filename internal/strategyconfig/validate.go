package strategyconfig

import (
	"fmt"

	"github.com/wonny/dipscan/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if err := validateScoring(&cfg.Scoring); err != nil {
		return err
	}
	if err := validateBacktest(&cfg.Backtest); err != nil {
		return err
	}
	return validateLedger(&cfg.Ledger)
}

func validateScoring(s *Scoring) error {
	if s.MinBars < 1 {
		return ValidationError{"scoring.min_bars", "must be >= 1"}
	}
	if len(s.Conditions) == 0 {
		return ValidationError{"scoring.conditions", "at least one condition required"}
	}

	names := make(map[string]bool, len(s.Conditions))
	for i := range s.Conditions {
		c := &s.Conditions[i]
		field := fmt.Sprintf("scoring.conditions[%d]", i)
		if c.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if names[c.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate name %q", c.Name)}
		}
		names[c.Name] = true
		if c.Points <= 0 {
			return ValidationError{field + ".points", "must be > 0"}
		}
		if err := validateCondition(field, c); err != nil {
			return err
		}
	}

	for i := range s.RiskRules {
		r := &s.RiskRules[i]
		field := fmt.Sprintf("scoring.risk_rules[%d]", i)
		if _, err := contracts.ParseCategory(string(r.Category)); err != nil {
			return ValidationError{field + ".category", err.Error()}
		}
		if len(r.When) == 0 {
			return ValidationError{field + ".when", "at least one predicate required"}
		}
		for j := range r.When {
			if err := validateCondition(fmt.Sprintf("%s.when[%d]", field, j), &r.When[j]); err != nil {
				return err
			}
		}
	}

	prev := -1
	for i, b := range s.Bands {
		field := fmt.Sprintf("scoring.bands[%d]", i)
		if _, err := contracts.ParseCategory(string(b.Category)); err != nil {
			return ValidationError{field + ".category", err.Error()}
		}
		switch b.StopLoss {
		case StopAtLow, StopAtMA5, StopAtNone, "":
		default:
			return ValidationError{field + ".stop_loss", "must be one of: low, ma5, none"}
		}
		// 높은 점수 밴드부터
		if prev >= 0 && b.MinScore >= prev {
			return ValidationError{field + ".min_score", "bands must be ordered by descending min_score"}
		}
		prev = b.MinScore
	}

	return nil
}

func validateCondition(field string, c *Condition) error {
	known := false
	for _, name := range contracts.IndicatorNames() {
		if name == c.Indicator {
			known = true
			break
		}
	}
	if !known {
		return ValidationError{field + ".indicator", fmt.Sprintf("unknown indicator %q", c.Indicator)}
	}
	if c.Min == nil && c.Max == nil {
		return ValidationError{field, "min or max required"}
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return ValidationError{field, "min must be <= max"}
	}
	return nil
}

func validateBacktest(b *Backtest) error {
	if len(b.Horizons) == 0 {
		return ValidationError{"backtest.horizons", "at least one horizon required"}
	}
	seen := make(map[int]bool, len(b.Horizons))
	for _, h := range b.Horizons {
		if h < 1 {
			return ValidationError{"backtest.horizons", fmt.Sprintf("horizon %d must be >= 1", h)}
		}
		if seen[h] {
			return ValidationError{"backtest.horizons", fmt.Sprintf("duplicate horizon %d", h)}
		}
		seen[h] = true
	}
	if b.StopLossPct >= 0 || b.StopLossPct <= -100 {
		return ValidationError{"backtest.stop_loss_pct", "must be in (-100, 0)"}
	}
	if b.WarmupBars < 0 {
		return ValidationError{"backtest.warmup_bars", "must be >= 0"}
	}
	if b.MinBars < b.WarmupBars+b.MaxHorizon() {
		return ValidationError{"backtest.min_bars", "must be >= warmup_bars + max(horizons)"}
	}
	if b.MinTurnover < 0 {
		return ValidationError{"backtest.min_turnover", "must be >= 0"}
	}
	if b.MaxVolumeRatio < 0 {
		return ValidationError{"backtest.max_volume_ratio", "must be >= 0"}
	}
	return nil
}

func validateLedger(l *Ledger) error {
	if len(l.AdmissionCategories) == 0 {
		return ValidationError{"ledger.admission_categories", "at least one category required"}
	}
	for _, c := range l.AdmissionCategories {
		if _, err := contracts.ParseCategory(string(c)); err != nil {
			return ValidationError{"ledger.admission_categories", err.Error()}
		}
	}
	if l.DefaultStopPct >= 0 || l.DefaultStopPct <= -100 {
		return ValidationError{"ledger.default_stop_pct", "must be in (-100, 0)"}
	}
	if l.TakeProfitPct <= 0 {
		return ValidationError{"ledger.take_profit_pct", "must be > 0"}
	}
	return nil
}
