package s2_signals

import (
	"fmt"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/strategyconfig"
)

// Evaluation is the scorer's verdict for one snapshot
type Evaluation struct {
	Score    int                 `json:"score"`
	Category contracts.Category  `json:"category"`
	Advice   string              `json:"advice"`
	StopLoss contracts.NullFloat `json:"stop_loss"`
	Matched  []string            `json:"matched"`   // satisfied condition names
	RiskRule string              `json:"risk_rule"` // matched risk rule, if any
}

// Scorer applies the weighted rule table to indicator snapshots
// ⭐ SSOT: 점수/카테고리 판정은 여기서만
type Scorer struct {
	cfg strategyconfig.Scoring
}

// NewScorer creates a scorer over an already validated rule table
func NewScorer(cfg strategyconfig.Scoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// MinBars returns the history needed before scoring
func (s *Scorer) MinBars() int {
	return s.cfg.MinBars
}

// Evaluate scores one snapshot. Undefined indicators simply fail their
// conditions. Risk rules are checked before bands; first match wins.
func (s *Scorer) Evaluate(snap *contracts.Snapshot) Evaluation {
	var ev Evaluation

	for i := range s.cfg.Conditions {
		c := &s.cfg.Conditions[i]
		v, _ := snap.Lookup(c.Indicator)
		if c.Matches(v) {
			ev.Score += c.Points
			ev.Matched = append(ev.Matched, c.Name)
		}
	}

	for i := range s.cfg.RiskRules {
		r := &s.cfg.RiskRules[i]
		if allMatch(snap, r.When) {
			ev.Category = r.Category
			ev.Advice = r.Advice
			ev.RiskRule = r.Name
			return ev
		}
	}

	for _, b := range s.cfg.Bands {
		if ev.Score >= b.MinScore {
			ev.Category = b.Category
			ev.Advice = b.Advice
			ev.StopLoss = stopLoss(snap, b.StopLoss)
			return ev
		}
	}

	ev.Category = contracts.CategoryHold
	ev.Advice = s.cfg.HoldAdvice
	return ev
}

// ScoreAt evaluates the snapshot at index i as if i were the latest bar
func (s *Scorer) ScoreAt(snaps []contracts.Snapshot, i int) (Evaluation, error) {
	if i < 0 || i >= len(snaps) {
		return Evaluation{}, fmt.Errorf("index %d out of range [0,%d)", i, len(snaps))
	}
	if i+1 < s.cfg.MinBars {
		return Evaluation{}, fmt.Errorf("%d bars, need %d: %w", i+1, s.cfg.MinBars, contracts.ErrInsufficientHistory)
	}
	return s.Evaluate(&snaps[i]), nil
}

// Score builds the signal for the latest bar of a series
func (s *Scorer) Score(series *contracts.BarSeries, snaps []contracts.Snapshot) (*contracts.SignalResult, error) {
	if len(snaps) == 0 {
		return nil, fmt.Errorf("%s: no bars: %w", series.Code, contracts.ErrInsufficientHistory)
	}

	i := len(snaps) - 1
	ev, err := s.ScoreAt(snaps, i)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Code, err)
	}

	name := series.Name
	if name == "" {
		name = contracts.UnknownName
	}

	return &contracts.SignalResult{
		Code:     series.Code,
		Name:     name,
		Date:     snaps[i].Date,
		Score:    ev.Score,
		Category: ev.Category,
		Advice:   ev.Advice,
		Price:    snaps[i].Close,
		StopLoss: ev.StopLoss,
		Snapshot: snaps[i],
	}, nil
}

func allMatch(snap *contracts.Snapshot, conds []strategyconfig.Condition) bool {
	for i := range conds {
		v, _ := snap.Lookup(conds[i].Indicator)
		if !conds[i].Matches(v) {
			return false
		}
	}
	return true
}

func stopLoss(snap *contracts.Snapshot, anchor string) contracts.NullFloat {
	switch anchor {
	case strategyconfig.StopAtLow:
		return contracts.Float(snap.Low)
	case strategyconfig.StopAtMA5:
		return snap.MA5
	default:
		return contracts.Undefined
	}
}
