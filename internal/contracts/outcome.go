package contracts

import "errors"

// Outcome is the per-instrument result of one scan.
// Exactly one of Result and Err is set. Latest is filled whenever bars
// parsed, so open positions can be refreshed even for skipped instruments.
type Outcome struct {
	Code   string        `json:"code"`
	Source string        `json:"source"`
	Result *SignalResult `json:"result,omitempty"`
	Latest *LatestPrice  `json:"latest,omitempty"`
	Err    error         `json:"-"`
}

// OK reports whether scoring succeeded
func (o *Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}

// SkipReason classifies a skipped outcome for logging and summaries
func (o *Outcome) SkipReason() string {
	switch {
	case o.Err == nil:
		return ""
	case errors.Is(o.Err, ErrInsufficientHistory):
		return "insufficient-history"
	case errors.Is(o.Err, ErrMalformedInput):
		return "malformed-input"
	default:
		return "error"
	}
}
