package s2_signals

import (
	"context"
	"fmt"

	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/internal/s1_indicators"
	"github.com/wonny/dipscan/pkg/logger"
)

// Builder turns one source file into an Outcome: load, indicators, score
// ⭐ SSOT: 종목별 시그널 생성은 여기서만
type Builder struct {
	source contracts.BarSource
	scorer *Scorer
	logger *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(source contracts.BarSource, scorer *Scorer, log *logger.Logger) *Builder {
	return &Builder{
		source: source,
		scorer: scorer,
		logger: log.WithField("module", "s2_signals"),
	}
}

// Build never returns an error: failures become a skipped Outcome.
// A panic inside the pipeline is recovered into a skipped Outcome too.
func (b *Builder) Build(ctx context.Context, file contracts.SourceFile) (out contracts.Outcome) {
	out = contracts.Outcome{Code: file.Code, Source: file.Path}

	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("%s: panic: %v", file.Code, r)
		}
	}()

	series, err := b.source.Load(ctx, file)
	if err != nil {
		out.Err = err
		b.logSkip(&out)
		return out
	}

	if last, ok := series.Latest(); ok {
		out.Latest = &contracts.LatestPrice{
			Code:  series.Code,
			Name:  series.Name,
			Date:  last.Date,
			Close: last.Close,
		}
	}

	snaps := s1_indicators.Compute(series)
	result, err := b.scorer.Score(series, snaps)
	if err != nil {
		out.Err = err
		b.logSkip(&out)
		return out
	}

	out.Result = result
	b.logger.WithFields(map[string]interface{}{
		"code":     result.Code,
		"score":    result.Score,
		"category": result.Category,
	}).Debug("Scored instrument")
	return out
}

func (b *Builder) logSkip(out *contracts.Outcome) {
	b.logger.WithFields(map[string]interface{}{
		"code":   out.Code,
		"reason": out.SkipReason(),
		"error":  out.Err.Error(),
	}).Debug("Instrument skipped")
}
