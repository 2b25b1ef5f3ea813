package s2_signals

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/dipscan/internal/contracts"
	"github.com/wonny/dipscan/pkg/logger"
)

type stubSource struct {
	series map[string]*contracts.BarSeries
	err    error
	panics bool
}

func (s *stubSource) List(ctx context.Context) ([]contracts.SourceFile, error) {
	return nil, nil
}

func (s *stubSource) Load(ctx context.Context, f contracts.SourceFile) (*contracts.BarSeries, error) {
	if s.panics {
		panic("corrupt file")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.series[f.Code], nil
}

func makeSeries(code string, n int) *contracts.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := 10 + float64(i%3)
		bars[i] = contracts.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	s := &contracts.BarSeries{Code: code, Name: "test etf", Bars: bars}
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

func TestBuilder_Build(t *testing.T) {
	src := &stubSource{series: map[string]*contracts.BarSeries{
		"510300": makeSeries("510300", 30),
		"159915": makeSeries("159915", 5),
	}}
	b := NewBuilder(src, defaultScorer(), logger.Nop())

	out := b.Build(context.Background(), contracts.SourceFile{Code: "510300", Path: "510300.csv"})
	require.True(t, out.OK())
	assert.Equal(t, "510300", out.Result.Code)
	assert.Equal(t, "test etf", out.Result.Name)
	require.NotNil(t, out.Latest)
	assert.Equal(t, out.Result.Price, out.Latest.Close)

	short := b.Build(context.Background(), contracts.SourceFile{Code: "159915"})
	assert.False(t, short.OK())
	assert.ErrorIs(t, short.Err, contracts.ErrInsufficientHistory)
	require.NotNil(t, short.Latest, "latest price kept for ledger refresh")
}

func TestBuilder_BuildLoadError(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("bad row: %w", contracts.ErrMalformedInput)}
	out := NewBuilder(src, defaultScorer(), logger.Nop()).Build(context.Background(), contracts.SourceFile{Code: "510300"})

	assert.False(t, out.OK())
	assert.Nil(t, out.Latest)
	assert.Equal(t, "malformed-input", out.SkipReason())
}

func TestBuilder_BuildRecoversPanic(t *testing.T) {
	src := &stubSource{panics: true}
	var out contracts.Outcome
	assert.NotPanics(t, func() {
		out = NewBuilder(src, defaultScorer(), logger.Nop()).Build(context.Background(), contracts.SourceFile{Code: "510300"})
	})
	assert.Error(t, out.Err)
	assert.Nil(t, out.Result)
}
