package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/pkg/logger"
)

type stubSource struct {
	rate  float64
	err   error
	calls int
}

func (s *stubSource) FxRate(ctx context.Context, from, to string) (float64, error) {
	s.calls++
	return s.rate, s.err
}

func TestConvert_SameCurrencyNoNetwork(t *testing.T) {
	src := &stubSource{err: errors.New("must not be called")}
	p := NewProvider(src, time.Hour, logger.Nop())

	for _, ccy := range []string{"EUR", "USD", "chf"} {
		got, ok := p.Convert(context.Background(), 10.0, ccy, ccy)
		require.True(t, ok)
		assert.Equal(t, 10.0, got)
	}
	assert.Equal(t, 0, src.calls)
}

func TestRate_EmptyCode(t *testing.T) {
	src := &stubSource{rate: 1.1}
	p := NewProvider(src, time.Hour, logger.Nop())

	_, ok := p.Rate(context.Background(), "", "USD")
	assert.False(t, ok)
	assert.Equal(t, 0, src.calls)
}

func TestRate_CachedWithinTTL(t *testing.T) {
	src := &stubSource{rate: 1.08}
	p := NewProvider(src, time.Hour, logger.Nop())

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	ctx := context.Background()
	rate, ok := p.Rate(ctx, "eur", "usd")
	require.True(t, ok)
	assert.Equal(t, 1.08, rate)

	now = now.Add(59 * time.Minute)
	_, _ = p.Rate(ctx, "EUR", "USD")
	assert.Equal(t, 1, src.calls, "fresh entry served from cache")

	now = now.Add(2 * time.Minute)
	src.rate = 1.09
	rate, ok = p.Rate(ctx, "EUR", "USD")
	require.True(t, ok)
	assert.Equal(t, 1.09, rate)
	assert.Equal(t, 2, src.calls, "expired entry refetched")
}

func TestRate_SourceFailure(t *testing.T) {
	p := NewProvider(&stubSource{err: errors.New("no pair")}, time.Hour, logger.Nop())

	_, ok := p.Convert(context.Background(), 5, "EUR", "JPY")
	assert.False(t, ok)
}

func TestRate_NonPositiveRejected(t *testing.T) {
	p := NewProvider(&stubSource{rate: 0}, time.Hour, logger.Nop())

	_, ok := p.Rate(context.Background(), "EUR", "USD")
	assert.False(t, ok)
}

func TestConvert_UsesRate(t *testing.T) {
	p := NewProvider(&stubSource{rate: 0.5}, time.Hour, logger.Nop())

	got, ok := p.Convert(context.Background(), 4, "USD", "EUR")
	require.True(t, ok)
	assert.Equal(t, 2.0, got)
}

func TestInvalidate(t *testing.T) {
	src := &stubSource{rate: 1.2}
	p := NewProvider(src, time.Hour, logger.Nop())
	ctx := context.Background()

	p.Rate(ctx, "GBP", "EUR")
	p.Invalidate()
	p.Rate(ctx, "GBP", "EUR")

	assert.Equal(t, 2, src.calls)
}
