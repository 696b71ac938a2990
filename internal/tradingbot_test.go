package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/varta/config"
	"github.com/vadiminshakov/varta/internal/domain"
	"github.com/vadiminshakov/varta/internal/engine"
	"github.com/vadiminshakov/varta/internal/services/pricer"
	"github.com/vadiminshakov/varta/pkg/retrier"
	"go.uber.org/zap"
)

// failingPricer always errors, simulating an unreachable exchange.
type failingPricer struct {
	mu    sync.Mutex
	calls int
}

func (p *failingPricer) GetPrice(context.Context, domain.Pair) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return decimal.Decimal{}, errors.New("exchange unreachable")
}

func (p *failingPricer) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// scriptedPricer serves a fixed price sequence and then repeats the
// last price.
type scriptedPricer struct {
	mu     sync.Mutex
	prices []decimal.Decimal
	next   int
}

func (p *scriptedPricer) GetPrice(context.Context, domain.Pair) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price := p.prices[p.next]
	if p.next < len(p.prices)-1 {
		p.next++
	}
	return price, nil
}

type noopTrader struct{}

func (noopTrader) SubmitMarketOrder(context.Context, domain.Side, decimal.Decimal, string) error {
	return nil
}

func newTestBot(t *testing.T, p pricer.Pricer) *TradingBot {
	t.Helper()

	pair := domain.Pair{From: "BTC", To: "USDT"}
	thresholds, err := domain.NewThresholds(true,
		decimal.NewFromInt(2), decimal.NewFromInt(3),
		decimal.NewFromInt(5), decimal.NewFromInt(7))
	require.NoError(t, err)

	session, err := engine.NewSession(engine.Config{
		Pair:       pair,
		Mode:       domain.ModeMixed,
		Thresholds: thresholds,
		Quantity:   decimal.RequireFromString("0.001"),
		Cooldown:   60 * time.Second,
	}, noopTrader{}, zap.NewNop())
	require.NoError(t, err)

	return &TradingBot{
		Session: session,
		Pricer:  p,
		Config: config.Config{
			Pair:              pair,
			Mode:              domain.ModeMixed,
			PollPriceInterval: 5 * time.Millisecond,
			Cooldown:          60 * time.Second,
		},
		retrier: retrier.New(retrier.WithInitialInterval(time.Millisecond), retrier.WithMaxRetries(1)),
	}
}

func TestRunSkipsObservationsWhenPriceUnavailable(t *testing.T) {
	pricer := &failingPricer{}
	bot := newTestBot(t, pricer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- bot.Run(ctx, zap.NewNop())
	}()

	// let several polls fail before cancelling
	require.Eventually(t, func() bool {
		return pricer.callCount() >= 3
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancellation")
	}

	// failed fetches never reached the session
	assert.Empty(t, bot.Session.Records())
	assert.True(t, bot.Session.ReferencePrice().IsZero())
	assert.Equal(t, engine.StateStopped, bot.Session.State())
}

func TestRunStopsSessionAtObservationBoundary(t *testing.T) {
	pricer := &scriptedPricer{prices: []decimal.Decimal{
		decimal.NewFromInt(100),
		decimal.NewFromInt(97),
	}}
	bot := newTestBot(t, pricer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- bot.Run(ctx, zap.NewNop())
	}()

	// first tick initializes the reference at 100, the next triggers a
	// buy at 97 and rebases; after that the deviation is zero
	require.Eventually(t, func() bool {
		return len(bot.Session.Records()) == 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancellation")
	}

	assert.Equal(t, engine.StateStopped, bot.Session.State())

	records := bot.Session.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.SideBuy, records[0].Side)
	assert.True(t, decimal.NewFromInt(97).Equal(records[0].Price))

	summary := bot.Session.Summary()
	assert.Equal(t, 1, summary.Trades)
	assert.True(t, decimal.RequireFromString("0.001").Equal(summary.TotalBought))
}
