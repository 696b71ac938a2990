package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/varta/internal/domain"
	"go.uber.org/zap"
)

type orderCall struct {
	side     domain.Side
	quantity decimal.Decimal
	orderID  string
}

// fakeTrader records submitted orders and can be switched to fail.
type fakeTrader struct {
	calls []orderCall
	err   error
}

func (f *fakeTrader) SubmitMarketOrder(_ context.Context, side domain.Side, quantity decimal.Decimal, clientOrderID string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, orderCall{side: side, quantity: quantity, orderID: clientOrderID})
	return nil
}

func relativeThresholds(t *testing.T, buy, sell, stepBuy, stepSell int64) domain.Thresholds {
	t.Helper()
	thresholds, err := domain.NewThresholds(true,
		decimal.NewFromInt(buy), decimal.NewFromInt(sell),
		decimal.NewFromInt(stepBuy), decimal.NewFromInt(stepSell))
	require.NoError(t, err)
	return thresholds
}

func absoluteThresholds(t *testing.T, buy, sell, stepBuy, stepSell int64) domain.Thresholds {
	t.Helper()
	thresholds, err := domain.NewThresholds(false,
		decimal.NewFromInt(buy), decimal.NewFromInt(sell),
		decimal.NewFromInt(stepBuy), decimal.NewFromInt(stepSell))
	require.NoError(t, err)
	return thresholds
}

func newTestSession(t *testing.T, mode domain.Mode, thresholds domain.Thresholds, trader Trader) *Session {
	t.Helper()
	session, err := NewSession(Config{
		Pair:       domain.Pair{From: "BTC", To: "USDT"},
		Mode:       mode,
		Thresholds: thresholds,
		Quantity:   decimal.RequireFromString("0.001"),
		Cooldown:   60 * time.Second,
	}, trader, zap.NewNop())
	require.NoError(t, err)
	return session
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFirstObservationInitializesReference(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	require.Equal(t, StateIdle, session.State())

	event, err := session.Observe(context.Background(), price("100"), time.Now())
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Equal(t, StateMonitoring, session.State())
	assert.True(t, price("100").Equal(session.ReferencePrice()))
	assert.Empty(t, trader.calls)
}

func TestPrimaryBuyRelativeAndRebase(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	event, err := session.Observe(context.Background(), price("98"), start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.SideBuy, event.Side)
	assert.False(t, event.Step)
	assert.True(t, price("98").Equal(event.Price))

	// primary execution rebases the reference to the fill price
	assert.True(t, price("98").Equal(session.ReferencePrice()))

	require.Len(t, trader.calls, 1)
	assert.Equal(t, domain.SideBuy, trader.calls[0].side)
	assert.True(t, price("0.001").Equal(trader.calls[0].quantity))
	assert.NotEmpty(t, trader.calls[0].orderID)
}

func TestCooldownBlocksSecondOrder(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	event, err := session.Observe(context.Background(), price("98"), start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, event)

	// deviation against the rebased reference exceeds the threshold
	// again, but less than the cooldown has elapsed
	event, err = session.Observe(context.Background(), price("95.9"), start.Add(2*time.Second))
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Len(t, trader.calls, 1)
	assert.Len(t, session.Records(), 1)
}

func TestCooldownAllowsOrderAfterInterval(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	first, err := session.Observe(context.Background(), price("98"), start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := session.Observe(context.Background(), price("95.9"), start.Add(61*time.Second))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, domain.SideBuy, second.Side)
	assert.Len(t, trader.calls, 2)
}

func TestCooldownInvariantAcrossSession(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	// every observation sits 3% below the current reference, so the buy
	// condition holds on every tick regardless of rebasing
	drop := decimal.RequireFromString("0.97")
	for i := 1; i <= 180; i++ {
		trigger := session.ReferencePrice().Mul(drop)
		_, err := session.Observe(context.Background(), trigger, start.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	records := session.Records()
	require.GreaterOrEqual(t, len(records), 2)
	for i := 1; i < len(records); i++ {
		gap := records[i].Time.Sub(records[i-1].Time)
		assert.GreaterOrEqual(t, gap, 60*time.Second, "orders %d and %d violate cooldown", i-1, i)
	}
}

func TestPrimarySellAbsoluteThresholds(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, absoluteThresholds(t, 5, 5, 50, 50), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	// 94.9 <= 100 - 5 triggers the buy
	event, err := session.Observe(context.Background(), price("94.9"), start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.SideBuy, event.Side)
	assert.False(t, event.Step)
}

func TestAbsoluteBuyNotTriggeredAboveLine(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, absoluteThresholds(t, 5, 5, 50, 50), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	// 95.1 > 100 - 5, no order
	event, err := session.Observe(context.Background(), price("95.1"), start.Add(time.Second))
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Empty(t, trader.calls)
}

func TestStepBuyUsesRelativeDeviationInAbsoluteMode(t *testing.T) {
	trader := &fakeTrader{}
	// primary thresholds are absolute and far away; the step buy
	// threshold is 5% and still evaluated in relative terms
	session := newTestSession(t, domain.ModeMixed, absoluteThresholds(t, 50, 50, 5, 5), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	event, err := session.Observe(context.Background(), price("94"), start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.SideBuy, event.Side)
	assert.True(t, event.Step)

	// step execution does not rebase the reference
	assert.True(t, price("100").Equal(session.ReferencePrice()))
}

func TestStepSellDoesNotRebase(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, absoluteThresholds(t, 50, 50, 5, 5), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	event, err := session.Observe(context.Background(), price("107"), start.Add(time.Second))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.SideSell, event.Side)
	assert.True(t, event.Step)
	assert.True(t, price("100").Equal(session.ReferencePrice()))
}

func TestBuyOnlyModeNeverSells(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeBuyOnly, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	// price satisfies both the primary and the step sell conditions
	event, err := session.Observe(context.Background(), price("120"), start.Add(time.Second))
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Empty(t, trader.calls)

	for _, record := range session.Records() {
		assert.NotEqual(t, domain.SideSell, record.Side)
	}
}

func TestSellOnlyModeNeverBuys(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeSellOnly, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	event, err := session.Observe(context.Background(), price("80"), start.Add(time.Second))
	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Empty(t, trader.calls)
}

func TestOrderFailureLeavesStateUntouched(t *testing.T) {
	trader := &fakeTrader{err: errors.New("order rejected")}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	event, err := session.Observe(context.Background(), price("98"), start.Add(time.Second))
	require.Error(t, err)
	assert.Nil(t, event)

	// no rebase, no ledger record, no cooldown mark
	assert.True(t, price("100").Equal(session.ReferencePrice()))
	assert.Empty(t, session.Records())

	// the next observation may trade immediately because the failed
	// attempt did not consume the cooldown
	trader.err = nil
	event, err = session.Observe(context.Background(), price("98"), start.Add(2*time.Second))
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.SideBuy, event.Side)
}

func TestStoppedSessionRejectsObservations(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	_, err := session.Observe(context.Background(), price("100"), time.Now())
	require.NoError(t, err)

	summary := session.Stop()
	assert.Equal(t, 0, summary.Trades)
	assert.Equal(t, StateStopped, session.State())

	_, err = session.Observe(context.Background(), price("98"), time.Now())
	require.ErrorIs(t, err, ErrSessionStopped)

	// Stop is idempotent
	again := session.Stop()
	assert.Equal(t, summary.Trades, again.Trades)
}

func TestSummaryAfterTrades(t *testing.T) {
	trader := &fakeTrader{}
	session := newTestSession(t, domain.ModeMixed, relativeThresholds(t, 2, 3, 5, 7), trader)

	start := time.Now()
	_, err := session.Observe(context.Background(), price("100"), start)
	require.NoError(t, err)

	_, err = session.Observe(context.Background(), price("98"), start.Add(time.Second))
	require.NoError(t, err)

	_, err = session.Observe(context.Background(), price("101"), start.Add(2*time.Minute))
	require.NoError(t, err)

	summary := session.Summary()
	assert.Equal(t, 2, summary.Trades)
	assert.True(t, price("0.001").Equal(summary.TotalBought))
	assert.True(t, price("0.001").Equal(summary.TotalSold))
	assert.True(t, summary.PercentDefined)
	// realized P&L is recorded as zero per trade
	assert.True(t, summary.TotalProfit.IsZero())
	assert.True(t, summary.TotalLoss.IsZero())
}

func TestNewSessionValidation(t *testing.T) {
	thresholds := relativeThresholds(t, 2, 3, 5, 7)

	_, err := NewSession(Config{
		Pair:       domain.Pair{From: "BTC", To: "USDT"},
		Mode:       domain.ModeMixed,
		Thresholds: thresholds,
		Quantity:   decimal.Zero,
	}, &fakeTrader{}, zap.NewNop())
	require.Error(t, err)

	_, err = NewSession(Config{
		Mode:       domain.ModeMixed,
		Thresholds: thresholds,
		Quantity:   decimal.NewFromInt(1),
	}, &fakeTrader{}, zap.NewNop())
	require.Error(t, err)

	_, err = NewSession(Config{
		Pair:       domain.Pair{From: "BTC", To: "USDT"},
		Mode:       domain.ModeMixed,
		Thresholds: thresholds,
		Quantity:   decimal.NewFromInt(1),
	}, nil, zap.NewNop())
	require.Error(t, err)
}
