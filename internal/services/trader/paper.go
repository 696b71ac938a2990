package trader

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
	"github.com/vadiminshakov/varta/internal/services/pricer"
	"go.uber.org/zap"
)

// PaperTrader simulates spot market orders against an in-memory wallet,
// so a session can run without exchange credentials. Fills are valued
// at the live price from the attached pricer.
type PaperTrader struct {
	mu     sync.Mutex
	pair   domain.Pair
	pricer pricer.Pricer
	logger *zap.Logger
	wallet map[string]decimal.Decimal
}

// NewPaperTrader creates a paper trader funded with an initial quote
// balance.
func NewPaperTrader(pair domain.Pair, p pricer.Pricer, initialQuote decimal.Decimal, logger *zap.Logger) (*PaperTrader, error) {
	if p == nil {
		return nil, errors.New("pricer is required for paper trader")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	wallet := map[string]decimal.Decimal{
		pair.From: decimal.Zero,
		pair.To:   initialQuote,
	}

	logger.Info("paper trader init",
		zap.String("pair", pair.String()),
		zap.String("quote", initialQuote.String()))

	return &PaperTrader{
		pair:   pair,
		pricer: p,
		logger: logger,
		wallet: wallet,
	}, nil
}

// SubmitMarketOrder fills the order against the wallet at the current
// market price. Insufficient balance rejects the order, mirroring an
// exchange rejection.
func (t *PaperTrader) SubmitMarketOrder(ctx context.Context, side domain.Side, quantity decimal.Decimal, clientOrderID string) error {
	price, err := t.pricer.GetPrice(ctx, t.pair)
	if err != nil {
		return errors.Wrap(err, "paper trader failed to price fill")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cost := quantity.Mul(price)

	switch side {
	case domain.SideBuy:
		if t.wallet[t.pair.To].LessThan(cost) {
			return errors.Errorf("order rejected: insufficient %s balance, need %s have %s",
				t.pair.To, cost.String(), t.wallet[t.pair.To].String())
		}
		t.wallet[t.pair.To] = t.wallet[t.pair.To].Sub(cost)
		t.wallet[t.pair.From] = t.wallet[t.pair.From].Add(quantity)
	case domain.SideSell:
		if t.wallet[t.pair.From].LessThan(quantity) {
			return errors.Errorf("order rejected: insufficient %s balance, need %s have %s",
				t.pair.From, quantity.String(), t.wallet[t.pair.From].String())
		}
		t.wallet[t.pair.From] = t.wallet[t.pair.From].Sub(quantity)
		t.wallet[t.pair.To] = t.wallet[t.pair.To].Add(cost)
	}

	t.logger.Info("paper fill",
		zap.String("order_id", clientOrderID),
		zap.String("side", side.String()),
		zap.String("price", price.String()),
		zap.String("quantity", quantity.String()),
		zap.String(t.pair.From+"_balance", t.wallet[t.pair.From].String()),
		zap.String(t.pair.To+"_balance", t.wallet[t.pair.To].String()))

	return nil
}

// Balance returns the wallet balance of a currency.
func (t *PaperTrader) Balance(currency string) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wallet[currency]
}
