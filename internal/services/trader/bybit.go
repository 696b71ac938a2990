package trader

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
)

type BybitTrader struct {
	client *bybit.Client
	pair   domain.Pair
}

func NewBybitTrader(client *bybit.Client, pair domain.Pair) *BybitTrader {
	return &BybitTrader{client: client, pair: pair}
}

// SubmitMarketOrder places an immediate spot market order.
func (t *BybitTrader) SubmitMarketOrder(ctx context.Context, side domain.Side, quantity decimal.Decimal, clientOrderID string) error {
	orderSide := bybit.SideBuy
	if side == domain.SideSell {
		orderSide = bybit.SideSell
	}

	linkID := clientOrderID
	_, err := t.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(t.pair.Symbol()),
		Side:        orderSide,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         quantity.String(),
		OrderLinkID: &linkID,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create bybit %s order", side.String())
	}
	return nil
}
