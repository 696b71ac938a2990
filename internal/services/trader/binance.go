// Package trader submits market orders to exchanges.
package trader

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
)

type BinanceTrader struct {
	client *binance.Client
	pair   domain.Pair
}

func NewBinanceTrader(client *binance.Client, pair domain.Pair) *BinanceTrader {
	return &BinanceTrader{client: client, pair: pair}
}

// SubmitMarketOrder places an immediate market order. The quantity is
// expected to be already normalized to the instrument precision.
func (t *BinanceTrader) SubmitMarketOrder(ctx context.Context, side domain.Side, quantity decimal.Decimal, clientOrderID string) error {
	orderSide := binance.SideTypeBuy
	if side == domain.SideSell {
		orderSide = binance.SideTypeSell
	}

	_, err := t.client.NewCreateOrderService().Symbol(t.pair.Symbol()).
		Side(orderSide).Type(binance.OrderTypeMarket).
		Quantity(quantity.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to create binance %s order", side.String())
	}
	return nil
}
