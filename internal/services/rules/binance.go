package rules

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
)

type BinanceRules struct {
	client *binance.Client
}

func NewBinanceRules(client *binance.Client) *BinanceRules {
	return &BinanceRules{client: client}
}

// GetRules reads the quote precision and the LOT_SIZE minimum quantity
// from the exchange info of the symbol.
func (r *BinanceRules) GetRules(ctx context.Context, pair domain.Pair) (domain.InstrumentRules, error) {
	info, err := r.client.NewExchangeInfoService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.InstrumentRules{}, errors.Wrapf(err, "failed to get exchange info for %s", pair.String())
	}

	for _, symbol := range info.Symbols {
		if symbol.Symbol != pair.Symbol() {
			continue
		}

		lotSize := symbol.LotSizeFilter()
		if lotSize == nil {
			return domain.InstrumentRules{}, errors.Errorf("no LOT_SIZE filter for %s", pair.String())
		}

		minQty, err := decimal.NewFromString(lotSize.MinQuantity)
		if err != nil {
			return domain.InstrumentRules{}, errors.Wrap(err, "failed to parse minimum quantity")
		}

		return domain.InstrumentRules{
			Precision: int32(symbol.QuotePrecision),
			MinQty:    minQty,
		}, nil
	}

	return domain.InstrumentRules{}, errors.Errorf("unknown instrument %s", pair.String())
}
