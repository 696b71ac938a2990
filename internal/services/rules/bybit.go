package rules

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
)

type BybitRules struct {
	client *bybit.Client
}

func NewBybitRules(client *bybit.Client) *BybitRules {
	return &BybitRules{client: client}
}

// GetRules reads the lot size filter from the V5 instruments info.
// Bybit reports the base precision as a step ("0.000001"), so the
// decimal-place precision is derived from its exponent.
func (r *BybitRules) GetRules(ctx context.Context, pair domain.Pair) (domain.InstrumentRules, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := r.client.V5().Market().GetInstrumentsInfo(bybit.V5GetInstrumentsInfoParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.InstrumentRules{}, errors.Wrapf(err, "failed to get instruments info for %s", pair.String())
	}

	if result.Result.Spot == nil || len(result.Result.Spot.List) == 0 {
		return domain.InstrumentRules{}, errors.Errorf("unknown instrument %s", pair.String())
	}

	item := result.Result.Spot.List[0]

	step, err := decimal.NewFromString(item.LotSizeFilter.BasePrecision)
	if err != nil {
		return domain.InstrumentRules{}, errors.Wrap(err, "failed to parse base precision")
	}

	minQty, err := decimal.NewFromString(item.LotSizeFilter.MinOrderQty)
	if err != nil {
		return domain.InstrumentRules{}, errors.Wrap(err, "failed to parse minimum order quantity")
	}

	return domain.InstrumentRules{
		Precision: -step.Exponent(),
		MinQty:    minQty,
	}, nil
}
