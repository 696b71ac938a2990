package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrBelowMinimumQuantity is returned when the rounded quantity is below
// the minimum tradable quantity of the instrument.
var ErrBelowMinimumQuantity = errors.New("quantity below instrument minimum")

// InstrumentRules are the exchange-reported trading constraints of a pair.
type InstrumentRules struct {
	// Precision is the number of decimal places allowed for order quantities.
	Precision int32
	// MinQty is the minimum order quantity.
	MinQty decimal.Decimal
}

// NormalizeQuantity rounds requested to the instrument precision and
// validates it against the instrument minimum. Rounding is half away
// from zero (decimal.Round semantics).
func NormalizeQuantity(requested decimal.Decimal, rules InstrumentRules) (decimal.Decimal, error) {
	normalized := requested.Round(rules.Precision)
	if normalized.LessThan(rules.MinQty) {
		return decimal.Decimal{}, errors.Wrapf(ErrBelowMinimumQuantity,
			"quantity %s rounded to %s, minimum is %s", requested.String(), normalized.String(), rules.MinQty.String())
	}
	return normalized, nil
}
