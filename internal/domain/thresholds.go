package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Thresholds encapsulates the trigger magnitudes of a session.
//
// Buy and Sell are the primary triggers; they are percentages of the
// reference price when Relative is true and absolute price deltas
// otherwise. StepBuy and StepSell are the escalation triggers; they are
// always evaluated as percentages, regardless of Relative.
type Thresholds struct {
	Relative bool
	Buy      decimal.Decimal
	Sell     decimal.Decimal
	StepBuy  decimal.Decimal
	StepSell decimal.Decimal
}

// NewThresholds creates validated thresholds.
func NewThresholds(relative bool, buy, sell, stepBuy, stepSell decimal.Decimal) (Thresholds, error) {
	if buy.LessThanOrEqual(decimal.Zero) {
		return Thresholds{}, fmt.Errorf("buy threshold must be positive, got %s", buy.String())
	}
	if sell.LessThanOrEqual(decimal.Zero) {
		return Thresholds{}, fmt.Errorf("sell threshold must be positive, got %s", sell.String())
	}
	if stepBuy.LessThanOrEqual(decimal.Zero) {
		return Thresholds{}, fmt.Errorf("step buy threshold must be positive, got %s", stepBuy.String())
	}
	if stepSell.LessThanOrEqual(decimal.Zero) {
		return Thresholds{}, fmt.Errorf("step sell threshold must be positive, got %s", stepSell.String())
	}

	return Thresholds{
		Relative: relative,
		Buy:      buy,
		Sell:     sell,
		StepBuy:  stepBuy,
		StepSell: stepSell,
	}, nil
}
