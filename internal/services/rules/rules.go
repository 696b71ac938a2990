// Package rules fetches instrument trading constraints from exchanges.
package rules

import (
	"context"

	"github.com/vadiminshakov/varta/internal/domain"
)

// Provider fetches the instrument rules of a pair: the quantity
// precision and the minimum order quantity.
type Provider interface {
	GetRules(ctx context.Context, pair domain.Pair) (domain.InstrumentRules, error)
}
