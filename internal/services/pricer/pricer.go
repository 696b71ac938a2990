// Package pricer provides exchange price lookups for trading pairs.
package pricer

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
)

// Pricer fetches the current market price of a pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}
