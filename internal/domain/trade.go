package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is an executed trade owned by the session ledger,
// immutable once appended.
type TradeRecord struct {
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Time     time.Time       `json:"time"`
	// Profit and Loss are carried per record and summed by the ledger.
	// They are recorded as zero on append; see the ledger docs.
	Profit decimal.Decimal `json:"profit"`
	Loss   decimal.Decimal `json:"loss"`
}

// TradeEvent trading event emitted by the decision engine.
type TradeEvent struct {
	// Side buy or sell trade.
	Side Side
	// Pair trading pair.
	Pair Pair
	// Quantity of the base currency.
	Quantity decimal.Decimal
	// Price at which the trade was executed.
	Price decimal.Decimal
	// Step marks an escalation trade, which does not rebase the
	// reference price.
	Step bool
}

// String returns a human-readable string representation.
func (t *TradeEvent) String() string {
	kind := "primary"
	if t.Step {
		kind = "step"
	}
	return fmt.Sprintf("%s %s %s quantity: %s price: %s", t.Pair.String(), kind, t.Side.String(), t.Quantity.String(), t.Price.String())
}
