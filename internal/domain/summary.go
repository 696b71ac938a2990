package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SessionSummary is derived from the ledger on demand, never stored.
type SessionSummary struct {
	TotalBought decimal.Decimal
	TotalSold   decimal.Decimal
	Trades      int
	TotalProfit decimal.Decimal
	TotalLoss   decimal.Decimal
	// ProfitPercent and LossPercent are relative to the starting
	// notional of the session. PercentDefined is false when the
	// starting notional is zero and percentages cannot be reported.
	ProfitPercent  decimal.Decimal
	LossPercent    decimal.Decimal
	PercentDefined bool
}

// String returns a human-readable string representation.
func (s *SessionSummary) String() string {
	profitPct, lossPct := "n/a", "n/a"
	if s.PercentDefined {
		profitPct = s.ProfitPercent.StringFixed(2) + "%"
		lossPct = s.LossPercent.StringFixed(2) + "%"
	}
	return fmt.Sprintf("trades: %d bought: %s sold: %s profit: %s (%s) loss: %s (%s)",
		s.Trades, s.TotalBought.String(), s.TotalSold.String(),
		s.TotalProfit.String(), profitPct, s.TotalLoss.String(), lossPct)
}
