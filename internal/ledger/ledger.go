// Package ledger accumulates executed trades of one monitoring session
// and derives summary statistics on demand.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
)

const percentageMultiplier = 100

// Ledger is an append-only, ordered sequence of trade records. Records
// are never reordered or pruned. The mutex guards concurrent reads from
// the web server against appends from the decision engine.
type Ledger struct {
	mu               sync.RWMutex
	startingNotional decimal.Decimal
	records          []domain.TradeRecord
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		startingNotional: decimal.Zero,
		records:          make([]domain.TradeRecord, 0),
	}
}

// SetStartingNotional fixes the denominator for percentage reporting.
// Called once, when the session observes its first price.
func (l *Ledger) SetStartingNotional(n decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startingNotional = n
}

// Record appends an executed trade in event order.
func (l *Ledger) Record(r domain.TradeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
}

// Records returns a copy of the recorded trades.
func (l *Ledger) Records() []domain.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.TradeRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Summary derives session statistics from the recorded trades.
//
// TotalProfit sums the per-record profit of sells and TotalLoss the
// per-record loss of buys. The engine records both as zero, so the
// totals stay zero: realized P&L was never populated upstream and no
// lot-matching calculation is invented here.
func (l *Ledger) Summary() domain.SessionSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := domain.SessionSummary{
		TotalBought: decimal.Zero,
		TotalSold:   decimal.Zero,
		TotalProfit: decimal.Zero,
		TotalLoss:   decimal.Zero,
		Trades:      len(l.records),
	}

	for _, r := range l.records {
		switch r.Side {
		case domain.SideBuy:
			summary.TotalBought = summary.TotalBought.Add(r.Quantity)
			summary.TotalLoss = summary.TotalLoss.Add(r.Loss)
		case domain.SideSell:
			summary.TotalSold = summary.TotalSold.Add(r.Quantity)
			summary.TotalProfit = summary.TotalProfit.Add(r.Profit)
		}
	}

	if l.startingNotional.IsZero() {
		summary.PercentDefined = false
		summary.ProfitPercent = decimal.Zero
		summary.LossPercent = decimal.Zero
		return summary
	}

	summary.PercentDefined = true
	summary.ProfitPercent = summary.TotalProfit.Div(l.startingNotional).Mul(decimal.NewFromInt(percentageMultiplier))
	summary.LossPercent = summary.TotalLoss.Div(l.startingNotional).Mul(decimal.NewFromInt(percentageMultiplier))
	return summary
}
