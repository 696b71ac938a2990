package domain

import "github.com/shopspring/decimal"

const percentageMultiplier = 100

// Deviation returns the signed change of current against reference.
//
// When relative is true the result is a percentage of reference
// ((current-reference)/reference*100); a zero reference yields zero
// instead of an error. When relative is false the result is the raw
// price delta current-reference.
func Deviation(reference, current decimal.Decimal, relative bool) decimal.Decimal {
	if !relative {
		return current.Sub(reference)
	}
	if reference.IsZero() {
		return decimal.Zero
	}
	return current.Sub(reference).Div(reference).Mul(decimal.NewFromInt(percentageMultiplier))
}
