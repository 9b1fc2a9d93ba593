package shared

import "github.com/shopspring/decimal"

// MoneyEpsilon is the comparison tolerance for monetary amounts. It is only
// ever used at comparison boundaries and never added into stored values.
var MoneyEpsilon = decimal.RequireFromString("0.01")

// RoundMoney rounds to two decimal places (half away from zero).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ExceedsWithTolerance reports whether amount > limit + MoneyEpsilon.
func ExceedsWithTolerance(amount, limit decimal.Decimal) bool {
	return amount.GreaterThan(limit.Add(MoneyEpsilon))
}

// AboveEpsilon reports whether amount is strictly greater than MoneyEpsilon.
func AboveEpsilon(amount decimal.Decimal) bool {
	return amount.GreaterThan(MoneyEpsilon)
}
