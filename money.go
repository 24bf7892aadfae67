package invoicepdf

import "github.com/shopspring/decimal"

// DefaultCurrency is the currency label printed before line and grand
// totals.
const DefaultCurrency = "LKR"

// FormatMoney renders d with exactly two decimal places.
//
// Halves round away from zero, which is round-half-up for the non-negative
// amounts an invoice normally carries: 0.125 → "0.13", -0.125 → "-0.13".
// No thousands separators are inserted.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
