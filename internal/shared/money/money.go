// Package money holds the client-side amount checks. Amounts are parsed only
// to reject malformed input before a request is sent; the ledger does all
// arithmetic.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bankclient/internal/shared/validation"
)

// ParseAmount accepts any non-empty decimal literal.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, validation.New(field, "amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, validation.New(field, fmt.Sprintf("%q is not a number", s))
	}
	return d, nil
}

// ParsePositiveAmount is ParseAmount that also rejects zero and negatives.
func ParsePositiveAmount(field, raw string) (decimal.Decimal, error) {
	d, err := ParseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, validation.New(field, "amount must be greater than zero")
	}
	return d, nil
}

// Format renders a balance with two decimals, e.g. "1000.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Display joins a currency symbol and a formatted balance, e.g. "€12.50".
func Display(symbol string, d decimal.Decimal) string {
	return symbol + Format(d)
}
