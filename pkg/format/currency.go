// Package format renders exact decimal amounts for display.
package format

import (
	"strings"

	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/shopspring/decimal"
)

// Money returns an amount with its currency code, thousands separators and
// the currency's minor units (e.g., "-USD 1,234.56", "JPY 1,235").
func Money(amount decimal.Decimal, currency string) string {
	code := money.Canonical(currency)
	if code == "" {
		code = constants.DefaultCurrency
	}
	formatted := Numeric(amount.Abs(), money.MinorUnits(code))
	if amount.IsNegative() && formatted != Numeric(decimal.Zero, money.MinorUnits(code)) {
		return "-" + code + " " + formatted
	}
	return code + " " + formatted
}

// Numeric returns an amount fixed to places with thousands separators and
// no currency (e.g., "-1,234.56").
func Numeric(amount decimal.Decimal, places int32) string {
	formatted := amount.StringFixedBank(places)
	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}

	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}

// Percent returns a ratio as a percentage with two places (e.g., "30.25%").
func Percent(ratio decimal.Decimal) string {
	return ratio.Shift(2).StringFixedBank(2) + "%"
}
