// Package mathutil provides exact decimal arithmetic helpers for money and ratios.
package mathutil

import (
	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/shopspring/decimal"
)

// RoundCurrency rounds a value half-to-even to the currency's minor unit.
func RoundCurrency(val decimal.Decimal, currency string) decimal.Decimal {
	return val.RoundBank(money.MinorUnits(currency))
}

// RoundRatio rounds a ratio half-to-even to four decimal places.
func RoundRatio(val decimal.Decimal) decimal.Decimal {
	return val.RoundBank(constants.RatioPlaces)
}

// Divide divides a by b keeping precision decimal places. A non-positive
// precision uses DefaultDivisionPrecision. The caller guarantees b != 0.
func Divide(a, b decimal.Decimal, precision int32) decimal.Decimal {
	if precision <= 0 {
		precision = constants.DefaultDivisionPrecision
	}
	return a.DivRound(b, precision)
}

// Clamp bounds val to [lo, hi].
func Clamp(val, lo, hi decimal.Decimal) decimal.Decimal {
	return Min(Max(val, lo), hi)
}

// Min returns the smaller of two decimals
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two decimals
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
