package money

import (
	"strings"

	"github.com/iwvelando/negotiation-envelope/pkg/constants"
)

// minorUnits maps ISO 4217 codes to the number of decimal places of their
// smallest unit. Codes missing from the table use DefaultMinorUnits.
var minorUnits = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"AUD": 2,
	"CAD": 2,
	"CHF": 2,
	"NOK": 2,
	"SEK": 2,
	"DKK": 2,
	"PLN": 2,
	"CZK": 2,
	"MXN": 2,
	"BRL": 2,
	"ILS": 2,
	"SGD": 2,
	"HKD": 2,
	"TWD": 2,
	"CNY": 2,
	"INR": 2,
	"ZAR": 2,
	"RUB": 2,
	"KRW": 0,
	"JPY": 0,
	"VND": 0,
	"IDR": 0,
	"HUF": 0,
	"CLP": 0,
	"ISK": 0,
	"KWD": 3,
	"BHD": 3,
	"OMR": 3,
	"TND": 3,
}

// MinorUnits returns the number of minor-unit decimal places for a currency.
func MinorUnits(currency string) int32 {
	if places, ok := minorUnits[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return places
	}
	return constants.DefaultMinorUnits
}

// Canonical trims and upper-cases a currency code. It returns "" for a blank code.
func Canonical(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Resolve returns the first non-blank canonical code among candidates, or
// the default currency.
func Resolve(candidates ...string) string {
	for _, c := range candidates {
		if code := Canonical(c); code != "" {
			return code
		}
	}
	return constants.DefaultCurrency
}
