package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/negotiation-envelope/pkg/ratio"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ValidateCurrency warns when a code is not a known ISO 4217 currency. Such
// codes are still accepted and quantized to two places.
func ValidateCurrency(label, code string) string {
	if code == "" {
		return ""
	}
	if _, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code))); err != nil {
		return fmt.Sprintf("%s currency '%s' is not a recognized ISO 4217 code - amounts will use 2 decimal places",
			label, code)
	}
	return ""
}

// ValidateMarginBand warns about explicit margin settings the calculator
// will have to correct: an inverted band or a target outside it.
func ValidateMarginBand(label string, target, floor, ceiling interface{}) []string {
	var warnings []string

	parse := func(name string, value interface{}) (decimal.Decimal, bool) {
		if value == nil {
			return decimal.Zero, false
		}
		r, err := ratio.Parse(value, ratio.Margin, name)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s %s is invalid: %v", label, name, err))
			return decimal.Zero, false
		}
		return r, true
	}

	t, hasTarget := parse("target_margin", target)
	lo, hasFloor := parse("floor_margin", floor)
	hi, hasCeiling := parse("ceiling_margin", ceiling)
	if !hasFloor || !hasCeiling {
		return warnings
	}

	if lo.GreaterThan(hi) {
		warnings = append(warnings, fmt.Sprintf("%s floor margin %s is above ceiling margin %s - they will be swapped",
			label, lo, hi))
		lo, hi = hi, lo
	}
	if hasTarget && (t.LessThan(lo) || t.GreaterThan(hi)) {
		warnings = append(warnings, fmt.Sprintf("%s target margin %s is outside [%s, %s] - it will be clamped",
			label, t, lo, hi))
	}

	return warnings
}

// ConfigValidator validates a whole scenario file and returns warnings
type ConfigValidator struct {
	DefaultCurrency string
	Scenarios       []ScenarioConfig
}

// ScenarioConfig is the subset of a scenario that validation inspects
type ScenarioConfig struct {
	Name          string
	Active        bool
	Currency      string
	TargetMargin  interface{}
	FloorMargin   interface{}
	CeilingMargin interface{}
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if w := ValidateCurrency("Default", cv.DefaultCurrency); w != "" {
		warnings = append(warnings, w)
	}

	active := 0
	seen := make(map[string]bool)
	for _, scenario := range cv.Scenarios {
		if !scenario.Active {
			continue
		}
		active++

		label := fmt.Sprintf("Scenario '%s'", scenario.Name)
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("%s is defined more than once", label))
		}
		seen[scenario.Name] = true

		if w := ValidateCurrency(label, scenario.Currency); w != "" {
			warnings = append(warnings, w)
		}
		warnings = append(warnings, ValidateMarginBand(label, scenario.TargetMargin, scenario.FloorMargin, scenario.CeilingMargin)...)
	}

	if active == 0 {
		warnings = append(warnings, "No active scenarios - nothing will be calculated")
	}

	return warnings
}
