// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/negotiation-envelope/internal/negotiation"
	"github.com/shopspring/decimal"
)

// FindResult finds a scenario result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []negotiation.Result, name string) *negotiation.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// MustDecimal parses s or fails the test.
func MustDecimal(t testing.TB, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// AssertDecimal fails the test when got is not numerically equal to want.
func AssertDecimal(t testing.TB, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(MustDecimal(t, want)) {
		t.Errorf("%s = %s, expected %s", field, got, want)
	}
}
