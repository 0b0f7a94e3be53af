package ratio

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		kind     Kind
		expected string
	}{
		{"Decimal passthrough", decimal.RequireFromString("0.35"), Margin, "0.35"},
		{"Fractional float", 0.35, Margin, "0.35"},
		{"Whole number is a percentage", 70, Margin, "0.7"},
		{"Exactly one is a percentage", 1, Margin, "0.01"},
		{"Float percentage", 37.5, Margin, "0.375"},
		{"Percent string", "70%", Margin, "0.7"},
		{"Percent string with spaces", " 12.5 % ", Margin, "0.125"},
		{"Basis points", "50bp", Generic, "0.005"},
		{"Basis points upper case", "200BP", Generic, "0.02"},
		{"Basis points with space", "25 bp", Generic, "0.0025"},
		{"Plain fractional string", "0.38", Margin, "0.38"},
		{"Plain whole string", "38", Margin, "0.38"},
		{"JSON number", json.Number("0.02"), Generic, "0.02"},
		{"Zero reserve", 0, Generic, "0"},
		{"Zero margin", "0%", Margin, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.input, tt.kind, "test")
			if err != nil {
				t.Fatalf("Parse(%v) unexpected error: %v", tt.input, err)
			}
			if !result.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("Parse(%v) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		kind  errs.Kind
	}{
		{"Missing", nil, errs.MissingInput},
		{"Garbage", "seventy", errs.MalformedValue},
		{"Empty percent", "%", errs.MalformedValue},
		{"Negative", -0.1, errs.RangeViolation},
		{"Negative percent", "-5%", errs.RangeViolation},
		{"Hundred percent", "100%", errs.RangeViolation},
		{"Above hundred", 150, errs.RangeViolation},
		{"Decimal one", decimal.NewFromInt(1), errs.RangeViolation},
		{"Boolean", true, errs.UnsupportedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, Margin, "target_margin")
			if err == nil {
				t.Fatalf("Parse(%v) expected error", tt.input)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("Parse(%v) error = %v, expected kind %q", tt.input, err, tt.kind)
			}
		})
	}
}

func TestParseOptional(t *testing.T) {
	fallback := decimal.RequireFromString("0.01")
	result, err := ParseOptional(nil, Generic, "reserve_band", fallback)
	if err != nil {
		t.Fatalf("ParseOptional(nil) unexpected error: %v", err)
	}
	if !result.Equal(fallback) {
		t.Errorf("ParseOptional(nil) = %s, expected %s", result, fallback)
	}

	result, err = ParseOptional("2%", Generic, "reserve_band", fallback)
	if err != nil {
		t.Fatalf("ParseOptional(2%%) unexpected error: %v", err)
	}
	if !result.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("ParseOptional(2%%) = %s, expected 0.02", result)
	}
}
