package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		currency string
		expected string
	}{
		{"Decimal passthrough", decimal.RequireFromString("12.345"), "USD", "12.345"},
		{"Integer", 1000, "USD", "1000"},
		{"Int64", int64(-25), "USD", "-25"},
		{"Unsigned", uint32(7), "USD", "7"},
		{"Float uses shortest form", 0.1, "USD", "0.1"},
		{"Float32", float32(0.25), "USD", "0.25"},
		{"JSON number", json.Number("0.0075"), "USD", "0.0075"},
		{"Plain string", "990.00", "USD", "990"},
		{"Dollar sign and separators", "$1,234.56", "USD", "1234.56"},
		{"Multi-char symbol", "US$ 1,000", "USD", "1000"},
		{"Longest symbol wins", "CA$5", "CAD", "5"},
		{"Euro symbol suffix", "99,50€", "EUR", "9950"},
		{"ISO prefix", "USD 250", "USD", "250"},
		{"ISO prefix lower case", "usd 250", "USD", "250"},
		{"ISO suffix", "250 EUR", "EUR", "250"},
		{"ISO code in the middle", "-EUR 5", "EUR", "-5"},
		{"Default currency code stripped", "USD 10", "", "10"},
		{"Accounting parentheses", "(1,234.50)", "USD", "-1234.5"},
		{"Parentheses with symbol", "($45.00)", "USD", "-45"},
		{"Leading minus", "-100", "USD", "-100"},
		{"Trailing minus", "100-", "USD", "-100"},
		{"Leading and trailing minus cancel", "-100-", "USD", "100"},
		{"Leading plus", "+42", "USD", "42"},
		{"Signed content inside parentheses", "(-5)", "USD", "-5"},
		{"Scientific notation", "1e3", "USD", "1000"},
		{"Whitespace", "  12.50  ", "USD", "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.input, tt.currency)
			if err != nil {
				t.Fatalf("Parse(%v) unexpected error: %v", tt.input, err)
			}
			expected := decimal.RequireFromString(tt.expected)
			if !result.Equal(expected) {
				t.Errorf("Parse(%v) = %s, expected %s", tt.input, result, expected)
			}
		})
	}
}

// Each fully parenthesized pair toggles the sign, so doubly wrapped amounts
// come back positive. This is intentional and easy to trip over.
func TestParseNestedParenthesesToggleSign(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(100)", "-100"},
		{"((100))", "100"},
		{"(((100)))", "-100"},
		{"-(100)", "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Parse(tt.input, "USD")
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !result.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("Parse(%q) = %s, expected %s", tt.input, result, tt.expected)
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
		{"Empty string", "", errs.MalformedValue},
		{"Only a symbol", "$", errs.MalformedValue},
		{"Only parentheses", "()", errs.MalformedValue},
		{"Words", "twelve", errs.MalformedValue},
		{"NaN float", math.NaN(), errs.MalformedValue},
		{"Boolean", true, errs.UnsupportedShape},
		{"Nil", nil, errs.UnsupportedShape},
		{"Slice", []int{1}, errs.UnsupportedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "USD")
			if err == nil {
				t.Fatalf("Parse(%v) expected error", tt.input)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("Parse(%v) error = %v, expected kind %q", tt.input, err, tt.kind)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	one := decimal.NewFromInt(1)
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"Nil falls back", nil, "1"},
		{"Integer", 100000, "100000"},
		{"String with separators", "20,000", "20000"},
		{"Float", 2.5, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseQuantity(tt.input, one)
			if err != nil {
				t.Fatalf("ParseQuantity(%v) unexpected error: %v", tt.input, err)
			}
			if !result.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("ParseQuantity(%v) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}

	if _, err := ParseQuantity("lots", one); !errors.Is(err, errs.MalformedValue) {
		t.Errorf("ParseQuantity(\"lots\") error = %v, expected malformed value", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		currency string
		amount   string
		expected string
	}{
		{"USD", "771.43", "771.43"},
		{"JPY", "1200", "1200"},
		{"KWD", "12.5", "12.500"},
		{"XXX", "3", "3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			text := String(amount, tt.currency)
			if text != tt.expected {
				t.Errorf("String(%s, %s) = %q, expected %q", amount, tt.currency, text, tt.expected)
			}
			parsed, err := Parse(text, tt.currency)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", text, err)
			}
			if !parsed.Equal(amount) {
				t.Errorf("round trip of %s gave %s", amount, parsed)
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		currency string
		expected int32
	}{
		{"USD", 2},
		{"eur", 2},
		{"JPY", 0},
		{"KRW", 0},
		{"KWD", 3},
		{" tnd ", 3},
		{"ZZZ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			if got := MinorUnits(tt.currency); got != tt.expected {
				t.Errorf("MinorUnits(%q) = %d, expected %d", tt.currency, got, tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("", " usd "); got != "USD" {
		t.Errorf("Resolve = %q, expected USD", got)
	}
	if got := Resolve("", ""); got != "USD" {
		t.Errorf("Resolve with no candidates = %q, expected USD", got)
	}
	if got := Resolve("Eur", "USD"); got != "EUR" {
		t.Errorf("Resolve = %q, expected EUR", got)
	}
}
