// Package money parses loosely formatted monetary values into exact decimals.
package money

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/shopspring/decimal"
)

const currencySymbols = "€£¥₽₹₩₺₴₦₱₪฿₫₭₲₵₡$"

// multiCharSymbols is sorted longest first so that "CA$" wins over "A$".
var multiCharSymbols = func() []string {
	tokens := []string{"R$", "A$", "C$", "CA$", "HK$", "NZ$", "S$", "US$", "CN¥", "JP¥", "NT$", "AU$"}
	sort.SliceStable(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	return tokens
}()

// Parse converts value into an exact decimal amount expressed in currency.
//
// Decimals and integers convert directly, floats go through their shortest
// string form, and strings are cleaned of currency symbols, the currency's
// own ISO code, thousands separators, accounting parentheses and sign
// characters before being read as a decimal literal.
func Parse(value interface{}, currency string) (decimal.Decimal, error) {
	const op = "money.Parse"

	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, errs.Errorf(errs.MalformedValue, op, "nil decimal amount")
		}
		return *v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case float32:
		return fromFloatString(strconv.FormatFloat(float64(v), 'g', -1, 32), op)
	case float64:
		return fromFloatString(strconv.FormatFloat(v, 'g', -1, 64), op)
	case json.Number:
		return fromFloatString(v.String(), op)
	case string:
		return parseString(v, currency)
	default:
		return decimal.Zero, errs.Errorf(errs.UnsupportedShape, op, "unsupported monetary type %T", value)
	}
}

// ParseQuantity converts a volume-like value into a decimal, returning
// fallback when value is nil.
func ParseQuantity(value interface{}, fallback decimal.Decimal) (decimal.Decimal, error) {
	const op = "money.ParseQuantity"

	if value == nil {
		return fallback, nil
	}
	if s, ok := value.(string); ok {
		cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero, errs.Wrap(errs.MalformedValue, op, err, "cannot read quantity %q", s)
		}
		return d, nil
	}
	d, err := Parse(value, "")
	if err != nil {
		kind, _ := errs.KindOf(err)
		return decimal.Zero, errs.Wrap(kind, op, err, "cannot coerce %v into a quantity", value)
	}
	return d, nil
}

func fromFloatString(text, op string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errs.Wrap(errs.MalformedValue, op, err, "cannot read number %q", text)
	}
	return d, nil
}

func parseString(value, currency string) (decimal.Decimal, error) {
	const op = "money.Parse"

	code := Canonical(currency)
	if code == "" {
		code = constants.DefaultCurrency
	}
	cleaned := stripCurrencyIndicators(strings.TrimSpace(value), code)
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",", ""))

	s := signState{}
	cleaned = s.stripParentheses(cleaned, true)

	for cleaned != "" && isSign(cleaned[0]) {
		if cleaned[0] == '-' {
			s.negative = !s.negative
		}
		cleaned = strings.TrimSpace(cleaned[1:])
		cleaned = s.stripParentheses(cleaned, false)
	}
	for cleaned != "" && isSign(cleaned[len(cleaned)-1]) {
		if cleaned[len(cleaned)-1] == '-' {
			s.negative = !s.negative
		}
		cleaned = strings.TrimSpace(cleaned[:len(cleaned)-1])
		cleaned = s.stripParentheses(cleaned, false)
	}

	cleaned = s.stripParentheses(strings.TrimSpace(cleaned), !s.negative)
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// A sign exposed by the last unwrap only ever makes the amount negative.
	switch {
	case strings.HasPrefix(cleaned, "-"):
		s.negative = true
		cleaned = cleaned[1:]
	case strings.HasPrefix(cleaned, "+"):
		cleaned = cleaned[1:]
	}

	if cleaned == "" {
		return decimal.Zero, errs.Errorf(errs.MalformedValue, op, "no numeric amount in %q", value)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, errs.Wrap(errs.MalformedValue, op, err, "cannot read amount %q", value)
	}
	if s.negative {
		d = d.Neg()
	}
	return d, nil
}

type signState struct {
	negative bool
}

// stripParentheses unwraps accounting parentheses. Each fully parenthesized
// pair toggles the sign when flipping is allowed, so "((100))" stays positive.
// A pair whose content starts with a sign character is unwrapped without
// toggling and the sign is left for the caller.
func (s *signState) stripParentheses(text string, allowFlip bool) string {
	for len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' {
		inner := strings.TrimSpace(text[1 : len(text)-1])
		if inner == "" {
			break
		}
		if isSign(inner[0]) {
			text = inner
			continue
		}
		if allowFlip {
			s.negative = !s.negative
		}
		text = inner
	}
	return text
}

func isSign(c byte) bool {
	return c == '+' || c == '-'
}

func stripCurrencyIndicators(text, code string) string {
	for _, token := range multiCharSymbols {
		text = replaceFold(text, token, " ", false)
	}
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencySymbols, r) {
			return -1
		}
		return r
	}, text)

	if code == "" {
		return text
	}
	for {
		trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
		if !hasPrefixFold(trimmed, code) {
			break
		}
		text = trimmed[len(code):]
	}
	for {
		trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
		if !hasSuffixFold(trimmed, code) {
			break
		}
		text = trimmed[:len(trimmed)-len(code)]
	}
	return replaceFold(text, code, " ", true)
}

// replaceFold replaces every case-insensitive occurrence of token. With
// wholeToken set, occurrences touching an ASCII letter are kept.
func replaceFold(text, token, replacement string, wholeToken bool) string {
	if token == "" || len(text) < len(token) {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		if i+len(token) <= len(text) && strings.EqualFold(text[i:i+len(token)], token) {
			end := i + len(token)
			if !wholeToken || (!letterAt(text, i-1) && !letterAt(text, end)) {
				b.WriteString(replacement)
				i = end
				continue
			}
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

func letterAt(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func hasPrefixFold(text, prefix string) bool {
	return len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix)
}

func hasSuffixFold(text, suffix string) bool {
	return len(text) >= len(suffix) && strings.EqualFold(text[len(text)-len(suffix):], suffix)
}

// String renders an amount with exactly the currency's minor-unit places.
func String(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(MinorUnits(currency))
}
