// Package ratio parses margin and ratio expressions into bounded exact decimals.
package ratio

import (
	"encoding/json"
	"strings"

	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/shopspring/decimal"
)

// Kind selects the validation applied to a parsed ratio.
type Kind int

const (
	// Margin is a profit margin such as a target, floor or ceiling margin.
	Margin Kind = iota
	// Generic is any other bounded ratio, for example a reserve band.
	Generic
)

func (k Kind) String() string {
	if k == Margin {
		return "margin"
	}
	return "ratio"
}

// Dividing by 100 and 10000 is an exact decimal shift.
const (
	percentShift    int32 = -2
	basisPointShift int32 = -4
)

var one = decimal.NewFromInt(1)

// Parse converts value into a ratio in [0, 1).
//
// Decimals pass through unchanged. Numbers of 1 or more are read as
// percentages written without the sign. Strings may end in "%" or "bp";
// otherwise they follow the numeric rule. name identifies the parameter in
// error messages.
func Parse(value interface{}, kind Kind, name string) (decimal.Decimal, error) {
	const op = "ratio.Parse"

	var r decimal.Decimal
	switch v := value.(type) {
	case nil:
		return decimal.Zero, errs.Errorf(errs.MissingInput, op, "%s must be provided", name)
	case decimal.Decimal:
		r = v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, errs.Errorf(errs.MissingInput, op, "%s must be provided", name)
		}
		r = *v
	case string:
		parsed, err := parseString(v, name)
		if err != nil {
			return decimal.Zero, err
		}
		r = parsed
	case json.Number:
		parsed, err := parseString(v.String(), name)
		if err != nil {
			return decimal.Zero, err
		}
		r = parsed
	case bool:
		return decimal.Zero, errs.Errorf(errs.UnsupportedShape, op, "unsupported %s type %T for %s", kind, value, name)
	default:
		parsed, err := money.Parse(value, "")
		if err != nil {
			errKind, _ := errs.KindOf(err)
			return decimal.Zero, errs.Wrap(errKind, op, err, "invalid %s", name)
		}
		r = fromNumber(parsed)
	}

	return validate(r, kind, name)
}

func parseString(value, name string) (decimal.Decimal, error) {
	const op = "ratio.Parse"

	stripped := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	lower := strings.ToLower(stripped)

	var shift int32
	switch {
	case strings.HasSuffix(stripped, "%"):
		stripped = stripped[:len(stripped)-1]
		shift = percentShift
	case strings.HasSuffix(lower, "bp"):
		stripped = stripped[:len(stripped)-2]
		shift = basisPointShift
	}

	d, err := decimal.NewFromString(strings.TrimSpace(stripped))
	if err != nil {
		return decimal.Zero, errs.Wrap(errs.MalformedValue, op, err, "cannot read %s %q", name, value)
	}
	if shift == 0 {
		return fromNumber(d), nil
	}
	return d.Shift(shift), nil
}

// fromNumber treats values of 1 or more as whole percentages.
func fromNumber(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThanOrEqual(one) {
		return d.Shift(percentShift)
	}
	return d
}

func validate(r decimal.Decimal, kind Kind, name string) (decimal.Decimal, error) {
	const op = "ratio.Parse"

	if r.IsNegative() {
		return decimal.Zero, errs.Errorf(errs.RangeViolation, op, "%s must not be negative, got %s", name, r)
	}
	if r.GreaterThanOrEqual(one) {
		return decimal.Zero, errs.Errorf(errs.RangeViolation, op, "%s must be less than 1 (100%%), got %s", name, r)
	}
	return r, nil
}

// ParseOptional is Parse with a fallback for nil values.
func ParseOptional(value interface{}, kind Kind, name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if value == nil {
		return fallback, nil
	}
	return Parse(value, kind, name)
}
