// Package envelope computes negotiation envelopes: the current margin of a
// deal and the revenues and discounts required to reach a target, floor and
// ceiling margin, in exact currency units with an audit trail.
package envelope

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/shopspring/decimal"
)

// Envelope is the computed outcome of one negotiation scenario. Monetary
// fields are quantized to the currency's minor unit and ratios to four
// places. Values are set once by the calculator.
type Envelope struct {
	Currency string

	Revenue     decimal.Decimal
	Expense     decimal.Decimal
	ListRevenue decimal.Decimal

	CurrentMargin decimal.Decimal
	TargetMargin  decimal.Decimal
	FloorMargin   decimal.Decimal
	CeilingMargin decimal.Decimal

	TargetRevenue  decimal.Decimal
	FloorRevenue   decimal.Decimal
	CeilingRevenue decimal.Decimal

	TargetDiscount  decimal.Decimal
	FloorDiscount   decimal.Decimal
	CeilingDiscount decimal.Decimal

	metadata map[string]interface{}
	audit    AuditTrail
}

// Metadata returns a copy of the caller-supplied metadata.
func (e Envelope) Metadata() map[string]interface{} {
	m, _ := copyValue(e.metadata).(map[string]interface{})
	if m == nil {
		m = map[string]interface{}{}
	}
	return m
}

// AuditTrail returns the intermediate values recorded during calculation.
func (e Envelope) AuditTrail() AuditTrail {
	return e.audit
}

// Band returns the margin band of the envelope.
func (e Envelope) Band() MarginBand {
	return MarginBand{Floor: e.FloorMargin, Target: e.TargetMargin, Ceiling: e.CeilingMargin}
}

// Converter renders a decimal leaf of a serialized envelope. places is the
// number of decimal places the value was quantized to, or -1 when unknown.
type Converter func(value decimal.Decimal, places int32) interface{}

var (
	// AsFloat approximates decimals as float64 for display.
	AsFloat Converter = func(value decimal.Decimal, _ int32) interface{} {
		return value.InexactFloat64()
	}

	// AsDecimal keeps the exact decimal value.
	AsDecimal Converter = func(value decimal.Decimal, _ int32) interface{} {
		return value
	}

	// AsString renders fixed-place strings, so monetary values carry exactly
	// the currency's minor-unit digits.
	AsString Converter = func(value decimal.Decimal, places int32) interface{} {
		if places < 0 {
			return value.String()
		}
		return value.StringFixed(places)
	}
)

// ConverterFor returns the converter named by a numeric mode.
func ConverterFor(mode string) (Converter, error) {
	switch mode {
	case "", constants.NumericFloat:
		return AsFloat, nil
	case constants.NumericDecimal:
		return AsDecimal, nil
	case constants.NumericString:
		return AsString, nil
	}
	return nil, fmt.Errorf("unknown numeric mode %q", mode)
}

// ToMap serializes the envelope into plain maps, converting every decimal
// leaf with convert. Maps and slices keep their structure and other scalars
// are left untouched.
func (e Envelope) ToMap(convert Converter) map[string]interface{} {
	if convert == nil {
		convert = AsFloat
	}
	moneyPlaces := money.MinorUnits(e.Currency)
	m := func(v decimal.Decimal) interface{} { return convert(v, moneyPlaces) }
	r := func(v decimal.Decimal) interface{} { return convert(v, constants.RatioPlaces) }

	return map[string]interface{}{
		"currency":         e.Currency,
		"expense":          m(e.Expense),
		"revenue":          m(e.Revenue),
		"list_revenue":     m(e.ListRevenue),
		"current_margin":   r(e.CurrentMargin),
		"target_margin":    r(e.TargetMargin),
		"floor_margin":     r(e.FloorMargin),
		"ceiling_margin":   r(e.CeilingMargin),
		"target_revenue":   m(e.TargetRevenue),
		"floor_revenue":    m(e.FloorRevenue),
		"ceiling_revenue":  m(e.CeilingRevenue),
		"target_discount":  r(e.TargetDiscount),
		"floor_discount":   r(e.FloorDiscount),
		"ceiling_discount": r(e.CeilingDiscount),
		"metadata":         convertValue(e.Metadata(), convert),
		"audit_trail":      convertValue(e.audit.Map(), convert),
	}
}

// MarshalJSON encodes the envelope with fixed-place decimal strings.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToMap(AsString))
}

// MarginBand is the reduced view holding only the three margins.
type MarginBand struct {
	Floor   decimal.Decimal
	Target  decimal.Decimal
	Ceiling decimal.Decimal
}

// Map returns the band keyed like the full envelope.
func (b MarginBand) Map() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"floor_margin":   b.Floor,
		"target_margin":  b.Target,
		"ceiling_margin": b.Ceiling,
	}
}

func convertValue(v interface{}, convert Converter) interface{} {
	switch val := v.(type) {
	case decimal.Decimal:
		return convert(val, -1)
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return convert(*val, -1)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, sub := range val {
			out[k] = convertValue(sub, convert)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, sub := range val {
			out[i] = convertValue(sub, convert)
		}
		return out
	}
	return v
}

// copyValue deep-copies nested maps and slices, keeping their types.
func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if val == nil {
			return nil
		}
		out := make(map[string]interface{}, len(val))
		for k, sub := range val {
			out[k] = copyValue(sub)
		}
		return out
	case []interface{}:
		if val == nil {
			return nil
		}
		out := make([]interface{}, len(val))
		for i, sub := range val {
			out[i] = copyValue(sub)
		}
		return out
	case nil:
		return nil
	}
	return copyReflect(reflect.ValueOf(v)).Interface()
}

// copyReflect copies typed maps, slices and arrays element by element.
func copyReflect(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyElem(iter.Value(), rv.Type().Elem()))
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(copyElem(rv.Index(i), rv.Type().Elem()))
		}
		return out
	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(copyElem(rv.Index(i), rv.Type().Elem()))
		}
		return out
	}
	return rv
}

func copyElem(elem reflect.Value, typ reflect.Type) reflect.Value {
	if typ.Kind() == reflect.Interface {
		if elem.IsNil() {
			return reflect.Zero(typ)
		}
		copied := copyValue(elem.Interface())
		if copied == nil {
			return reflect.Zero(typ)
		}
		return reflect.ValueOf(copied)
	}
	return copyReflect(elem)
}
