package stream

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
)

// Entry is one revenue or expense entry, tagged by the shape it arrived in.
// The variants are Aggregate, Record, Sequence, Scalar and Unsupported.
type Entry interface {
	isEntry()
}

// Aggregate is an already normalized collection used as a single entry.
type Aggregate struct {
	Totals Totals
}

// Record is a key/value entry read through the recognized field names.
type Record map[string]interface{}

// Sequence is a positional entry of one to three values.
type Sequence []interface{}

// Scalar is a bare amount.
type Scalar struct {
	Value interface{}
}

// Unsupported carries a value that matches no recognized shape.
type Unsupported struct {
	Value interface{}
}

func (Aggregate) isEntry()   {}
func (Record) isEntry()      {}
func (Sequence) isEntry()    {}
func (Scalar) isEntry()      {}
func (Unsupported) isEntry() {}

// Item is a typed record for Go callers. Nil fields and blank strings are
// treated as absent; a numeric zero is a present value.
type Item struct {
	Name          string
	Currency      string
	Amount        interface{}
	UnitPrice     interface{}
	Volume        interface{}
	ListAmount    interface{}
	ListUnitPrice interface{}
}

// Record converts the item into its key/value form.
func (i Item) Record() Record {
	r := Record{}
	set := func(key string, value interface{}) {
		if value != nil && value != "" {
			r[key] = value
		}
	}
	set("name", i.Name)
	set("currency", i.Currency)
	set("amount", i.Amount)
	set("unit_price", i.UnitPrice)
	set("volume", i.Volume)
	set("list_amount", i.ListAmount)
	set("list_unit_price", i.ListUnitPrice)
	return r
}

// Classify tags a raw value with its Entry variant.
func Classify(value interface{}) Entry {
	switch v := value.(type) {
	case Entry:
		return v
	case Totals:
		return Aggregate{Totals: v}
	case *Totals:
		if v == nil {
			return Unsupported{Value: value}
		}
		return Aggregate{Totals: *v}
	case Item:
		return v.Record()
	case *Item:
		if v == nil {
			return Unsupported{Value: value}
		}
		return v.Record()
	case map[string]interface{}:
		return Record(v)
	case map[interface{}]interface{}:
		r := make(Record, len(v))
		for key, val := range v {
			r[fmt.Sprint(key)] = val
		}
		return r
	case []interface{}:
		return Sequence(v)
	case decimal.Decimal, *decimal.Decimal, json.Number, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Scalar{Value: v}
	}
	return classifyReflect(value)
}

// classifyReflect handles maps and slices of concrete element types.
func classifyReflect(value interface{}) Entry {
	if value == nil {
		return Unsupported{Value: value}
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Unsupported{Value: value}
		}
		r := make(Record, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			r[iter.Key().String()] = iter.Value().Interface()
		}
		return r
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Unsupported{Value: value}
		}
		s := make(Sequence, rv.Len())
		for i := range s {
			s[i] = rv.Index(i).Interface()
		}
		return s
	}
	return Unsupported{Value: value}
}

// collect expands a stream argument into its individual raw entries. A
// record, string or scalar is a collection of one.
func collect(streams interface{}) []interface{} {
	switch v := streams.(type) {
	case Entry:
		return []interface{}{v}
	case []interface{}:
		return v
	case []Entry:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case string, []byte, map[string]interface{}, map[interface{}]interface{}:
		return []interface{}{v}
	}

	rv := reflect.ValueOf(streams)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []interface{}{streams}
}
