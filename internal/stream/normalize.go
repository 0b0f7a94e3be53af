// Package stream normalizes heterogeneous revenue and expense descriptions
// into exact decimal totals sharing a single currency.
package stream

import (
	"fmt"

	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/shopspring/decimal"
)

// Line is the normalized contribution of a single entry.
type Line struct {
	Name       string
	Amount     decimal.Decimal
	ListAmount decimal.Decimal
}

// Totals aggregates one revenue or expense collection.
type Totals struct {
	Total     decimal.Decimal
	ListTotal decimal.Decimal
	Currency  string
	breakdown []Line
}

// NewTotals builds Totals, copying the breakdown.
func NewTotals(total, listTotal decimal.Decimal, currency string, breakdown []Line) Totals {
	return Totals{
		Total:     total,
		ListTotal: listTotal,
		Currency:  money.Canonical(currency),
		breakdown: append([]Line(nil), breakdown...),
	}
}

// Empty returns zero totals in the given currency.
func Empty(currency string) Totals {
	return NewTotals(decimal.Zero, decimal.Zero, currency, nil)
}

// Breakdown returns a copy of the per-entry lines in insertion order.
func (t Totals) Breakdown() []Line {
	return append([]Line(nil), t.breakdown...)
}

// Options tune a single Normalize call.
type Options struct {
	// CurrencyHint is used for entries that do not name a currency.
	CurrencyHint string
	// ListHint replaces the accumulated list total when set.
	ListHint interface{}
	// NamePrefix names entries without a name field: "<prefix>_<n>".
	NamePrefix string
}

// Normalize reduces streams, which may be a single record, a sequence of
// records, positional tuples or scalars, or a bare scalar, to Totals.
func Normalize(streams interface{}, opts Options) (Totals, error) {
	const op = "stream.Normalize"

	if streams == nil {
		return Totals{}, errs.Errorf(errs.MissingInput, op, "at least one stream must be provided")
	}
	raw := collect(streams)
	if len(raw) == 0 {
		return Totals{}, errs.Errorf(errs.MissingInput, op, "stream collection cannot be empty")
	}

	prefix := opts.NamePrefix
	if prefix == "" {
		prefix = "stream"
	}

	total := decimal.Zero
	listTotal := decimal.Zero
	breakdown := make([]Line, 0, len(raw))
	resolved := money.Canonical(opts.CurrencyHint)

	for i, item := range raw {
		line, currency, err := normalizeEntry(Classify(item), resolved, fmt.Sprintf("%s_%d", prefix, i+1))
		if err != nil {
			return Totals{}, err
		}
		if resolved == "" {
			resolved = currency
		} else if currency != "" && currency != resolved {
			return Totals{}, errs.Errorf(errs.CurrencyMismatch, op,
				"mixed currencies detected: %s and %s (entry %q)", resolved, currency, line.Name)
		}

		total = total.Add(line.Amount)
		listTotal = listTotal.Add(line.ListAmount)
		breakdown = append(breakdown, line)
	}

	resolved = money.Resolve(resolved, opts.CurrencyHint)

	if opts.ListHint != nil {
		hinted, err := money.Parse(opts.ListHint, resolved)
		if err != nil {
			kind, _ := errs.KindOf(err)
			return Totals{}, errs.Wrap(kind, op, err, "invalid list total")
		}
		listTotal = hinted
	}
	// No undiscounted reference means no discount.
	if listTotal.IsZero() {
		listTotal = total
	}

	return NewTotals(total, listTotal, resolved, breakdown), nil
}

func normalizeEntry(entry Entry, currencyHint, defaultName string) (Line, string, error) {
	const op = "stream.Normalize"

	switch e := entry.(type) {
	case Aggregate:
		return Line{Name: defaultName, Amount: e.Totals.Total, ListAmount: e.Totals.ListTotal},
			money.Resolve(e.Totals.Currency, currencyHint), nil
	case Record:
		return normalizeRecord(e, currencyHint, defaultName)
	case Sequence:
		return normalizeSequence(e, currencyHint, defaultName)
	case Scalar:
		currency := money.Resolve(currencyHint)
		amount, err := money.Parse(e.Value, currency)
		if err != nil {
			return Line{}, "", entryError(op, defaultName, err)
		}
		return Line{Name: defaultName, Amount: amount, ListAmount: amount}, currency, nil
	case Unsupported:
		return Line{}, "", errs.Errorf(errs.UnsupportedShape, op,
			"entry %q has unsupported type %T; expected record, sequence or numeric value", defaultName, e.Value)
	default:
		return Line{}, "", errs.Errorf(errs.UnsupportedShape, op, "entry %q has unknown variant %T", defaultName, entry)
	}
}

var (
	nameFields          = []string{"name", "id", "category", "product"}
	volumeFields        = []string{"volume", "units", "quantity"}
	amountFields        = []string{"total", "amount", "value", "revenue", "price_total"}
	unitPriceFields     = []string{"unit_price", "price", "rate", "unit_cost", "cost"}
	listAmountFields    = []string{"list_total", "rack_total", "list_amount"}
	listUnitPriceFields = []string{"list_unit_price", "rack_rate", "list_price"}
)

func normalizeRecord(r Record, currencyHint, defaultName string) (Line, string, error) {
	const op = "stream.Normalize"

	name := defaultName
	if v, ok := r.first(nameFields...); ok {
		name = fmt.Sprint(v)
	}

	var explicit string
	if v, ok := r.first("currency"); ok {
		explicit = fmt.Sprint(v)
	}
	currency := money.Resolve(explicit, currencyHint)

	volumeValue, _ := r.first(volumeFields...)
	volume, err := money.ParseQuantity(volumeValue, decimal.NewFromInt(1))
	if err != nil {
		return Line{}, "", entryError(op, name, err)
	}

	var amount decimal.Decimal
	if v, ok := r.first(amountFields...); ok {
		if amount, err = money.Parse(v, currency); err != nil {
			return Line{}, "", entryError(op, name, err)
		}
	} else {
		unitPrice, ok := r.first(unitPriceFields...)
		if !ok {
			return Line{}, "", errs.Errorf(errs.MissingInput, op, "stream entry %q is missing a unit or total amount", name)
		}
		price, err := money.Parse(unitPrice, currency)
		if err != nil {
			return Line{}, "", entryError(op, name, err)
		}
		amount = price.Mul(volume)
	}

	listAmount := amount
	if v, ok := r.first(listAmountFields...); ok {
		if listAmount, err = money.Parse(v, currency); err != nil {
			return Line{}, "", entryError(op, name, err)
		}
	} else if v, ok := r.first(listUnitPriceFields...); ok {
		listPrice, err := money.Parse(v, currency)
		if err != nil {
			return Line{}, "", entryError(op, name, err)
		}
		listAmount = listPrice.Mul(volume)
	}

	return Line{Name: name, Amount: amount, ListAmount: listAmount}, currency, nil
}

// first returns the value of the first present key. Nil values and blank
// strings count as absent.
func (r Record) first(keys ...string) (interface{}, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func normalizeSequence(s Sequence, currencyHint, defaultName string) (Line, string, error) {
	const op = "stream.Normalize"

	currency := money.Resolve(currencyHint)
	name := defaultName
	var price, volume interface{}

	switch len(s) {
	case 3:
		if label, ok := s[0].(string); ok {
			name, price, volume = label, s[1], s[2]
		} else {
			price, volume = s[0], s[1]
		}
	case 2:
		if label, ok := s[0].(string); ok {
			amount, err := money.Parse(s[1], currency)
			if err != nil {
				return Line{}, "", entryError(op, label, err)
			}
			return Line{Name: label, Amount: amount, ListAmount: amount}, currency, nil
		}
		price, volume = s[0], s[1]
	case 1:
		price = s[0]
	default:
		return Line{}, "", errs.Errorf(errs.UnsupportedShape, op,
			"sequence entry %q must contain between one and three values, got %d", defaultName, len(s))
	}

	unitPrice, err := money.Parse(price, currency)
	if err != nil {
		return Line{}, "", entryError(op, name, err)
	}
	quantity, err := money.ParseQuantity(volume, decimal.NewFromInt(1))
	if err != nil {
		return Line{}, "", entryError(op, name, err)
	}
	amount := unitPrice.Mul(quantity)
	return Line{Name: name, Amount: amount, ListAmount: amount}, currency, nil
}

func entryError(op, name string, err error) error {
	kind, ok := errs.KindOf(err)
	if !ok {
		kind = errs.MalformedValue
	}
	return errs.Wrap(kind, op, err, "stream entry %q", name)
}
