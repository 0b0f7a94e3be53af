package envelope

import (
	"github.com/iwvelando/negotiation-envelope/internal/stream"
	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/errs"
	"github.com/iwvelando/negotiation-envelope/pkg/mathutil"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/iwvelando/negotiation-envelope/pkg/ratio"
	"github.com/shopspring/decimal"
)

var (
	defaultReserveBand = decimal.RequireFromString(constants.DefaultReserveBand)
	maxMargin          = decimal.RequireFromString(constants.MaxMargin)
	one                = decimal.NewFromInt(1)
)

// Params holds the margin parameters of a calculation. Margin values accept
// anything ratio.Parse does: decimals, numbers, "70%", "50bp".
type Params struct {
	TargetMargin interface{}
	// FloorMargin and CeilingMargin default to TargetMargin -/+ ReserveBand.
	FloorMargin   interface{}
	CeilingMargin interface{}
	// ReserveBand defaults to 1%.
	ReserveBand interface{}
	// Currency is the hint for streams that do not name one.
	Currency string
	// ListRevenue overrides the undiscounted revenue reference. Only
	// Calculate applies it, while normalizing the revenue streams.
	ListRevenue interface{}
	Metadata    map[string]interface{}
	// Precision is the number of decimal places kept by divisions. Zero
	// means DefaultDivisionPrecision; other values must lie in
	// [DefaultDivisionPrecision, MaxDivisionPrecision].
	Precision int32
}

// Calculate normalizes the revenue and expense streams and computes their
// envelope. A nil expense is treated as zero expense in the revenue currency.
func Calculate(revenue, expense interface{}, p Params) (Envelope, error) {
	revenueTotals, err := stream.Normalize(revenue, stream.Options{
		CurrencyHint: p.Currency,
		ListHint:     p.ListRevenue,
		NamePrefix:   "revenue",
	})
	if err != nil {
		return Envelope{}, err
	}

	expenseTotals := stream.Empty(revenueTotals.Currency)
	if expense != nil {
		expenseTotals, err = stream.Normalize(expense, stream.Options{
			CurrencyHint: revenueTotals.Currency,
			NamePrefix:   "expense",
		})
		if err != nil {
			return Envelope{}, err
		}
	}

	return CalculateFromTotals(revenueTotals, expenseTotals, p)
}

// CalculateSerialized is Calculate followed by ToMap(convert).
func CalculateSerialized(revenue, expense interface{}, p Params, convert Converter) (map[string]interface{}, error) {
	env, err := Calculate(revenue, expense, p)
	if err != nil {
		return nil, err
	}
	return env.ToMap(convert), nil
}

// DetermineMarginEnvelope returns only the margin band for callers that do
// not need the monetary breakdown.
func DetermineMarginEnvelope(revenue, expense interface{}, p Params) (MarginBand, error) {
	p.Metadata = nil
	env, err := Calculate(revenue, expense, p)
	if err != nil {
		return MarginBand{}, err
	}
	return env.Band(), nil
}

// CalculateFromTotals computes the envelope of already normalized totals.
func CalculateFromTotals(revenue, expense stream.Totals, p Params) (Envelope, error) {
	const op = "envelope.Calculate"

	if revenue.Currency != "" && expense.Currency != "" && revenue.Currency != expense.Currency {
		return Envelope{}, errs.Errorf(errs.CurrencyMismatch, op,
			"revenue and expense streams must use the same currency; got %s and %s", revenue.Currency, expense.Currency)
	}
	currency := money.Resolve(revenue.Currency, expense.Currency, p.Currency)

	if revenue.Total.IsNegative() {
		return Envelope{}, errs.Errorf(errs.RangeViolation, op, "revenue total must not be negative, got %s", revenue.Total)
	}
	if expense.Total.IsNegative() {
		return Envelope{}, errs.Errorf(errs.RangeViolation, op, "expense total must not be negative, got %s", expense.Total)
	}

	precision, err := resolvePrecision(p.Precision)
	if err != nil {
		return Envelope{}, err
	}

	reserve, err := ratio.ParseOptional(p.ReserveBand, ratio.Generic, "reserve_band", defaultReserveBand)
	if err != nil {
		return Envelope{}, err
	}
	band, err := resolveBand(p, reserve)
	if err != nil {
		return Envelope{}, err
	}

	current := margin(revenue.Total, expense.Total, precision)

	targetRevenue, err := requiredRevenue(expense.Total, band.Target, precision)
	if err != nil {
		return Envelope{}, err
	}
	floorRevenue, err := requiredRevenue(expense.Total, band.Floor, precision)
	if err != nil {
		return Envelope{}, err
	}
	ceilingRevenue, err := requiredRevenue(expense.Total, band.Ceiling, precision)
	if err != nil {
		return Envelope{}, err
	}

	listRevenue := revenue.Total
	if revenue.ListTotal.IsPositive() {
		listRevenue = revenue.ListTotal
	}

	targetDiscount := discount(listRevenue, targetRevenue, precision)
	floorDiscount := discount(listRevenue, floorRevenue, precision)
	ceilingDiscount := discount(listRevenue, ceilingRevenue, precision)

	metadata, _ := copyValue(p.Metadata).(map[string]interface{})

	return Envelope{
		Currency:        currency,
		Revenue:         mathutil.RoundCurrency(revenue.Total, currency),
		Expense:         mathutil.RoundCurrency(expense.Total, currency),
		ListRevenue:     mathutil.RoundCurrency(listRevenue, currency),
		CurrentMargin:   mathutil.RoundRatio(current),
		TargetMargin:    mathutil.RoundRatio(band.Target),
		FloorMargin:     mathutil.RoundRatio(band.Floor),
		CeilingMargin:   mathutil.RoundRatio(band.Ceiling),
		TargetRevenue:   mathutil.RoundCurrency(targetRevenue, currency),
		FloorRevenue:    mathutil.RoundCurrency(floorRevenue, currency),
		CeilingRevenue:  mathutil.RoundCurrency(ceilingRevenue, currency),
		TargetDiscount:  mathutil.RoundRatio(targetDiscount),
		FloorDiscount:   mathutil.RoundRatio(floorDiscount),
		CeilingDiscount: mathutil.RoundRatio(ceilingDiscount),
		metadata:        metadata,
		audit: buildAuditTrail(auditInputs{
			currency:       currency,
			revenue:        revenue,
			expense:        expense,
			reserveBand:    reserve,
			current:        current,
			target:         band.Target,
			floor:          band.Floor,
			ceiling:        band.Ceiling,
			targetRevenue:  targetRevenue,
			floorRevenue:   floorRevenue,
			ceilingRevenue: ceilingRevenue,
			targetDiscount: targetDiscount,
			floorDiscount:  floorDiscount,
			ceilDiscount:   ceilingDiscount,
		}),
	}, nil
}

// resolveBand derives the floor and ceiling from the reserve band when they
// are not given, keeps every margin in [0, MaxMargin] with floor <= ceiling,
// and pulls the target into the band.
func resolveBand(p Params, reserve decimal.Decimal) (MarginBand, error) {
	target, err := ratio.Parse(p.TargetMargin, ratio.Margin, "target_margin")
	if err != nil {
		return MarginBand{}, err
	}

	floor := target.Sub(reserve)
	if p.FloorMargin != nil {
		if floor, err = ratio.Parse(p.FloorMargin, ratio.Margin, "floor_margin"); err != nil {
			return MarginBand{}, err
		}
	}
	ceiling := target.Add(reserve)
	if p.CeilingMargin != nil {
		if ceiling, err = ratio.Parse(p.CeilingMargin, ratio.Margin, "ceiling_margin"); err != nil {
			return MarginBand{}, err
		}
	}

	floor = mathutil.Clamp(floor, decimal.Zero, maxMargin)
	ceiling = mathutil.Clamp(ceiling, decimal.Zero, maxMargin)
	if floor.GreaterThan(ceiling) {
		floor, ceiling = ceiling, floor
	}
	target = mathutil.Clamp(target, floor, ceiling)

	return MarginBand{Floor: floor, Target: target, Ceiling: ceiling}, nil
}

// resolvePrecision applies the default division precision and bounds an
// explicit one.
func resolvePrecision(precision int32) (int32, error) {
	if precision == 0 {
		return constants.DefaultDivisionPrecision, nil
	}
	if precision < constants.DefaultDivisionPrecision || precision > constants.MaxDivisionPrecision {
		return 0, errs.Errorf(errs.RangeViolation, "envelope.Calculate",
			"precision must be between %d and %d decimal places, got %d",
			constants.DefaultDivisionPrecision, constants.MaxDivisionPrecision, precision)
	}
	return precision, nil
}

// margin is (revenue - expense) / revenue, or zero without revenue.
func margin(revenue, expense decimal.Decimal, precision int32) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return mathutil.Divide(revenue.Sub(expense), revenue, precision)
}

// requiredRevenue is the revenue at which expense leaves margin m.
func requiredRevenue(expense, m decimal.Decimal, precision int32) (decimal.Decimal, error) {
	denominator := one.Sub(m)
	if !denominator.IsPositive() {
		return decimal.Zero, errs.Errorf(errs.RangeViolation, "envelope.requiredRevenue",
			"margin %s leaves a non-positive revenue denominator", m)
	}
	if !expense.IsPositive() {
		return decimal.Zero, nil
	}
	return mathutil.Divide(expense, denominator, precision), nil
}

func discount(listRevenue, required decimal.Decimal, precision int32) decimal.Decimal {
	if listRevenue.IsZero() {
		return decimal.Zero
	}
	return one.Sub(mathutil.Divide(required, listRevenue, precision))
}
