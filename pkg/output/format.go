// Package output provides utilities for formatting and displaying scenario results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/negotiation-envelope/internal/envelope"
	"github.com/iwvelando/negotiation-envelope/internal/negotiation"
	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/format"
	"github.com/iwvelando/negotiation-envelope/pkg/money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type row struct {
	label  string
	margin string
	amount string
	disc   string
}

func rows(env envelope.Envelope) []row {
	return []row{
		{"Current", format.Percent(env.CurrentMargin), format.Money(env.Revenue, env.Currency), ""},
		{"Floor", format.Percent(env.FloorMargin), format.Money(env.FloorRevenue, env.Currency), format.Percent(env.FloorDiscount)},
		{"Target", format.Percent(env.TargetMargin), format.Money(env.TargetRevenue, env.Currency), format.Percent(env.TargetDiscount)},
		{"Ceiling", format.Percent(env.CeilingMargin), format.Money(env.CeilingRevenue, env.Currency), format.Percent(env.CeilingDiscount)},
	}
}

// PrettyFormat writes a human-readable rather than machine-readable table.
// Decimal amounts arrive pre-grouped from pkg/format; the printer groups the
// integer line counts.
func PrettyFormat(w io.Writer, results []negotiation.Result) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		env := result.Envelope
		revenueLines := len(env.AuditTrail().Breakdown("revenue"))
		expenseLines := len(env.AuditTrail().Breakdown("expense"))
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		_, _ = fmt.Fprintf(w, "Expense: %s | List revenue: %s\n",
			format.Money(env.Expense, env.Currency), format.Money(env.ListRevenue, env.Currency))
		_, _ = fmt.Fprintf(w, "Level   | Margin  | Revenue            | Discount\n")
		_, _ = fmt.Fprintf(w, "_____   | ______  | _______            | ________\n")
		for _, r := range rows(env) {
			_, _ = fmt.Fprintf(w, "%-7s | %-7s | %-18s | %s\n", r.label, r.margin, r.amount, r.disc)
		}
		if lines := revenueLines + expenseLines; lines > 0 {
			_, _ = p.Fprintf(w, "Audit trail: %d stream lines (%d revenue, %d expense)\n",
				lines, revenueLines, expenseLines)
		}
		if i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

var csvHeader = []string{
	"scenario", "currency", "revenue", "expense", "list_revenue",
	"current_margin", "floor_margin", "target_margin", "ceiling_margin",
	"floor_revenue", "target_revenue", "ceiling_revenue",
	"floor_discount", "target_discount", "ceiling_discount",
}

// CsvFormat writes one comma-separated row per scenario. Amounts carry the
// currency's minor units and ratios four places.
func CsvFormat(w io.Writer, results []negotiation.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, result := range results {
		env := result.Envelope
		places := money.MinorUnits(env.Currency)
		amt := func(v decimal.Decimal) string { return v.StringFixed(places) }
		rat := func(v decimal.Decimal) string { return v.StringFixed(constants.RatioPlaces) }
		record := []string{
			result.Name, env.Currency,
			amt(env.Revenue), amt(env.Expense), amt(env.ListRevenue),
			rat(env.CurrentMargin), rat(env.FloorMargin), rat(env.TargetMargin), rat(env.CeilingMargin),
			amt(env.FloorRevenue), amt(env.TargetRevenue), amt(env.CeilingRevenue),
			rat(env.FloorDiscount), rat(env.TargetDiscount), rat(env.CeilingDiscount),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString returns the CSV rendering as a string.
func CsvString(results []negotiation.Result) (string, error) {
	var b strings.Builder
	if err := CsvFormat(&b, results); err != nil {
		return "", err
	}
	return b.String(), nil
}

// JSONFormat writes the results as an indented JSON array of
// {"name", "envelope"} objects, converting decimals with convert.
func JSONFormat(w io.Writer, results []negotiation.Result, convert envelope.Converter) error {
	out := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		out = append(out, map[string]interface{}{
			"name":     result.Name,
			"envelope": result.Envelope.ToMap(convert),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
