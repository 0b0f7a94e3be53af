package envelope

import (
	"github.com/iwvelando/negotiation-envelope/internal/stream"
	"github.com/shopspring/decimal"
)

// AuditTrail records the unquantized intermediate values of a calculation as
// exact decimal strings. It is built once and only handed out as copies.
type AuditTrail struct {
	root map[string]interface{}
}

// Map returns a deep copy of the trail.
func (a AuditTrail) Map() map[string]interface{} {
	m, _ := copyValue(a.root).(map[string]interface{})
	if m == nil {
		m = map[string]interface{}{}
	}
	return m
}

// Lookup returns the string leaf at path, e.g. Lookup("margins", "target").
func (a AuditTrail) Lookup(path ...string) (string, bool) {
	var node interface{} = a.root
	for _, key := range path {
		m, ok := node.(map[string]interface{})
		if !ok {
			return "", false
		}
		if node, ok = m[key]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

// Breakdown returns the recorded lines of the "revenue" or "expense" collection.
func (a AuditTrail) Breakdown(collection string) []map[string]string {
	breakdown, _ := a.root["breakdown"].(map[string]interface{})
	entries, _ := breakdown[collection].([]interface{})
	out := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		fields, _ := entry.(map[string]interface{})
		line := make(map[string]string, len(fields))
		for k, v := range fields {
			line[k], _ = v.(string)
		}
		out = append(out, line)
	}
	return out
}

type auditInputs struct {
	currency       string
	revenue        stream.Totals
	expense        stream.Totals
	reserveBand    decimal.Decimal
	current        decimal.Decimal
	target         decimal.Decimal
	floor          decimal.Decimal
	ceiling        decimal.Decimal
	targetRevenue  decimal.Decimal
	floorRevenue   decimal.Decimal
	ceilingRevenue decimal.Decimal
	targetDiscount decimal.Decimal
	floorDiscount  decimal.Decimal
	ceilDiscount   decimal.Decimal
}

func buildAuditTrail(in auditInputs) AuditTrail {
	return AuditTrail{root: map[string]interface{}{
		"currency": in.currency,
		"inputs": map[string]interface{}{
			"revenue_total":      in.revenue.Total.String(),
			"expense_total":      in.expense.Total.String(),
			"list_revenue_total": in.revenue.ListTotal.String(),
			"reserve_band":       in.reserveBand.String(),
		},
		"margins": map[string]interface{}{
			"current": in.current.String(),
			"target":  in.target.String(),
			"floor":   in.floor.String(),
			"ceiling": in.ceiling.String(),
		},
		"revenues": map[string]interface{}{
			"target":     in.targetRevenue.String(),
			"floor":      in.floorRevenue.String(),
			"ceiling":    in.ceilingRevenue.String(),
			"list_total": in.revenue.ListTotal.String(),
		},
		"discounts": map[string]interface{}{
			"target":  in.targetDiscount.String(),
			"floor":   in.floorDiscount.String(),
			"ceiling": in.ceilDiscount.String(),
		},
		"breakdown": map[string]interface{}{
			"revenue": auditBreakdown(in.revenue),
			"expense": auditBreakdown(in.expense),
		},
	}}
}

func auditBreakdown(t stream.Totals) []interface{} {
	lines := t.Breakdown()
	out := make([]interface{}, 0, len(lines))
	for _, line := range lines {
		out = append(out, map[string]interface{}{
			"name":        line.Name,
			"amount":      line.Amount.String(),
			"list_amount": line.ListAmount.String(),
		})
	}
	return out
}
