package integration

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/negotiation-envelope/internal/config"
	"github.com/iwvelando/negotiation-envelope/internal/envelope"
	"github.com/iwvelando/negotiation-envelope/internal/negotiation"
	"github.com/iwvelando/negotiation-envelope/pkg/output"
	"github.com/iwvelando/negotiation-envelope/pkg/testutil"
	"go.uber.org/zap"
)

func loadResults(t *testing.T) []negotiation.Result {
	t.Helper()
	logger := zap.NewNop()

	// Load and process the test configuration exactly as main() does
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("ValidateConfiguration() = %v, expected no warnings", warnings)
	}

	results, err := negotiation.GetEnvelopes(logger, *conf)
	if err != nil {
		t.Fatalf("GetEnvelopes() error = %v", err)
	}
	return results
}

// TestMainIntegrationBaseline checks every active scenario of the test
// configuration against hand-computed envelopes.
func TestMainIntegrationBaseline(t *testing.T) {
	results := loadResults(t)

	expectedScenarios := []string{
		"sms and voice",
		"yen hardware",
		"basis points band",
		"defaults only",
	}
	if len(results) != len(expectedScenarios) {
		t.Fatalf("Expected %d scenarios, got %d", len(expectedScenarios), len(results))
	}
	for i, expected := range expectedScenarios {
		if results[i].Name != expected {
			t.Errorf("Expected scenario %s, got %s", expected, results[i].Name)
		}
	}

	baselineChecks := []struct {
		scenario string
		field    string
		value    func(e envelope.Envelope) string
		expected string
	}{
		{"sms and voice", "Revenue", func(e envelope.Envelope) string { return e.Revenue.String() }, "990"},
		{"sms and voice", "Expense", func(e envelope.Envelope) string { return e.Expense.String() }, "270"},
		{"sms and voice", "ListRevenue", func(e envelope.Envelope) string { return e.ListRevenue.String() }, "1300"},
		{"sms and voice", "CurrentMargin", func(e envelope.Envelope) string { return e.CurrentMargin.String() }, "0.7273"},
		{"sms and voice", "TargetRevenue", func(e envelope.Envelope) string { return e.TargetRevenue.String() }, "900"},
		{"sms and voice", "FloorRevenue", func(e envelope.Envelope) string { return e.FloorRevenue.String() }, "771.43"},
		{"sms and voice", "CeilingRevenue", func(e envelope.Envelope) string { return e.CeilingRevenue.String() }, "1080"},
		{"sms and voice", "TargetDiscount", func(e envelope.Envelope) string { return e.TargetDiscount.String() }, "0.3077"},
		{"yen hardware", "Currency", func(e envelope.Envelope) string { return e.Currency }, "JPY"},
		{"yen hardware", "CurrentMargin", func(e envelope.Envelope) string { return e.CurrentMargin.String() }, "0.35"},
		{"yen hardware", "TargetRevenue", func(e envelope.Envelope) string { return e.TargetRevenue.String() }, "1083333"},
		{"yen hardware", "FloorRevenue", func(e envelope.Envelope) string { return e.FloorRevenue.String() }, "1048387"},
		{"yen hardware", "CeilingRevenue", func(e envelope.Envelope) string { return e.CeilingRevenue.String() }, "1120690"},
		{"basis points band", "FloorMargin", func(e envelope.Envelope) string { return e.FloorMargin.String() }, "0.375"},
		{"basis points band", "TargetMargin", func(e envelope.Envelope) string { return e.TargetMargin.String() }, "0.38"},
		{"basis points band", "CeilingMargin", func(e envelope.Envelope) string { return e.CeilingMargin.String() }, "0.385"},
		{"basis points band", "CurrentMargin", func(e envelope.Envelope) string { return e.CurrentMargin.String() }, "0.344"},
		{"basis points band", "TargetRevenue", func(e envelope.Envelope) string { return e.TargetRevenue.String() }, "132258.06"},
		{"defaults only", "TargetMargin", func(e envelope.Envelope) string { return e.TargetMargin.String() }, "0.35"},
		{"defaults only", "FloorMargin", func(e envelope.Envelope) string { return e.FloorMargin.String() }, "0.33"},
		{"defaults only", "CeilingMargin", func(e envelope.Envelope) string { return e.CeilingMargin.String() }, "0.37"},
		{"defaults only", "TargetRevenue", func(e envelope.Envelope) string { return e.TargetRevenue.String() }, "953.85"},
	}

	for _, check := range baselineChecks {
		t.Run(check.scenario+"/"+check.field, func(t *testing.T) {
			result := testutil.FindResult(results, check.scenario)
			if result == nil {
				t.Fatalf("Scenario %s not found", check.scenario)
			}
			if got := check.value(result.Envelope); got != check.expected {
				t.Errorf("%s = %s, expected %s", check.field, got, check.expected)
			}
		})
	}
}

func TestInactiveScenarioSkipped(t *testing.T) {
	results := loadResults(t)
	if testutil.FindResult(results, "archived") != nil {
		t.Error("Inactive scenario should not produce a result")
	}
}

func TestCSVOutputFormat(t *testing.T) {
	results := loadResults(t)

	csv, err := output.CsvString(results)
	if err != nil {
		t.Fatalf("CsvString() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != len(results)+1 {
		t.Fatalf("Expected %d CSV lines, got %d", len(results)+1, len(lines))
	}

	expectedPrefixes := []string{
		"sms and voice,USD,990.00,270.00,1300.00,0.7273,0.6500,0.7000,0.7500,771.43,900.00,1080.00",
		"yen hardware,JPY,1000000,650000,1000000,0.3500,0.3800,0.4000,0.4200,1048387,1083333,1120690",
		"basis points band,USD,125000.00,82000.00,125000.00,0.3440,0.3750,0.3800,0.3850",
		"defaults only,USD,1000.00,620.00,1000.00,0.3800,0.3300,0.3500,0.3700",
	}
	for i, prefix := range expectedPrefixes {
		if !strings.HasPrefix(lines[i+1], prefix) {
			t.Errorf("CSV line %d = %q, expected prefix %q", i+1, lines[i+1], prefix)
		}
	}
}

func TestPrettyOutputFormat(t *testing.T) {
	results := loadResults(t)

	var buf bytes.Buffer
	output.PrettyFormat(&buf, results)
	out := buf.String()

	for _, want := range []string{
		"--- Results for scenario sms and voice ---",
		"--- Results for scenario defaults only ---",
		"USD 1,080.00",
		"JPY 1,120,690",
		"USD 132,258.06",
		"72.73%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Pretty output missing %q", want)
		}
	}
}

func TestJSONOutputFormat(t *testing.T) {
	results := loadResults(t)

	var buf bytes.Buffer
	if err := output.JSONFormat(&buf, results, envelope.AsString); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded []struct {
		Name     string                 `json:"name"`
		Envelope map[string]interface{} `json:"envelope"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output is invalid: %v", err)
	}
	if len(decoded) != len(results) {
		t.Fatalf("Expected %d JSON results, got %d", len(results), len(decoded))
	}
	yen := decoded[1].Envelope
	if yen["target_revenue"] != "1083333" {
		t.Errorf("yen target_revenue = %v, expected 1083333", yen["target_revenue"])
	}
	metadata, _ := decoded[0].Envelope["metadata"].(map[string]interface{})
	if metadata["account"] != "telco" {
		t.Errorf("metadata = %v, expected account telco", decoded[0].Envelope["metadata"])
	}
	audit, _ := decoded[0].Envelope["audit_trail"].(map[string]interface{})
	if audit == nil {
		t.Error("Expected audit trail in JSON output")
	}
}
