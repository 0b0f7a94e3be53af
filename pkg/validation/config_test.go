package validation

import (
	"strings"
	"testing"
)

func TestValidateCurrency(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		expectWarn bool
	}{
		{"Empty code", "", false},
		{"US dollar", "USD", false},
		{"Lowercase euro", "eur", false},
		{"Yen", "JPY", false},
		{"Central African franc", "XAF", false},
		{"Unknown code", "XYZ", true},
		{"Not a code", "DOLLARS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateCurrency("Scenario 'test'", tt.code)
			if tt.expectWarn && warning == "" {
				t.Errorf("Expected warning for %q, got none", tt.code)
			}
			if !tt.expectWarn && warning != "" {
				t.Errorf("Expected no warning for %q, got %q", tt.code, warning)
			}
		})
	}
}

func TestValidateMarginBand(t *testing.T) {
	tests := []struct {
		name     string
		target   interface{}
		floor    interface{}
		ceiling  interface{}
		contains []string
	}{
		{
			name:   "Nothing explicit",
			target: "30%",
		},
		{
			name:    "Target inside band",
			target:  "30%",
			floor:   "20%",
			ceiling: "40%",
		},
		{
			name:     "Inverted band",
			target:   "30%",
			floor:    "40%",
			ceiling:  "20%",
			contains: []string{"swapped"},
		},
		{
			name:     "Target above band",
			target:   "50%",
			floor:    "20%",
			ceiling:  "40%",
			contains: []string{"clamped"},
		},
		{
			name:     "Inverted band and target outside",
			target:   0.1,
			floor:    0.4,
			ceiling:  0.2,
			contains: []string{"swapped", "clamped"},
		},
		{
			name:     "Invalid floor",
			target:   "30%",
			floor:    "abc",
			ceiling:  "40%",
			contains: []string{"floor_margin is invalid"},
		},
		{
			name:     "Margin out of range",
			target:   "120%",
			contains: []string{"target_margin is invalid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateMarginBand("Scenario 'test'", tt.target, tt.floor, tt.ceiling)
			if len(warnings) != len(tt.contains) {
				t.Fatalf("Expected %d warnings, got %d: %v", len(tt.contains), len(warnings), warnings)
			}
			for i, want := range tt.contains {
				if !strings.Contains(warnings[i], want) {
					t.Errorf("Warning %d = %q, want it to contain %q", i, warnings[i], want)
				}
			}
		})
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	tests := []struct {
		name      string
		validator ConfigValidator
		contains  []string
	}{
		{
			name: "Clean configuration",
			validator: ConfigValidator{
				DefaultCurrency: "USD",
				Scenarios: []ScenarioConfig{
					{Name: "Base", Active: true, Currency: "EUR", TargetMargin: "30%"},
				},
			},
		},
		{
			name: "No active scenarios",
			validator: ConfigValidator{
				DefaultCurrency: "USD",
				Scenarios: []ScenarioConfig{
					{Name: "Base", Active: false, Currency: "XYZ"},
				},
			},
			contains: []string{"No active scenarios"},
		},
		{
			name: "Duplicate names and unknown currency",
			validator: ConfigValidator{
				DefaultCurrency: "QQQ",
				Scenarios: []ScenarioConfig{
					{Name: "Base", Active: true},
					{Name: "Base", Active: true},
				},
			},
			contains: []string{"Default currency 'QQQ'", "defined more than once"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.validator.ValidateAll()
			if len(warnings) != len(tt.contains) {
				t.Fatalf("Expected %d warnings, got %d: %v", len(tt.contains), len(warnings), warnings)
			}
			for i, want := range tt.contains {
				if !strings.Contains(warnings[i], want) {
					t.Errorf("Warning %d = %q, want it to contain %q", i, warnings[i], want)
				}
			}
		})
	}
}
