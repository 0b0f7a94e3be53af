// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/negotiation-envelope/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateNumericMode checks if the numeric representation is supported.
func ValidateNumericMode(mode string) error {
	switch mode {
	case "", constants.NumericFloat, constants.NumericDecimal, constants.NumericString:
		return nil
	}
	return fmt.Errorf("expected numeric mode of %s, %s or %s, got %s",
		constants.NumericFloat, constants.NumericDecimal, constants.NumericString, mode)
}
