// Package constants provides shared constants for the negotiation-envelope application.
package constants

import "time"

// Negotiation defaults
const (
	// DefaultCurrency is used when neither the caller nor any stream names a currency.
	DefaultCurrency = "USD"

	// DefaultReserveBand is the symmetric band around the target margin (1%).
	DefaultReserveBand = "0.01"

	// MaxMargin is the highest ceiling margin the calculator will accept (99%).
	MaxMargin = "0.99"

	// DefaultMinorUnits is the minor-unit count for currencies missing from the table.
	DefaultMinorUnits = 2

	// RatioPlaces is the number of decimal places every ratio is quantized to.
	RatioPlaces = 4

	// DefaultDivisionPrecision is the number of decimal places kept by exact
	// divisions before quantization.
	DefaultDivisionPrecision = 28

	// MaxDivisionPrecision is the largest division precision a caller may request.
	MaxDivisionPrecision = 64
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Numeric representations for serialized envelopes
const (
	// NumericFloat renders decimals as float64 approximations for display.
	NumericFloat = "float"

	// NumericDecimal keeps decimals as exact decimal values.
	NumericDecimal = "decimal"

	// NumericString renders decimals as fixed-place strings.
	NumericString = "string"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// CurrencyEnvVar overrides the default currency of a scenario file.
	CurrencyEnvVar = "NEGOTIATION_CURRENCY"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML scenario files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultReadHeaderTimeout bounds how long the server waits for request headers
	DefaultReadHeaderTimeout = 10 * time.Second
)
