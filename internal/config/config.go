// Package config defines the data structures related to configuration and
// includes functions for loading and validating scenario files.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/negotiation-envelope/pkg/constants"
	"github.com/iwvelando/negotiation-envelope/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for negotiation-envelope.
type Configuration struct {
	Defaults  Defaults
	Scenarios []Scenario
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format  string `yaml:"format,omitempty"`  // pretty, csv, json
	Numeric string `yaml:"numeric,omitempty"` // float, decimal, string
}

// Defaults holds the parameters shared by every scenario that does not set
// its own.
type Defaults struct {
	Currency     string
	TargetMargin interface{}
	ReserveBand  interface{}
	Precision    int32
}

// Scenario holds the revenue and expense streams of one negotiation along
// with its margin settings. Margin values accept anything the ratio parser
// does, so they stay untyped until the calculation.
type Scenario struct {
	Name          string
	Active        bool
	Currency      string
	TargetMargin  interface{}
	FloorMargin   interface{}
	CeilingMargin interface{}
	ReserveBand   interface{}
	ListRevenue   interface{}
	Metadata      map[string]interface{}
	Revenue       interface{}
	Expense       interface{}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetDefault("defaults.currency", constants.DefaultCurrency)
	v.SetDefault("defaults.reserveBand", constants.DefaultReserveBand)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.numeric", constants.NumericString)
	_ = v.BindEnv("defaults.currency", constants.CurrencyEnvVar)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r,
// as used for uploaded scenario files.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ValidateConfiguration checks the configuration for settings that will be
// corrected or ignored at calculation time and returns them as warnings.
// Hard errors are reported by the calculation itself.
func (conf *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		DefaultCurrency: conf.Defaults.Currency,
	}
	for _, s := range conf.Scenarios {
		validator.Scenarios = append(validator.Scenarios, validation.ScenarioConfig{
			Name:          s.Name,
			Active:        s.Active,
			Currency:      s.Currency,
			TargetMargin:  conf.TargetMarginFor(s),
			FloorMargin:   s.FloorMargin,
			CeilingMargin: s.CeilingMargin,
		})
	}
	return validator.ValidateAll()
}

// TargetMarginFor returns the scenario's target margin, falling back to
// the default.
func (conf *Configuration) TargetMarginFor(s Scenario) interface{} {
	if s.TargetMargin != nil {
		return s.TargetMargin
	}
	return conf.Defaults.TargetMargin
}

// ReserveBandFor returns the scenario's reserve band, falling back to the
// default.
func (conf *Configuration) ReserveBandFor(s Scenario) interface{} {
	if s.ReserveBand != nil {
		return s.ReserveBand
	}
	return conf.Defaults.ReserveBand
}

// CurrencyFor returns the scenario's currency hint, falling back to the
// default.
func (conf *Configuration) CurrencyFor(s Scenario) string {
	if s.Currency != "" {
		return s.Currency
	}
	return conf.Defaults.Currency
}
