// Package negotiation evaluates the scenarios of a configuration and
// collects their negotiation envelopes.
package negotiation

import (
	"fmt"

	"github.com/iwvelando/negotiation-envelope/internal/config"
	"github.com/iwvelando/negotiation-envelope/internal/envelope"
	"go.uber.org/zap"
)

// Result holds the envelope computed for a specific scenario.
type Result struct {
	Name     string
	Envelope envelope.Envelope
}

// GetEnvelopes computes the envelopes for all active Scenarios. The first
// failing scenario aborts the run and its error names the scenario.
func GetEnvelopes(logger *zap.Logger, conf config.Configuration) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Result
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "negotiation.GetEnvelopes"),
			)
			continue
		}

		env, err := envelope.Calculate(scenario.Revenue, scenario.Expense, ParamsFor(conf, scenario))
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		logger.Debug("computed envelope",
			zap.String("op", "negotiation.GetEnvelopes"),
			zap.String("scenario", scenario.Name),
			zap.String("currency", env.Currency),
			zap.String("currentMargin", env.CurrentMargin.String()),
			zap.String("targetRevenue", env.TargetRevenue.String()),
		)

		results = append(results, Result{Name: scenario.Name, Envelope: env})
	}

	return results, nil
}

// ParamsFor merges a scenario with the configuration defaults.
func ParamsFor(conf config.Configuration, scenario config.Scenario) envelope.Params {
	return envelope.Params{
		TargetMargin:  conf.TargetMarginFor(scenario),
		FloorMargin:   scenario.FloorMargin,
		CeilingMargin: scenario.CeilingMargin,
		ReserveBand:   conf.ReserveBandFor(scenario),
		Currency:      conf.CurrencyFor(scenario),
		ListRevenue:   scenario.ListRevenue,
		Metadata:      scenario.Metadata,
		Precision:     conf.Defaults.Precision,
	}
}
