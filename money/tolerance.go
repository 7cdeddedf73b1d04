package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ToleranceConfig describes a fuzzy-amount tolerance policy for deciding
// whether weights are "close enough" to balance; SimpleInventory.IsZeroWithin
// consults it. The posting index (a fixed fuzzy amount) and the pair merger
// (a residual-derived tolerance) do not use it. Adapted from the inferred-tolerance rules of a Beancount-style
// ledger: a default per currency (with a "*" wildcard), a multiplier, and an
// optional mode that infers tolerance from the precision of observed
// amounts rather than using a fixed default.
type ToleranceConfig struct {
	defaults      map[string]Decimal
	multiplier    Decimal
	inferFromCost bool
}

// NewToleranceConfig returns the default tolerance configuration: 0.005 for
// every currency, with a 0.5 inference multiplier.
func NewToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		defaults:   map[string]Decimal{"*": decimalFromFloat(0.005)},
		multiplier: decimalFromFloat(0.5),
	}
}

func decimalFromFloat(f float64) Decimal {
	d, _ := ParseDecimal(fmt.Sprintf("%v", f))
	return d
}

// ParseToleranceConfig builds a ToleranceConfig from an options map such as
// would be collected from feed-specific or ledger-wide configuration:
//
//	"tolerance_multiplier": ["0.6"]
//	"inferred_tolerance_default": ["*:0.005", "USD:0.003"]
//	"infer_tolerance_from_cost": ["TRUE"]
func ParseToleranceConfig(options map[string][]string) (*ToleranceConfig, error) {
	config := NewToleranceConfig()

	if vals := options["tolerance_multiplier"]; len(vals) > 0 {
		multiplier, err := ParseDecimal(vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid tolerance_multiplier %q: %w", vals[0], err)
		}
		config.multiplier = multiplier
	}

	if vals := options["inferred_tolerance_default"]; len(vals) > 0 {
		for _, val := range vals {
			parts := strings.SplitN(val, ":", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid inferred_tolerance_default format %q, expected CURRENCY:TOLERANCE", val)
			}

			currency := strings.TrimSpace(parts[0])
			toleranceStr := strings.TrimSpace(parts[1])

			tolerance, err := ParseDecimal(toleranceStr)
			if err != nil {
				return nil, fmt.Errorf("invalid tolerance value in %q: %w", val, err)
			}

			config.defaults[currency] = tolerance
		}
	}

	if vals := options["infer_tolerance_from_cost"]; len(vals) > 0 {
		config.inferFromCost = strings.ToUpper(vals[0]) == "TRUE"
	}

	return config, nil
}

// InferFromCost reports whether cost/price amounts should be folded into
// tolerance inference alongside posting units.
func (c *ToleranceConfig) InferFromCost() bool {
	return c != nil && c.inferFromCost
}

// InferTolerance calculates a tolerance from the precision of observed
// amounts: find the smallest magnitude exponent across amounts, and return
// 10^minExp * multiplier. Falls back to the configured default when no
// amounts are given or all are zero.
func InferTolerance(amounts []Decimal, currency string, config *ToleranceConfig) Decimal {
	if config == nil {
		config = NewToleranceConfig()
	}

	if len(amounts) == 0 {
		return config.GetDefaultTolerance(currency)
	}

	minExp := int32(0)
	foundAny := false

	for _, amount := range amounts {
		if amount.IsZero() {
			continue
		}

		exp := amount.Exponent()
		if !foundAny || exp < minExp {
			minExp = exp
			foundAny = true
		}
	}

	if !foundAny {
		return config.GetDefaultTolerance(currency)
	}

	return decimal.New(1, minExp).Mul(config.multiplier)
}

// GetDefaultTolerance returns the configured default tolerance for a
// currency, falling back to the "*" wildcard, then to a hardcoded 0.005.
func (c *ToleranceConfig) GetDefaultTolerance(currency string) Decimal {
	if c == nil {
		return decimalFromFloat(0.005)
	}

	if tolerance, ok := c.defaults[currency]; ok {
		return tolerance
	}

	if tolerance, ok := c.defaults["*"]; ok {
		return tolerance
	}

	return decimalFromFloat(0.005)
}

// AmountEqual reports whether a and b are equal within tolerance.
func AmountEqual(a, b Decimal, tolerance Decimal) bool {
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(tolerance)
}
