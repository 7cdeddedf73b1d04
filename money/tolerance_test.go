package money

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestInferTolerance(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []string
		currency string
		config   *ToleranceConfig
		wantTol  string
	}{
		{
			name:     "standard 2 decimals",
			amounts:  []string{"24.45", "100.00"},
			currency: "USD",
			config:   NewToleranceConfig(),
			wantTol:  "0.005",
		},
		{
			name:     "high precision 5 decimals",
			amounts:  []string{"10.22626", "5.12345"},
			currency: "RGAGX",
			config:   NewToleranceConfig(),
			wantTol:  "0.000005",
		},
		{
			name:     "mixed precision uses smallest",
			amounts:  []string{"100.00", "50.123"},
			currency: "USD",
			config:   NewToleranceConfig(),
			wantTol:  "0.0005",
		},
		{
			name:     "no amounts - use default",
			amounts:  []string{},
			currency: "USD",
			config:   NewToleranceConfig(),
			wantTol:  "0.005",
		},
		{
			name:     "all zero amounts - use default",
			amounts:  []string{"0.00", "0.000"},
			currency: "USD",
			config:   NewToleranceConfig(),
			wantTol:  "0.005",
		},
		{
			name:     "integer amounts",
			amounts:  []string{"100", "200"},
			currency: "USD",
			config:   NewToleranceConfig(),
			wantTol:  "0.5",
		},
		{
			name:     "currency-specific default",
			amounts:  []string{},
			currency: "USD",
			config: &ToleranceConfig{
				defaults:   map[string]Decimal{"USD": decimalFromFloat(0.003), "*": decimalFromFloat(0.005)},
				multiplier: decimalFromFloat(0.5),
			},
			wantTol: "0.003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := make([]Decimal, 0, len(tt.amounts))
			for _, s := range tt.amounts {
				d, err := ParseDecimal(s)
				assert.NoError(t, err, "failed to parse amount %q", s)
				amounts = append(amounts, d)
			}

			got := InferTolerance(amounts, tt.currency, tt.config)
			want, err := ParseDecimal(tt.wantTol)
			assert.NoError(t, err)
			assert.Equal(t, want, got, "InferTolerance() mismatch")
		})
	}
}

func TestGetDefaultTolerance(t *testing.T) {
	tests := []struct {
		name     string
		config   *ToleranceConfig
		currency string
		want     string
	}{
		{name: "nil config - fallback", config: nil, currency: "USD", want: "0.005"},
		{
			name: "currency-specific default",
			config: &ToleranceConfig{
				defaults:   map[string]Decimal{"USD": decimalFromFloat(0.003), "EUR": decimalFromFloat(0.002), "*": decimalFromFloat(0.005)},
				multiplier: decimalFromFloat(0.5),
			},
			currency: "USD",
			want:     "0.003",
		},
		{
			name: "wildcard default",
			config: &ToleranceConfig{
				defaults:   map[string]Decimal{"USD": decimalFromFloat(0.003), "*": decimalFromFloat(0.005)},
				multiplier: decimalFromFloat(0.5),
			},
			currency: "CAD",
			want:     "0.005",
		},
		{
			name: "no wildcard - final fallback",
			config: &ToleranceConfig{
				defaults:   map[string]Decimal{"USD": decimalFromFloat(0.003)},
				multiplier: decimalFromFloat(0.5),
			},
			currency: "EUR",
			want:     "0.005",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.GetDefaultTolerance(tt.currency)
			want, err := ParseDecimal(tt.want)
			assert.NoError(t, err)
			assert.Equal(t, want, got, "GetDefaultTolerance() mismatch")
		})
	}
}

func TestNewToleranceConfig(t *testing.T) {
	config := NewToleranceConfig()

	assert.True(t, config != nil)
	assert.Equal(t, decimalFromFloat(0.5), config.multiplier)
	assert.Equal(t, decimalFromFloat(0.005), config.defaults["*"])
	assert.False(t, config.inferFromCost)
}

func TestParseToleranceConfig(t *testing.T) {
	options := map[string][]string{
		"tolerance_multiplier":      {"0.6"},
		"inferred_tolerance_default": {"*:0.005", "USD:0.003"},
		"infer_tolerance_from_cost":  {"TRUE"},
	}

	config, err := ParseToleranceConfig(options)
	assert.NoError(t, err)
	assert.Equal(t, decimalFromFloat(0.6), config.multiplier)
	assert.Equal(t, decimalFromFloat(0.003), config.defaults["USD"])
	assert.True(t, config.InferFromCost())
}

func TestAmountEqual(t *testing.T) {
	a, _ := ParseDecimal("10.001")
	b, _ := ParseDecimal("10.002")
	tol, _ := ParseDecimal("0.005")
	assert.True(t, AmountEqual(a, b, tol))

	tight, _ := ParseDecimal("0.0005")
	assert.False(t, AmountEqual(a, b, tight))
}
