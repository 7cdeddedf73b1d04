package money

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSimpleInventoryPrunesZero(t *testing.T) {
	inv := NewSimpleInventory()

	d10, _ := ParseDecimal("10")
	d10neg, _ := ParseDecimal("-10")

	inv.Add("USD", d10)
	assert.False(t, inv.IsZero())
	assert.Equal(t, d10, inv.Get("USD"))

	inv.Add("USD", d10neg)
	assert.True(t, inv.IsZero(), "adding the negation should prune the entry")
	assert.Equal(t, Zero, inv.Get("USD"))
}

func TestSimpleInventorySub(t *testing.T) {
	inv := NewSimpleInventory()
	d5, _ := ParseDecimal("5")

	inv.Add("EUR", d5)
	inv.Sub("EUR", d5)
	assert.True(t, inv.IsZero())
}

func TestSimpleInventoryCurrencies(t *testing.T) {
	inv := NewSimpleInventory()
	d1, _ := ParseDecimal("1")

	inv.Add("USD", d1)
	inv.Add("EUR", d1)

	currencies := inv.Currencies()
	assert.Equal(t, 2, len(currencies))
}

func TestSimpleInventoryIsZeroWithin(t *testing.T) {
	inv := NewSimpleInventory()
	residual, _ := ParseDecimal("0.002")
	inv.Add("USD", residual)

	cfg := NewToleranceConfig() // default 0.005
	assert.True(t, inv.IsZeroWithin(cfg))

	tight := &ToleranceConfig{defaults: map[string]Decimal{"*": decimalFromFloat(0.001)}, multiplier: decimalFromFloat(0.5)}
	assert.False(t, inv.IsZeroWithin(tight))
}

func TestSimpleInventoryClone(t *testing.T) {
	inv := NewSimpleInventory()
	d1, _ := ParseDecimal("1")
	inv.Add("USD", d1)

	clone := inv.Clone()
	clone.Add("USD", d1)

	assert.Equal(t, d1, inv.Get("USD"), "mutating the clone must not affect the original")
}
