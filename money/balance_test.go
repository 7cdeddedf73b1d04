package money

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewBalanceFromMap(t *testing.T) {
	usd, _ := ParseDecimal("10")
	eur, _ := ParseDecimal("5")

	b := NewBalanceFromMap(map[string]Decimal{"USD": usd, "EUR": eur})

	assert.Equal(t, []string{"EUR", "USD"}, b.Currencies(), "currencies should be sorted")
	assert.Equal(t, usd, b.Get("USD"))
	assert.Equal(t, Zero, b.Get("GBP"))
}

func TestBalanceFromInventory(t *testing.T) {
	inv := NewSimpleInventory()
	d10, _ := ParseDecimal("10")
	inv.Add("USD", d10)

	b := NewBalanceFromInventory(inv)
	assert.Equal(t, d10, b.Get("USD"))
}

func TestBalanceIsZero(t *testing.T) {
	assert.True(t, NewBalance().IsZero())

	nonZero := NewBalanceFromMap(map[string]Decimal{"USD": decimalFromFloat(1)})
	assert.False(t, nonZero.IsZero())
}

func TestBalanceString(t *testing.T) {
	assert.Equal(t, "(balanced)", NewBalance().String())

	b := NewBalanceFromMap(map[string]Decimal{"USD": decimalFromFloat(-0.02)})
	assert.Equal(t, "-0.02 USD", b.String())
}
