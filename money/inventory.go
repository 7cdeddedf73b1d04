package money

// SimpleInventory is a mapping currency -> Decimal with in-place Add/Sub
// that prune keys whose running sum reaches ZERO. It is used throughout the
// matching engine to compute residuals (spec §4.1) and to accumulate the
// per-currency totals needed by the pair merger's balance check (§4.6).
//
// The zero value is not usable; construct with NewSimpleInventory.
type SimpleInventory struct {
	sums map[string]Decimal
}

// NewSimpleInventory returns an empty inventory.
func NewSimpleInventory() *SimpleInventory {
	return &SimpleInventory{sums: make(map[string]Decimal)}
}

// Add adds amount to the running sum for currency, pruning the entry if the
// new sum is exactly zero.
func (inv *SimpleInventory) Add(currency string, amount Decimal) {
	sum := inv.sums[currency].Add(amount)
	if sum.IsZero() {
		delete(inv.sums, currency)
		return
	}
	inv.sums[currency] = sum
}

// Sub subtracts amount from the running sum for currency.
func (inv *SimpleInventory) Sub(currency string, amount Decimal) {
	inv.Add(currency, amount.Neg())
}

// Get returns the running sum for currency, or Zero if absent.
func (inv *SimpleInventory) Get(currency string) Decimal {
	if sum, ok := inv.sums[currency]; ok {
		return sum
	}
	return Zero
}

// Currencies returns the currencies with a non-zero running sum. Order is
// unspecified; callers that need determinism should sort.
func (inv *SimpleInventory) Currencies() []string {
	currencies := make([]string, 0, len(inv.sums))
	for c := range inv.sums {
		currencies = append(currencies, c)
	}
	return currencies
}

// IsZero reports whether every tracked currency has pruned to zero.
func (inv *SimpleInventory) IsZero() bool {
	return len(inv.sums) == 0
}

// IsZeroWithin reports whether every tracked currency is within tolerance
// of zero, using the given per-currency tolerance lookup (falls back to
// tolerance.GetDefaultTolerance when a currency has no specific entry).
func (inv *SimpleInventory) IsZeroWithin(tolerance *ToleranceConfig) bool {
	for currency, sum := range inv.sums {
		if sum.Abs().GreaterThan(tolerance.GetDefaultTolerance(currency)) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the inventory.
func (inv *SimpleInventory) Clone() *SimpleInventory {
	clone := NewSimpleInventory()
	for c, sum := range inv.sums {
		clone.sums[c] = sum
	}
	return clone
}
