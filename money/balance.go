package money

import (
	"sort"
	"strings"
)

// Balance is a read-only, display-ordered view of a SimpleInventory (or any
// other currency->amount map): a sorted slice of CurrencyAmount so that two
// callers iterating the same balance see the same order, which matters for
// deterministic candidate ranking and for rendering the review table.
type Balance struct {
	entries []*CurrencyAmount
}

// CurrencyAmount pairs a currency code with an amount.
type CurrencyAmount struct {
	Currency string
	Amount   Decimal
}

// NewBalance returns an empty balance.
func NewBalance() *Balance {
	return &Balance{entries: []*CurrencyAmount{}}
}

// NewBalanceFromInventory snapshots a SimpleInventory into a sorted Balance.
func NewBalanceFromInventory(inv *SimpleInventory) *Balance {
	if inv == nil {
		return NewBalance()
	}
	m := make(map[string]Decimal, len(inv.sums))
	for c, v := range inv.sums {
		m[c] = v
	}
	return NewBalanceFromMap(m)
}

// NewBalanceFromMap converts a map[string]Decimal into a sorted Balance.
func NewBalanceFromMap(m map[string]Decimal) *Balance {
	if len(m) == 0 {
		return NewBalance()
	}

	entries := make([]*CurrencyAmount, 0, len(m))
	for currency, amount := range m {
		entries = append(entries, &CurrencyAmount{Currency: currency, Amount: amount})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Currency < entries[j].Currency
	})

	return &Balance{entries: entries}
}

// Get returns the amount for currency, or Zero if absent.
func (b *Balance) Get(currency string) Decimal {
	for _, e := range b.entries {
		if e.Currency == currency {
			return e.Amount
		}
	}
	return Zero
}

// IsZero reports whether every entry is zero, or the balance is empty.
func (b *Balance) IsZero() bool {
	for _, e := range b.entries {
		if !e.Amount.IsZero() {
			return false
		}
	}
	return true
}

// Currencies returns the sorted currency codes present in the balance.
func (b *Balance) Currencies() []string {
	currencies := make([]string, len(b.entries))
	for i, e := range b.entries {
		currencies[i] = e.Currency
	}
	return currencies
}

// Entries returns the underlying sorted entries.
func (b *Balance) Entries() []*CurrencyAmount {
	return b.entries
}

// String renders the balance the way a candidate review table would show a
// residual, e.g. "1.1 EUR, -0.02 USD".
func (b *Balance) String() string {
	if len(b.entries) == 0 {
		return "(balanced)"
	}

	parts := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		parts = append(parts, e.Amount.String()+" "+e.Currency)
	}
	return strings.Join(parts, ", ")
}
