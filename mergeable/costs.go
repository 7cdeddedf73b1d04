package mergeable

import (
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// CostsMergeable implements spec.md §4.4's costs_mergeable, dispatching on
// which of Cost/CostSpec each side carries. The postings' unit quantities
// are used to check a CostSpec's number_total against a resolved Cost's
// per-unit price.
func CostsMergeable(a *posting.Posting, b *posting.Posting) bool {
	switch {
	case a.Cost != nil && b.Cost != nil:
		return costToCostMergeable(a.Cost, b.Cost)
	case a.CostSpec != nil && b.CostSpec != nil:
		return costSpecToCostSpecMergeable(a.CostSpec, b.CostSpec)
	case a.Cost != nil && b.CostSpec != nil:
		return costToCostSpecMergeable(a.Cost, a.Units.Number, b.CostSpec, b.Units.Number)
	case a.CostSpec != nil && b.Cost != nil:
		return costToCostSpecMergeable(b.Cost, b.Units.Number, a.CostSpec, a.Units.Number)
	default:
		// Neither side carries cost information: vacuously mergeable.
		return a.Cost == nil && a.CostSpec == nil && b.Cost == nil && b.CostSpec == nil
	}
}

// costToCostMergeable compares two fully resolved costs: equal
// number/currency/date; label is MISSING-tolerant (empty string acts as a
// wildcard).
func costToCostMergeable(a, b *posting.Cost) bool {
	if !a.PerUnit.Equal(b.PerUnit) {
		return false
	}
	if a.Currency != b.Currency {
		return false
	}
	if !datesEqual(a.Date, b.Date) {
		return false
	}
	if a.Label != "" && b.Label != "" && a.Label != b.Label {
		return false
	}
	return true
}

// costSpecToCostSpecMergeable compares two cost specs field by field, with
// each field MISSING-tolerant (a nil pointer on either side matches
// anything), plus an exact comparison of the merge flag.
func costSpecToCostSpecMergeable(a, b *posting.CostSpec) bool {
	if a.Merge != b.Merge {
		return false
	}
	if !decimalPtrsMergeable(a.PerUnit, b.PerUnit) {
		return false
	}
	if !decimalPtrsMergeable(a.NumberTotal, b.NumberTotal) {
		return false
	}
	if !stringPtrsMergeable(a.Currency, b.Currency) {
		return false
	}
	if !datePtrsMergeable(a.Date, b.Date) {
		return false
	}
	if !stringPtrsMergeable(a.Label, b.Label) {
		return false
	}
	return true
}

// costToCostSpecMergeable checks a resolved Cost against a CostSpec: every
// spec field the spec actually sets must align with the resolved cost; if
// the spec carries NumberTotal instead of (or in addition to) PerUnit, it
// must equal cost.PerUnit * |specUnits| (spec.md §4.4).
func costToCostSpecMergeable(cost *posting.Cost, costUnits money.Decimal, spec *posting.CostSpec, specUnits money.Decimal) bool {
	if spec.PerUnit != nil && !spec.PerUnit.Equal(cost.PerUnit) {
		return false
	}
	if spec.Currency != nil && *spec.Currency != cost.Currency {
		return false
	}
	if spec.Date != nil && !datesEqual(cost.Date, spec.Date) {
		return false
	}
	if spec.Label != nil && cost.Label != "" && *spec.Label != cost.Label {
		return false
	}
	if spec.NumberTotal != nil {
		expected := cost.PerUnit.Mul(specUnits.Abs())
		if !spec.NumberTotal.Equal(expected) {
			return false
		}
	}
	return true
}

func datesEqual(a, b *posting.Date) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b.Time)
}

func datePtrsMergeable(a, b *posting.Date) bool {
	if a == nil || b == nil {
		return true
	}
	return a.Equal(b.Time)
}

func decimalPtrsMergeable(a, b *money.Decimal) bool {
	if a == nil || b == nil {
		return true
	}
	return a.Equal(*b)
}

func stringPtrsMergeable(a, b *string) bool {
	if a == nil || b == nil {
		return true
	}
	return *a == *b
}
