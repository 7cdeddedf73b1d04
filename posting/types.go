package posting

import (
	"time"

	"github.com/ledgerkit/reconcile/money"
)

// Date is a calendar day. It wraps time.Time the way the teacher's ast.Date
// does, but the matching engine only ever compares dates at day
// granularity, so all construction goes through NewDate, which truncates to
// midnight UTC.
type Date struct {
	time.Time
}

// NewDate returns a Date truncated to the calendar day of t.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DaysBetween returns the (signed) number of calendar days from a to b.
func DaysBetween(a, b Date) int {
	return int(b.Sub(a.Time).Hours() / 24)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Cost is a fully resolved cost basis: spec.md §3 "a Cost is fully resolved
// (per_unit, currency, date?, label?)".
type Cost struct {
	PerUnit  money.Decimal
	Currency string
	Date     *Date
	Label    string
}

// CostSpec is a partially specified cost annotation: any field may be
// MISSING (represented here as a nil pointer), and a merge equality check
// treats MISSING as a wildcard (spec.md §3). NumberTotal is the
// total-cost-instead-of-per-unit alternative spec.md §3 calls out.
// NormalizePerUnit can turn it into a per-unit cost; mergeable.CostsMergeable
// does not call it, and instead compares NumberTotal with a resolved Cost's
// PerUnit × |units| (SPEC_FULL.md §C.1).
type CostSpec struct {
	PerUnit     *money.Decimal
	NumberTotal *money.Decimal
	Currency    *string
	Date        *Date
	Label       *string

	// Merge marks a "cost merge" annotation (the ledger syntax's bare `{*}`
	// or `{*, ...}` on a reducing posting). It has no MISSING state of its
	// own; two specs must agree on it exactly (spec.md §4.4).
	Merge bool
}

// NormalizePerUnit resolves NumberTotal into a per-unit cost given the
// posting's unit quantity, mutating the spec in place. It is a no-op when
// PerUnit is already set or NumberTotal is absent.
func (cs *CostSpec) NormalizePerUnit(units money.Decimal) {
	if cs == nil || cs.PerUnit != nil || cs.NumberTotal == nil {
		return
	}
	if units.IsZero() {
		return
	}
	perUnit := cs.NumberTotal.Div(units.Abs())
	cs.PerUnit = &perUnit
}
