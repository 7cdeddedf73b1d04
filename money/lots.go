package money

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LotSpec identifies a cost lot: a per-unit cost, its currency, an optional
// acquisition date, and an optional label. Equal compares every field
// exactly: a cost or date set on one spec and absent on the other makes
// the two specs unequal.
//
// This is not used by the matching engine itself (booking is out of scope,
// spec.md §1 Non-goals: "price-history computation"); it backs the
// classifier's feature extractor (SPEC_FULL §C.3), which benefits from
// knowing which existing lot an unknown-account posting is most likely
// closing out.
type LotSpec struct {
	Cost     *Decimal
	Currency string
	Date     *time.Time
	Label    string
}

// IsEmpty reports whether this is an empty spec (no cost, date, or label):
// "any lot" selection.
func (ls *LotSpec) IsEmpty() bool {
	return ls == nil || (ls.Cost == nil && ls.Date == nil && ls.Label == "")
}

// Equal reports whether two lot specs refer to the same lot.
func (ls *LotSpec) Equal(other *LotSpec) bool {
	if ls == nil && other == nil {
		return true
	}
	if ls == nil || other == nil {
		return false
	}
	if (ls.Cost == nil) != (other.Cost == nil) {
		return false
	}
	if ls.Cost != nil && !ls.Cost.Equal(*other.Cost) {
		return false
	}
	if ls.Currency != other.Currency || ls.Label != other.Label {
		return false
	}
	if (ls.Date == nil) != (other.Date == nil) {
		return false
	}
	if ls.Date != nil && !ls.Date.Equal(*other.Date) {
		return false
	}
	return true
}

// String renders the spec the way a ledger cost annotation would: "{num
// CUR, date, "label"}".
func (ls *LotSpec) String() string {
	if ls.IsEmpty() {
		return "{}"
	}
	var parts []string
	if ls.Cost != nil {
		parts = append(parts, fmt.Sprintf("%s %s", ls.Cost.String(), ls.Currency))
	}
	if ls.Date != nil {
		parts = append(parts, ls.Date.Format("2006-01-02"))
	}
	if ls.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", ls.Label))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// lot is one entry of a Lots grouping: an amount booked against a spec.
type lot struct {
	Amount Decimal
	Spec   *LotSpec
}

// Lots groups signed amounts of a single commodity by acquisition lot. It
// only supports the read side the classifier's feature extractor needs
// (Add, Total and a nearest-date lookup); it has no FIFO/LIFO booking and
// is not a general booking engine.
type Lots struct {
	entries []*lot
}

// NewLots returns an empty lot grouping.
func NewLots() *Lots {
	return &Lots{}
}

// Add books amount against spec, merging into an existing lot with the same
// spec if one exists.
func (l *Lots) Add(amount Decimal, spec *LotSpec) {
	for _, e := range l.entries {
		if e.Spec.Equal(spec) {
			e.Amount = e.Amount.Add(amount)
			return
		}
	}
	l.entries = append(l.entries, &lot{Amount: amount, Spec: spec})
}

// Total returns the sum of all lot amounts.
func (l *Lots) Total() Decimal {
	total := Zero
	for _, e := range l.entries {
		total = total.Add(e.Amount)
	}
	return total
}

// NearestByDate returns the lot spec whose acquisition date is closest to
// date, used by the classifier to derive a "likely matching lot" feature
// for an unknown-account posting. Lots without a date are ignored; returns
// nil if none have a date.
func (l *Lots) NearestByDate(date time.Time) *LotSpec {
	sorted := make([]*lot, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Spec != nil && e.Spec.Date != nil {
			sorted = append(sorted, e)
		}
	}
	if len(sorted) == 0 {
		return nil
	}

	sort.Slice(sorted, func(i, j int) bool {
		di := sorted[i].Spec.Date.Sub(date).Abs()
		dj := sorted[j].Spec.Date.Sub(date).Abs()
		return di < dj
	})

	return sorted[0].Spec
}
