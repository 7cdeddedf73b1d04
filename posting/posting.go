package posting

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/ledgerkit/reconcile/money"
)

func parseMetaDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", v)
}

// UnknownAccount is the account name a feed importer stamps on a posting
// whose real account is not yet known; the classifier (package classify)
// fills it in during a later pass.
const UnknownAccount = "Expenses:FIXME"

const unknownPrefix = UnknownAccount + ":"

// IsUnknown reports whether account is the unknown-account marker or a
// suffixed variant of it (spec.md §4.2): equal to "Expenses:FIXME" or
// prefixed by "Expenses:FIXME:".
func IsUnknown(account string) bool {
	return account == UnknownAccount || strings.HasPrefix(account, unknownPrefix)
}

// UnknownGroupKey returns the suffix identifying which unknown-account group
// account belongs to, and whether account is unknown at all. Two unknown
// postings in the same transaction sharing this suffix must be classified
// together as a single group; "Expenses:FIXME" with no suffix is its own
// singleton group (empty string as the key).
func UnknownGroupKey(account string) (key string, ok bool) {
	if !IsUnknown(account) {
		return "", false
	}
	if account == UnknownAccount {
		return "", true
	}
	return strings.TrimPrefix(account, unknownPrefix), true
}

// AccountsMergeable reports whether two posting accounts can be merged:
// identical, or either side unknown (spec.md §4.2). The relation is
// symmetric; callers that need a cached form should wrap this at the index
// layer rather than here, since this package has no cache of its own.
func AccountsMergeable(a, b string) bool {
	if a == b {
		return true
	}
	return IsUnknown(a) || IsUnknown(b)
}

// MergedAccount resolves the account a combined posting should adopt from
// two mergeable source accounts: the merge prefers a known account over
// unknown, and when both are unknown, prefers the one with a non-empty
// suffix over the bare marker (spec.md §4.2, §4.6).
func MergedAccount(a, b string) string {
	aUnknown, bUnknown := IsUnknown(a), IsUnknown(b)
	switch {
	case aUnknown && !bUnknown:
		return b
	case bUnknown && !aUnknown:
		return a
	case aUnknown && bUnknown:
		if a == UnknownAccount {
			return b
		}
		return a
	default:
		return a
	}
}

var postingIDCounter uint64

// nextPostingID hands out a process-wide monotonically increasing posting
// identity. The engine uses this integer, not a pointer or memory address,
// as the stable identity for a posting throughout a single run (spec.md §9:
// "identity is an arena index, not a memory address" — it must survive
// being copied into maps, match sets and combined postings without losing
// its meaning).
func nextPostingID() uint64 {
	return atomic.AddUint64(&postingIDCounter, 1)
}

// Posting is a single leg of a Transaction. Units, Cost/CostSpec and Price
// follow spec.md §3 directly: Units may be MISSING (interpolated by the
// ledger's balance check, out of scope here), Cost is present only once a
// lot has been resolved, CostSpec carries a still-ambiguous cost annotation
// with MISSING fields as wildcards.
type Posting struct {
	id uint64

	Account  string
	Units    money.Amount
	Cost     *Cost
	CostSpec *CostSpec
	Price    money.Amount
	Flag     string
	Cleared  bool
	Meta     *Meta
	Pos      Position
}

// NewPosting returns a Posting with a fresh, stable ID, no price (MISSING)
// and an initialized Meta bag.
func NewPosting(account string, units money.Amount) *Posting {
	return &Posting{
		id:      nextPostingID(),
		Account: account,
		Units:   units,
		Price:   money.Missing(),
		Meta:    NewMeta(),
	}
}

// ID returns this posting's stable arena index, unique for the lifetime of
// the process. Two distinct Posting values never share an ID, even if they
// are otherwise structurally identical (e.g. two $5 postings to the same
// account) — callers needing identity-based sets (index, pairmerge, extend)
// key on ID, never on the pointer or on structural equality.
func (p *Posting) ID() uint64 {
	return p.id
}

// IsUnknownAccount reports whether this posting's account is the
// unknown-account marker.
func (p *Posting) IsUnknownAccount() bool {
	return IsUnknown(p.Account)
}

// HasCost reports whether this posting carries a resolved cost or an
// unresolved cost spec.
func (p *Posting) HasCost() bool {
	return p.Cost != nil || p.CostSpec != nil
}

// HasPrice reports whether this posting carries a price annotation.
func (p *Posting) HasPrice() bool {
	return !p.Price.IsMissing()
}

// DateMetaKey is the metadata key a posting may carry to override its
// transaction's date for indexing purposes (e.g. a postdated check whose
// clearing date differs from the transaction date).
const DateMetaKey = "date"

// EffectiveDate returns the date the posting index buckets this posting
// under: the posting's own "date" meta if present and parseable, else
// txnDate (spec.md §4.5: "date is the posting's date meta if present else
// transaction date").
func (p *Posting) EffectiveDate(txnDate Date) Date {
	if p.Meta != nil {
		if v, ok := p.Meta.Get(DateMetaKey); ok {
			if t, err := parseMetaDate(v); err == nil {
				return NewDate(t)
			}
		}
	}
	return txnDate
}

// Clone returns a deep-ish copy of p: Meta is cloned, Cost/CostSpec/Position
// are copied by value (they have no further mutable state), but the clone
// gets its own fresh ID, since it is a distinct posting identity (used when
// pairmerge constructs a combined posting from p as one of its sources).
func (p *Posting) Clone() *Posting {
	clone := &Posting{
		id:      nextPostingID(),
		Account: p.Account,
		Units:   p.Units,
		Price:   p.Price,
		Flag:    p.Flag,
		Cleared: p.Cleared,
		Meta:    p.Meta.Clone(),
		Pos:     p.Pos,
	}
	if p.Cost != nil {
		cost := *p.Cost
		clone.Cost = &cost
	}
	if p.CostSpec != nil {
		spec := *p.CostSpec
		clone.CostSpec = &spec
	}
	return clone
}
