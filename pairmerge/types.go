// Package pairmerge implements the pair merger (C6): given two
// transactions, it enumerates every valid way to cancel matching postings
// between them and synthesizes the resulting merged transactions
// (spec.md §4.6-4.7).
package pairmerge

import (
	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/posting"
)

// PostingMatch is an unordered pair of MatchablePostings from distinct
// transactions whose weights are equal within tolerance.
type PostingMatch struct {
	A *aggregate.MatchablePosting
	B *aggregate.MatchablePosting
}

// PostingMatchSet is a candidate way to reconcile two transactions: the
// matched posting pairs plus any dropped unknown singleton postings
// (spec.md §3). The empty match set (no matches, no removals) is always a
// valid sentinel, letting the caller fall back to "no reconciliation
// happened here" without special-casing it.
type PostingMatchSet struct {
	Matches  []PostingMatch
	Removals []*aggregate.MatchablePosting
}

// ClearedMatchCount returns how many matches in the set have at least one
// cleared side (used by the engine-stamped __num_cleared_posting_matches
// counter).
func (s PostingMatchSet) ClearedMatchCount() int {
	n := 0
	for _, m := range s.Matches {
		if m.A.Cleared || m.B.Cleared {
			n++
		}
	}
	return n
}

// UnclearedMatchCount returns how many matches involve no cleared side.
func (s PostingMatchSet) UnclearedMatchCount() int {
	return len(s.Matches) - s.ClearedMatchCount()
}

// RemovalEligible implements the removal-candidate predicate used both
// here and by the extender (spec.md §4.6 bullet 5, §4.8 step 4): an
// unknown, singleton posting with no cost/price and no non-trivial meta.
// Filename/lineno live on posting.Position, not Meta, in this model, so
// "no meta other than filename/lineno" reduces to an empty Meta bag.
func RemovalEligible(mp *aggregate.MatchablePosting) bool {
	if mp.IsAggregate() {
		return false
	}
	p := mp.Sources[0]
	if !posting.IsUnknown(p.Account) {
		return false
	}
	if p.HasCost() || p.HasPrice() {
		return false
	}
	if p.Meta.Len() != 0 {
		return false
	}
	return true
}
