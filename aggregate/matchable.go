// Package aggregate enumerates MatchablePostings (C3): the singleton and
// aggregate virtual postings a transaction offers to the pair merger and
// posting index. Grounded on the teacher's ledger.BalanceWeights for the
// summation shape, generalized to the subset-search spec.md §4.3 describes.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
	"github.com/ledgerkit/reconcile/weight"
)

// MatchablePosting is a virtual posting synthesized from one or more real
// postings (the source postings), carrying their combined weight. Singleton
// MPs (len(Sources) == 1) are always present; aggregate MPs exist only when
// §4.3's rules admit the subset.
type MatchablePosting struct {
	Weight  money.Amount
	Account string
	Date    posting.Date
	Cleared bool
	Sources []*posting.Posting
}

// IsAggregate reports whether this MP combines more than one source
// posting.
func (mp *MatchablePosting) IsAggregate() bool {
	return len(mp.Sources) > 1
}

// SourceIDs returns the stable IDs of the source postings, sorted
// ascending. It is the identity key callers (pairmerge's dominance filter,
// extend's dedup) use to tell two MPs apart without comparing pointers.
func (mp *MatchablePosting) SourceIDs() []uint64 {
	ids := make([]uint64, len(mp.Sources))
	for i, s := range mp.Sources {
		ids[i] = s.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Fingerprint is a string uniquely identifying the source-posting set,
// usable as a map key for memoization and dedup.
func (mp *MatchablePosting) Fingerprint() string {
	ids := mp.SourceIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// Singleton builds the MP for a single posting with a computable weight, or
// reports ok == false if the posting has no computable weight (spec.md
// §4.3 rule 1: "every posting with a computable weight is emitted as a
// singleton MP"). Exported so callers outside the enumerator (the extender's
// direct unknown-pair removal step) can build one-off MPs without forcing a
// full re-enumeration.
func Singleton(p *posting.Posting, txnDate posting.Date) (*MatchablePosting, bool) {
	w, ok := weight.Of(p)
	if !ok {
		return nil, false
	}
	return &MatchablePosting{
		Weight:  w,
		Account: p.Account,
		Date:    p.EffectiveDate(txnDate),
		Cleared: p.Cleared,
		Sources: []*posting.Posting{p},
	}, true
}
