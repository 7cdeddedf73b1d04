// Package extend implements the extender (C7): the depth-first driver that
// grows a seed transaction by repeatedly folding in compatible transactions
// found through the posting index, deduplicating revisited states, and
// ranking the final candidates (spec.md §4.8).
package extend

import (
	"cmp"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/index"
	"github.com/ledgerkit/reconcile/mergeable"
	"github.com/ledgerkit/reconcile/pairmerge"
	"github.com/ledgerkit/reconcile/posting"
)

// state is the extender's search-tree node: the merged transaction built so
// far, and the set of original transaction IDs folded into it (spec.md
// §4.8: "(current_merged_transaction, set_of_used_transaction_ids)").
type state struct {
	merged *posting.Transaction
	used   map[uint64]bool
}

func (s state) usedList() []uint64 {
	out := make([]uint64, 0, len(s.used))
	for id := range s.used {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b uint64) int { return cmp.Compare(a, b) })
	return out
}

func cloneUsed(used map[uint64]bool, extra uint64) map[uint64]bool {
	next := make(map[uint64]bool, len(used)+1)
	for id := range used {
		next[id] = true
	}
	next[extra] = true
	return next
}

// Result is one fully-formed candidate merge, with the transactions that
// contributed to it (for the host to build a StagedChanges from, per
// spec.md §6).
type Result struct {
	Merged             *posting.Transaction
	UsedTransactionIDs []uint64

	// key is the ranking key captured from the counters before they were
	// stripped (spec.md §4.8: "(−cleared_match_count, −uncleared_match_
	// count, +removed_unknown_count)").
	key [3]int
}

// GetExtendedTransactions implements spec.md §6's Extender.
// get_extended_transactions: given a seed transaction and the posting
// index it should search against, return every reachable merged
// transaction, ranked, with the engine-stamped counter metadata stripped.
func GetExtendedTransactions(seed *posting.Transaction, idx *index.PostingIndex) []Result {
	enumerator := idx.Enumerator()

	visited := make(map[string]bool)
	var results []Result

	initial := state{merged: seed, used: map[uint64]bool{seed.ID(): true}}
	visited[emissionKey(initial)] = true

	var dfs func(s state, isInitial bool)
	dfs = func(s state, isInitial bool) {
		for _, child := range stepOnce(s, idx, enumerator) {
			key := emissionKey(child)
			if visited[key] {
				continue
			}
			visited[key] = true
			dfs(child, false)
		}
		if !isInitial {
			results = append(results, Result{
				Merged:             stripCounters(s.merged),
				UsedTransactionIDs: s.usedList(),
				key:                rankKey(s.merged),
			})
		}
	}
	dfs(initial, true)

	rank(results)
	return results
}

// stepOnce implements spec.md §4.8's step function: the candidate
// transactions found via the index, each run through the pair merger
// (step 2-3), plus the direct unknown-pair removal case (step 4).
func stepOnce(s state, idx *index.PostingIndex, enumerator *aggregate.Enumerator) []state {
	var children []state

	mps := enumerator.Enumerate(s.merged)

	seenCandidates := make(map[uint64]bool)
	for _, mp := range mps {
		for _, entry := range idx.SearchMatchable(mp, false, func(index.Entry) bool { return true }) {
			candidate := entry.Transaction
			if s.used[candidate.ID()] || seenCandidates[candidate.ID()] {
				continue
			}
			seenCandidates[candidate.ID()] = true

			if !transactionMergeable(s.merged, candidate) {
				continue
			}

			for _, merged := range pairmerge.Merge(s.merged, candidate, enumerator) {
				if !hasReconciliation(merged) {
					continue // the identity sentinel: not an actual fold-in
				}
				children = append(children, state{
					merged: merged,
					used:   cloneUsed(s.used, candidate.ID()),
				})
			}
		}
	}

	children = append(children, directRemovals(s, idx, enumerator, mps)...)

	return children
}

// directRemovals implements spec.md §4.8 step 4: for each unremoved unknown
// singleton posting in the current merged transaction satisfying the
// removal-candidate predicate, query the index for a posting of the
// negated weight satisfying the same predicate, and emit a child state
// that drops both (no matches, no new transaction folded in unless the
// partner comes from one not yet used).
func directRemovals(s state, idx *index.PostingIndex, enumerator *aggregate.Enumerator, mps []*aggregate.MatchablePosting) []state {
	var children []state
	for _, mp := range mps {
		if !pairmerge.RemovalEligible(mp) {
			continue
		}
		for _, entry := range idx.SearchMatchable(mp, true, func(e index.Entry) bool {
			return pairmerge.RemovalEligible(e.MatchablePosting)
		}) {
			partner := entry.Transaction
			merged := pairmerge.RemovalOnlyMerge(s.merged, partner, mp, entry.MatchablePosting)
			used := s.used
			if !s.used[partner.ID()] {
				used = cloneUsed(s.used, partner.ID())
			}
			children = append(children, state{merged: merged, used: used})
		}
	}
	return children
}

// transactionMergeable implements the TransactionMergeablePredicate (spec.md
// §4.8 step 2): no metadata conflicts between the two whole transactions,
// and no posting in candidate directly opposes an equal-and-opposite
// known-account, same-cost, same-price posting already in current.
func transactionMergeable(current, candidate *posting.Transaction) bool {
	if !mergeable.MetadataMergeable(current.Meta, candidate.Meta) {
		return false
	}
	for _, cp := range current.Postings {
		if cp.IsUnknownAccount() {
			continue
		}
		for _, kp := range candidate.Postings {
			if kp.IsUnknownAccount() {
				continue
			}
			if cp.Account != kp.Account {
				continue
			}
			if !mergeable.AmountsMergeable(cp.Units, kp.Units.Neg()) {
				continue
			}
			if !mergeable.CostsMergeable(cp, kp) {
				continue
			}
			if !mergeable.AmountsMergeable(cp.Price, kp.Price) {
				continue
			}
			return false
		}
	}
	return true
}

// hasReconciliation reports whether merged actually reconciled something
// (at least one match or removal), as opposed to being the identity
// sentinel pairmerge.Merge always includes.
func hasReconciliation(merged *posting.Transaction) bool {
	cleared, _ := merged.Meta.Get(pairmerge.MetaClearedMatches)
	uncleared, _ := merged.Meta.Get(pairmerge.MetaUnclearedMatches)
	removed, _ := merged.Meta.Get(pairmerge.MetaUnknownsRemoved)
	return cleared != "0" || uncleared != "0" || removed != "0"
}

// stripCounters removes the engine-stamped reserved metadata keys before a
// candidate is surfaced to the host (spec.md §6).
func stripCounters(t *posting.Transaction) *posting.Transaction {
	clone := *t
	clone.Meta = posting.NewMeta()
	for _, k := range t.Meta.Keys() {
		switch k {
		case pairmerge.MetaClearedMatches, pairmerge.MetaUnclearedMatches, pairmerge.MetaUnknownsRemoved:
			continue
		}
		v, _ := t.Meta.Get(k)
		clone.Meta.Set(k, v)
	}
	return &clone
}

// rankKey captures spec.md §4.8's ranking key
// (−cleared_match_count, −uncleared_match_count, +removed_unknown_count)
// from a merged transaction's counter metadata, before it is stripped.
func rankKey(t *posting.Transaction) [3]int {
	cleared, _ := t.Meta.Get(pairmerge.MetaClearedMatches)
	uncleared, _ := t.Meta.Get(pairmerge.MetaUnclearedMatches)
	removed, _ := t.Meta.Get(pairmerge.MetaUnknownsRemoved)
	return [3]int{-parseCounter(cleared), -parseCounter(uncleared), parseCounter(removed)}
}

func parseCounter(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// rank implements spec.md §4.8's ranking, sorting by the key captured in
// each Result at emission time. Stable so that candidates tied on the full
// key keep the order the depth-first search emitted them in.
func rank(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		ka, kb := a.key, b.key
		for i := range ka {
			if c := cmp.Compare(ka[i], kb[i]); c != 0 {
				return c
			}
		}
		return 0
	})
}
