package pairmerge

import (
	"strconv"

	"github.com/ledgerkit/reconcile/posting"
)

// Reserved engine-stamped metadata keys (spec.md §6): present only on
// intermediate merged transactions, stripped by the extender before
// candidates are returned.
const (
	MetaClearedMatches   = "__num_cleared_posting_matches"
	MetaUnclearedMatches = "__num_uncleared_posting_matches"
	MetaUnknownsRemoved  = "__num_unknown_postings_removed"
)

// combineMatch implements spec.md §4.7's per-match combined-posting
// construction, including the n-to-1 aggregate cases.
func combineMatch(m PostingMatch) []*posting.Posting {
	if !m.A.IsAggregate() && !m.B.IsAggregate() {
		return []*posting.Posting{combineSingletons(m.A.Sources[0], m.B.Sources[0])}
	}

	singleton, aggregateSide := m.A, m.B
	if m.A.IsAggregate() {
		singleton, aggregateSide = m.B, m.A
	}

	if singleton.Cleared {
		combined := singleton.Sources[0]
		for _, src := range aggregateSide.Sources {
			combined = combineSingletons(combined, src)
		}
		return []*posting.Posting{combined}
	}

	// The singleton side is uncleared: distribute its known cost/price/flag
	// across each of the aggregate's source postings rather than folding
	// them into one, so each original posting keeps its own units and an
	// unknown source adopts the singleton's known account (spec.md §4.7: "distribute the known units/cost/price to each source
	// posting of the other side in turn").
	out := make([]*posting.Posting, 0, len(aggregateSide.Sources))
	for _, src := range aggregateSide.Sources {
		out = append(out, distributeOnto(singleton.Sources[0], src))
	}
	return out
}

// combineSingletons implements the 1-to-1 combined-posting rule (spec.md
// §4.7): account resolution via posting.MergedAccount, the cost/price-
// bearing side's units/cost/price win, flag prefers non-empty, meta is an
// ordered union.
func combineSingletons(a, b *posting.Posting) *posting.Posting {
	primary, _ := choosePrimary(a, b)

	out := posting.NewPosting(posting.MergedAccount(a.Account, b.Account), primary.Units)
	out.Cost = primary.Cost
	out.CostSpec = primary.CostSpec
	out.Price = primary.Price
	out.Flag = firstNonEmpty(a.Flag, b.Flag)
	out.Meta = posting.UnionMeta(a.Meta, b.Meta)
	out.Cleared = a.Cleared || b.Cleared
	out.Pos = onDiskPosition(a, b)
	return out
}

// distributeOnto annotates src (one source posting of the aggregate side)
// with singleton's cost/price/flag when src doesn't already carry its own,
// keeping src's own units; the account resolves via posting.MergedAccount.
func distributeOnto(singleton, src *posting.Posting) *posting.Posting {
	out := src.Clone()
	out.Account = posting.MergedAccount(singleton.Account, src.Account)
	if !out.HasCost() && singleton.HasCost() {
		out.Cost = singleton.Cost
		out.CostSpec = singleton.CostSpec
	}
	if !out.HasPrice() && singleton.HasPrice() {
		out.Price = singleton.Price
	}
	out.Flag = firstNonEmpty(out.Flag, singleton.Flag)
	out.Meta = posting.UnionMeta(out.Meta, singleton.Meta)
	return out
}

// choosePrimary picks which side's units/cost/price the combined posting
// adopts: the cost-or-price-bearing side wins; if neither (or both) carry
// one, prefer whichever has non-MISSING units.
func choosePrimary(a, b *posting.Posting) (primary, secondary *posting.Posting) {
	aHas := a.HasCost() || a.HasPrice()
	bHas := b.HasCost() || b.HasPrice()
	switch {
	case aHas && !bHas:
		return a, b
	case bHas && !aHas:
		return b, a
	case !a.Units.IsMissing():
		return a, b
	default:
		return b, a
	}
}

func onDiskPosition(a, b *posting.Posting) posting.Position {
	if a.Pos.OnDisk() {
		return a.Pos
	}
	return b.Pos
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range append(append([]string(nil), a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// synthesize implements spec.md §4.6 step 7: build the merged transaction
// from a's and b's postings plus the match set's combined/removed
// postings, stamping the three reserved counters.
func synthesize(a, b *posting.Transaction, set PostingMatchSet) *posting.Transaction {
	merged := posting.NewTransaction(a.Date)
	merged.Flag = firstNonEmpty(a.Flag, b.Flag)
	merged.Payee = firstNonEmpty(a.Payee, b.Payee)
	merged.Narration = firstNonEmpty(a.Narration, b.Narration)
	merged.Tags = unionStrings(a.Tags, b.Tags)
	merged.Links = unionStrings(a.Links, b.Links)
	merged.Meta = posting.UnionMeta(a.Meta, b.Meta)

	usedA := make(map[uint64]bool)
	usedB := make(map[uint64]bool)
	removedA := make(map[uint64]bool)
	removedB := make(map[uint64]bool)

	for _, r := range set.Removals {
		src := r.Sources[0]
		if belongsTo(a, src) {
			removedA[src.ID()] = true
		} else {
			removedB[src.ID()] = true
		}
	}

	var clearedMatches, unclearedMatches int
	for _, m := range set.Matches {
		for _, s := range m.A.Sources {
			usedA[s.ID()] = true
		}
		for _, s := range m.B.Sources {
			usedB[s.ID()] = true
		}
		merged.Postings = append(merged.Postings, combineMatch(m)...)
		if m.A.Cleared || m.B.Cleared {
			clearedMatches++
		} else {
			unclearedMatches++
		}
	}

	removedUnknown := 0
	for _, p := range a.Postings {
		if removedA[p.ID()] {
			removedUnknown++
			continue
		}
		if usedA[p.ID()] {
			continue
		}
		merged.AddPosting(p.Clone())
	}
	for _, p := range b.Postings {
		if removedB[p.ID()] {
			removedUnknown++
			continue
		}
		if usedB[p.ID()] {
			continue
		}
		merged.AddPosting(p.Clone())
	}

	merged.Meta.Set(MetaClearedMatches, strconv.Itoa(clearedMatches))
	merged.Meta.Set(MetaUnclearedMatches, strconv.Itoa(unclearedMatches))
	merged.Meta.Set(MetaUnknownsRemoved, strconv.Itoa(removedUnknown))

	return merged
}

func belongsTo(txn *posting.Transaction, p *posting.Posting) bool {
	for _, candidate := range txn.Postings {
		if candidate.ID() == p.ID() {
			return true
		}
	}
	return false
}
