package pairmerge

import (
	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
	"github.com/ledgerkit/reconcile/weight"
)

// Merge implements spec.md §4.6: given two transactions and a shared
// aggregate enumerator, produce every merged transaction obtainable from a
// valid PostingMatchSet, including the identity (no-match) sentinel.
func Merge(a, b *posting.Transaction, enumerator *aggregate.Enumerator) []*posting.Transaction {
	sets := MatchSets(a, b, enumerator)
	out := make([]*posting.Transaction, 0, len(sets))
	for _, set := range sets {
		out = append(out, synthesize(a, b, set))
	}
	return out
}

// RemovalOnlyMerge synthesizes the merged transaction for a PostingMatchSet
// with no matches, just the two named removals — the extender's §4.8 step 4
// ("remove two opposite unknown postings with no match"), which bypasses
// the full currency-by-currency search since the pairing is already known.
func RemovalOnlyMerge(a, b *posting.Transaction, removalA, removalB *aggregate.MatchablePosting) *posting.Transaction {
	return synthesize(a, b, PostingMatchSet{Removals: []*aggregate.MatchablePosting{removalA, removalB}})
}

// MatchSets enumerates every valid PostingMatchSet for (a, b), including
// the always-present empty sentinel, with dominated sets filtered out
// (spec.md §4.6 steps 1-6).
func MatchSets(a, b *posting.Transaction, enumerator *aggregate.Enumerator) []PostingMatchSet {
	if a.ID() == b.ID() {
		// "A transaction is never matched with itself" (spec.md §3).
		return []PostingMatchSet{{}}
	}

	aMPs := enumerator.Enumerate(a)
	bMPs := enumerator.Enumerate(b)

	byCurrency := groupByCurrency(aMPs, bMPs)
	missingSide := hasMissingWeight(a) || hasMissingWeight(b)

	partials := []partialSet{{}}
	for currency, sides := range byCurrency {
		epsilon := residualTolerance(a, b, currency, missingSide)
		candidates := searchCurrency(sides.a, sides.b, epsilon)
		partials = combinePartials(partials, candidates)
	}

	sets := make([]PostingMatchSet, len(partials))
	for i, p := range partials {
		sets[i] = p.toMatchSet()
	}
	// step 5: the empty sentinel is added after dominance filtering, since
	// any non-empty set would otherwise dominate it.
	return append([]PostingMatchSet{{}}, filterDominated(sets)...)
}

type currencySides struct {
	a, b []*aggregate.MatchablePosting
}

func groupByCurrency(aMPs, bMPs []*aggregate.MatchablePosting) map[string]currencySides {
	out := make(map[string]currencySides)
	for _, mp := range aMPs {
		c := mp.Weight.Currency
		s := out[c]
		s.a = append(s.a, mp)
		out[c] = s
	}
	for _, mp := range bMPs {
		c := mp.Weight.Currency
		s := out[c]
		s.b = append(s.b, mp)
		out[c] = s
	}
	return out
}

// residualTolerance implements spec.md §4.6 step 2: max(|Σwa|, |Σwb|,
// |Σwa+Σwb|) for currency c, or zero if either side has any posting with
// MISSING units.
func residualTolerance(a, b *posting.Transaction, currency string, missingSide bool) money.Decimal {
	if missingSide {
		return money.Zero
	}
	sumA := weight.Sum(a.Postings).Get(currency)
	sumB := weight.Sum(b.Postings).Get(currency)
	total := sumA.Add(sumB)

	max := sumA.Abs()
	if sumB.Abs().GreaterThan(max) {
		max = sumB.Abs()
	}
	if total.Abs().GreaterThan(max) {
		max = total.Abs()
	}
	return max
}

func hasMissingWeight(t *posting.Transaction) bool {
	for _, p := range t.Postings {
		if p.Units.IsMissing() {
			return true
		}
	}
	return false
}

// partialSet accumulates matches/removals across currencies while
// combination is in progress, tracking the A-side and B-side removal
// counts separately so the global "at most one removal per parent
// transaction per match-set" invariant (spec.md §3) can be enforced across
// currencies, not just within one.
type partialSet struct {
	matches    []PostingMatch
	removalA   *aggregate.MatchablePosting
	removalB   *aggregate.MatchablePosting
}

func (p partialSet) toMatchSet() PostingMatchSet {
	set := PostingMatchSet{Matches: append([]PostingMatch(nil), p.matches...)}
	if p.removalA != nil {
		set.Removals = append(set.Removals, p.removalA)
	}
	if p.removalB != nil {
		set.Removals = append(set.Removals, p.removalB)
	}
	return set
}

// combinePartials extends every partial set with every admissible
// currencyCandidate, rejecting combinations that would give a parent
// transaction a second removal.
func combinePartials(partials []partialSet, candidates []currencyCandidate) []partialSet {
	var out []partialSet
	for _, partial := range partials {
		for _, c := range candidates {
			if c.removalA != nil && partial.removalA != nil {
				continue
			}
			if c.removalB != nil && partial.removalB != nil {
				continue
			}
			next := partialSet{
				matches:  append(append([]PostingMatch(nil), partial.matches...), c.matches...),
				removalA: partial.removalA,
				removalB: partial.removalB,
			}
			if c.removalA != nil {
				next.removalA = c.removalA
			}
			if c.removalB != nil {
				next.removalB = c.removalB
			}
			out = append(out, next)
		}
	}
	return out
}
