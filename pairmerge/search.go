package pairmerge

import (
	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/mergeable"
	"github.com/ledgerkit/reconcile/money"
)

// currencyCandidate is one valid way to reconcile a single currency's
// matchable postings between A and B: a set of equal-weight matches plus at
// most one removal per side, balancing within epsilon (spec.md §4.6 steps
// 3-4).
type currencyCandidate struct {
	matches  []PostingMatch
	removalA *aggregate.MatchablePosting
	removalB *aggregate.MatchablePosting
}

// searchCurrency enumerates every currencyCandidate for one currency: the
// negative-sign match group (A's negative postings against B's) combined
// with the positive-sign match group (spec.md §4.6 steps 3-4), then
// filtered to those whose overall balance is within epsilon.
func searchCurrency(aMPs, bMPs []*aggregate.MatchablePosting, epsilon money.Decimal) []currencyCandidate {
	aPos, aNeg := splitBySign(aMPs)
	bPos, bNeg := splitBySign(bMPs)

	group1 := matchSameSign(aNeg, bNeg, epsilon)
	group2 := matchSameSign(aPos, bPos, epsilon)

	var out []currencyCandidate
	for _, c1 := range group1 {
		for _, c2 := range group2 {
			merged, ok := mergeCandidates(c1, c2)
			if !ok {
				continue
			}
			if !withinEpsilon(merged, epsilon) {
				continue
			}
			out = append(out, merged)
		}
	}
	return out
}

func splitBySign(mps []*aggregate.MatchablePosting) (pos, neg []*aggregate.MatchablePosting) {
	for _, mp := range mps {
		switch mp.Weight.Number.Sign() {
		case 1:
			pos = append(pos, mp)
		case -1:
			neg = append(neg, mp)
		}
	}
	return pos, neg
}

// mergeCandidates combines two currencyCandidates drawn from the two
// sign-group searches, rejecting the combination if it would
// reuse a source posting or give a side two removals.
func mergeCandidates(c1, c2 currencyCandidate) (currencyCandidate, bool) {
	if c1.removalA != nil && c2.removalA != nil {
		return currencyCandidate{}, false
	}
	if c1.removalB != nil && c2.removalB != nil {
		return currencyCandidate{}, false
	}
	if sourcesOverlap(c1.matches, c2.matches) {
		return currencyCandidate{}, false
	}

	out := currencyCandidate{
		matches:  append(append([]PostingMatch(nil), c1.matches...), c2.matches...),
		removalA: firstNonNil(c1.removalA, c2.removalA),
		removalB: firstNonNil(c1.removalB, c2.removalB),
	}
	return out, true
}

func firstNonNil(a, b *aggregate.MatchablePosting) *aggregate.MatchablePosting {
	if a != nil {
		return a
	}
	return b
}

func sourcesOverlap(m1, m2 []PostingMatch) bool {
	seen := make(map[uint64]bool)
	for _, m := range m1 {
		for _, id := range m.A.SourceIDs() {
			seen[id] = true
		}
		for _, id := range m.B.SourceIDs() {
			seen[id] = true
		}
	}
	for _, m := range m2 {
		for _, id := range append(m.A.SourceIDs(), m.B.SourceIDs()...) {
			if seen[id] {
				return true
			}
		}
	}
	return false
}

// withinEpsilon implements spec.md §3's PostingMatchSet validity check for
// a single currency: Σ weights of matches (one side's weight, since both
// are equal within tolerance) + Σ weights of removals is within epsilon of
// zero.
func withinEpsilon(c currencyCandidate, epsilon money.Decimal) bool {
	sum := money.Zero
	for _, m := range c.matches {
		sum = sum.Add(m.A.Weight.Number)
	}
	if c.removalA != nil {
		sum = sum.Add(c.removalA.Weight.Number)
	}
	if c.removalB != nil {
		sum = sum.Add(c.removalB.Weight.Number)
	}
	return sum.Abs().LessThanOrEqual(epsilon)
}

// matchSameSign runs the bounded recursion spec.md §4.6 step 3
// describes over one sign group: pick one possible match at a time for
// each element of aGroup (against an unused, compatible element of bGroup
// whose weight is within epsilon of it), mark used, recurse;
// on backtrack, also explore leaving the A element unmatched. Every leaf
// of that recursion becomes zero or more currencyCandidates, one per
// admissible choice of ≤1 removal from each side's leftovers. Epsilon
// filtering happens later, once candidates from both sign pairings have
// been combined (see searchCurrency).
func matchSameSign(aGroup, bGroup []*aggregate.MatchablePosting, epsilon money.Decimal) []currencyCandidate {
	var out []currencyCandidate
	usedB := make([]bool, len(bGroup))
	skippedA := make([]bool, len(aGroup))
	var matches []PostingMatch

	var recurse func(i int)
	recurse = func(i int) {
		if i == len(aGroup) {
			out = append(out, buildCandidates(matches, aGroup, skippedA, bGroup, usedB)...)
			return
		}

		skippedA[i] = true
		recurse(i + 1)
		skippedA[i] = false

		for j, b := range bGroup {
			if usedB[j] {
				continue
			}
			if !mergeable.PostingsMergeable(aGroup[i], b) {
				continue
			}
			if aGroup[i].Weight.Number.Sub(b.Weight.Number).Abs().GreaterThan(epsilon) {
				continue
			}
			usedB[j] = true
			matches = append(matches, PostingMatch{A: aGroup[i], B: b})
			recurse(i + 1)
			matches = matches[:len(matches)-1]
			usedB[j] = false
		}
	}
	recurse(0)
	return out
}

// buildCandidates takes one leaf of the matching recursion (a fixed set of
// matches, plus which A/B elements were left unmatched) and emits a
// currencyCandidate for every admissible choice of ≤1 removal per side.
func buildCandidates(matches []PostingMatch, aGroup []*aggregate.MatchablePosting, skippedA []bool, bGroup []*aggregate.MatchablePosting, usedB []bool) []currencyCandidate {
	matchesCopy := append([]PostingMatch(nil), matches...)

	var removalCandidatesA []*aggregate.MatchablePosting
	for i, skipped := range skippedA {
		if skipped && RemovalEligible(aGroup[i]) {
			removalCandidatesA = append(removalCandidatesA, aGroup[i])
		}
	}
	var removalCandidatesB []*aggregate.MatchablePosting
	for j, used := range usedB {
		if !used && RemovalEligible(bGroup[j]) {
			removalCandidatesB = append(removalCandidatesB, bGroup[j])
		}
	}

	out := []currencyCandidate{{matches: matchesCopy}}
	for _, ra := range removalCandidatesA {
		out = append(out, currencyCandidate{matches: matchesCopy, removalA: ra})
	}
	for _, rb := range removalCandidatesB {
		out = append(out, currencyCandidate{matches: matchesCopy, removalB: rb})
	}
	for _, ra := range removalCandidatesA {
		for _, rb := range removalCandidatesB {
			out = append(out, currencyCandidate{matches: matchesCopy, removalA: ra, removalB: rb})
		}
	}

	return out
}
