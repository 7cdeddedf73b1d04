package pairmerge

// filterDominated drops any match set whose matches are a proper subset of
// another emitted set's matches (spec.md §4.6 step 6).
//
// Open question (spec.md §9): the source's dominance filter compares only
// the Matches slice, ignoring Removals entirely — a set with fewer matches
// but an extra removal is still considered "dominated" and dropped even
// though it reconciles a posting the dominating set leaves untouched.
// Reproduced literally here rather than fixed, per the source's documented
// behavior.
func filterDominated(sets []PostingMatchSet) []PostingMatchSet {
	dominated := make([]bool, len(sets))

	for i := range sets {
		for j := range sets {
			if i == j || dominated[i] {
				continue
			}
			if isProperMatchSubset(sets[i].Matches, sets[j].Matches) {
				dominated[i] = true
				break
			}
		}
	}

	out := make([]PostingMatchSet, 0, len(sets))
	for i, set := range sets {
		if !dominated[i] {
			out = append(out, set)
		}
	}
	return out
}

// isProperMatchSubset reports whether every match in sub also appears in
// super (by source-posting fingerprint pair), and super has strictly more
// matches than sub.
func isProperMatchSubset(sub, super []PostingMatch) bool {
	if len(sub) >= len(super) {
		return false
	}
	superKeys := make(map[[2]string]bool, len(super))
	for _, m := range super {
		superKeys[matchKey(m)] = true
	}
	for _, m := range sub {
		if !superKeys[matchKey(m)] {
			return false
		}
	}
	return true
}

func matchKey(m PostingMatch) [2]string {
	return [2]string{m.A.Fingerprint(), m.B.Fingerprint()}
}
