package index

import (
	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// Probe describes the posting being searched for: the quantities needed to
// apply the fuzzy-date/fuzzy-amount window and the optional salient
// metadata that lets a search bypass that window entirely (spec.md §4.5).
type Probe struct {
	Account      string
	Weight       money.Amount
	Date         posting.Date
	ExactDate    bool // true if the source posting carried its own "date" meta
	SalientMeta  map[string]string
}

// Search implements spec.md §4.5's search(probe_postings, cmp): first a
// secondary-table lookup keyed on the probe's salient metadata (if the
// probe's account is known and it carries any), then — unless that lookup
// already produced matches satisfying cmp — a fuzzy bucketed search by
// (date window, currency, weight ± tolerance).
func (idx *PostingIndex) Search(probe Probe, cmp func(Entry) bool) []Entry {
	if !posting.IsUnknown(probe.Account) && len(probe.SalientMeta) > 0 {
		if matches := idx.secondaryLookup(probe, cmp); len(matches) > 0 {
			return matches
		}
	}
	return idx.fuzzySearch(probe, cmp)
}

func (idx *PostingIndex) secondaryLookup(probe Probe, cmp func(Entry) bool) []Entry {
	var out []Entry
	seen := make(map[*Entry]bool)
	for key := range idx.salientKeys {
		value, ok := probe.SalientMeta[key]
		if !ok {
			continue
		}
		sk := secondaryKey{account: probe.Account, metaKey: key, metaValue: value}
		for _, e := range idx.secondary[sk] {
			if seen[e] {
				continue
			}
			if cmp(*e) {
				seen[e] = true
				out = append(out, *e)
			}
		}
	}
	return out
}

// fuzzySearch looks only in the probe's own date bucket: Add has already
// filed every entry under each date of its ±fuzzyDays window.
func (idx *PostingIndex) fuzzySearch(probe Probe, cmp func(Entry) bool) []Entry {
	lo := probe.Weight.Number.Sub(idx.fuzzyAmount)
	hi := probe.Weight.Number.Add(idx.fuzzyAmount)

	key := dateCurrencyKey{date: probe.Date.Time.String(), currency: probe.Weight.Currency}
	b, ok := idx.buckets[key]
	if !ok {
		return nil
	}
	var out []Entry
	b.sortIfDirty()
	for _, e := range b.inRange(lo, hi) {
		if probe.ExactDate && !e.MatchablePosting.Date.Equal(probe.Date.Time) {
			continue
		}
		if cmp(*e) {
			out = append(out, *e)
		}
	}
	return out
}

// PostingMatches implements spec.md §4.5's posting_matches convenience:
// returns every indexed entry whose weight is within the configured
// tolerance of ±p's weight (negate selects the sign), within the fuzzy
// date window (or exact, if p carries its own date meta), with a
// mergeable account, and additionally passing cmp.
func (idx *PostingIndex) PostingMatches(txn *posting.Transaction, p *posting.Posting, negate bool, cmp func(Entry) bool) []Entry {
	w, ok := weightOf(p)
	if !ok {
		return nil
	}
	if negate {
		w = w.Neg()
	}

	probe := Probe{
		Account:     p.Account,
		Weight:      w,
		Date:        p.EffectiveDate(txn.Date),
		ExactDate:   p.Meta.Has(posting.DateMetaKey),
		SalientMeta: salientMetaOf(p, idx.salientKeys),
	}

	return idx.Search(probe, func(e Entry) bool {
		if !posting.AccountsMergeable(p.Account, e.MatchablePosting.Account) {
			return false
		}
		return cmp(e)
	})
}

// SearchMatchable is PostingMatches generalized to a MatchablePosting
// (possibly an aggregate), for callers — the extender — that query the
// index with a virtual posting rather than one of its real source
// postings (spec.md §4.8 step 2: "query the posting index with each
// matchable posting").
func (idx *PostingIndex) SearchMatchable(mp *aggregate.MatchablePosting, negate bool, cmp func(Entry) bool) []Entry {
	w := mp.Weight
	if negate {
		w = w.Neg()
	}

	src := mp.Sources[0]
	probe := Probe{
		Account:     mp.Account,
		Weight:      w,
		Date:        mp.Date,
		ExactDate:   src.Meta.Has(posting.DateMetaKey),
		SalientMeta: salientMetaOf(src, idx.salientKeys),
	}

	return idx.Search(probe, func(e Entry) bool {
		if !posting.AccountsMergeable(mp.Account, e.MatchablePosting.Account) {
			return false
		}
		return cmp(e)
	})
}

func salientMetaOf(p *posting.Posting, salientKeys map[string]bool) map[string]string {
	if p.Meta == nil {
		return nil
	}
	out := make(map[string]string)
	for key := range salientKeys {
		if v, ok := p.Meta.Get(key); ok {
			out[key] = v
		}
	}
	return out
}
