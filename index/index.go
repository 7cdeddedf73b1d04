// Package index implements the posting index (C5): the structure the pair
// merger and extender query to find compatible counterparty postings for a
// candidate transaction. Grounded on the teacher's ledger package's use of
// sorted, lazily-dirtied slices (see ledger/balance.go's bucket handling)
// generalized to the two-table design spec.md §4.5 describes.
package index

import (
	"context"
	"sort"
	"time"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
	"github.com/ledgerkit/reconcile/weight"
)

// Entry is a single indexed (transaction, matchable posting) pair.
type Entry struct {
	Transaction      *posting.Transaction
	MatchablePosting *aggregate.MatchablePosting
}

type dateCurrencyKey struct {
	date     string
	currency string
}

type secondaryKey struct {
	account  string
	metaKey  string
	metaValue string
}

type bucket struct {
	entries []*Entry
	dirty   bool
}

func (b *bucket) sortIfDirty() {
	if !b.dirty {
		return
	}
	slices.SortFunc(b.entries, func(a, c *Entry) int {
		return a.MatchablePosting.Weight.Number.Cmp(c.MatchablePosting.Weight.Number)
	})
	b.dirty = false
}

// inRange returns the entries in b whose weight number falls in
// [lo, hi], assuming b is sorted.
func (b *bucket) inRange(lo, hi money.Decimal) []*Entry {
	n := len(b.entries)
	start := sort.Search(n, func(i int) bool {
		return !b.entries[i].MatchablePosting.Weight.Number.LessThan(lo)
	})
	var out []*Entry
	for i := start; i < n && !b.entries[i].MatchablePosting.Weight.Number.GreaterThan(hi); i++ {
		out = append(out, b.entries[i])
	}
	return out
}

// PostingIndex indexes transactions by their matchable postings' (date,
// currency, weight) and by a configured set of salient metadata keys, per
// spec.md §4.5.
type PostingIndex struct {
	fuzzyDays    int
	fuzzyAmount  money.Decimal
	isCleared    func(*posting.Posting) bool
	salientKeys  map[string]bool
	enumerator   *aggregate.Enumerator

	buckets   map[dateCurrencyKey]*bucket
	secondary map[secondaryKey][]*Entry

	// touchedBuckets/touchedSecondary record, per transaction ID, which
	// keys that transaction's entries were filed under, so Remove doesn't
	// need to scan the whole index.
	touchedBuckets   map[uint64][]dateCurrencyKey
	touchedSecondary map[uint64][]secondaryKey
}

// New returns an empty PostingIndex. fuzzyDays and fuzzyAmount configure the
// date window and numeric tolerance used by Search; isCleared is the host's
// is-cleared oracle (spec.md §6); salientMetaKeys names the metadata keys
// eligible for the secondary (account, key, value) lookup table.
func New(fuzzyDays int, fuzzyAmount money.Decimal, isCleared func(*posting.Posting) bool, salientMetaKeys []string) *PostingIndex {
	keys := make(map[string]bool, len(salientMetaKeys))
	for _, k := range salientMetaKeys {
		keys[k] = true
	}
	return &PostingIndex{
		fuzzyDays:        fuzzyDays,
		fuzzyAmount:      fuzzyAmount,
		isCleared:        isCleared,
		salientKeys:      keys,
		enumerator:       aggregate.NewEnumerator(),
		buckets:          make(map[dateCurrencyKey]*bucket),
		secondary:        make(map[secondaryKey][]*Entry),
		touchedBuckets:   make(map[uint64][]dateCurrencyKey),
		touchedSecondary: make(map[uint64][]secondaryKey),
	}
}

// Enumerator returns the index's aggregate-posting enumerator, shared so
// callers that need matchable postings for transactions already indexed
// here (the extender) reuse the same memoization cache (spec.md §5:
// "Aggregate-posting memoization is process-scoped").
func (idx *PostingIndex) Enumerator() *aggregate.Enumerator {
	return idx.enumerator
}

// Add inserts every matchable posting of txn into the index.
func (idx *PostingIndex) Add(txn *posting.Transaction) {
	for _, p := range txn.Postings {
		p.Cleared = idx.isCleared(p)
	}

	for _, mp := range idx.enumerator.Enumerate(txn) {
		entry := &Entry{Transaction: txn, MatchablePosting: mp}

		for d := -idx.fuzzyDays; d <= idx.fuzzyDays; d++ {
			date := mp.Date.Add(time.Duration(d) * 24 * time.Hour)
			key := dateCurrencyKey{date: date.String(), currency: mp.Weight.Currency}
			b, ok := idx.buckets[key]
			if !ok {
				b = &bucket{}
				idx.buckets[key] = b
			}
			b.entries = append(b.entries, entry)
			b.dirty = true
			idx.touchedBuckets[txn.ID()] = append(idx.touchedBuckets[txn.ID()], key)
		}

		if mp.IsAggregate() || posting.IsUnknown(mp.Account) {
			continue
		}
		srcMeta := mp.Sources[0].Meta
		for key := range idx.salientKeys {
			v, ok := srcMeta.Get(key)
			if !ok {
				continue
			}
			sk := secondaryKey{account: mp.Account, metaKey: key, metaValue: v}
			idx.secondary[sk] = append(idx.secondary[sk], entry)
			idx.touchedSecondary[txn.ID()] = append(idx.touchedSecondary[txn.ID()], sk)
		}
	}
}

// Remove deletes every entry filed under txn from both tables.
func (idx *PostingIndex) Remove(txn *posting.Transaction) {
	id := txn.ID()

	for _, key := range idx.touchedBuckets[id] {
		b, ok := idx.buckets[key]
		if !ok {
			continue
		}
		b.entries = filterOutTxn(b.entries, id)
		b.dirty = true
	}
	delete(idx.touchedBuckets, id)

	for _, key := range idx.touchedSecondary[id] {
		idx.secondary[key] = filterOutTxn(idx.secondary[key], id)
	}
	delete(idx.touchedSecondary, id)
}

// Rebuild force-sorts every dirty bucket up front, in parallel across
// buckets, rather than leaving each to sort lazily on its first query.
// Useful after a bulk Add pass (e.g. re-indexing a whole ledger file) where
// every bucket touched is about to be searched anyway.
func (idx *PostingIndex) Rebuild(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, b := range idx.buckets {
		b := b
		g.Go(func() error {
			b.sortIfDirty()
			return nil
		})
	}
	return g.Wait()
}

func filterOutTxn(entries []*Entry, id uint64) []*Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Transaction.ID() != id {
			out = append(out, e)
		}
	}
	return out
}

// weightOf is a small indirection point so tests can construct probes
// directly from a posting without duplicating weight.Of's dispatch.
var weightOf = weight.Of
