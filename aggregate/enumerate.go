package aggregate

import (
	"math/bits"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// GlobalCap bounds the number of aggregate MPs a single Enumerate call may
// emit (spec.md §4.3 rule 4, §5). It is checked mid-loop, not after each
// subset size finishes: a transaction with enough eligible postings in one
// bucket can have its aggregate emission cut off partway through a subset
// size, silently dropping larger aggregates for that bucket. This
// reproduces the source's literal behavior (spec.md §9 open question)
// rather than fixing it, since no replacement policy was specified.
const GlobalCap = 30000

// maxSubsetSize is the upper bound of the size-bounded subset search
// (spec.md §4.3 rule 3); buckets larger than this additionally get a
// same-sign maximal-subset aggregate regardless of size.
const maxSubsetSize = 4

// cacheSize is the bound on the enumeration memoization cache (spec.md §5:
// "LFU-evicted at 1024 entries"). golang-lru/v2 implements LRU, not LFU;
// DESIGN.md documents this as an accepted approximation, since no
// LFU cache appears anywhere in the example corpus and the eviction policy
// only affects which warm entries survive under cache pressure, not
// correctness.
const cacheSize = 1024

// Enumerator produces the admissible MatchablePostings of a transaction,
// memoizing by transaction identity (spec.md §4.3: "memoized by the
// identities of the input postings" — a transaction's posting list doesn't
// change after construction, so its ID suffices as the memo key).
type Enumerator struct {
	cache *lru.Cache[uint64, []*MatchablePosting]
}

// NewEnumerator returns an Enumerator with a fresh, empty memoization
// cache.
func NewEnumerator() *Enumerator {
	cache, err := lru.New[uint64, []*MatchablePosting](cacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which cacheSize
		// never is.
		panic(err)
	}
	return &Enumerator{cache: cache}
}

// Enumerate returns every admissible MatchablePosting (singleton and
// aggregate) for txn, per spec.md §4.3.
func (e *Enumerator) Enumerate(txn *posting.Transaction) []*MatchablePosting {
	if mps, ok := e.cache.Get(txn.ID()); ok {
		return mps
	}
	mps := enumerate(txn)
	e.cache.Add(txn.ID(), mps)
	return mps
}

type bucketKey struct {
	account  string
	currency string
}

func enumerate(txn *posting.Transaction) []*MatchablePosting {
	var out []*MatchablePosting
	buckets := make(map[bucketKey][]*posting.Posting)

	for _, p := range txn.Postings {
		if mp, ok := Singleton(p, txn.Date); ok {
			out = append(out, mp)
		}
		if !eligibleForAggregate(p) {
			continue
		}
		key := bucketKey{account: p.Account, currency: p.Units.Currency}
		buckets[key] = append(buckets[key], p)
	}

	// budget tracks remaining aggregate emissions only (spec.md §4.3 rule
	// 4 caps "total aggregates", not singletons).
	budget := GlobalCap

	for key, ps := range buckets {
		if len(ps) < 2 {
			continue
		}

		if len(ps) > maxSubsetSize {
			var sameSignEmitted int
			out, sameSignEmitted = appendMaximalSameSignAggregates(out, key, ps, txn.Date)
			budget -= sameSignEmitted
		}

		var emitted int
		out, emitted = appendSizeBoundedAggregates(out, key, ps, txn.Date, budget)
		budget -= emitted
		if budget <= 0 {
			return out
		}
	}

	return out
}

// eligibleForAggregate implements spec.md §4.3 rule 2's per-posting
// preconditions: not cleared, no cost, no price, no MISSING units.
func eligibleForAggregate(p *posting.Posting) bool {
	if p.Cleared {
		return false
	}
	if p.HasCost() || p.HasPrice() {
		return false
	}
	if p.Units.IsMissing() {
		return false
	}
	return true
}

// appendSizeBoundedAggregates enumerates subsets of ps with size 2..4
// (spec.md §4.3 rule 3) satisfying rule 2's sum constraints, appending them
// to out and aborting once budget is exhausted (checked mid-loop per the
// §9 open question). Returns the updated slice and how many were emitted.
func appendSizeBoundedAggregates(out []*MatchablePosting, key bucketKey, ps []*posting.Posting, txnDate posting.Date, budget int) ([]*MatchablePosting, int) {
	emitted := 0
	n := len(ps)
	maxSize := maxSubsetSize
	if maxSize > n {
		maxSize = n
	}

	for size := 2; size <= maxSize; size++ {
		done := false
		forEachCombination(n, size, func(indices []int) bool {
			subset := make([]*posting.Posting, size)
			for i, idx := range indices {
				subset[i] = ps[idx]
			}
			if mp, ok := buildAggregate(key, subset, txnDate, true); ok {
				out = append(out, mp)
				emitted++
				if emitted >= budget {
					done = true
					return false
				}
			}
			return true
		})
		if done {
			break
		}
	}

	return out, emitted
}

// appendMaximalSameSignAggregates implements spec.md §4.3 rule 3's
// additional clause: within an oversized bucket, for each sign whose
// group itself exceeds maxSubsetSize, emit the maximal same-sign subset
// unconditionally. Ground truth (matching.py's add_subset,
// check_zero=False): no zero-sum rejection, no budget/cap gating, and it
// runs before the bucket's size-bounded subset search, not after.
func appendMaximalSameSignAggregates(out []*MatchablePosting, key bucketKey, ps []*posting.Posting, txnDate posting.Date) ([]*MatchablePosting, int) {
	var positive, negative []*posting.Posting
	for _, p := range ps {
		switch p.Units.Number.Sign() {
		case 1:
			positive = append(positive, p)
		case -1:
			negative = append(negative, p)
		}
	}

	emitted := 0
	for _, group := range [][]*posting.Posting{positive, negative} {
		if len(group) <= maxSubsetSize {
			continue
		}
		mp, _ := buildAggregate(key, group, txnDate, false)
		out = append(out, mp)
		emitted++
	}
	return out, emitted
}

// buildAggregate sums subset and, when checkZero holds, rejects it per
// rule 2's sum constraints (the size-bounded subset search's case).
// checkZero is false for the maximal same-sign aggregate, which matching.py
// appends unconditionally regardless of whether it or any of its
// sub-subsets sums to zero. Date follows the §9 open question decision:
// the first source posting's effective date.
func buildAggregate(key bucketKey, subset []*posting.Posting, txnDate posting.Date, checkZero bool) (*MatchablePosting, bool) {
	sum := money.Zero
	for _, p := range subset {
		sum = sum.Add(p.Units.Number)
	}
	if checkZero {
		if sum.IsZero() {
			return nil, false
		}
		if subsetHasZeroSummingSubSubset(subset) {
			return nil, false
		}
	}

	return &MatchablePosting{
		Weight:  money.New(sum, key.currency),
		Account: key.account,
		Date:    subset[0].EffectiveDate(txnDate),
		Cleared: false,
		Sources: append([]*posting.Posting(nil), subset...),
	}, true
}

// subsetHasZeroSummingSubSubset checks whether any sub-subset of subset,
// of size 2..len(subset)-1, sums to zero (spec.md §4.3 rule 2's last
// bullet; ground truth: matching.py's add_subset checks
// "for subsubset_size in range(2, len(subset))", which never considers
// singletons and is empty for a 2-element subset). Exhaustive over 2^n
// masks, filtered to those sizes; only ever called with n <= 4.
func subsetHasZeroSummingSubSubset(subset []*posting.Posting) bool {
	n := len(subset)
	full := 1 << n
	for mask := 1; mask < full-1; mask++ {
		size := bits.OnesCount(uint(mask))
		if size < 2 || size > n-1 {
			continue
		}
		sum := money.Zero
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum = sum.Add(subset[i].Units.Number)
			}
		}
		if sum.IsZero() {
			return true
		}
	}
	return false
}

// forEachCombination calls fn with every size-length, strictly increasing
// index combination drawn from [0, n). fn returns false to stop early.
func forEachCombination(n, size int, fn func(indices []int) bool) {
	if size > n {
		return
	}
	indices := make([]int, size)
	for i := range indices {
		indices[i] = i
	}

	for {
		if !fn(indices) {
			return
		}

		i := size - 1
		for i >= 0 && indices[i] == n-size+i {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < size; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}
