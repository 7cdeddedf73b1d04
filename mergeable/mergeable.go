// Package mergeable implements the predicates (C4) that decide whether two
// postings, two metadata bags, two amounts, or two costs may combine in a
// single merge. Grounded on the teacher's ledger.lotSpec.Equal for the
// MISSING-tolerant field-by-field comparison shape, generalized to the
// Cost/CostSpec dispatch spec.md §4.4 describes.
package mergeable

import (
	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// reservedMetaKeys are stripped before the metadata-consistency check, not
// because they live in Meta (they never do, per posting.Position) but
// because a caller may be comparing raw, parser-supplied metadata bags that
// still carry them.
var reservedMetaKeys = map[string]bool{
	"filename": true,
	"lineno":   true,
}

// MetadataMergeable reports whether the union of the given metas is
// consistent: no key appears with two different values, after filtering
// filename/lineno (spec.md §4.4).
func MetadataMergeable(metas ...*posting.Meta) bool {
	seen := make(map[string]string)
	for _, m := range metas {
		if m == nil {
			continue
		}
		for _, k := range m.Keys() {
			if reservedMetaKeys[k] {
				continue
			}
			v, _ := m.Get(k)
			if prior, ok := seen[k]; ok {
				if prior != v {
					return false
				}
				continue
			}
			seen[k] = v
		}
	}
	return true
}

// AmountsMergeable reports whether two amounts may stand for the same
// value: MISSING acts as a wildcard on either side; otherwise currency and
// number must match exactly (spec.md §4.4). This is distinct from
// money.AmountEqual, which is for fuzzy numeric comparison of weights, not
// MISSING-as-wildcard comparison of amount fields.
func AmountsMergeable(a, b money.Amount) bool {
	if a.IsMissing() || b.IsMissing() {
		return true
	}
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

// PostingsMergeable implements spec.md §4.4's postings_mergeable for a
// candidate pairing of MatchablePostings a and b: neither may both be
// aggregates, their accounts must be mergeable, they may not both be
// cleared, and their metadata must be compatible under the
// singleton/aggregate asymmetric rule.
func PostingsMergeable(a, b *aggregate.MatchablePosting) bool {
	if a.IsAggregate() && b.IsAggregate() {
		return false
	}
	if !posting.AccountsMergeable(a.Account, b.Account) {
		return false
	}
	if a.Cleared && b.Cleared {
		return false
	}

	singleton, aggregateSide := a, b
	if a.IsAggregate() {
		singleton, aggregateSide = b, a
	}
	return singletonMetadataMergeableWithAggregate(singleton, aggregateSide)
}

// singletonMetadataMergeableWithAggregate implements the asymmetric branch
// of spec.md §4.4's postings_mergeable: when the singleton side is cleared,
// its metadata must be mergeable with the union of the aggregate's source
// metadata; otherwise it must be individually compatible with each source
// posting's metadata.
func singletonMetadataMergeableWithAggregate(singleton, aggregateSide *aggregate.MatchablePosting) bool {
	if !aggregateSide.IsAggregate() {
		return MetadataMergeable(singleton.Sources[0].Meta, aggregateSide.Sources[0].Meta)
	}

	sourceMetas := make([]*posting.Meta, len(aggregateSide.Sources))
	for i, s := range aggregateSide.Sources {
		sourceMetas[i] = s.Meta
	}

	if singleton.Cleared {
		union := posting.UnionMeta(sourceMetas...)
		return MetadataMergeable(singleton.Sources[0].Meta, union)
	}

	for _, m := range sourceMetas {
		if !MetadataMergeable(singleton.Sources[0].Meta, m) {
			return false
		}
	}
	return true
}
