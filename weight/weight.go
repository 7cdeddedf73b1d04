// Package weight computes the signed currency contribution of a single
// posting, the quantity the pair merger and index bucket postings by.
// It is grounded on the teacher's ledger.CalculateWeights, reduced to the
// single-result form spec.md §4.1 calls for (the teacher's WeightSet exists
// because a posting can independently affect both the commodity and the
// cost currency during whole-transaction balancing; the reconciler only
// ever needs the one weight a posting contributes to the match search).
package weight

import (
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// Of computes posting_weight(p) per spec.md §4.1:
//
//   - MISSING units            -> ok == false
//   - fully specified cost     -> cost.per_unit * units.number, in cost.currency
//   - price with a number      -> price.number * units.number, in price.currency
//   - otherwise                -> units, unchanged
//
// A cost is "fully specified" when p.Cost is set (posting.Cost has no
// MISSING fields by construction; an unresolved posting.CostSpec does not
// count, matching the teacher's hasExplicitCost/hasEmptyCost distinction).
func Of(p *posting.Posting) (money.Amount, bool) {
	if p.Units.IsMissing() {
		return money.Amount{}, false
	}

	if p.Cost != nil {
		total := p.Cost.PerUnit.Mul(p.Units.Number)
		return money.New(total, p.Cost.Currency), true
	}

	if p.HasPrice() {
		total := p.Price.Number.Mul(p.Units.Number)
		return money.New(total, p.Price.Currency), true
	}

	return p.Units, true
}

// Sum accumulates the weights of ps into a SimpleInventory, skipping
// postings with no computable weight. Callers that need to distinguish "a
// posting was skipped" from "it contributed zero" should check lengths
// against len(ps) themselves; Sum alone does not report skips.
func Sum(ps []*posting.Posting) *money.SimpleInventory {
	inv := money.NewSimpleInventory()
	for _, p := range ps {
		w, ok := Of(p)
		if !ok || w.IsMissing() {
			continue
		}
		inv.Add(w.Currency, w.Number)
	}
	return inv
}
