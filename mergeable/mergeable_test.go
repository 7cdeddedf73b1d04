package mergeable

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/ledgerkit/reconcile/aggregate"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

func d(t *testing.T, s string) money.Decimal {
	t.Helper()
	dec, err := money.ParseDecimal(s)
	if err != nil {
		t.Fatal(err)
	}
	return dec
}

func mp(p *posting.Posting) *aggregate.MatchablePosting {
	return &aggregate.MatchablePosting{
		Weight:  p.Units,
		Account: p.Account,
		Cleared: p.Cleared,
		Sources: []*posting.Posting{p},
	}
}

func TestMetadataMergeableIgnoresFilenameAndLineno(t *testing.T) {
	a := posting.NewMeta()
	a.Set("filename", "a.beancount")
	a.Set("check", "5")

	b := posting.NewMeta()
	b.Set("filename", "b.beancount")
	b.Set("check", "5")

	assert.True(t, MetadataMergeable(a, b))
}

func TestMetadataMergeableConflict(t *testing.T) {
	a := posting.NewMeta()
	a.Set("check", "5")
	b := posting.NewMeta()
	b.Set("check", "6")

	assert.False(t, MetadataMergeable(a, b))
}

func TestAmountsMergeableMissingIsWildcard(t *testing.T) {
	assert.True(t, AmountsMergeable(money.Missing(), money.New(d(t, "5"), "USD")))
	assert.True(t, AmountsMergeable(money.New(d(t, "5"), "USD"), money.Missing()))
	assert.True(t, AmountsMergeable(money.New(d(t, "5"), "USD"), money.New(d(t, "5"), "USD")))
	assert.False(t, AmountsMergeable(money.New(d(t, "5"), "USD"), money.New(d(t, "6"), "USD")))
}

func TestPostingsMergeableBothAggregatesForbidden(t *testing.T) {
	a := posting.NewPosting("Expenses:A", money.New(d(t, "5"), "USD"))
	b := posting.NewPosting("Expenses:A", money.New(d(t, "5"), "USD"))
	aggA := &aggregate.MatchablePosting{Account: "Expenses:A", Sources: []*posting.Posting{a, a}}
	aggB := &aggregate.MatchablePosting{Account: "Expenses:A", Sources: []*posting.Posting{b, b}}
	assert.False(t, PostingsMergeable(aggA, aggB))
}

func TestPostingsMergeableAccountsMustBeMergeable(t *testing.T) {
	a := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	b := posting.NewPosting("Assets:Savings", money.New(d(t, "5"), "USD"))
	assert.False(t, PostingsMergeable(mp(a), mp(b)))
}

func TestPostingsMergeableNotBothCleared(t *testing.T) {
	a := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	a.Cleared = true
	b := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	b.Cleared = true
	assert.False(t, PostingsMergeable(mp(a), mp(b)))
}

func TestPostingsMergeableSingletonMetadata(t *testing.T) {
	a := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	a.Meta.Set("check", "5")
	b := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	b.Meta.Set("check", "6")
	assert.False(t, PostingsMergeable(mp(a), mp(b)))
}

func TestCostToCostMergeable(t *testing.T) {
	a := posting.NewPosting("Assets:Brokerage", money.New(d(t, "10"), "AAPL"))
	a.Cost = &posting.Cost{PerUnit: d(t, "2"), Currency: "USD"}
	b := posting.NewPosting("Assets:Brokerage", money.New(d(t, "10"), "AAPL"))
	b.Cost = &posting.Cost{PerUnit: d(t, "2"), Currency: "USD", Label: "lot-1"}

	assert.True(t, CostsMergeable(a, b), "empty label on a side is a wildcard")
}

func TestCostSpecToCostSpecMergeable(t *testing.T) {
	perUnit := d(t, "2")
	a := posting.NewPosting("Assets:Brokerage", money.New(d(t, "10"), "AAPL"))
	a.CostSpec = &posting.CostSpec{PerUnit: &perUnit}
	b := posting.NewPosting("Assets:Brokerage", money.New(d(t, "10"), "AAPL"))
	b.CostSpec = &posting.CostSpec{}

	assert.True(t, CostsMergeable(a, b), "MISSING field on b is a wildcard")
}

func TestCostToCostSpecNumberTotal(t *testing.T) {
	a := posting.NewPosting("Assets:Brokerage", money.New(d(t, "10"), "AAPL"))
	a.Cost = &posting.Cost{PerUnit: d(t, "2"), Currency: "USD"}

	total := d(t, "20")
	b := posting.NewPosting("Assets:Brokerage", money.New(d(t, "10"), "AAPL"))
	b.CostSpec = &posting.CostSpec{NumberTotal: &total}

	assert.True(t, CostsMergeable(a, b))

	wrongTotal := d(t, "25")
	b.CostSpec.NumberTotal = &wrongTotal
	assert.False(t, CostsMergeable(a, b))
}

func TestCostsMergeableNeitherSideHasCost(t *testing.T) {
	a := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	b := posting.NewPosting("Assets:Checking", money.New(d(t, "5"), "USD"))
	assert.True(t, CostsMergeable(a, b))
}
