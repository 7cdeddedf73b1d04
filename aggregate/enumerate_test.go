package aggregate

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
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

func txnWithPostings(accounts []string, amounts []string, currency string) *posting.Transaction {
	txn := posting.NewTransaction(posting.NewDate(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)))
	for i, acct := range accounts {
		dec, _ := money.ParseDecimal(amounts[i])
		p := posting.NewPosting(acct, money.New(dec, currency))
		txn.AddPosting(p)
	}
	return txn
}

func TestEnumerateSingletonsAlwaysEmitted(t *testing.T) {
	txn := txnWithPostings(
		[]string{"Expenses:A", "Assets:Checking"},
		[]string{"5", "-5"},
		"USD",
	)
	mps := NewEnumerator().Enumerate(txn)
	assert.Equal(t, 2, len(mps))
	for _, mp := range mps {
		assert.False(t, mp.IsAggregate())
	}
}

func TestEnumerateAggregateOfThreeSummingNonzero(t *testing.T) {
	txn := txnWithPostings(
		[]string{"Expenses:A", "Expenses:A", "Expenses:A", "Assets:Checking"},
		[]string{"4", "4", "4", "-12"},
		"USD",
	)
	mps := NewEnumerator().Enumerate(txn)

	var aggregates []*MatchablePosting
	for _, mp := range mps {
		if mp.IsAggregate() {
			aggregates = append(aggregates, mp)
		}
	}
	assert.True(t, len(aggregates) > 0, "expected at least one aggregate MP")

	found := false
	for _, mp := range aggregates {
		if len(mp.Sources) == 3 {
			assert.True(t, mp.Weight.Number.Equal(d(t, "12")))
			found = true
		}
	}
	assert.True(t, found, "expected the size-3 aggregate of all three Expenses:A postings")
}

func TestEnumerateExcludesClearedCostPriceAndMissing(t *testing.T) {
	txn := posting.NewTransaction(posting.NewDate(time.Now()))

	cleared := posting.NewPosting("Expenses:A", money.New(d(t, "4"), "USD"))
	cleared.Cleared = true

	withCost := posting.NewPosting("Expenses:A", money.New(d(t, "4"), "USD"))
	withCost.Cost = &posting.Cost{PerUnit: d(t, "1"), Currency: "USD"}

	missing := posting.NewPosting("Expenses:A", money.Missing())

	plain := posting.NewPosting("Expenses:A", money.New(d(t, "4"), "USD"))

	txn.AddPosting(cleared)
	txn.AddPosting(withCost)
	txn.AddPosting(missing)
	txn.AddPosting(plain)

	mps := NewEnumerator().Enumerate(txn)
	for _, mp := range mps {
		assert.False(t, mp.IsAggregate(), "no eligible pair exists, so no aggregate should be emitted")
	}
}

func TestEnumerateNoSubSubsetSumsToZero(t *testing.T) {
	txn := txnWithPostings(
		[]string{"Expenses:A", "Expenses:A", "Expenses:A"},
		[]string{"5", "-5", "5"},
		"USD",
	)
	mps := NewEnumerator().Enumerate(txn)
	aggregates := 0
	for _, mp := range mps {
		if !mp.IsAggregate() {
			continue
		}
		aggregates++
		if len(mp.Sources) == 3 {
			t.Fatalf("subset {5,-5,5} has a zero-summing sub-subset {5,-5} and must not be emitted")
		}
		assert.True(t, mp.Weight.Number.Equal(d(t, "10")), "only the pair {5,5} is admissible")
	}
	assert.Equal(t, 1, aggregates)
}

func TestEnumerateMaximalSameSignForLargeBucket(t *testing.T) {
	accounts := make([]string, 6)
	amounts := make([]string, 6)
	for i := range accounts {
		accounts[i] = "Expenses:A"
		amounts[i] = "2"
	}
	txn := txnWithPostings(accounts, amounts, "USD")
	mps := NewEnumerator().Enumerate(txn)

	foundSix := false
	for _, mp := range mps {
		if len(mp.Sources) == 6 {
			foundSix = true
			assert.True(t, mp.Weight.Number.Equal(d(t, "12")))
		}
	}
	assert.True(t, foundSix, "bucket of 6 same-sign postings should get a maximal size-6 aggregate")
}

func TestEnumerateMemoizesByTransactionID(t *testing.T) {
	txn := txnWithPostings(
		[]string{"Expenses:A", "Assets:Checking"},
		[]string{"5", "-5"},
		"USD",
	)
	e := NewEnumerator()
	first := e.Enumerate(txn)
	second := e.Enumerate(txn)
	assert.Equal(t, len(first), len(second))
}
