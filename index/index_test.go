package index

import (
	"context"
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

func date(y int, m time.Month, day int) posting.Date {
	return posting.NewDate(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

func newTxn(dt posting.Date, account string, amount money.Decimal, currency string) (*posting.Transaction, *posting.Posting) {
	txn := posting.NewTransaction(dt)
	p := posting.NewPosting(account, money.New(amount, currency))
	txn.AddPosting(p)
	return txn, p
}

func neverCleared(*posting.Posting) bool  { return false }
func alwaysTrueCmp(Entry) bool             { return true }

func TestAddAndSearchWithinFuzzyWindow(t *testing.T) {
	idx := New(3, d(t, "0.01"), neverCleared, nil)

	txn, _ := newTxn(date(2016, 1, 4), "Assets:Checking", d(t, "-1"), "USD")
	idx.Add(txn)

	probe := Probe{Account: "Assets:Checking", Weight: money.New(d(t, "-1"), "USD"), Date: date(2016, 1, 1)}
	matches := idx.Search(probe, alwaysTrueCmp)
	assert.Equal(t, 1, len(matches))
}

func TestSearchOutsideFuzzyWindowFindsNothing(t *testing.T) {
	idx := New(2, d(t, "0.01"), neverCleared, nil)

	txn, _ := newTxn(date(2016, 1, 4), "Assets:Checking", d(t, "-1"), "USD")
	idx.Add(txn)

	probe := Probe{Account: "Assets:Checking", Weight: money.New(d(t, "-1"), "USD"), Date: date(2016, 1, 1)}
	matches := idx.Search(probe, alwaysTrueCmp)
	assert.Equal(t, 0, len(matches))
}

func TestSalientMetaBypassesDateWindow(t *testing.T) {
	idx := New(1, d(t, "0.01"), neverCleared, []string{"check"})

	txn, p := newTxn(date(2016, 1, 1), "Assets:Checking", d(t, "-1"), "USD")
	p.Meta.Set("check", "5")
	idx.Add(txn)

	probe := Probe{
		Account:     "Assets:Checking",
		Weight:      money.New(d(t, "-1"), "USD"),
		Date:        date(2016, 3, 1),
		SalientMeta: map[string]string{"check": "5"},
	}
	matches := idx.Search(probe, alwaysTrueCmp)
	assert.Equal(t, 1, len(matches), "salient meta match should bypass the fuzzy date window")
}

func TestRemoveDeletesFromBothTables(t *testing.T) {
	idx := New(2, d(t, "0.01"), neverCleared, []string{"check"})

	txn, p := newTxn(date(2016, 1, 1), "Assets:Checking", d(t, "-1"), "USD")
	p.Meta.Set("check", "5")
	idx.Add(txn)
	idx.Remove(txn)

	probe := Probe{Account: "Assets:Checking", Weight: money.New(d(t, "-1"), "USD"), Date: date(2016, 1, 1)}
	assert.Equal(t, 0, len(idx.Search(probe, alwaysTrueCmp)))

	salientProbe := Probe{
		Account:     "Assets:Checking",
		Weight:      money.New(d(t, "-1"), "USD"),
		Date:        date(2016, 1, 1),
		SalientMeta: map[string]string{"check": "5"},
	}
	assert.Equal(t, 0, len(idx.Search(salientProbe, alwaysTrueCmp)))
}

func TestPostingMatchesNegate(t *testing.T) {
	idx := New(2, d(t, "0.01"), neverCleared, nil)

	dbTxn, _ := newTxn(date(2016, 1, 1), "Assets:Checking", d(t, "1"), "USD")
	idx.Add(dbTxn)

	candidateTxn, candidatePosting := newTxn(date(2016, 1, 1), "Assets:Checking", d(t, "-1"), "USD")

	matches := idx.PostingMatches(candidateTxn, candidatePosting, true, alwaysTrueCmp)
	assert.Equal(t, 1, len(matches))
}

func TestPostingMatchesRequiresMergeableAccount(t *testing.T) {
	idx := New(2, d(t, "0.01"), neverCleared, nil)

	dbTxn, _ := newTxn(date(2016, 1, 1), "Assets:Checking", d(t, "1"), "USD")
	idx.Add(dbTxn)

	candidateTxn, candidatePosting := newTxn(date(2016, 1, 1), "Assets:Savings", d(t, "-1"), "USD")
	matches := idx.PostingMatches(candidateTxn, candidatePosting, true, alwaysTrueCmp)
	assert.Equal(t, 0, len(matches))
}

func TestRebuildSortsEveryDirtyBucketAndClearsDirtyFlag(t *testing.T) {
	idx := New(1, d(t, "0.01"), neverCleared, nil)

	for _, amount := range []string{"3", "1", "2"} {
		txn, _ := newTxn(date(2016, 1, 1), "Assets:Checking", d(t, amount), "USD")
		idx.Add(txn)
	}

	err := idx.Rebuild(context.Background())
	assert.NoError(t, err)

	for _, b := range idx.buckets {
		assert.True(t, !b.dirty)
	}
}
