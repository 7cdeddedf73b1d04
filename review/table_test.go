package review

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/ledgerkit/reconcile/extend"
	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

func newCandidate(t *testing.T) extend.Result {
	t.Helper()
	txn := posting.NewTransaction(posting.NewDate(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)))
	txn.Payee = "Whole Foods"

	checking := posting.NewPosting("Assets:Checking", decAmount(t, "-42.17", "USD"))
	groceries := posting.NewPosting("Expenses:Groceries", decAmount(t, "42.17", "USD"))
	groceries.Cleared = true
	txn.AddPosting(checking)
	txn.AddPosting(groceries)

	return extend.Result{Merged: txn}
}

func decAmount(t *testing.T, s, currency string) money.Amount {
	t.Helper()
	dec, err := money.ParseDecimal(s)
	if err != nil {
		t.Fatal(err)
	}
	return money.New(dec, currency)
}

func TestRenderTableIncludesEveryPostingAligned(t *testing.T) {
	out := RenderTable(newCandidate(t), 80)

	assert.True(t, strings.Contains(out, "Whole Foods"))
	assert.True(t, strings.Contains(out, "Assets:Checking"))
	assert.True(t, strings.Contains(out, "Expenses:Groceries"))
}

func TestRenderTableFallsBackToDefaultWidth(t *testing.T) {
	out := RenderTable(newCandidate(t), 0)
	assert.True(t, len(out) > 0)
}

func TestWrapLeavesShortLinesUntouched(t *testing.T) {
	assert.Equal(t, "short", wrap("short", 80))
}

func TestWrapTruncatesOverlongLines(t *testing.T) {
	long := strings.Repeat("x", 100)
	out := wrap(long, 20)
	assert.True(t, len(out) < len(long))
}
