package posting

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/ledgerkit/reconcile/money"
)

func TestTransactionIDsAreUniqueAndStable(t *testing.T) {
	d := NewDate(time.Now())
	a := NewTransaction(d)
	b := NewTransaction(d)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), a.ID())
}

func TestTransactionClearedRequiresAllPostingsCleared(t *testing.T) {
	tx := NewTransaction(NewDate(time.Now()))
	assert.False(t, tx.Cleared(), "empty transaction is not cleared")

	p1 := NewPosting("Assets:Checking", money.New(money.Zero, "USD"))
	p2 := NewPosting("Expenses:FIXME", money.New(money.Zero, "USD"))
	tx.AddPosting(p1)
	tx.AddPosting(p2)
	assert.False(t, tx.Cleared())

	p1.Cleared = true
	p2.Cleared = true
	assert.True(t, tx.Cleared())
}
