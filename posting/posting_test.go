package posting

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/ledgerkit/reconcile/money"
)

func TestIsUnknown(t *testing.T) {
	assert.True(t, IsUnknown("Expenses:FIXME"))
	assert.True(t, IsUnknown("Expenses:FIXME:Groceries"))
	assert.False(t, IsUnknown("Expenses:Groceries"))
	assert.False(t, IsUnknown("Expenses:FIXMEish"))
}

func TestUnknownGroupKey(t *testing.T) {
	key, ok := UnknownGroupKey("Expenses:FIXME:Travel")
	assert.True(t, ok)
	assert.Equal(t, "Travel", key)

	key, ok = UnknownGroupKey("Expenses:FIXME")
	assert.True(t, ok)
	assert.Equal(t, "", key)

	_, ok = UnknownGroupKey("Assets:Checking")
	assert.False(t, ok)
}

func TestAccountsMergeable(t *testing.T) {
	assert.True(t, AccountsMergeable("Assets:Checking", "Assets:Checking"))
	assert.True(t, AccountsMergeable("Expenses:FIXME", "Assets:Checking"))
	assert.True(t, AccountsMergeable("Expenses:FIXME:X", "Expenses:FIXME"))
	assert.False(t, AccountsMergeable("Assets:Checking", "Assets:Savings"))
}

func TestMergedAccount(t *testing.T) {
	assert.Equal(t, "Assets:Checking", MergedAccount("Expenses:FIXME", "Assets:Checking"))
	assert.Equal(t, "Assets:Checking", MergedAccount("Assets:Checking", "Expenses:FIXME"))
	assert.Equal(t, "Expenses:FIXME:X", MergedAccount("Expenses:FIXME:X", "Expenses:FIXME"))
	assert.Equal(t, "Expenses:FIXME:X", MergedAccount("Expenses:FIXME", "Expenses:FIXME:X"))
	assert.Equal(t, "Assets:Checking", MergedAccount("Assets:Checking", "Assets:Checking"))
}

func TestPostingIDsAreUniqueAndStable(t *testing.T) {
	a := NewPosting("Assets:Checking", money.New(money.Zero, "USD"))
	b := NewPosting("Assets:Checking", money.New(money.Zero, "USD"))

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), a.ID())
}

func TestPostingClone(t *testing.T) {
	units, _ := money.ParseDecimal("5")
	p := NewPosting("Assets:Checking", money.New(units, "USD"))
	p.Meta.Set("check", "1")

	clone := p.Clone()
	assert.NotEqual(t, p.ID(), clone.ID())
	assert.Equal(t, p.Account, clone.Account)
	v, ok := clone.Meta.Get("check")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestEffectiveDateFallsBackToTransactionDate(t *testing.T) {
	txnDate := NewDate(mustTime(t, "2016-01-01"))
	p := NewPosting("Assets:Checking", money.New(money.Zero, "USD"))

	assert.Equal(t, txnDate, p.EffectiveDate(txnDate))

	p.Meta.Set(DateMetaKey, "2016-03-15")
	assert.Equal(t, NewDate(mustTime(t, "2016-03-15")), p.EffectiveDate(txnDate))

	p.Meta.Set(DateMetaKey, "not-a-date")
	assert.Equal(t, txnDate, p.EffectiveDate(txnDate))
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestPostingHasCostAndPrice(t *testing.T) {
	p := NewPosting("Assets:Checking", money.Missing())
	assert.False(t, p.HasCost())
	assert.False(t, p.HasPrice())

	p.CostSpec = &CostSpec{}
	assert.True(t, p.HasCost())

	p.Price = money.New(money.Zero, "USD")
	assert.True(t, p.HasPrice())
}
