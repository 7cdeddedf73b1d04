package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestJSONParserLoadsTransactionsWithPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	fixture := `[
		{
			"date": "2016-03-01",
			"payee": "Whole Foods",
			"postings": [
				{"account": "Assets:Checking", "amount": "-42.17", "currency": "USD"},
				{"account": "Expenses:FIXME", "amount": "42.17", "currency": "USD", "cleared": true}
			]
		}
	]`
	err := os.WriteFile(path, []byte(fixture), 0o644)
	assert.NoError(t, err)

	txns, err := jsonParser{}.LoadTransactions(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(txns))

	txn := txns[0]
	assert.Equal(t, "Whole Foods", txn.Payee)
	assert.Equal(t, 2, len(txn.Postings))
	assert.Equal(t, path, txn.Pos.Filename)
	assert.True(t, txn.Postings[1].Cleared)
}

func TestJSONParserRejectsMissingFile(t *testing.T) {
	_, err := jsonParser{}.LoadTransactions(context.Background(), "/nonexistent/path.json")
	assert.Error(t, err)
}
