package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// Parser supplies Transaction/Posting values with populated filename/line
// metadata for on-disk entries (spec.md §6's "Parser" collaborator). The
// engine never parses or prints ledger text itself; the real ledger-text
// grammar lives entirely outside this module.
type Parser interface {
	LoadTransactions(ctx context.Context, path string) ([]*posting.Transaction, error)
}

// jsonEntry is the wire shape of the fixture format jsonParser reads.
type jsonEntry struct {
	Date      string            `json:"date"`
	Payee     string            `json:"payee"`
	Narration string            `json:"narration"`
	Postings  []jsonPosting     `json:"postings"`
	Meta      map[string]string `json:"meta"`
}

type jsonPosting struct {
	Account  string            `json:"account"`
	Amount   string            `json:"amount"`
	Currency string            `json:"currency"`
	Cleared  bool              `json:"cleared"`
	Meta     map[string]string `json:"meta"`
}

// jsonParser is a reference Parser reading a small flat JSON fixture
// format. It exists so this command is runnable end to end without a real
// ledger grammar, which spec.md §6 explicitly keeps external; swap it for
// a Parser backed by an actual ledger reader in a real deployment.
type jsonParser struct{}

func (jsonParser) LoadTransactions(_ context.Context, path string) ([]*posting.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []jsonEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	txns := make([]*posting.Transaction, 0, len(entries))
	for i, e := range entries {
		date, err := parseISODate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		txn := posting.NewTransaction(date)
		txn.Payee = e.Payee
		txn.Narration = e.Narration
		txn.Pos = posting.Position{Filename: path, Line: i + 1}
		for k, v := range e.Meta {
			txn.Meta.Set(k, v)
		}

		for _, jp := range e.Postings {
			number, err := money.ParseDecimal(jp.Amount)
			if err != nil {
				return nil, fmt.Errorf("entry %d posting %s: %w", i, jp.Account, err)
			}
			p := posting.NewPosting(jp.Account, money.New(number, jp.Currency))
			p.Cleared = jp.Cleared
			p.Pos = txn.Pos
			for k, v := range jp.Meta {
				p.Meta.Set(k, v)
			}
			txn.AddPosting(p)
		}

		txns = append(txns, txn)
	}

	return txns, nil
}

func parseISODate(s string) (posting.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return posting.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return posting.NewDate(t), nil
}
