package posting

import "sync/atomic"

var transactionIDCounter uint64

func nextTransactionID() uint64 {
	return atomic.AddUint64(&transactionIDCounter, 1)
}

// Transaction is a ledger entry: a date, an optional flag/payee/narration,
// tags/links, and the list of postings it balances across. Everything here
// mirrors spec.md §3's transaction record; directive types other than
// transactions (Open, Close, Price, ...) are the parser/loader's concern and
// do not appear in this package.
type Transaction struct {
	id uint64

	Date      Date
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Links     []string
	Postings  []*Posting
	Meta      *Meta
	Pos       Position
}

// NewTransaction returns a Transaction with a fresh, stable ID and an
// initialized Meta bag.
func NewTransaction(date Date) *Transaction {
	return &Transaction{
		id:   nextTransactionID(),
		Date: date,
		Meta: NewMeta(),
	}
}

// ID returns this transaction's stable arena index, unique for the lifetime
// of the process (see Posting.ID for why identity is an integer rather than
// a pointer).
func (t *Transaction) ID() uint64 {
	return t.id
}

// Cleared reports whether every posting in the transaction is cleared. The
// reconciler uses per-posting cleared state (set by the host's
// is-cleared oracle, spec.md §6) rather than a flag on the transaction
// itself, since a transaction can mix cleared and uncleared postings while
// awaiting reconciliation.
func (t *Transaction) Cleared() bool {
	for _, p := range t.Postings {
		if !p.Cleared {
			return false
		}
	}
	return len(t.Postings) > 0
}

// AddPosting appends p to the transaction's posting list.
func (t *Transaction) AddPosting(p *Posting) {
	t.Postings = append(t.Postings, p)
}
