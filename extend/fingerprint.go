package extend

import (
	"cmp"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/ledgerkit/reconcile/posting"
)

// postingIdentifier canonicalizes a posting's content for the extender's
// emission key (spec.md §4.8: "a posting identifier normalizes away
// file/line meta"). Provenance already lives on posting.Position rather
// than Meta in this model (see posting.Position's doc comment), so the
// normalization is simply: don't look at Pos, and hash everything else,
// except that a CostSpec contributes only its Merge flag.
func postingIdentifier(p *posting.Posting) string {
	var b strings.Builder
	b.WriteString(p.Account)
	b.WriteByte('|')
	b.WriteString(p.Units.String())
	b.WriteByte('|')
	b.WriteString(costIdentifier(p))
	b.WriteByte('|')
	b.WriteString(p.Price.String())
	b.WriteByte('|')
	b.WriteString(p.Flag)
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.Cleared))
	b.WriteByte('|')
	b.WriteString(metaIdentifier(p.Meta))
	return b.String()
}

func costIdentifier(p *posting.Posting) string {
	switch {
	case p.Cost != nil:
		label := ""
		if p.Cost.Label != "" {
			label = p.Cost.Label
		}
		date := ""
		if p.Cost.Date != nil {
			date = p.Cost.Date.String()
		}
		return "cost:" + p.Cost.PerUnit.String() + "/" + p.Cost.Currency + "/" + date + "/" + label
	case p.CostSpec != nil:
		return "costspec:" + strconv.FormatBool(p.CostSpec.Merge)
	default:
		return "nocost"
	}
}

func metaIdentifier(m *posting.Meta) string {
	keys := append([]string(nil), m.Keys()...)
	slices.Sort(keys)
	var parts []string
	for _, k := range keys {
		v, _ := m.Get(k)
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// transactionIdentifier canonicalizes a merged transaction's posting set
// for the emission key, order-independent (spec.md §4.8: "set_of_posting_
// identifiers").
func transactionIdentifier(t *posting.Transaction) string {
	ids := make([]string, len(t.Postings))
	for i, p := range t.Postings {
		ids[i] = postingIdentifier(p)
	}
	slices.Sort(ids)
	return strings.Join(ids, "\x1f")
}

// usedSetIdentifier canonicalizes a set of used transaction IDs for the
// emission key.
func usedSetIdentifier(used map[uint64]bool) string {
	ids := make([]uint64, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uint64) int { return cmp.Compare(a, b) })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}

// emissionKey implements spec.md §4.8's dedup key: (set_of_used_transaction_
// ids, set_of_posting_identifiers).
func emissionKey(s state) string {
	return usedSetIdentifier(s.used) + "\x00" + transactionIdentifier(s.merged)
}
