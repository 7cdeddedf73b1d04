package classify

import (
	"fmt"
	"strings"

	"github.com/ledgerkit/reconcile/money"
	"github.com/ledgerkit/reconcile/posting"
)

// KeyExtractor turns one metadata value into zero or more raw tokens before
// normalization. Registered per metadata key by the host (spec.md §4.9:
// "per-key extractors from external source plug-ins").
type KeyExtractor func(value string) []string

// Registry holds the host-supplied extractors: one set for transaction-level
// metadata, and one set per posting source (e.g. "csv", "ofx") for
// posting-level metadata, since the same key (e.g. "memo") may need
// different tokenization depending on which importer produced it.
type Registry struct {
	TransactionMeta map[string]KeyExtractor
	PostingMeta     map[string]map[string]KeyExtractor
}

// SourceMetaKey is the posting metadata key naming which feed produced a
// posting (e.g. "csv", "ofx", "payroll-pdf"); used to pick the right
// per-source extractor set.
const SourceMetaKey = "source"

// UnknownGroups returns the distinct unknown-account group keys present in
// txn (spec.md §3), in the order their first posting appears.
func UnknownGroups(txn *posting.Transaction) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, p := range txn.Postings {
		key, ok := posting.UnknownGroupKey(p.Account)
		if !ok {
			continue
		}
		if !seen[key] {
			seen[key] = true
			groups = append(groups, key)
		}
	}
	return groups
}

// ExtractFeatureBag builds the feature bag for one unknown-account group of
// txn (spec.md §4.9): transaction metadata run through its extractors, plus
// either the sole sibling posting of a simple 2-posting transaction or
// every non-group sibling posting's metadata, run through its source's
// extractors. lots, if non-nil, supplies the booking-aware "likely
// matching lot" feature (SPEC_FULL §C.3) keyed by sibling account.
func ExtractFeatureBag(txn *posting.Transaction, group string, reg Registry, lots map[string]*money.Lots) FeatureBag {
	bag := NewFeatureBag()

	for _, key := range txn.Meta.Keys() {
		value, _ := txn.Meta.Get(key)
		addNormalized(bag, key, reg.TransactionMeta[key], value)
	}

	siblings := siblingPostings(txn, group)
	for _, sibling := range siblings {
		addAccountFeatures(bag, sibling.Account)
		addPostingMetaFeatures(bag, sibling, reg)
		addLotFeature(bag, sibling, txn.Date, lots)
	}

	return bag
}

// siblingPostings returns the postings of txn that do not belong to group:
// for a simple 2-posting transaction, this is exactly the one known
// posting (spec.md §4.9's special case); otherwise every posting outside
// the group.
func siblingPostings(txn *posting.Transaction, group string) []*posting.Posting {
	var siblings []*posting.Posting
	for _, p := range txn.Postings {
		if key, ok := posting.UnknownGroupKey(p.Account); ok && key == group {
			continue
		}
		siblings = append(siblings, p)
	}
	return siblings
}

func addPostingMetaFeatures(bag FeatureBag, p *posting.Posting, reg Registry) {
	source, _ := p.Meta.Get(SourceMetaKey)
	extractors := reg.PostingMeta[source]
	for _, key := range p.Meta.Keys() {
		if key == SourceMetaKey {
			continue
		}
		value, _ := p.Meta.Get(key)
		addNormalized(bag, key, extractors[key], value)
	}
}

func addAccountFeatures(bag FeatureBag, account string) {
	for _, token := range normalize(account) {
		bag.Add(fmt.Sprintf("account:%s", token))
	}
}

func addLotFeature(bag FeatureBag, sibling *posting.Posting, txnDate posting.Date, lots map[string]*money.Lots) {
	if lots == nil {
		return
	}
	ls, ok := lots[sibling.Account]
	if !ok {
		return
	}
	spec := ls.NearestByDate(txnDate.Time)
	if spec == nil {
		return
	}
	bag.Add(fmt.Sprintf("lot:%s", strings.ToLower(spec.String())))
}

// addNormalized runs extractor (or, absent one, the raw value as a single
// token) through normalize and adds one "key:token" feature per resulting
// token.
func addNormalized(bag FeatureBag, key string, extractor KeyExtractor, value string) {
	var tokens []string
	if extractor != nil {
		tokens = extractor(value)
	} else {
		tokens = []string{value}
	}
	for _, raw := range tokens {
		for _, n := range normalize(raw) {
			bag.Add(fmt.Sprintf("%s:%s", key, n))
		}
	}
}

// normalize implements spec.md §4.9's "lowercased, whitespace-split,
// contiguous n-grams": split raw on whitespace, lowercase each word, then
// emit every contiguous run of words joined by a single space, so both
// individual words and short phrases become distinct features.
func normalize(raw string) []string {
	words := strings.Fields(strings.ToLower(raw))
	if len(words) == 0 {
		return nil
	}

	var grams []string
	for start := range words {
		for end := start; end < len(words); end++ {
			grams = append(grams, strings.Join(words[start:end+1], " "))
		}
	}
	return grams
}
