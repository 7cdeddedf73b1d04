package classify

import "sort"

// FrequencyClassifier is a minimal reference Classifier: it counts how often
// each feature co-occurs with each account and predicts the account whose
// features score highest. It exists only to exercise the Classifier
// contract in tests; spec.md treats the real classifier as an external
// black box (§4.9), so nothing here is grounded in the example corpus —
// there is no classifier in it to ground on.
type FrequencyClassifier struct {
	counts      map[string]map[string]int // feature -> account -> count
	accountHits map[string]int
}

// NewFrequencyClassifier returns an empty classifier.
func NewFrequencyClassifier() *FrequencyClassifier {
	return &FrequencyClassifier{
		counts:      make(map[string]map[string]int),
		accountHits: make(map[string]int),
	}
}

// Train implements Classifier.Train: append-only increment of every
// feature's co-occurrence count with account.
func (c *FrequencyClassifier) Train(bag FeatureBag, account string) error {
	for _, feature := range bag.Keys() {
		if c.counts[feature] == nil {
			c.counts[feature] = make(map[string]int)
		}
		c.counts[feature][account]++
	}
	c.accountHits[account]++
	return nil
}

// PredictAccount implements Classifier.PredictAccount: scores every account
// that has ever co-occurred with a feature in bag, by summed count, and
// returns the highest scorer. Ties break on account name for determinism.
// confidence is the winning score as a fraction of all training hits seen
// for that account.
func (c *FrequencyClassifier) PredictAccount(bag FeatureBag) (string, float64, error) {
	scores := make(map[string]int)
	for _, feature := range bag.Keys() {
		for account, n := range c.counts[feature] {
			scores[account] += n
		}
	}
	if len(scores) == 0 {
		return "", 0, nil
	}

	accounts := make([]string, 0, len(scores))
	for a := range scores {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if scores[accounts[i]] != scores[accounts[j]] {
			return scores[accounts[i]] > scores[accounts[j]]
		}
		return accounts[i] < accounts[j]
	})

	best := accounts[0]
	hits := c.accountHits[best]
	if hits == 0 {
		return best, 0, nil
	}
	return best, float64(scores[best]) / float64(hits), nil
}
