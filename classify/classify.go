// Package classify defines the classifier interface (C8): a pure predictor
// from a feature bag to an account name, plus the feature-bag extraction
// spec.md §4.9 describes. The classifier implementation itself is an
// external collaborator (spec.md §1 Non-goals); this package only builds
// the input it consumes and the shape of the training signal it accepts.
package classify

import "sort"

// FeatureBag is the set of boolean "key:value" features spec.md §4.9 calls
// for: presence in the set means true, absence means false/unknown.
type FeatureBag map[string]bool

// NewFeatureBag returns an empty bag.
func NewFeatureBag() FeatureBag {
	return make(FeatureBag)
}

// Add sets feature to true.
func (b FeatureBag) Add(feature string) {
	b[feature] = true
}

// Has reports whether feature is present.
func (b FeatureBag) Has(feature string) bool {
	return b[feature]
}

// Keys returns the bag's features in sorted order, for deterministic
// iteration (training and prediction must be reproducible, spec.md §8
// property 7).
func (b FeatureBag) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Classifier is the abstract feature extractor + predictor spec.md §4.9
// describes: a pure function from a feature bag to an account name, with
// append-only training. Implementations are supplied by the host; the
// engine only ever calls these two methods.
type Classifier interface {
	// PredictAccount returns the most likely account for the unknown-account
	// group bag was extracted from. Prediction must be pure: the same bag
	// always yields the same account until the next Train call.
	PredictAccount(bag FeatureBag) (account string, confidence float64, err error)

	// Train records a confirmed (feature bag -> account) observation.
	// Training is append-only: it must never forget or downweight a prior
	// observation, only add to the model (spec.md §4.9).
	Train(bag FeatureBag, account string) error
}
