package posting

// Meta is an ordered key/value bag attached to a Transaction or Posting.
// Order is preserved (not just the Go map iteration order) so that merged
// metadata — the "ordered union of both metas" called for in spec.md
// §4.6/§4.7 — is deterministic and reproducible across runs (spec.md §8,
// property 7: determinism).
//
// Provenance (filename/line) is carried on Position, not in Meta, so unlike
// the source system this type never needs to special-case those two keys:
// spec.md §3's "ignored by all matching" requirement for filename/lineno is
// automatically satisfied by keeping them out of Meta entirely.
type Meta struct {
	keys   []string
	values map[string]string
}

// NewMeta returns an empty metadata bag.
func NewMeta() *Meta {
	return &Meta{values: make(map[string]string)}
}

// Set assigns value to key, preserving first-insertion order on update.
func (m *Meta) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *Meta) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Meta) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns metadata keys in insertion order.
func (m *Meta) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Len returns the number of entries.
func (m *Meta) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns an independent copy.
func (m *Meta) Clone() *Meta {
	clone := NewMeta()
	if m == nil {
		return clone
	}
	for _, k := range m.keys {
		clone.Set(k, m.values[k])
	}
	return clone
}

// UnionMeta returns the ordered union of metas, in the order the metas and
// their keys are given. Callers (pairmerge's combined-posting construction,
// §4.7) are expected to have already verified mergeability via
// mergeable.MetadataMergeable; when two sources disagree on a key's value,
// the first one encountered wins, matching the source's "first writer"
// semantics for Go map-free ordered merges.
func UnionMeta(metas ...*Meta) *Meta {
	union := NewMeta()
	for _, m := range metas {
		if m == nil {
			continue
		}
		for _, k := range m.keys {
			if !union.Has(k) {
				union.Set(k, m.values[k])
			}
		}
	}
	return union
}
