package mwtab

// Pair is a single key-value entry in a Multimap.
type Pair struct {
	Key   string
	Value string
}

// Multimap is an ordered key-value collection that tolerates repeated keys.
// Insertion order is preserved for keys and for repeated values of the same
// key. Lookup by key returns the first value; iteration exposes every pair
// together with its per-key occurrence index.
type Multimap struct {
	pairs []Pair
	index map[string][]int // key -> positions in pairs, in insertion order
}

// NewMultimap returns an empty Multimap.
func NewMultimap() *Multimap {
	return &Multimap{index: make(map[string][]int)}
}

// Add appends a pair, keeping any earlier pairs with the same key.
func (m *Multimap) Add(key, value string) {
	if m.index == nil {
		m.index = make(map[string][]int)
	}
	m.index[key] = append(m.index[key], len(m.pairs))
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Set replaces the first value stored under key, or appends when absent.
func (m *Multimap) Set(key, value string) {
	if pos, ok := m.first(key); ok {
		m.pairs[pos].Value = value
		return
	}
	m.Add(key, value)
}

// Append concatenates value onto the first entry for key using a single
// space, or adds the pair when the key is absent.
func (m *Multimap) Append(key, value string) {
	if pos, ok := m.first(key); ok {
		m.pairs[pos].Value += " " + value
		return
	}
	m.Add(key, value)
}

// Get returns the first value stored under key.
func (m *Multimap) Get(key string) (string, bool) {
	if pos, ok := m.first(key); ok {
		return m.pairs[pos].Value, true
	}
	return "", false
}

// Value returns the first value stored under key, or "" when absent.
func (m *Multimap) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Values returns every value stored under key, in insertion order.
func (m *Multimap) Values(key string) []string {
	positions := m.index[key]
	if len(positions) == 0 {
		return nil
	}
	out := make([]string, 0, len(positions))
	for _, pos := range positions {
		out = append(out, m.pairs[pos].Value)
	}
	return out
}

// Has reports whether at least one pair exists for key.
func (m *Multimap) Has(key string) bool {
	return len(m.index[key]) > 0
}

// Count returns the number of pairs stored under key.
func (m *Multimap) Count(key string) int {
	return len(m.index[key])
}

// Len returns the total number of pairs.
func (m *Multimap) Len() int {
	return len(m.pairs)
}

// Pairs returns a copy of all pairs in insertion order.
func (m *Multimap) Pairs() []Pair {
	return append([]Pair(nil), m.pairs...)
}

// Keys returns the distinct keys in first-insertion order.
func (m *Multimap) Keys() []string {
	seen := make(map[string]bool, len(m.index))
	out := make([]string, 0, len(m.index))
	for _, p := range m.pairs {
		if !seen[p.Key] {
			seen[p.Key] = true
			out = append(out, p.Key)
		}
	}
	return out
}

// Delete removes every pair stored under key.
func (m *Multimap) Delete(key string) {
	if len(m.index[key]) == 0 {
		return
	}
	kept := m.pairs[:0]
	for _, p := range m.pairs {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	m.pairs = kept
	m.reindex()
}

// Reorder rearranges pairs so keys listed in order come first, in that
// order; pairs for unlisted keys keep their relative order at the tail.
// Repeated keys travel together.
func (m *Multimap) Reorder(order []string) {
	if len(m.pairs) < 2 {
		return
	}
	rank := make(map[string]int, len(order))
	for i, k := range order {
		if _, ok := rank[k]; !ok {
			rank[k] = i
		}
	}
	out := make([]Pair, 0, len(m.pairs))
	taken := make([]bool, len(m.pairs))
	for _, k := range order {
		for _, pos := range m.index[k] {
			if !taken[pos] {
				taken[pos] = true
				out = append(out, m.pairs[pos])
			}
		}
	}
	for pos, p := range m.pairs {
		if !taken[pos] {
			out = append(out, p)
		}
	}
	m.pairs = out
	m.reindex()
}

// Clone returns a deep copy.
func (m *Multimap) Clone() *Multimap {
	out := NewMultimap()
	for _, p := range m.pairs {
		out.Add(p.Key, p.Value)
	}
	return out
}

// Equal reports whether both multimaps hold the same pairs in the same order.
func (m *Multimap) Equal(other *Multimap) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.pairs) != len(other.pairs) {
		return false
	}
	for i, p := range m.pairs {
		if other.pairs[i] != p {
			return false
		}
	}
	return true
}

func (m *Multimap) first(key string) (int, bool) {
	positions := m.index[key]
	if len(positions) == 0 {
		return 0, false
	}
	return positions[0], true
}

func (m *Multimap) reindex() {
	m.index = make(map[string][]int, len(m.pairs))
	for i, p := range m.pairs {
		m.index[p.Key] = append(m.index[p.Key], i)
	}
}
