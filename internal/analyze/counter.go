package analyze

import (
	"cmp"
	"slices"
)

// Entry is one key of a Counter with its count
type Entry[K comparable] struct {
	Key   K
	Count int
}

// Counter tallies keys and remembers the order in which they were first seen
type Counter[K comparable] struct {
	index   map[K]int
	entries []Entry[K]
	total   int
}

// NewCounter creates an empty counter
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{index: make(map[K]int)}
}

// Add increments the count of key by one
func (c *Counter[K]) Add(key K) {
	c.AddN(key, 1)
}

// AddN increments the count of key by n
func (c *Counter[K]) AddN(key K, n int) {
	i, ok := c.index[key]
	if !ok {
		i = len(c.entries)
		c.index[key] = i
		c.entries = append(c.entries, Entry[K]{Key: key})
	}
	c.entries[i].Count += n
	c.total += n
}

// Get returns the count of key
func (c *Counter[K]) Get(key K) int {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys
func (c *Counter[K]) Len() int {
	return len(c.entries)
}

// Total returns the sum of all counts
func (c *Counter[K]) Total() int {
	return c.total
}

// MostCommon returns the n highest counts, descending. Equal counts keep
// first-seen order. n <= 0 returns every entry.
func (c *Counter[K]) MostCommon(n int) []Entry[K] {
	sorted := slices.Clone(c.entries)
	slices.SortStableFunc(sorted, func(a, b Entry[K]) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Keys returns the distinct keys in first-seen order
func (c *Counter[K]) Keys() []K {
	keys := make([]K, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the counts in first-seen order
func (c *Counter[K]) Values() []int {
	values := make([]int, len(c.entries))
	for i, e := range c.entries {
		values[i] = e.Count
	}
	return values
}
