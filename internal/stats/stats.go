// Package stats implements the cache tier statistics aggregator: named
// counters with hit/miss/retry, tree-composable across cache tiers
// (spec §4.D), grounded on the teacher's TTLCache stats bookkeeping.
package stats

import (
	"fmt"
	"sort"
	"sync"
)

// HitKey and MissKey are the predefined counter names every tier exposes.
const (
	HitKey  = "hit"
	MissKey = "miss"
)

// Aggregator is a named, thread-safe set of counters.
type Aggregator interface {
	Name() string
	Increment(key string)
	Get(key string) int64
	RetrieveCount() int64
	HitRate() float64
	CacheStats() string
}

// SimpleStats is a leaf aggregator: one name and a counter map guarded by
// a single sync.Mutex.
type SimpleStats struct {
	name string

	mu       sync.Mutex
	counters map[string]int64
}

// NewSimpleStats constructs a named leaf statistics aggregator.
func NewSimpleStats(name string) *SimpleStats {
	return &SimpleStats{name: name, counters: make(map[string]int64)}
}

func (s *SimpleStats) Name() string { return s.name }

func (s *SimpleStats) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
}

func (s *SimpleStats) Get(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key]
}

func (s *SimpleStats) RetrieveCount() int64 {
	return s.Get(HitKey) + s.Get(MissKey)
}

// HitRate is hit/(hit+miss) * 100, or -1.0 (undefined) on a cold cache.
func (s *SimpleStats) HitRate() float64 {
	retrieve := s.RetrieveCount()
	if retrieve == 0 {
		return -1.0
	}
	return float64(s.Get(HitKey)) / float64(retrieve) * 100
}

// CacheStats renders "<name>: retrieve: <n>, <key>: <v>, …" with keys
// sorted lexicographically.
func (s *SimpleStats) CacheStats() string {
	s.mu.Lock()
	keys := make([]string, 0, len(s.counters))
	for k := range s.counters {
		keys = append(keys, k)
	}
	values := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		values[k] = v
	}
	s.mu.Unlock()

	sort.Strings(keys)
	out := fmt.Sprintf("%s: retrieve: %d", s.name, s.RetrieveCount())
	for _, k := range keys {
		out += fmt.Sprintf(", %s: %d", k, values[k])
	}
	return out
}

// Aggregate composes two stats trees: its counters sum across children,
// its CacheStats concatenates "<a.stats>, <b.stats>", and its children map
// exposes both by name.
type Aggregate struct {
	a, b     Aggregator
	children map[string]Aggregator
}

// Combine composes two statistics aggregators (leaves or aggregates) into
// a tree node.
func Combine(a, b Aggregator) *Aggregate {
	return &Aggregate{
		a: a, b: b,
		children: map[string]Aggregator{a.Name(): a, b.Name(): b},
	}
}

func (c *Aggregate) Name() string { return c.a.Name() + "+" + c.b.Name() }

// Increment is not meaningful on a composed node; it is routed to the
// first child for API symmetry but tiers should increment their own leaf.
func (c *Aggregate) Increment(key string) { c.a.Increment(key) }

func (c *Aggregate) Get(key string) int64 {
	return c.a.Get(key) + c.b.Get(key)
}

func (c *Aggregate) RetrieveCount() int64 {
	return c.a.RetrieveCount() + c.b.RetrieveCount()
}

func (c *Aggregate) HitRate() float64 {
	retrieve := c.RetrieveCount()
	if retrieve == 0 {
		return -1.0
	}
	return float64(c.Get(HitKey)) / float64(retrieve) * 100
}

func (c *Aggregate) CacheStats() string {
	return fmt.Sprintf("%s, %s", c.a.CacheStats(), c.b.CacheStats())
}

// Children exposes the immediate children of this aggregate by name.
func (c *Aggregate) Children() map[string]Aggregator {
	return c.children
}
