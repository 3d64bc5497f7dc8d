// Package cache provides the bounded map used to memoize amplified sequences.
//
// Two admission policies are available:
//
//   - PolicyLRU evicts the least recently used entry once capacity is reached.
//   - PolicyInsertOnly keeps the first capacity entries forever and rejects
//     further insertions, so once full every new key is recomputed on each call.
//
// A Cache is not safe for concurrent use; owners serialize access.
package cache

import (
	"container/list"
	"fmt"
	"strings"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 256

// Policy selects how a full cache treats new keys.
type Policy uint8

const (
	// PolicyLRU evicts the least recently used entry.
	PolicyLRU Policy = iota + 1
	// PolicyInsertOnly stops inserting once the cache is full.
	PolicyInsertOnly
)

var policyNames = map[Policy]string{
	PolicyLRU:        "lru",
	PolicyInsertOnly: "insert_only",
}

// String returns the string representation of the policy.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}

	return "unknown"
}

// ParsePolicy returns the Policy for a case-insensitive name.
func ParsePolicy(name string) (Policy, error) {
	for p, n := range policyNames {
		if n == strings.ToLower(name) {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown cache policy %q", name)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Rejected  int64
	Len       int
	Capacity  int
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a bounded key/value store.
type Cache[K comparable, V any] struct {
	capacity int
	policy   Policy
	items    map[K]*list.Element
	order    *list.List // front = most recently used
	onEvict  func(K, V)

	hits      int64
	misses    int64
	evictions int64
	rejected  int64
}

// New creates a cache holding at most capacity entries.
//
// onEvict, if not nil, is called for every entry leaving the cache, whether by
// eviction or Purge.
func New[K comparable, V any](capacity int, policy Policy, onEvict func(K, V)) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if _, ok := policyNames[policy]; !ok {
		policy = PolicyLRU
	}

	return &Cache[K, V]{
		capacity: capacity,
		policy:   policy,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		onEvict:  onEvict,
	}
}

// Get returns the value for key. Under PolicyLRU a hit refreshes the entry.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if elem, ok := c.items[key]; ok {
		if c.policy == PolicyLRU {
			c.order.MoveToFront(elem)
		}
		c.hits++

		return elem.Value.(*entry[K, V]).value, true
	}

	c.misses++
	var zero V

	return zero, false
}

// Add stores value under key and reports whether it was stored.
//
// Existing keys are overwritten. A full PolicyInsertOnly cache rejects new keys;
// a full PolicyLRU cache evicts its least recently used entry first.
func (c *Cache[K, V]) Add(key K, value V) bool {
	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		if c.policy == PolicyLRU {
			c.order.MoveToFront(elem)
		}

		return true
	}

	if c.order.Len() >= c.capacity {
		if c.policy == PolicyInsertOnly {
			c.rejected++
			return false
		}
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})

	return true
}

// Contains reports whether key is cached without touching recency or counters.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Full reports whether the cache reached its capacity.
func (c *Cache[K, V]) Full() bool {
	return c.order.Len() >= c.capacity
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.order.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Policy returns the admission policy.
func (c *Cache[K, V]) Policy() Policy {
	return c.policy
}

// Keys returns the cached keys from most to least recently used
// (insertion order, newest first, under PolicyInsertOnly).
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*entry[K, V]).key)
	}

	return keys
}

// Purge removes every entry and resets the counters.
func (c *Cache[K, V]) Purge() {
	if c.onEvict != nil {
		for e := c.order.Front(); e != nil; e = e.Next() {
			ent := e.Value.(*entry[K, V])
			c.onEvict(ent.key, ent.value)
		}
	}

	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
	c.hits, c.misses, c.evictions, c.rejected = 0, 0, 0, 0
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Rejected:  c.rejected,
		Len:       c.order.Len(),
		Capacity:  c.capacity,
	}
}

func (c *Cache[K, V]) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}

	ent := elem.Value.(*entry[K, V])
	c.order.Remove(elem)
	delete(c.items, ent.key)
	c.evictions++

	if c.onEvict != nil {
		c.onEvict(ent.key, ent.value)
	}
}
